package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/mitm-detector/internal/api/grpc/monitor"
	"github.com/oshokin/mitm-detector/internal/logger"
)

// ErrNoListenAddress indicates the status service has no address to listen on.
var ErrNoListenAddress = errors.New("no status address configured")

// Listen opens the TCP listener for the status service.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	if address == "" {
		return nil, ErrNoListenAddress
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	return lis, nil
}

// Serve runs the gRPC status server on lis and blocks until ctx is canceled or the server stops.
func Serve(ctx context.Context, lis net.Listener, svc *Service) error {
	ctx = logger.WithName(ctx, "status-server")

	grpcServer := grpc.NewServer()
	api.RegisterMonitorServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Status server listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(done)

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Shutting down gRPC server")
			grpcServer.GracefulStop()
		case <-stopped:
		}
	}()

	err := grpcServer.Serve(lis)
	close(stopped)
	<-done

	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	logger.Info(ctx, "GRPC server stopped")

	return nil
}

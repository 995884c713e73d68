package monitor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/mitm-detector/internal/domain/report"
	"github.com/oshokin/mitm-detector/internal/logger"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "mitmdetector.v1.MonitorService"
	// GetReportMethod is the full method path of GetReport.
	GetReportMethod = "/" + ServiceName + "/GetReport"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	LatestReport(ctx context.Context) (*domain.Report, bool)
}

// MonitorServiceServer is the server API for MonitorService.
type MonitorServiceServer interface {
	GetReport(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// Server implements the MonitorService gRPC API.
type Server struct {
	// service provides the latest report.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetReport returns the latest report, or Unavailable before the first poll.
func (s *Server) GetReport(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	r, ok := s.service.LatestReport(ctx)
	if !ok {
		return nil, status.Error(codes.Unavailable, "no report available yet")
	}

	value, err := r.ToProto()
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode report", "error", err)

		return nil, status.Error(codes.Internal, "unable to encode report")
	}

	return value, nil
}

// ServiceDesc is the grpc.ServiceDesc for MonitorService.
//
//nolint:gochecknoglobals // Descriptors are package level values in grpc-go.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetReport",
			Handler:    getReportHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterMonitorServiceServer registers srv on the registrar.
func RegisterMonitorServiceServer(registrar grpc.ServiceRegistrar, srv MonitorServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// getReportHandler decodes the request and dispatches it through the interceptor chain.
func getReportHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(MonitorServiceServer).GetReport(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetReportMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MonitorServiceServer).GetReport(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

package monitor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// MonitorServiceClient is the client API for MonitorService.
type MonitorServiceClient struct {
	// cc is the connection calls are issued on.
	cc grpc.ClientConnInterface
}

// NewMonitorServiceClient creates a client over cc.
func NewMonitorServiceClient(cc grpc.ClientConnInterface) *MonitorServiceClient {
	return &MonitorServiceClient{cc: cc}
}

// GetReport fetches the latest report.
func (c *MonitorServiceClient) GetReport(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetReportMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

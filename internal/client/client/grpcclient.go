package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcheck/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// invoker is the subset of *grpc.ClientConn used by GRPCClient.
type invoker interface {
	Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error
	Close() error
}

// GRPCClient talks to the gophcheck.v1.Artifacts service.
type GRPCClient struct {
	endpointURL string
	conn        invoker
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{endpointURL: endpointURL, conn: conn}, nil
}

// Fetch downloads the artifact bytes.
func (c *GRPCClient) Fetch(ctx context.Context) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.conn.Invoke(ctx, rpc.GetMethod, &emptypb.Empty{}, out); err != nil {
		return nil, mapError(err)
	}
	return out.GetValue(), nil
}

// Report sends one analytics event.
func (c *GRPCClient) Report(ctx context.Context, e rpc.Event) error {
	payload, err := e.ToStruct()
	if err != nil {
		return fmt.Errorf("%w: encode event: %w", ErrRejected, err)
	}
	if err := c.conn.Invoke(ctx, rpc.ReportMethod, payload, new(emptypb.Empty)); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return err
	}
}

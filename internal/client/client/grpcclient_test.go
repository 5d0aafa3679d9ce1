package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/rpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeConn struct {
	method string
	args   any
	reply  []byte
	err    error
	closed bool
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error {
	f.method = method
	f.args = args
	if f.err != nil {
		return f.err
	}
	if bv, ok := reply.(*wrapperspb.BytesValue); ok {
		bv.Value = f.reply
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestGRPCClient_Fetch(t *testing.T) {
	conn := &fakeConn{reply: []byte(`{"encrypted":true}`)}
	c := &GRPCClient{conn: conn}

	got, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, `{"encrypted":true}`, string(got))
	require.Equal(t, rpc.GetMethod, conn.method)
}

func TestGRPCClient_Report(t *testing.T) {
	conn := &fakeConn{}
	c := &GRPCClient{conn: conn}

	e := rpc.Event{ID: "e1", Prefix: "7561097010000002", Result: "genuine", OccurredAt: time.Unix(10, 0)}
	require.NoError(t, c.Report(context.Background(), e))
	require.Equal(t, rpc.ReportMethod, conn.method)

	s, ok := conn.args.(*structpb.Struct)
	require.True(t, ok)
	require.Equal(t, "7561097010000002", s.GetFields()["prefix"].GetStringValue())
}

func TestGRPCClient_ReportUnencodableIsRejected(t *testing.T) {
	conn := &fakeConn{}
	c := &GRPCClient{conn: conn}

	err := c.Report(context.Background(), rpc.Event{ID: "e1", Prefix: "aaaaaaaaaaaaaaa\xc3"})
	require.ErrorIs(t, err, ErrRejected)
	require.Empty(t, conn.method)
}

func TestGRPCClient_Close(t *testing.T) {
	conn := &fakeConn{}
	c := &GRPCClient{conn: conn}
	require.NoError(t, c.Close())
	require.True(t, conn.closed)
}

func TestMapError(t *testing.T) {
	require.ErrorIs(t, mapError(status.Error(codes.Unavailable, "x")), ErrUnavailable)
	require.ErrorIs(t, mapError(status.Error(codes.DeadlineExceeded, "x")), ErrUnavailable)
	require.NotErrorIs(t, mapError(status.Error(codes.Internal, "x")), ErrUnavailable)
	require.ErrorIs(t, mapError(status.Error(codes.InvalidArgument, "x")), ErrRejected)
	require.NotErrorIs(t, mapError(status.Error(codes.Internal, "x")), ErrRejected)

	e := errors.New("plain")
	require.Equal(t, e, mapError(e))
}

func TestGRPCClient_FetchUnavailable(t *testing.T) {
	c := &GRPCClient{conn: &fakeConn{err: status.Error(codes.Unavailable, "down")}}
	_, err := c.Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

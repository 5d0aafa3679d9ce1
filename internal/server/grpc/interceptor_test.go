package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestObserveInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer(&fakeArtifacts{}, nil)

	info := &grpc.UnaryServerInfo{FullMethod: "/gophcheck.v1.Artifacts/Get"}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.observeInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, handlerCalled)
	assert.Equal(t, "ok", resp)
}

func TestObserveInterceptor_KeepsError(t *testing.T) {
	s := newTestServer(&fakeArtifacts{}, nil)

	info := &grpc.UnaryServerInfo{FullMethod: "/gophcheck.v1.Artifacts/Report"}
	h := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	}

	_, err := s.observeInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	s := newTestServer(&fakeArtifacts{}, nil)

	info := &grpc.UnaryServerInfo{FullMethod: "/gophcheck.v1.Artifacts/Get"}
	h := func(ctx context.Context, req any) (any, error) {
		panic("nil map")
	}

	resp, err := s.recoveryInterceptor(context.Background(), nil, info, h)
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))

	ok := func(ctx context.Context, req any) (any, error) { return 1, nil }
	resp, err = s.recoveryInterceptor(context.Background(), nil, info, ok)
	require.NoError(t, err)
	assert.Equal(t, 1, resp)
}

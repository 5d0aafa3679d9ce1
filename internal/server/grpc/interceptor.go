package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// observeInterceptor logs each call and records its duration.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	s.metrics.ObserveRPC(info.FullMethod, code.String(), start)

	if err != nil {
		s.logger.Warn(ctx, "rpc failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	} else {
		s.logger.Debug(ctx, "rpc served", "method", info.FullMethod, "duration", time.Since(start))
	}

	return resp, err
}

// recoveryInterceptor turns a handler panic into codes.Internal.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "rpc panic", "method", info.FullMethod, "panic", p)
			resp, err = nil, status.Error(codes.Internal, common.ErrorInternal.Error())
		}
	}()

	return handler(ctx, req)
}

package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ rpc.ArtifactsServer = (*GRPCServer)(nil)

func (s *GRPCServer) Get(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {

	snap, err := s.artifacts.Current()
	if err != nil {
		if errors.Is(err, common.ErrDatabaseNotLoaded) {
			return nil, status.Error(codes.Unavailable, "artifact not loaded")
		}
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}

	s.metrics.IncArtifactFetch("grpc")
	return wrapperspb.Bytes(snap.Data), nil
}

func (s *GRPCServer) Report(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {

	if s.events == nil {
		return nil, status.Error(codes.Unavailable, "analytics disabled")
	}

	e, err := rpc.EventFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.events.Ingest(ctx, e); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}

	return &emptypb.Empty{}, nil
}

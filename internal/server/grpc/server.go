// Package grpc serves the gophcheck.v1.Artifacts service: artifact download
// for checkers and analytics event ingestion.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/rpc"
	"github.com/dmitrijs2005/gophcheck/internal/server/artifacts"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"google.golang.org/grpc"
)

// ArtifactSource yields the artifact currently served.
type ArtifactSource interface {
	Current() (*artifacts.Snapshot, error)
}

// EventIngester stores analytics events.
type EventIngester interface {
	Ingest(ctx context.Context, e rpc.Event) error
}

type GRPCServer struct {
	address   string
	artifacts ArtifactSource
	events    EventIngester
	metrics   *metrics.Metrics
	logger    logging.Logger
}

// NewGRPCServer builds the server. events may be nil, in which case Report
// answers Unavailable.
func NewGRPCServer(a string, l logging.Logger, m *metrics.Metrics, as ArtifactSource, es EventIngester) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		metrics:   m,
		artifacts: as,
		events:    es,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.observeInterceptor, s.recoveryInterceptor))

	rpc.Register(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

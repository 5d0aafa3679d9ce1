// Package rpc describes the gophcheck.v1.Artifacts gRPC service shared by the
// artifact server and the checker.
//
// The service uses protobuf well-known types only, so it needs no generated
// code:
//
//	service Artifacts {
//	  rpc Get(google.protobuf.Empty) returns (google.protobuf.BytesValue);
//	  rpc Report(google.protobuf.Struct) returns (google.protobuf.Empty);
//	}
package rpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName  = "gophcheck.v1.Artifacts"
	GetMethod    = "/" + ServiceName + "/Get"
	ReportMethod = "/" + ServiceName + "/Report"
)

// ArtifactsServer is implemented by the artifact server.
type ArtifactsServer interface {
	Get(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error)
	Report(ctx context.Context, event *structpb.Struct) (*emptypb.Empty, error)
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv ArtifactsServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ArtifactsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: getHandler},
		{MethodName: "Report", Handler: reportHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophcheck/v1/artifacts.proto",
}

func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArtifactsServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ArtifactsServer).Get(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func reportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArtifactsServer).Report(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReportMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ArtifactsServer).Report(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Event is the analytics payload carried by Report. Prefix never holds more
// than the 16-character code prefix.
type Event struct {
	ID         string
	Prefix     string
	Result     string
	Label      string
	Location   string
	Source     string
	OccurredAt time.Time
}

// ToStruct encodes e for the wire.
func (e Event) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":          e.ID,
		"prefix":      e.Prefix,
		"result":      e.Result,
		"label":       e.Label,
		"location":    e.Location,
		"source":      e.Source,
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
}

// EventFromStruct decodes a Report payload.
func EventFromStruct(s *structpb.Struct) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("empty event")
	}
	f := s.GetFields()
	str := func(k string) string { return f[k].GetStringValue() }

	e := Event{
		ID:       str("id"),
		Prefix:   str("prefix"),
		Result:   str("result"),
		Label:    str("label"),
		Location: str("location"),
		Source:   str("source"),
	}
	if ts := str("occurred_at"); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Event{}, fmt.Errorf("occurred_at: %w", err)
		}
		e.OccurredAt = t
	}
	return e, nil
}

// Package rpc carries the plumbing shared by the gRPC services: method
// descriptors over google.protobuf.Struct messages, request decoding with
// validation, and response encoding.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	svcErr "github.com/oggyb/muzz-matching/internal/errors"
)

// Handler serves one unary method.
type Handler func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Method describes a unary method whose request and response are Structs.
// pick selects the handler on the registered service implementation.
func Method[S any](serviceName, methodName string, pick func(S) Handler) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + methodName
	return grpc.MethodDesc{
		MethodName: methodName,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := pick(srv.(S))
			if interceptor == nil {
				return h(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return h(ctx, req.(*structpb.Struct))
			})
		},
	}
}

// Decode copies the request fields into v (matched by json tag) and validates v.
// Failures are ErrInvalidArgument.
func Decode(req *structpb.Struct, v any) error {
	if req == nil {
		req = &structpb.Struct{}
	}
	b, err := protojson.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: %v", svcErr.ErrInvalidArgument, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: malformed request: %v", svcErr.ErrInvalidArgument, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", svcErr.ErrInvalidArgument, err)
	}
	return nil
}

// Encode turns a response value into a Struct using its json tags.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("failed to build response: %w", err)
	}
	return out, nil
}

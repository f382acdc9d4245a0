package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matching/internal/config"
)

// NewGRPCServer builds a gRPC server with call logging and reflection,
// and registers all provided services.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log)))

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// enable reflection for easier debugging with grpcurl.
	// The services are described over google.protobuf.Struct without a .proto
	// file, so reflection lists them but cannot describe their methods.
	reflection.Register(grpcServer)
	return grpcServer
}

// StartGRPCServer boots a gRPC server and registers all provided services
func StartGRPCServer(cfg *config.Config, log *slog.Logger, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	log.Info("gRPC server listening", "addr", addr)
	return NewGRPCServer(log, registrars...).Serve(lis)
}

// loggingInterceptor logs every unary call with its status code and latency.
// Server-side failures are logged at Error, client errors at Info.
func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		st := status.Convert(err)
		level := slog.LevelDebug
		switch {
		case err == nil:
		case isServerFault(st.Code()):
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
		log.LogAttrs(ctx, level, "grpc call",
			slog.String("method", info.FullMethod),
			slog.String("code", st.Code().String()),
			slog.Duration("took", time.Since(start)),
		)
		return resp, err
	}
}

func isServerFault(code codes.Code) bool {
	switch code {
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		return true
	}
	return false
}

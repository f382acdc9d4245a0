package server

import "google.golang.org/grpc"

// Registrar attaches one service implementation to a gRPC server.
// Each service package exposes one (discovery.NewRegistrar, mailbox.NewRegistrar).
type Registrar interface {
	Register(s *grpc.Server)
}

// RegistrarFunc adapts a plain function to Registrar.
type RegistrarFunc func(s *grpc.Server)

// Register calls f(s).
func (f RegistrarFunc) Register(s *grpc.Server) { f(s) }

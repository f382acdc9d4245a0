package discovery

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/service/rpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "muzz.discovery.DiscoveryService"

// Server is the method set exposed over gRPC.
type Server interface {
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LikeUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLikes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CountLikes(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Method(ServiceName, "ListUsers", func(s Server) rpc.Handler { return s.ListUsers }),
		rpc.Method(ServiceName, "LikeUser", func(s Server) rpc.Handler { return s.LikeUser }),
		rpc.Method(ServiceName, "ListLikes", func(s Server) rpc.Handler { return s.ListLikes }),
		rpc.Method(ServiceName, "CountLikes", func(s Server) rpc.Handler { return s.CountLikes }),
	},
	Streams: []grpc.StreamDesc{},
}

// Registrar ties the Discovery service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Discovery service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Discovery service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&serviceDesc, NewDiscoveryService(r.appCtx))
}

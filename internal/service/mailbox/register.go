package mailbox

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/service/rpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "muzz.mailbox.MailboxService"

// Server is the method set exposed over gRPC.
type Server interface {
	ListMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetThread(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkRead(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CountUnread(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Method(ServiceName, "ListMessages", func(s Server) rpc.Handler { return s.ListMessages }),
		rpc.Method(ServiceName, "GetThread", func(s Server) rpc.Handler { return s.GetThread }),
		rpc.Method(ServiceName, "GetMessage", func(s Server) rpc.Handler { return s.GetMessage }),
		rpc.Method(ServiceName, "SendMessage", func(s Server) rpc.Handler { return s.SendMessage }),
		rpc.Method(ServiceName, "MarkRead", func(s Server) rpc.Handler { return s.MarkRead }),
		rpc.Method(ServiceName, "DeleteMessage", func(s Server) rpc.Handler { return s.DeleteMessage }),
		rpc.Method(ServiceName, "CountUnread", func(s Server) rpc.Handler { return s.CountUnread }),
	},
	Streams: []grpc.StreamDesc{},
}

// Registrar ties the Mailbox service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Mailbox service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Mailbox service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&serviceDesc, NewMailboxService(r.appCtx))
}

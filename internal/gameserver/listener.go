package gameserver

import (
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Listener serves a grpc.Server on a TCP address. It satisfies
// server.Service.
type Listener struct {
	addr   string
	srv    *grpc.Server
	logger *zap.Logger
}

// NewListener creates a grpc.Server with svc registered.
//
// Precondition: svc and logger must be non-nil.
func NewListener(addr string, svc DirectiveServiceServer, logger *zap.Logger, opts ...grpc.ServerOption) *Listener {
	srv := grpc.NewServer(opts...)
	RegisterDirectiveServiceServer(srv, svc)
	return &Listener{addr: addr, srv: srv, logger: logger}
}

// Start listens and serves until Stop.
func (l *Listener) Start() error {
	lis, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
	return l.Serve(lis)
}

// Serve serves on an existing listener.
func (l *Listener) Serve(lis net.Listener) error {
	return l.srv.Serve(lis)
}

// Stop drains in-flight RPCs and stops the server.
func (l *Listener) Stop() {
	l.srv.GracefulStop()
}

package binding

import (
	"context"
	"fmt"

	"github.com/dogmatiq/conduit/chain"
	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/internal/x/grpcx"
	"github.com/dogmatiq/conduit/internal/x/loggingx"
	"github.com/dogmatiq/conduit/journal"
	"github.com/dogmatiq/conduit/semaphore"
	"github.com/dogmatiq/dodeca/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// Server drives handler chains for RPCs received by a gRPC server.
type Server struct {
	// Handlers returns the handlers for each exchange.
	Handlers HandlerFactory

	// Logger is the target for log messages about each exchange.
	// If it is nil, logging.DefaultLogger is used.
	Logger logging.Logger

	// Journal, if non-nil, records a report of each completed exchange.
	Journal journal.Journal

	// Semaphore, if non-nil, limits the number of exchanges processed
	// concurrently.
	Semaphore *semaphore.Semaphore
}

// UnaryServerInterceptor returns a gRPC interceptor that runs the handler
// chains around each unary RPC.
//
// Requests that are not protocol buffers messages are passed to the service
// without invoking any handlers.
func (s *Server) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		next grpc.UnaryHandler,
	) (interface{}, error) {
		m, ok := req.(proto.Message)
		if !ok {
			return next(ctx, req)
		}

		return s.handle(ctx, info.FullMethod, m, next)
	}
}

func (s *Server) handle(
	ctx context.Context,
	method string,
	req proto.Message,
	next grpc.UnaryHandler,
) (interface{}, error) {
	if err := s.Semaphore.Acquire(ctx); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	defer s.Semaphore.Release()

	md, _ := metadata.FromIncomingContext(ctx)
	x := newExchange(method, req, md)
	logger := s.logger(method)

	inv := chain.New(
		s.Handlers.handlers(),
		x,
		chain.WithDirection(chain.Inbound),
		chain.WithLogger(logger),
	)

	s.drive(ctx, inv, req, next)

	if failure := finish(ctx, logger, s.Journal, inv); failure != nil {
		return nil, status.Errorf(
			codes.Internal,
			"exchange %s failed: %s",
			x.ID(),
			failure,
		)
	}

	if err := x.Fault(); err != nil {
		return nil, grpcx.FaultError(x.ID(), err)
	}

	return x.Message().Payload(), nil
}

// drive invokes the handlers for the request, the service and the handlers
// for the response.
func (s *Server) drive(
	ctx context.Context,
	inv *chain.Invoker,
	req proto.Message,
	next grpc.UnaryHandler,
) {
	x := inv.Context()

	if !inv.InvokeProtocol() || !inv.InvokeLogical() {
		if inv.IsClosed() {
			return
		}

		if inv.IsAborted() {
			// The direction has already been reversed. Replaying the handlers
			// invoked so far delivers the response built by the handler that
			// stopped the chain.
			x.Put(exchange.ResponseCodeProperty, responseCode(x))
			inv.InvokeLogical()
			return
		}
	} else if !inv.FaultRaised() {
		call(ctx, x, req, next)
	}

	x.Put(exchange.ResponseCodeProperty, responseCode(x))
	inv.SetOutbound()

	if inv.InvokeLogical() || faulted(inv) {
		inv.InvokeProtocol()
	}
}

// call invokes the service with the current payload of x, storing the response
// or the fault it returns.
//
// The payload must be of the same type as the original request, req.
func call(
	ctx context.Context,
	x *exchange.Context,
	req proto.Message,
	next grpc.UnaryHandler,
) {
	p := x.Message().Payload()
	if p == nil {
		x.SetFault(
			handler.NewFault(
				codes.Internal,
				"exchange %s has no request",
				x.ID(),
			),
		)
		return
	}

	want := req.ProtoReflect().Descriptor().FullName()
	got := p.ProtoReflect().Descriptor().FullName()

	if want != got {
		x.SetFault(
			handler.NewFault(
				codes.Internal,
				"exchange %s produced a %s request, expected %s",
				x.ID(),
				got,
				want,
			),
		)
		return
	}

	res, err := next(ctx, p)
	if err != nil {
		x.SetFault(grpcx.AsFault(err))
		return
	}

	m, ok := res.(proto.Message)
	if !ok {
		x.SetFault(
			fmt.Errorf(
				"service returned a %T, expected a protocol buffers message",
				res,
			),
		)
		return
	}

	x.Message().SetPayload(m)
}

func (s *Server) logger(method string) logging.Logger {
	l := s.Logger
	if l == nil {
		l = logging.DefaultLogger
	}

	return loggingx.WithPrefix(l, "[server %s] ", method)
}

// Package binding drives handler chains from gRPC interceptors.
//
// Each RPC is a single exchange. The interceptors create a new
// exchange.Context and chain.Invoker for every call, drive the handlers in
// the order dictated by the direction of the message, and complete the
// invoker once the exchange is finished.
package binding

import (
	"context"

	"github.com/dogmatiq/conduit/chain"
	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/internal/mlog"
	"github.com/dogmatiq/conduit/internal/x/grpcx"
	"github.com/dogmatiq/conduit/journal"
	"github.com/dogmatiq/dodeca/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
)

// HandlerFactory returns the handlers that make up the chain for a single
// exchange.
//
// It is called once per exchange. Handlers that are returned by more than one
// call are shared between exchanges and must be safe for concurrent use.
type HandlerFactory func() []handler.Handler

// Static returns a HandlerFactory that returns the same handlers for every
// exchange.
func Static(handlers ...handler.Handler) HandlerFactory {
	return func() []handler.Handler {
		return handlers
	}
}

func (f HandlerFactory) handlers() []handler.Handler {
	if f == nil {
		return nil
	}

	return f()
}

// newExchange returns a context for an exchange of the given operation.
func newExchange(
	method string,
	payload proto.Message,
	md metadata.MD,
) *exchange.Context {
	x := exchange.New()
	x.Put(exchange.OperationProperty, method)
	x.PutScoped(
		exchange.HeadersProperty,
		map[string][]string(md.Copy()),
		exchange.HandlerScope,
	)
	x.Message().SetPayload(payload)

	return x
}

// finish completes inv and records the exchange in j, if it is non-nil.
//
// It returns the error that closed the invoker before it was completed, if
// any.
func finish(
	ctx context.Context,
	logger logging.Logger,
	j journal.Journal,
	inv *chain.Invoker,
) error {
	failure := inv.Err()

	// Close failures are logged by the invoker and captured in the report.
	_ = inv.Complete()

	if j != nil {
		ctx = context.WithoutCancel(ctx)
		if err := j.Record(ctx, journal.NewReport(inv)); err != nil {
			mlog.LogJournalFailure(logger, inv.Context().ID(), err)
		}
	}

	return failure
}

// responseCode returns the gRPC code that describes the current state of x.
func responseCode(x *exchange.Context) codes.Code {
	if err := x.Fault(); err != nil {
		return grpcx.AsFault(err).Code
	}

	return codes.OK
}

// faulted returns true if the last traversal of inv ended because a handler
// raised a fault, in which case the next chain is invoked on the fault path.
func faulted(inv *chain.Invoker) bool {
	return inv.FaultRaised() && !inv.IsAborted() && !inv.IsClosed()
}

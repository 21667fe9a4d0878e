package chain

import (
	"errors"

	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/dodeca/logging"
)

// ErrCompleted is the error returned by Invoker.Err() once the exchange has
// been completed.
var ErrCompleted = errors.New("invoker is closed, the exchange has completed")

// Invoker drives the handlers configured for an endpoint over a single message
// exchange.
//
// An invoker is bound to exactly one exchange. It is not safe for concurrent
// use; exchanges that are processed concurrently each use their own invoker.
type Invoker struct {
	protocol []handler.ProtocolHandler
	logical  []handler.LogicalHandler
	invoked  []handler.Handler

	ctx    *exchange.Context
	logger logging.Logger

	outbound         bool
	responseExpected bool
	aborted          bool
	closed           bool
	completed        bool

	err         error
	closeErrors []error
}

// New returns an invoker for an exchange that uses the given context.
//
// The handlers are partitioned into protocol and logical chains once, by
// Partition(). The handlers slice itself is never modified.
func New(
	handlers []handler.Handler,
	ctx *exchange.Context,
	options ...Option,
) *Invoker {
	if ctx == nil {
		panic("context must not be nil")
	}

	opts := resolveOptions(options...)
	protocol, logical := Partition(handlers)

	if logging.IsDebug(opts.Logger) {
		logging.Debug(
			opts.Logger,
			"invoker for exchange %s created with %d protocol handler(s) and %d logical handler(s)",
			ctx.ID(),
			len(protocol),
			len(logical),
		)
	}

	return &Invoker{
		protocol:         protocol,
		logical:          logical,
		ctx:              ctx,
		logger:           opts.Logger,
		outbound:         opts.Direction == Outbound,
		responseExpected: true,
	}
}

// InvokeLogical invokes the logical handlers.
//
// If the previous traversal was stopped by a handler, only the handlers that
// have already been invoked during this exchange are invoked again, in the
// new direction. Otherwise the full logical chain is invoked.
//
// It returns false if processing of the exchange should not continue.
func (i *Invoker) InvokeLogical() bool {
	lctx := exchange.NewLogicalContext(i.ctx)

	var links []link
	if i.aborted {
		links = replayLinks(i.invoked, i.ctx, lctx)
	} else {
		links = logicalLinks(i.logical, lctx)
	}

	ok := i.traverse("logical", links)
	if ok && len(links) > 0 {
		i.aborted = false
	}

	return ok
}

// InvokeProtocol invokes the protocol handlers over the full context.
//
// It returns false if processing of the exchange should not continue.
func (i *Invoker) InvokeProtocol() bool {
	return i.traverse(
		"protocol",
		protocolLinks(i.protocol, i.ctx),
	)
}

// InvokeStream invokes stream handlers.
//
// There are no stream handlers; it returns true unless the invoker is
// closed.
func (i *Invoker) InvokeStream() bool {
	return !i.closed
}

// FaultRaised returns true if the context holds a fault.
func (i *Invoker) FaultRaised() bool {
	return i.ctx.Fault() != nil
}

// SetFault captures a fault in the context.
func (i *Invoker) SetFault(err error) {
	i.ctx.SetFault(err)
}

// IsOutbound returns true if the exchange is currently outbound.
func (i *Invoker) IsOutbound() bool {
	return i.outbound
}

// IsInbound returns true if the exchange is currently inbound.
func (i *Invoker) IsInbound() bool {
	return !i.outbound
}

// SetOutbound sets the direction of the exchange to outbound.
//
// The context is not updated until the next chain traversal.
func (i *Invoker) SetOutbound() {
	i.outbound = true
}

// SetInbound sets the direction of the exchange to inbound.
//
// The context is not updated until the next chain traversal.
func (i *Invoker) SetInbound() {
	i.outbound = false
}

// Direction returns the current direction of the exchange.
func (i *Invoker) Direction() Direction {
	if i.outbound {
		return Outbound
	}

	return Inbound
}

// SetResponseExpected records whether the exchange expects a response.
//
// It does not affect how handlers are invoked.
func (i *Invoker) SetResponseExpected(expected bool) {
	i.responseExpected = expected
}

// IsResponseExpected returns true if the exchange expects a response.
func (i *Invoker) IsResponseExpected() bool {
	return i.responseExpected
}

// IsAborted returns true if the most recent traversal was stopped by a
// handler and has not yet been replayed.
func (i *Invoker) IsAborted() bool {
	return i.aborted
}

// IsClosed returns true if no further handlers can be invoked, either
// because a handler failed unexpectedly or because the exchange is complete.
//
// Once closed, only Complete() may be called.
func (i *Invoker) IsClosed() bool {
	return i.closed
}

// Err returns the error that closed the invoker.
//
// It returns nil if the invoker is not closed, and ErrCompleted once the
// exchange has been completed without an earlier failure.
func (i *Invoker) Err() error {
	return i.err
}

// Invoked returns the handlers that have been invoked during the exchange, in
// the order they were first invoked.
func (i *Invoker) Invoked() []handler.Handler {
	return append([]handler.Handler(nil), i.invoked...)
}

// Context returns the exchange context.
func (i *Invoker) Context() *exchange.Context {
	return i.ctx
}

// SetContext replaces the exchange context.
func (i *Invoker) SetContext(ctx *exchange.Context) {
	if ctx == nil {
		panic("context must not be nil")
	}

	i.ctx = ctx
}

// markInvoked records h as having been invoked, if it is not already
// recorded.
func (i *Invoker) markInvoked(h handler.Handler) {
	if !i.wasInvoked(h) {
		i.invoked = append(i.invoked, h)
	}
}

// wasInvoked returns true if h has been invoked during the exchange.
func (i *Invoker) wasInvoked(h handler.Handler) bool {
	return contains(i.invoked, h)
}

// contains returns true if h is in handlers.
func contains(handlers []handler.Handler, h handler.Handler) bool {
	for _, x := range handlers {
		if x == h {
			return true
		}
	}

	return false
}

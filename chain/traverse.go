package chain

import (
	"fmt"

	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/internal/mlog"
)

// link is a handler bound to the context view it is invoked with.
type link struct {
	handler handler.Handler
	message func() (bool, error)
	fault   func() (bool, error)
}

func protocolLinks(handlers []handler.ProtocolHandler, ctx *exchange.Context) []link {
	links := make([]link, len(handlers))

	for n, h := range handlers {
		links[n] = protocolLink(h, ctx)
	}

	return links
}

func logicalLinks(handlers []handler.LogicalHandler, lctx *exchange.LogicalContext) []link {
	links := make([]link, len(handlers))

	for n, h := range handlers {
		links[n] = logicalLink(h, lctx)
	}

	return links
}

// replayLinks returns links for handlers that have already been invoked.
//
// Logical handlers are given the message-scoped view, protocol handlers the
// full context.
func replayLinks(
	handlers []handler.Handler,
	ctx *exchange.Context,
	lctx *exchange.LogicalContext,
) []link {
	links := make([]link, len(handlers))

	for n, h := range handlers {
		switch h := h.(type) {
		case handler.LogicalHandler:
			links[n] = logicalLink(h, lctx)
		case handler.ProtocolHandler:
			links[n] = protocolLink(h, ctx)
		}
	}

	return links
}

func protocolLink(h handler.ProtocolHandler, ctx *exchange.Context) link {
	return link{
		handler: h,
		message: func() (bool, error) { return h.HandleMessage(ctx) },
		fault:   func() (bool, error) { return h.HandleFault(ctx) },
	}
}

func logicalLink(h handler.LogicalHandler, lctx *exchange.LogicalContext) link {
	return link{
		handler: h,
		message: func() (bool, error) { return h.HandleMessage(lctx) },
		fault:   func() (bool, error) { return h.HandleFault(lctx) },
	}
}

// traverse invokes each handler in links, in the order required by the
// current direction.
//
// It returns false if a handler stopped the chain, raised a fault or failed.
func (i *Invoker) traverse(chain string, links []link) bool {
	if i.completed {
		return false
	}

	if len(links) == 0 {
		return true
	}

	if i.closed {
		return false
	}

	i.mirrorDirection()

	if !i.outbound {
		links = reversed(links)
	}

	fault := i.FaultRaised()

	mlog.LogTraversal(
		i.logger,
		i.ctx.ID(),
		chain,
		i.outbound,
		len(links),
		fault,
	)

	for _, l := range links {
		i.markInvoked(l.handler)

		fn := l.message
		if fault {
			fn = l.fault
		}

		ok, err := call(fn)

		switch handler.Classify(ok, err) {
		case handler.Continue:
			continue

		case handler.Stop:
			mlog.LogStop(
				i.logger,
				i.ctx.ID(),
				chain,
				i.outbound,
				handler.NameOf(l.handler),
			)

			i.aborted = true
			i.reverseDirection()

		case handler.Faulted:
			mlog.LogFault(
				i.logger,
				i.ctx.ID(),
				chain,
				i.outbound,
				handler.NameOf(l.handler),
				err,
			)

			i.SetFault(err)

		default:
			mlog.LogFailure(
				i.logger,
				i.ctx.ID(),
				chain,
				i.outbound,
				handler.NameOf(l.handler),
				err,
			)

			i.closed = true
			i.err = fmt.Errorf(
				"%s handler %s failed: %w",
				chain,
				handler.NameOf(l.handler),
				err,
			)
		}

		return false
	}

	return true
}

// mirrorDirection writes the current direction to the context.
func (i *Invoker) mirrorDirection() {
	i.ctx.Put(exchange.OutboundProperty, i.outbound)
}

// reverseDirection changes the direction of the exchange after a handler has
// stopped a chain.
func (i *Invoker) reverseDirection() {
	i.outbound = !i.outbound
	i.mirrorDirection()
	i.ctx.Put(exchange.InputProperty, true)
}

// PanicError is the error produced when a handler panics.
//
// A panic is always treated as an unexpected failure, even if the panic value
// is a protocol fault.
type PanicError struct {
	Value interface{}
}

func (e PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// call invokes fn, converting a panic into a PanicError.
func call(fn func() (bool, error)) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			err = PanicError{p}
		}
	}()

	return fn()
}

// reversed returns a copy of links in reverse order.
func reversed[T any](s []T) []T {
	r := make([]T, len(s))

	for n, v := range s {
		r[len(s)-1-n] = v
	}

	return r
}

package handler

import (
	"reflect"

	"github.com/dogmatiq/conduit/exchange"
)

// Handler is the capability shared by every handler in a chain.
//
// A concrete handler must also implement exactly one of ProtocolHandler or
// LogicalHandler. Handlers are identified by equality, so their dynamic type
// must be comparable; pointer receivers are the usual choice.
type Handler interface {
	// Close is called once at the end of an exchange if the handler was
	// invoked during that exchange.
	Close(ctx *exchange.Context) error
}

// ProtocolHandler is a handler that operates on the full exchange context.
//
// HandleMessage and HandleFault return true to continue processing the chain,
// or false to stop it and reverse the direction of the exchange. Returning a
// *Fault captures a protocol fault; any other error is treated as an
// unrecoverable failure of the exchange.
type ProtocolHandler interface {
	Handler

	HandleMessage(ctx *exchange.Context) (bool, error)
	HandleFault(ctx *exchange.Context) (bool, error)
}

// LogicalHandler is a handler that operates on a message-scoped view of the
// exchange context.
//
// The return values have the same meaning as for ProtocolHandler.
type LogicalHandler interface {
	Handler

	HandleMessage(ctx *exchange.LogicalContext) (bool, error)
	HandleFault(ctx *exchange.LogicalContext) (bool, error)
}

// Named is an optional interface implemented by handlers that provide a
// human-readable name for logging.
type Named interface {
	HandlerName() string
}

// NameOf returns a human-readable name for h.
//
// If h implements Named its name is used, otherwise the name of its type.
func NameOf(h Handler) string {
	if n, ok := h.(Named); ok {
		return n.HandlerName()
	}

	t := reflect.TypeOf(h)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Name() == "" {
		return t.String()
	}

	return t.PkgPath() + "." + t.Name()
}

package fixtures

import (
	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/handler"
)

// ProtocolHandlerStub is a test implementation of the
// handler.ProtocolHandler interface.
//
// By default it continues processing and closes without error.
type ProtocolHandlerStub struct {
	Name string

	HandleMessageFunc func(*exchange.Context) (bool, error)
	HandleFaultFunc   func(*exchange.Context) (bool, error)
	CloseFunc         func(*exchange.Context) error
}

var _ handler.ProtocolHandler = (*ProtocolHandlerStub)(nil)

// HandlerName returns h.Name.
func (h *ProtocolHandlerStub) HandlerName() string {
	if h.Name == "" {
		return "<protocol>"
	}

	return h.Name
}

// HandleMessage handles a message in the full exchange context.
func (h *ProtocolHandlerStub) HandleMessage(ctx *exchange.Context) (bool, error) {
	if h.HandleMessageFunc != nil {
		return h.HandleMessageFunc(ctx)
	}

	return true, nil
}

// HandleFault handles a fault in the full exchange context.
func (h *ProtocolHandlerStub) HandleFault(ctx *exchange.Context) (bool, error) {
	if h.HandleFaultFunc != nil {
		return h.HandleFaultFunc(ctx)
	}

	return true, nil
}

// Close releases resources held by the handler for the exchange.
func (h *ProtocolHandlerStub) Close(ctx *exchange.Context) error {
	if h.CloseFunc != nil {
		return h.CloseFunc(ctx)
	}

	return nil
}

// LogicalHandlerStub is a test implementation of the handler.LogicalHandler
// interface.
//
// By default it continues processing and closes without error.
type LogicalHandlerStub struct {
	Name string

	HandleMessageFunc func(*exchange.LogicalContext) (bool, error)
	HandleFaultFunc   func(*exchange.LogicalContext) (bool, error)
	CloseFunc         func(*exchange.Context) error
}

var _ handler.LogicalHandler = (*LogicalHandlerStub)(nil)

// HandlerName returns h.Name.
func (h *LogicalHandlerStub) HandlerName() string {
	if h.Name == "" {
		return "<logical>"
	}

	return h.Name
}

// HandleMessage handles a message in the message-scoped context.
func (h *LogicalHandlerStub) HandleMessage(ctx *exchange.LogicalContext) (bool, error) {
	if h.HandleMessageFunc != nil {
		return h.HandleMessageFunc(ctx)
	}

	return true, nil
}

// HandleFault handles a fault in the message-scoped context.
func (h *LogicalHandlerStub) HandleFault(ctx *exchange.LogicalContext) (bool, error) {
	if h.HandleFaultFunc != nil {
		return h.HandleFaultFunc(ctx)
	}

	return true, nil
}

// Close releases resources held by the handler for the exchange.
func (h *LogicalHandlerStub) Close(ctx *exchange.Context) error {
	if h.CloseFunc != nil {
		return h.CloseFunc(ctx)
	}

	return nil
}

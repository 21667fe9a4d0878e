package exchange

import "google.golang.org/protobuf/proto"

// LogicalContext is a message-scoped view of a Context.
//
// It exposes the message payload, the application-scoped properties and the
// fault. It holds no state of its own; every change made through the view is
// visible through the underlying context, and vice versa.
type LogicalContext struct {
	ctx *Context
}

// NewLogicalContext returns a message-scoped view of c.
func NewLogicalContext(c *Context) *LogicalContext {
	if c == nil {
		panic("context must not be nil")
	}

	return &LogicalContext{c}
}

// ID returns the exchange ID.
func (c *LogicalContext) ID() string {
	return c.ctx.ID()
}

// Payload returns the message payload.
func (c *LogicalContext) Payload() proto.Message {
	return c.ctx.message.Payload()
}

// SetPayload replaces the message payload.
func (c *LogicalContext) SetPayload(p proto.Message) {
	c.ctx.message.SetPayload(p)
}

// Get returns the value of the property with the given key.
//
// Handler-scoped properties are not visible through the logical view.
func (c *LogicalContext) Get(k string) (interface{}, bool) {
	if s, ok := c.ctx.ScopeOf(k); ok && s == HandlerScope {
		return nil, false
	}

	return c.ctx.Get(k)
}

// Put sets the value of an application-scoped property.
func (c *LogicalContext) Put(k string, v interface{}) {
	c.ctx.Put(k, v)
}

// Fault returns the fault captured by the exchange, if any.
func (c *LogicalContext) Fault() error {
	return c.ctx.Fault()
}

// SetFault captures a fault in the exchange.
func (c *LogicalContext) SetFault(err error) {
	c.ctx.SetFault(err)
}

// ClearFault removes any captured fault.
func (c *LogicalContext) ClearFault() {
	c.ctx.ClearFault()
}

// Outbound returns true if the current traversal runs in the outbound
// direction.
func (c *LogicalContext) Outbound() bool {
	return c.ctx.Outbound()
}

package exchange

import (
	"sort"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
)

const (
	// OutboundProperty is the property that holds the direction under which
	// the current chain traversal is running. Its value is a bool.
	OutboundProperty = "conduit.message.outbound"

	// InputProperty is the property set to true when control returns towards
	// inbound processing after a handler stopped a chain.
	InputProperty = "conduit.message.input"

	// OperationProperty is the property that holds the name of the operation
	// being invoked, for example a gRPC method name.
	OperationProperty = "conduit.message.operation"

	// HeadersProperty is the property that holds transport headers as a
	// map[string][]string.
	HeadersProperty = "conduit.message.headers"

	// ResponseCodeProperty is the property that holds the response code chosen
	// by the binding, if any.
	ResponseCodeProperty = "conduit.message.response-code"
)

// Context is the mutable property bag carried through a single message
// exchange.
//
// It is shared by reference between the binding that created it, the chain
// invoker and every handler. It is not safe for concurrent use.
type Context struct {
	id         string
	message    Message
	fault      error
	properties map[string]property
}

// property is a value stored in the context, along with its scope.
type property struct {
	Value interface{}
	Scope Scope
}

// New returns a new context for an exchange with a randomly generated ID.
func New() *Context {
	return NewWithID(uuid.NewString())
}

// NewWithID returns a new context for the exchange with the given ID.
func NewWithID(id string) *Context {
	if id == "" {
		panic("exchange ID must not be empty")
	}

	return &Context{
		id:         id,
		properties: map[string]property{},
	}
}

// ID returns the exchange ID.
func (c *Context) ID() string {
	return c.id
}

// Message returns the message currently carried by the exchange.
func (c *Context) Message() *Message {
	return &c.message
}

// Get returns the value of the property with the given key.
func (c *Context) Get(k string) (interface{}, bool) {
	p, ok := c.properties[k]
	return p.Value, ok
}

// Put sets the value of an application-scoped property.
func (c *Context) Put(k string, v interface{}) {
	c.PutScoped(k, v, ApplicationScope)
}

// PutScoped sets the value of a property with an explicit scope.
func (c *Context) PutScoped(k string, v interface{}, s Scope) {
	s.MustValidate()
	c.properties[k] = property{v, s}
}

// ScopeOf returns the scope of the property with the given key.
func (c *Context) ScopeOf(k string) (Scope, bool) {
	p, ok := c.properties[k]
	return p.Scope, ok
}

// Delete removes the property with the given key.
func (c *Context) Delete(k string) {
	delete(c.properties, k)
}

// Keys returns the keys of all properties, in lexical order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.properties))

	for k := range c.properties {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}

// Fault returns the fault captured by the exchange, if any.
func (c *Context) Fault() error {
	return c.fault
}

// SetFault captures a fault in the exchange.
//
// Passing a nil error is equivalent to calling ClearFault().
func (c *Context) SetFault(err error) {
	c.fault = err
}

// ClearFault removes any captured fault, for example after a handler has
// translated the fault into a regular response.
func (c *Context) ClearFault() {
	c.fault = nil
}

// Outbound returns true if the most recent chain traversal ran in the outbound
// direction.
//
// It returns false if no traversal has run yet.
func (c *Context) Outbound() bool {
	return c.boolProperty(OutboundProperty)
}

// IsMessageInput returns true if a handler reversed the direction of the
// exchange and control is returning towards inbound processing.
func (c *Context) IsMessageInput() bool {
	return c.boolProperty(InputProperty)
}

// Operation returns the name of the operation being invoked, if known.
func (c *Context) Operation() string {
	v, _ := c.Get(OperationProperty)
	s, _ := v.(string)
	return s
}

// Headers returns the transport headers stored in the context.
//
// It returns nil if there are no headers.
func (c *Context) Headers() map[string][]string {
	v, _ := c.Get(HeadersProperty)
	h, _ := v.(map[string][]string)
	return h
}

func (c *Context) boolProperty(k string) bool {
	v, _ := c.Get(k)
	b, _ := v.(bool)
	return b
}

// Message is the message carried by an exchange.
type Message struct {
	payload proto.Message
}

// Payload returns the message payload.
func (m *Message) Payload() proto.Message {
	return m.payload
}

// SetPayload replaces the message payload.
func (m *Message) SetPayload(p proto.Message) {
	m.payload = p
}

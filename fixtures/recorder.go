package fixtures

import (
	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/handler"
)

// Recorder records the calls made to a set of handler stubs, in order.
//
// Each call is recorded as "<name>.<method>", for example "A.message".
type Recorder struct {
	Calls []string
}

// Reset discards all recorded calls.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Protocol returns a protocol handler stub that records its calls to r.
func (r *Recorder) Protocol(name string) *ProtocolHandlerStub {
	return &ProtocolHandlerStub{
		Name: name,
		HandleMessageFunc: func(*exchange.Context) (bool, error) {
			r.Calls = append(r.Calls, name+".message")
			return true, nil
		},
		HandleFaultFunc: func(*exchange.Context) (bool, error) {
			r.Calls = append(r.Calls, name+".fault")
			return true, nil
		},
		CloseFunc: func(*exchange.Context) error {
			r.Calls = append(r.Calls, name+".close")
			return nil
		},
	}
}

// Logical returns a logical handler stub that records its calls to r.
func (r *Recorder) Logical(name string) *LogicalHandlerStub {
	return &LogicalHandlerStub{
		Name: name,
		HandleMessageFunc: func(*exchange.LogicalContext) (bool, error) {
			r.Calls = append(r.Calls, name+".message")
			return true, nil
		},
		HandleFaultFunc: func(*exchange.LogicalContext) (bool, error) {
			r.Calls = append(r.Calls, name+".fault")
			return true, nil
		},
		CloseFunc: func(*exchange.Context) error {
			r.Calls = append(r.Calls, name+".close")
			return nil
		},
	}
}

// Names returns the names of the given handlers.
func Names(handlers []handler.Handler) []string {
	names := make([]string, len(handlers))

	for i, h := range handlers {
		names[i] = handler.NameOf(h)
	}

	return names
}

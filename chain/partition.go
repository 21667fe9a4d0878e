package chain

import (
	"fmt"
	"reflect"

	"github.com/dogmatiq/conduit/handler"
)

// Partition splits a configured handler chain into its protocol and logical
// handlers.
//
// The relative order of the handlers within each sub-chain is preserved. It
// panics if any handler is nil, implements neither handler.ProtocolHandler nor
// handler.LogicalHandler, or has a dynamic type that is not comparable.
func Partition(handlers []handler.Handler) (
	protocol []handler.ProtocolHandler,
	logical []handler.LogicalHandler,
) {
	for _, h := range handlers {
		mustValidate(h)

		switch h := h.(type) {
		case handler.LogicalHandler:
			logical = append(logical, h)
		case handler.ProtocolHandler:
			protocol = append(protocol, h)
		default:
			panic(fmt.Sprintf(
				"%s implements neither handler.ProtocolHandler nor handler.LogicalHandler",
				handler.NameOf(h),
			))
		}
	}

	return protocol, logical
}

// mustValidate panics if h can not be placed in a chain.
func mustValidate(h handler.Handler) {
	if h == nil {
		panic("handler must not be nil")
	}

	if !reflect.TypeOf(h).Comparable() {
		panic(fmt.Sprintf(
			"%s can not be used in a chain because its type is not comparable",
			handler.NameOf(h),
		))
	}
}

package exchange

import "fmt"

// Scope controls which views of the context can see a property.
type Scope int

const (
	// ApplicationScope properties are visible to every handler and to the
	// application that the exchange is invoking.
	ApplicationScope Scope = iota

	// HandlerScope properties are visible only through the full context, that
	// is, to protocol handlers and the binding.
	HandlerScope
)

// MustValidate panics if s is not a valid scope.
func (s Scope) MustValidate() {
	if s != ApplicationScope && s != HandlerScope {
		panic(fmt.Sprintf("invalid scope: %d", s))
	}
}

func (s Scope) String() string {
	switch s {
	case ApplicationScope:
		return "application"
	case HandlerScope:
		return "handler"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

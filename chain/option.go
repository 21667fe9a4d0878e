package chain

import (
	"fmt"

	"github.com/dogmatiq/dodeca/logging"
)

// Direction is the direction in which an exchange is traversing the chain.
type Direction int

const (
	// Outbound is the direction of a message that is being sent. Chains are
	// traversed in their declared order.
	Outbound Direction = iota

	// Inbound is the direction of a message that has been received. Chains
	// are traversed in reverse order.
	Inbound
)

func (d Direction) String() string {
	switch d {
	case Outbound:
		return "outbound"
	case Inbound:
		return "inbound"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

var (
	// DefaultDirection is the initial direction of an invoker.
	//
	// It is overridden by the WithDirection() option.
	DefaultDirection = Outbound

	// DefaultLogger is the default target for log messages produced by the
	// invoker.
	//
	// It is overridden by the WithLogger() option.
	DefaultLogger = logging.DefaultLogger
)

// Option configures the behavior of an invoker.
type Option func(*invokerOptions)

// WithDirection returns an option that sets the initial direction of the
// invoker.
//
// If this option is omitted, DefaultDirection is used.
func WithDirection(d Direction) Option {
	if d != Outbound && d != Inbound {
		panic(fmt.Sprintf("invalid direction: %d", d))
	}

	return func(opts *invokerOptions) {
		opts.Direction = d
		opts.HasDirection = true
	}
}

// WithLogger returns an option that sets the target for log messages produced
// by the invoker.
//
// If this option is omitted or l is nil, DefaultLogger is used.
func WithLogger(l logging.Logger) Option {
	return func(opts *invokerOptions) {
		opts.Logger = l
	}
}

// invokerOptions is a container for a fully-resolved set of invoker options.
type invokerOptions struct {
	Direction    Direction
	HasDirection bool
	Logger       logging.Logger
}

// resolveOptions returns a fully-populated set of invoker options built from
// the given set of option functions.
func resolveOptions(options ...Option) *invokerOptions {
	opts := &invokerOptions{}

	for _, o := range options {
		o(opts)
	}

	if !opts.HasDirection {
		opts.Direction = DefaultDirection
	}

	if opts.Logger == nil {
		opts.Logger = DefaultLogger
	}

	return opts
}

package conduit

import (
	"fmt"
	"net"
	"runtime"

	"github.com/dogmatiq/conduit/binding"
	"github.com/dogmatiq/conduit/chain"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/journal"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger/backoff"
	"google.golang.org/grpc"
)

var (
	// DefaultListenAddress is the default TCP address for the gRPC listener.
	//
	// It is overridden by the WithListenAddress() option.
	DefaultListenAddress = ":50555"

	// DefaultRetryBackoff is the default backoff strategy used when a server
	// is unavailable.
	//
	// It is overridden by the WithRetryBackoff() option.
	DefaultRetryBackoff = binding.DefaultBackoff

	// DefaultMaxAttempts is the default number of attempts made to deliver
	// each outgoing message.
	//
	// It is overridden by the WithMaxAttempts() option.
	DefaultMaxAttempts = 3

	// DefaultConcurrencyLimit is the default number of incoming exchanges
	// that are processed concurrently.
	//
	// It is overridden by the WithConcurrencyLimit() option.
	DefaultConcurrencyLimit = uint(runtime.GOMAXPROCS(0) * 16)

	// DefaultLogger is the default target for log messages produced by the
	// endpoint.
	//
	// It is overridden by the WithLogger() option.
	DefaultLogger = logging.DefaultLogger
)

// Option configures the behavior of an endpoint.
type Option func(*endpointOptions)

// WithHandler returns an option that adds handlers to the end of the
// endpoint's handler chain.
//
// The same handler instances are used for every exchange, so they must be safe
// for concurrent use. Use WithHandlerFactory() to create new handlers for each
// exchange.
//
// It panics if any of the handlers can not be used in a chain.
func WithHandler(handlers ...handler.Handler) Option {
	chain.Partition(handlers)

	return func(opts *endpointOptions) {
		opts.Handlers = append(opts.Handlers, handlers...)
	}
}

// WithHandlerFactory returns an option that adds handlers that are created
// anew for each exchange.
//
// The handlers returned by f are placed after any handlers added by
// WithHandler(), and after the handlers of any factory added before f.
func WithHandlerFactory(f func() []handler.Handler) Option {
	if f == nil {
		panic("handler factory must not be nil")
	}

	return func(opts *endpointOptions) {
		opts.Factories = append(opts.Factories, f)
	}
}

// WithJournal returns an option that sets the journal used to record the
// outcome of each exchange.
//
// If this option is omitted or j is nil, exchanges are not journaled unless
// WithJournalFile() is used.
func WithJournal(j journal.Journal) Option {
	return func(opts *endpointOptions) {
		opts.Journal = j
	}
}

// WithJournalFile returns an option that records the outcome of each exchange
// handled by the endpoint's server in a BoltDB database at the given path.
//
// The database is opened by Run() and closed when it returns. It takes
// precedence over WithJournal() for the server started by Run().
func WithJournalFile(path string) Option {
	return func(opts *endpointOptions) {
		opts.JournalFile = path
	}
}

// WithRetryBackoff returns an option that sets the backoff strategy used to
// delay retries when a server is unavailable.
//
// If this option is omitted or s is nil, DefaultRetryBackoff is used.
func WithRetryBackoff(s backoff.Strategy) Option {
	return func(opts *endpointOptions) {
		opts.RetryBackoff = s
	}
}

// WithMaxAttempts returns an option that sets the maximum number of attempts
// made to deliver each outgoing message.
//
// If this option is omitted or n is zero, DefaultMaxAttempts is used.
func WithMaxAttempts(n int) Option {
	if n < 0 {
		panic("maximum attempts must not be negative")
	}

	return func(opts *endpointOptions) {
		opts.MaxAttempts = n
	}
}

// WithOneWay returns an option that identifies the outgoing operations that do
// not expect a response.
//
// Handlers are not invoked for the response of a one-way operation unless the
// exchange holds a fault. f is called with the full gRPC method name.
//
// If this option is omitted or f is nil, every operation expects a response.
func WithOneWay(f func(method string) bool) Option {
	return func(opts *endpointOptions) {
		opts.OneWay = f
	}
}

// WithListenAddress returns an option that sets the TCP address for the
// endpoint's gRPC listener.
//
// If this option is omitted or addr is empty, DefaultListenAddress is used.
func WithListenAddress(addr string) Option {
	if addr != "" {
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			panic(fmt.Sprintf("invalid listen address: %s", err))
		}

		if _, err := net.LookupPort("tcp", port); err != nil {
			panic(fmt.Sprintf("invalid listen address: %s", err))
		}
	}

	return func(opts *endpointOptions) {
		opts.ListenAddress = addr
	}
}

// WithListener returns an option that sets the listener used by the
// endpoint's gRPC server.
//
// If this option is used the listen address is ignored. The listener is
// closed when Run() returns.
func WithListener(lis net.Listener) Option {
	return func(opts *endpointOptions) {
		opts.Listener = lis
	}
}

// WithService returns an option that registers a gRPC service with the
// endpoint's server.
func WithService(desc *grpc.ServiceDesc, impl interface{}) Option {
	if desc == nil {
		panic("service description must not be nil")
	}

	return func(opts *endpointOptions) {
		for _, s := range opts.Services {
			if s.Desc.ServiceName == desc.ServiceName {
				panic(fmt.Sprintf(
					"can not register %s more than once",
					desc.ServiceName,
				))
			}
		}

		opts.Services = append(opts.Services, service{desc, impl})
	}
}

// WithConcurrencyLimit returns an option that limits the number of incoming
// exchanges that are processed at the same time.
//
// If this option is omitted or n is zero, DefaultConcurrencyLimit is used.
func WithConcurrencyLimit(n uint) Option {
	return func(opts *endpointOptions) {
		opts.ConcurrencyLimit = n
	}
}

// WithLogger returns an option that sets the target for log messages
// produced by the endpoint.
//
// If this option is omitted or l is nil, DefaultLogger is used.
func WithLogger(l logging.Logger) Option {
	return func(opts *endpointOptions) {
		opts.Logger = l
	}
}

// service is a gRPC service registered with the endpoint.
type service struct {
	Desc *grpc.ServiceDesc
	Impl interface{}
}

// endpointOptions is a container for a fully-resolved set of endpoint
// options.
type endpointOptions struct {
	Handlers         []handler.Handler
	Factories        []func() []handler.Handler
	Journal          journal.Journal
	JournalFile      string
	RetryBackoff     backoff.Strategy
	MaxAttempts      int
	OneWay           func(method string) bool
	ListenAddress    string
	Listener         net.Listener
	Services         []service
	ConcurrencyLimit uint
	Logger           logging.Logger
}

// resolveOptions returns a fully-populated set of endpoint options built from
// the given set of option functions.
func resolveOptions(options ...Option) *endpointOptions {
	opts := &endpointOptions{}

	for _, o := range options {
		o(opts)
	}

	if opts.RetryBackoff == nil {
		opts.RetryBackoff = DefaultRetryBackoff
	}

	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	if opts.ListenAddress == "" {
		opts.ListenAddress = DefaultListenAddress
	}

	if opts.ConcurrencyLimit == 0 {
		opts.ConcurrencyLimit = DefaultConcurrencyLimit
	}

	if opts.Logger == nil {
		opts.Logger = DefaultLogger
	}

	return opts
}

// handlers returns the handlers for a new exchange.
func (opts *endpointOptions) handlers() []handler.Handler {
	if len(opts.Factories) == 0 {
		return opts.Handlers
	}

	handlers := append([]handler.Handler(nil), opts.Handlers...)

	for _, f := range opts.Factories {
		handlers = append(handlers, f()...)
	}

	return handlers
}

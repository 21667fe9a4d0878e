// Package conduit runs message handler chains around gRPC services and
// clients.
package conduit

import (
	"context"
	"fmt"
	"net"

	"github.com/dogmatiq/conduit/binding"
	"github.com/dogmatiq/conduit/chain"
	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/internal/x/grpcx"
	"github.com/dogmatiq/conduit/journal"
	"github.com/dogmatiq/conduit/journal/boltdb"
	"github.com/dogmatiq/conduit/semaphore"
	"github.com/dogmatiq/dodeca/logging"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Endpoint applies a handler chain to the messages exchanged by gRPC servers
// and clients.
type Endpoint struct {
	opts *endpointOptions
	sem  *semaphore.Semaphore
}

// New returns a new endpoint.
func New(options ...Option) *Endpoint {
	opts := resolveOptions(options...)

	return &Endpoint{
		opts: opts,
		sem:  semaphore.New(int(opts.ConcurrencyLimit)),
	}
}

// NewInvoker returns an invoker that drives the endpoint's handlers over x,
// starting in the given direction.
func (e *Endpoint) NewInvoker(x *exchange.Context, d chain.Direction) *chain.Invoker {
	return chain.New(
		e.opts.handlers(),
		x,
		chain.WithDirection(d),
		chain.WithLogger(e.opts.Logger),
	)
}

// ServerInterceptor returns a gRPC interceptor that applies the endpoint's
// handlers to unary RPCs received by a server.
func (e *Endpoint) ServerInterceptor() grpc.UnaryServerInterceptor {
	return e.server(e.opts.Journal).UnaryServerInterceptor()
}

// ClientInterceptor returns a gRPC interceptor that applies the endpoint's
// handlers to unary RPCs made by a client.
func (e *Endpoint) ClientInterceptor() grpc.UnaryClientInterceptor {
	c := &binding.Client{
		Handlers:    e.opts.handlers,
		Logger:      e.opts.Logger,
		Journal:     e.opts.Journal,
		Backoff:     e.opts.RetryBackoff,
		MaxAttempts: e.opts.MaxAttempts,
		OneWay:      e.opts.OneWay,
	}

	return c.UnaryClientInterceptor()
}

// Run serves the endpoint's gRPC services until ctx is canceled or an error
// occurs.
func (e *Endpoint) Run(ctx context.Context) (err error) {
	if len(e.opts.Services) == 0 {
		return fmt.Errorf("no services configured, see conduit.WithService()")
	}

	j := e.opts.Journal

	if e.opts.JournalFile != "" {
		fj, openErr := boltdb.Open(ctx, e.opts.JournalFile, 0, nil)
		if openErr != nil {
			return fmt.Errorf("unable to open journal: %w", openErr)
		}
		defer multierr.AppendInvoke(&err, multierr.Close(fj))

		j = fj
	}

	lis, err := e.listen()
	if err != nil {
		return err
	}

	s := grpc.NewServer(
		grpc.UnaryInterceptor(e.server(j).UnaryServerInterceptor()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	for _, svc := range e.opts.Services {
		s.RegisterService(svc.Desc, svc.Impl)
		hs.SetServingStatus(svc.Desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	parent := ctx
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Log(
			e.opts.Logger,
			"listening for gRPC requests on %s",
			lis.Addr(),
		)

		return grpcx.Serve(ctx, lis, s, grpcx.DefaultStopTimeout)
	})

	g.Go(func() error {
		<-ctx.Done()
		hs.Shutdown()
		return nil
	})

	err = g.Wait()

	if parent.Err() != nil {
		return parent.Err()
	}

	return err
}

func (e *Endpoint) server(j journal.Journal) *binding.Server {
	return &binding.Server{
		Handlers:  e.opts.handlers,
		Logger:    e.opts.Logger,
		Journal:   j,
		Semaphore: e.sem,
	}
}

func (e *Endpoint) listen() (net.Listener, error) {
	if e.opts.Listener != nil {
		return e.opts.Listener, nil
	}

	lis, err := net.Listen("tcp", e.opts.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on %s: %w", e.opts.ListenAddress, err)
	}

	return lis, nil
}

package binding

import (
	"context"
	"time"

	"github.com/dogmatiq/conduit/chain"
	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/conduit/internal/mlog"
	"github.com/dogmatiq/conduit/internal/x/grpcx"
	"github.com/dogmatiq/conduit/internal/x/loggingx"
	"github.com/dogmatiq/conduit/journal"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// DefaultBackoff is the default strategy used to compute the delay between
// attempts to deliver a message when the server is unavailable.
var DefaultBackoff backoff.Strategy = backoff.WithTransforms(
	backoff.Exponential(100*time.Millisecond),
	linger.FullJitter,
	linger.Limiter(0, 5*time.Second),
)

// Client drives handler chains for RPCs made by a gRPC client.
type Client struct {
	// Handlers returns the handlers for each exchange.
	Handlers HandlerFactory

	// Logger is the target for log messages about each exchange.
	// If it is nil, logging.DefaultLogger is used.
	Logger logging.Logger

	// Journal, if non-nil, records a report of each completed exchange.
	Journal journal.Journal

	// Backoff is the strategy used to compute the delay between attempts when
	// the server is unavailable. If it is nil, DefaultBackoff is used.
	Backoff backoff.Strategy

	// MaxAttempts is the maximum number of attempts made for each RPC. If it
	// is less than 1, each RPC is attempted once.
	MaxAttempts int

	// OneWay returns true if the given method does not produce a response
	// that the handlers need to see. If it is nil, every method is treated as
	// a request/response operation.
	OneWay func(method string) bool
}

// UnaryClientInterceptor returns a gRPC interceptor that runs the handler
// chains around each unary RPC.
//
// Requests that are not protocol buffers messages are sent without invoking
// any handlers.
func (c *Client) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		in, ok := req.(proto.Message)
		if !ok {
			return invoker(ctx, method, req, reply, cc, opts...)
		}

		out, ok := reply.(proto.Message)
		if !ok {
			return invoker(ctx, method, req, reply, cc, opts...)
		}

		call := func(ctx context.Context, m proto.Message) error {
			return invoker(ctx, method, m, out, cc, opts...)
		}

		return c.invoke(ctx, method, in, out, call)
	}
}

// invoke performs an exchange, retrying it if the server is unavailable.
func (c *Client) invoke(
	ctx context.Context,
	method string,
	req, reply proto.Message,
	call func(context.Context, proto.Message) error,
) error {
	logger := c.logger(method)

	for n := 1; ; n++ {
		id, retry, err := c.attempt(ctx, logger, method, req, reply, call)
		if !retry || n >= c.MaxAttempts {
			return err
		}

		delay := c.backoff()(err, uint(n))
		mlog.LogRetry(logger, id, n, delay, err)

		if err := linger.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// attempt performs a single exchange using a new invoker.
//
// retry is true if the exchange failed because the server was unavailable.
func (c *Client) attempt(
	ctx context.Context,
	logger logging.Logger,
	method string,
	req, reply proto.Message,
	call func(context.Context, proto.Message) error,
) (id string, retry bool, err error) {
	md, _ := metadata.FromOutgoingContext(ctx)
	x := newExchange(method, req, md)

	inv := chain.New(
		c.Handlers.handlers(),
		x,
		chain.WithDirection(chain.Outbound),
		chain.WithLogger(logger),
	)

	if c.OneWay != nil && c.OneWay(method) {
		inv.SetResponseExpected(false)
	}

	retry = c.drive(ctx, inv, reply, call)

	if failure := finish(ctx, logger, c.Journal, inv); failure != nil {
		return x.ID(), false, status.Errorf(
			codes.Internal,
			"exchange %s failed: %s",
			x.ID(),
			failure,
		)
	}

	if err := x.Fault(); err != nil {
		return x.ID(), retry, grpcx.FaultError(x.ID(), err)
	}

	return x.ID(), false, copyResponse(x, req, reply)
}

// drive invokes the handlers for the request, sends it to the server and
// invokes the handlers for the response.
//
// It returns true if the server was unavailable.
func (c *Client) drive(
	ctx context.Context,
	inv *chain.Invoker,
	reply proto.Message,
	call func(context.Context, proto.Message) error,
) (unavailable bool) {
	x := inv.Context()

	if !inv.InvokeLogical() || !inv.InvokeProtocol() {
		if inv.IsClosed() {
			return false
		}

		if inv.IsAborted() {
			// The direction has already been reversed. Replaying the handlers
			// invoked so far delivers the response built by the handler that
			// stopped the chain, without contacting the server.
			x.Put(exchange.ResponseCodeProperty, responseCode(x))
			inv.InvokeLogical()
			return false
		}
	} else if !inv.FaultRaised() {
		ctx = metadata.NewOutgoingContext(ctx, metadata.MD(x.Headers()))

		if err := call(ctx, x.Message().Payload()); err != nil {
			unavailable = grpcx.IsUnavailable(err)
			x.SetFault(grpcx.AsFault(err))
		} else {
			x.Message().SetPayload(reply)
		}
	}

	if !inv.IsResponseExpected() && !inv.FaultRaised() {
		return unavailable
	}

	x.Put(exchange.ResponseCodeProperty, responseCode(x))
	inv.SetInbound()

	if inv.InvokeProtocol() || faulted(inv) {
		inv.InvokeLogical()
	}

	return unavailable
}

// copyResponse copies the payload of x into reply.
//
// It returns an error if the payload is nil or is still the request.
func copyResponse(x *exchange.Context, req, reply proto.Message) error {
	p := x.Message().Payload()
	if p == reply {
		return nil
	}

	if p == nil || p == req {
		return status.Errorf(
			codes.Internal,
			"exchange %s produced no response",
			x.ID(),
		)
	}

	want := reply.ProtoReflect().Descriptor().FullName()
	got := p.ProtoReflect().Descriptor().FullName()

	if want != got {
		return status.Errorf(
			codes.Internal,
			"exchange %s produced a %s response, expected %s",
			x.ID(),
			got,
			want,
		)
	}

	proto.Reset(reply)
	proto.Merge(reply, p)

	return nil
}

func (c *Client) backoff() backoff.Strategy {
	if c.Backoff != nil {
		return c.Backoff
	}

	return DefaultBackoff
}

func (c *Client) logger(method string) logging.Logger {
	l := c.Logger
	if l == nil {
		l = logging.DefaultLogger
	}

	return loggingx.WithPrefix(l, "[client %s] ", method)
}

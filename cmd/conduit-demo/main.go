// Package main runs a conduit endpoint that applies a small handler chain to
// gRPC health checks.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dogmatiq/conduit"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/internal/x/loggingx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// demoService is the service whose health is reported by the endpoint.
var demoService = &grpc.ServiceDesc{
	ServiceName: "conduit.demo.Service",
	HandlerType: (*interface{})(nil),
}

// newContext returns a cancelable context that is canceled when the process
// receives a SIGTERM or SIGINT.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
}

func main() {
	ctx, cancel := newContext()
	defer cancel()

	if err := run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}

func run(ctx context.Context) error {
	z, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer z.Sync() //nolint:errcheck

	logger := loggingx.Zap(z)

	options := []conduit.Option{
		conduit.WithLogger(logger),
		conduit.WithService(demoService, struct{}{}),
		conduit.WithHandler(&auditHandler{Logger: logger}),
		conduit.WithHandlerFactory(func() []handler.Handler {
			return []handler.Handler{
				&maintenanceHandler{
					Enabled: os.Getenv("CONDUIT_DEMO_MAINTENANCE") != "",
				},
			}
		}),
	}

	// Environment variables take precedence over the options above.
	options = append(options, conduit.FromEnvironment()...)

	return conduit.New(options...).Run(ctx)
}

package grpcx

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"
)

// DefaultStopTimeout is the default time Serve() waits for in-flight RPCs to
// finish after its context is canceled.
const DefaultStopTimeout = 5 * time.Second

// Serve runs s until ctx is canceled or an error occurs.
//
// When ctx is canceled the server is stopped gracefully. If in-flight RPCs
// have not finished within timeout they are terminated. A non-positive timeout
// stops the server immediately.
//
// The caller must never call s.Stop() or s.GracefulStop().
func Serve(
	ctx context.Context,
	lis net.Listener,
	s *grpc.Server,
	timeout time.Duration,
) error {
	// Ensure the goroutine below exits if the server fails before ctx is
	// canceled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		stop(s, timeout)
	}()

	err := s.Serve(lis)

	// Serve() only returns nil or ErrServerStopped after a stop, which only
	// happens when ctx is canceled.
	if err == nil || errors.Is(err, grpc.ErrServerStopped) {
		<-ctx.Done()
		err = ctx.Err()
	}

	return err
}

func stop(s *grpc.Server, timeout time.Duration) {
	if timeout <= 0 {
		s.Stop()
		return
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-done:
	case <-t.C:
		s.Stop()
	}
}

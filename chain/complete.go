package chain

import (
	"fmt"

	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/internal/mlog"
	"go.uber.org/multierr"
)

// Complete ends the exchange by closing every handler that was invoked.
//
// Protocol handlers are closed first, then logical handlers. Within each chain
// handlers are closed in the reverse of their declared order, regardless of
// the direction the exchange was traveling in when it ended.
//
// A failure to close one handler does not prevent the others from being
// closed. The failures are combined into the returned error, and are also
// available via CloseErrors().
//
// After Complete() returns the invoker is closed. Subsequent calls to
// Complete() have no effect and return nil.
func (i *Invoker) Complete() error {
	if i.completed {
		return nil
	}

	i.completed = true

	var done []handler.Handler

	for _, h := range reversed(i.protocol) {
		done = i.closeHandler(h, done)
	}

	for _, h := range reversed(i.logical) {
		done = i.closeHandler(h, done)
	}

	i.closed = true
	if i.err == nil {
		i.err = ErrCompleted
	}

	mlog.LogComplete(
		i.logger,
		i.ctx.ID(),
		len(done),
		len(i.closeErrors),
	)

	return multierr.Combine(i.closeErrors...)
}

// CloseErrors returns the errors that occurred while closing handlers.
func (i *Invoker) CloseErrors() []error {
	return append([]error(nil), i.closeErrors...)
}

// closeHandler closes h if it was invoked and is not already in done. It
// returns done with h appended if h was closed, successfully or otherwise.
func (i *Invoker) closeHandler(h handler.Handler, done []handler.Handler) []handler.Handler {
	if !i.wasInvoked(h) || contains(done, h) {
		return done
	}

	if err := closeSafely(h, i); err != nil {
		name := handler.NameOf(h)

		mlog.LogCloseFailure(
			i.logger,
			i.ctx.ID(),
			name,
			err,
		)

		i.closeErrors = append(
			i.closeErrors,
			fmt.Errorf("unable to close %s: %w", name, err),
		)
	}

	return append(done, h)
}

// closeSafely calls h.Close(), converting a panic into a PanicError.
func closeSafely(h handler.Handler, i *Invoker) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = PanicError{p}
		}
	}()

	return h.Close(i.ctx)
}

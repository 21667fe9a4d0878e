package journal

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/conduit/chain"
	"github.com/dogmatiq/conduit/handler"
)

// Outcome describes how an exchange ended.
type Outcome string

const (
	// Completed indicates that every chain ran to completion.
	Completed Outcome = "completed"

	// Reversed indicates that a handler stopped a chain and the exchange
	// changed direction.
	Reversed Outcome = "reversed"

	// Faulted indicates that the exchange ended with a protocol fault.
	Faulted Outcome = "faulted"

	// Failed indicates that a handler failed unexpectedly.
	Failed Outcome = "failed"
)

// Report is a record of a completed exchange.
type Report struct {
	ExchangeID  string
	Operation   string
	Direction   string
	Invoked     []string
	Outcome     Outcome
	Fault       string
	Failure     string
	CloseErrors []string
	CompletedAt time.Time
}

// Journal is a store of exchange reports.
type Journal interface {
	// Record stores a report, replacing any existing report for the same
	// exchange.
	Record(ctx context.Context, r Report) error

	// Load returns the report for the given exchange.
	Load(ctx context.Context, id string) (Report, bool, error)
}

// NewReport returns a report describing the exchange driven by inv.
//
// It is intended to be called after inv.Complete().
func NewReport(inv *chain.Invoker) Report {
	ctx := inv.Context()

	r := Report{
		ExchangeID:  ctx.ID(),
		Operation:   ctx.Operation(),
		Direction:   inv.Direction().String(),
		Outcome:     Completed,
		CompletedAt: time.Now(),
	}

	for _, h := range inv.Invoked() {
		r.Invoked = append(r.Invoked, handler.NameOf(h))
	}

	for _, err := range inv.CloseErrors() {
		r.CloseErrors = append(r.CloseErrors, err.Error())
	}

	if err := inv.Err(); err != nil && !errors.Is(err, chain.ErrCompleted) {
		r.Outcome = Failed
		r.Failure = err.Error()
	} else if err := ctx.Fault(); err != nil {
		r.Outcome = Faulted
		r.Fault = err.Error()
	} else if ctx.IsMessageInput() {
		r.Outcome = Reversed
	}

	return r
}

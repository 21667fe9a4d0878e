package memory

import (
	"context"
	"sync"

	"github.com/dogmatiq/conduit/journal"
)

// Journal is an in-memory implementation of journal.Journal.
type Journal struct {
	m       sync.RWMutex
	reports map[string]journal.Report
}

var _ journal.Journal = (*Journal)(nil)

// Record stores a report, replacing any existing report for the same
// exchange.
func (j *Journal) Record(ctx context.Context, r journal.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.m.Lock()
	defer j.m.Unlock()

	if j.reports == nil {
		j.reports = map[string]journal.Report{}
	}

	r.Invoked = append([]string(nil), r.Invoked...)
	r.CloseErrors = append([]string(nil), r.CloseErrors...)
	j.reports[r.ExchangeID] = r

	return nil
}

// Load returns the report for the given exchange.
func (j *Journal) Load(ctx context.Context, id string) (journal.Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return journal.Report{}, false, err
	}

	j.m.RLock()
	defer j.m.RUnlock()

	r, ok := j.reports[id]
	return r, ok, nil
}

// Len returns the number of reports in the journal.
func (j *Journal) Len() int {
	j.m.RLock()
	defer j.m.RUnlock()

	return len(j.reports)
}

package bboltx

import (
	"context"
	"os"

	"github.com/dogmatiq/linger"
	"go.etcd.io/bbolt"
)

// Open creates and opens a database at the given path.
//
// If mode is zero, 0600 is used. If the deadline from ctx is sooner than
// opts.Timeout, the time remaining until the deadline is used as the timeout
// for acquiring the file lock.
func Open(
	ctx context.Context,
	path string,
	mode os.FileMode,
	opts *bbolt.Options,
) (*bbolt.DB, error) {
	if mode == 0 {
		mode = 0600
	}

	if err := ctx.Err(); err != nil {
		// A non-positive timeout means "wait forever" to BoltDB, so bail early
		// rather than passing it through.
		return nil, err
	}

	if timeout, ok := linger.FromContextDeadline(ctx); ok {
		clone := *bbolt.DefaultOptions
		if opts != nil {
			clone = *opts
		}

		if clone.Timeout == 0 || clone.Timeout > timeout {
			clone.Timeout = timeout
		}

		opts = &clone
	}

	db, err := bbolt.Open(path, mode, opts)

	if err == bbolt.ErrTimeout {
		err = context.DeadlineExceeded
	}

	return db, err
}

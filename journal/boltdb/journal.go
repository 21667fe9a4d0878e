package boltdb

import (
	"context"
	"os"

	"github.com/dogmatiq/conduit/internal/x/bboltx"
	"github.com/dogmatiq/conduit/journal"
	"go.etcd.io/bbolt"
)

// bucketName is the name of the bucket that contains the exchange reports,
// keyed by exchange ID.
var bucketName = []byte("exchanges")

// Journal is an implementation of journal.Journal that stores reports in a
// BoltDB database.
type Journal struct {
	db *bbolt.DB
}

var _ journal.Journal = (*Journal)(nil)

// Open opens the journal stored in the BoltDB database at the given path,
// creating it if necessary.
//
// If mode is zero, 0600 is used.
func Open(
	ctx context.Context,
	path string,
	mode os.FileMode,
	opts *bbolt.Options,
) (*Journal, error) {
	db, err := bboltx.Open(ctx, path, mode, opts)
	if err != nil {
		return nil, err
	}

	return New(db), nil
}

// New returns a journal that stores reports in db.
func New(db *bbolt.DB) *Journal {
	return &Journal{db}
}

// Record stores a report, replacing any existing report for the same
// exchange.
func (j *Journal) Record(ctx context.Context, r journal.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return j.db.Update(func(tx *bbolt.Tx) (err error) {
		defer bboltx.Recover(&err)

		b := bboltx.CreateBucketIfNotExists(tx, bucketName)
		bboltx.Put(b, []byte(r.ExchangeID), marshalReport(r))

		return nil
	})
}

// Load returns the report for the given exchange.
func (j *Journal) Load(ctx context.Context, id string) (journal.Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return journal.Report{}, false, err
	}

	var (
		r  journal.Report
		ok bool
	)

	err := j.db.View(func(tx *bbolt.Tx) (err error) {
		defer bboltx.Recover(&err)

		b := bboltx.Bucket(tx, bucketName)
		if b == nil {
			return nil
		}

		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}

		r = unmarshalReport(data)
		ok = true

		return nil
	})

	return r, ok, err
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Package boltdbtest provides BoltDB databases for use in tests.
package boltdbtest

import (
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// Open opens a BoltDB database in a new temporary directory.
//
// The returned function must be used to close the database, instead of
// DB.Close(). It also removes the temporary directory.
func Open() (*bbolt.DB, func()) {
	dir, err := os.MkdirTemp("", "conduit-boltdb-*")
	if err != nil {
		panic(err)
	}

	db, err := bbolt.Open(
		filepath.Join(dir, "test.boltdb"),
		0600,
		nil,
	)
	if err != nil {
		os.RemoveAll(dir)
		panic(err)
	}

	return db, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

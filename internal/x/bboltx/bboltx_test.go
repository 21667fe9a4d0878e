package bboltx_test

import (
	"errors"

	"github.com/dogmatiq/conduit/internal/testing/boltdbtest"
	. "github.com/dogmatiq/conduit/internal/x/bboltx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"
)

var _ = Describe("func Recover()", func() {
	It("assigns the cause of a Must() panic to the error", func() {
		cause := errors.New("<error>")

		fn := func() (err error) {
			defer Recover(&err)
			Must(cause)
			return nil
		}

		Expect(fn()).To(BeIdenticalTo(cause))
	})

	It("does not modify the error if there is no panic", func() {
		fn := func() (err error) {
			defer Recover(&err)
			Must(nil)
			return nil
		}

		Expect(fn()).To(BeNil())
	})

	It("re-panics with other values", func() {
		fn := func() (err error) {
			defer Recover(&err)
			panic("<panic>")
		}

		Expect(func() {
			fn()
		}).To(PanicWith("<panic>"))
	})
})

var _ = Describe("func CreateBucketIfNotExists()", func() {
	var (
		db      *bbolt.DB
		closeDB func()
	)

	BeforeEach(func() {
		db, closeDB = boltdbtest.Open()
		DeferCleanup(closeDB)
	})

	It("creates nested buckets", func() {
		err := db.Update(func(tx *bbolt.Tx) (err error) {
			defer Recover(&err)

			b := CreateBucketIfNotExists(tx, []byte("a"), []byte("b"))
			Put(b, []byte("<key>"), []byte("<value>"))

			return nil
		})
		Expect(err).ShouldNot(HaveOccurred())

		err = db.View(func(tx *bbolt.Tx) error {
			b := Bucket(tx, []byte("a"), []byte("b"))
			Expect(b).NotTo(BeNil())
			Expect(b.Get([]byte("<key>"))).To(Equal([]byte("<value>")))

			return nil
		})
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("panics if the path is empty", func() {
		err := db.Update(func(tx *bbolt.Tx) error {
			Expect(func() {
				CreateBucketIfNotExists(tx)
			}).To(PanicWith("at least one path element must be provided"))

			return nil
		})
		Expect(err).ShouldNot(HaveOccurred())
	})
})

var _ = Describe("func Bucket()", func() {
	It("returns nil if any bucket in the path does not exist", func() {
		db, closeDB := boltdbtest.Open()
		defer closeDB()

		err := db.View(func(tx *bbolt.Tx) error {
			Expect(Bucket(tx, []byte("a"), []byte("b"))).To(BeNil())
			return nil
		})
		Expect(err).ShouldNot(HaveOccurred())
	})
})

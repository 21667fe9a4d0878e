package journaltest

import (
	"context"
	"time"

	"github.com/dogmatiq/conduit/journal"
	"github.com/jmalloc/gomegax"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Declare declares generic behavioral tests for a specific journal
// implementation.
//
// setup is called before each test to obtain the journal under test. tear is
// called after each test, it may be nil.
func Declare(
	setup func(context.Context) journal.Journal,
	tear func(),
) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		j      journal.Journal
		report journal.Report
	)

	ginkgo.BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		j = setup(ctx)

		report = journal.Report{
			ExchangeID:  "<id>",
			Operation:   "<operation>",
			Direction:   "outbound",
			Invoked:     []string{"<handler-1>", "<handler-2>"},
			Outcome:     journal.Faulted,
			Fault:       "<fault>",
			CloseErrors: []string{"<close error>"},
			CompletedAt: time.Now().Truncate(time.Millisecond),
		}
	})

	ginkgo.AfterEach(func() {
		if tear != nil {
			tear()
		}

		cancel()
	})

	ginkgo.Describe("func Record()", func() {
		ginkgo.It("stores the report", func() {
			err := j.Record(ctx, report)
			gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

			r, ok, err := j.Load(ctx, "<id>")
			gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(r).To(gomegax.EqualX(report))
		})

		ginkgo.It("replaces an existing report for the same exchange", func() {
			err := j.Record(ctx, report)
			gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

			report.Outcome = journal.Completed
			report.Fault = ""

			err = j.Record(ctx, report)
			gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

			r, _, err := j.Load(ctx, "<id>")
			gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
			gomega.Expect(r.Outcome).To(gomega.Equal(journal.Completed))
			gomega.Expect(r.Fault).To(gomega.BeEmpty())
		})

		ginkgo.It("returns an error if the context is canceled", func() {
			cancel()

			err := j.Record(ctx, report)
			gomega.Expect(err).To(gomega.Equal(context.Canceled))
		})
	})

	ginkgo.Describe("func Load()", func() {
		ginkgo.It("returns false if there is no report for the exchange", func() {
			_, ok, err := j.Load(ctx, "<unknown>")
			gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
		})

		ginkgo.It("returns an error if the context is canceled", func() {
			cancel()

			_, _, err := j.Load(ctx, "<id>")
			gomega.Expect(err).To(gomega.Equal(context.Canceled))
		})
	})
}

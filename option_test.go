package conduit

import (
	"net"
	"time"

	"github.com/dogmatiq/conduit/exchange"
	. "github.com/dogmatiq/conduit/fixtures"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/journal/memory"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger/backoff"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc"
)

var _ = Describe("func WithHandler()", func() {
	It("appends to the handlers", func() {
		p := &ProtocolHandlerStub{Name: "P"}
		l := &LogicalHandlerStub{Name: "L"}

		opts := resolveOptions(
			WithHandler(p),
			WithHandler(l),
		)

		Expect(opts.handlers()).To(Equal([]handler.Handler{p, l}))
	})

	It("panics if a handler can not be used in a chain", func() {
		Expect(func() {
			WithHandler(nil)
		}).To(PanicWith("handler must not be nil"))
	})
})

var _ = Describe("func WithHandlerFactory()", func() {
	It("adds handlers that are created for each exchange", func() {
		p := &ProtocolHandlerStub{Name: "P"}
		n := 0

		opts := resolveOptions(
			WithHandler(p),
			WithHandlerFactory(func() []handler.Handler {
				n++
				return []handler.Handler{&LogicalHandlerStub{Name: "L"}}
			}),
		)

		Expect(Names(opts.handlers())).To(Equal([]string{"P", "L"}))
		Expect(Names(opts.handlers())).To(Equal([]string{"P", "L"}))
		Expect(n).To(Equal(2))
	})

	It("panics if the factory is nil", func() {
		Expect(func() {
			WithHandlerFactory(nil)
		}).To(PanicWith("handler factory must not be nil"))
	})
})

var _ = Describe("func WithJournal()", func() {
	It("sets the journal", func() {
		j := &memory.Journal{}

		opts := resolveOptions(
			WithJournal(j),
		)

		Expect(opts.Journal).To(BeIdenticalTo(j))
	})

	It("does not journal by default", func() {
		opts := resolveOptions()

		Expect(opts.Journal).To(BeNil())
		Expect(opts.JournalFile).To(BeEmpty())
	})
})

var _ = Describe("func WithJournalFile()", func() {
	It("sets the journal file", func() {
		opts := resolveOptions(
			WithJournalFile("/tmp/journal.boltdb"),
		)

		Expect(opts.JournalFile).To(Equal("/tmp/journal.boltdb"))
	})
})

var _ = Describe("func WithRetryBackoff()", func() {
	It("sets the backoff strategy", func() {
		s := backoff.Constant(10 * time.Second)

		opts := resolveOptions(
			WithRetryBackoff(s),
		)

		Expect(opts.RetryBackoff(nil, 1)).To(Equal(10 * time.Second))
	})

	It("uses the default if the strategy is nil", func() {
		opts := resolveOptions(
			WithRetryBackoff(nil),
		)

		Expect(opts.RetryBackoff).ToNot(BeNil())
	})
})

var _ = Describe("func WithMaxAttempts()", func() {
	It("sets the maximum number of attempts", func() {
		opts := resolveOptions(
			WithMaxAttempts(10),
		)

		Expect(opts.MaxAttempts).To(Equal(10))
	})

	It("uses the default if the number is zero", func() {
		opts := resolveOptions(
			WithMaxAttempts(0),
		)

		Expect(opts.MaxAttempts).To(Equal(DefaultMaxAttempts))
	})

	It("panics if the number is negative", func() {
		Expect(func() {
			WithMaxAttempts(-1)
		}).To(PanicWith("maximum attempts must not be negative"))
	})
})

var _ = Describe("func WithOneWay()", func() {
	It("sets the function that identifies one-way operations", func() {
		opts := resolveOptions(
			WithOneWay(func(method string) bool {
				return method == "/<service>/<one-way>"
			}),
		)

		Expect(opts.OneWay("/<service>/<one-way>")).To(BeTrue())
		Expect(opts.OneWay("/<service>/<two-way>")).To(BeFalse())
	})

	It("treats every operation as two-way by default", func() {
		opts := resolveOptions()

		Expect(opts.OneWay).To(BeNil())
	})
})

var _ = Describe("func WithListenAddress()", func() {
	It("sets the listener address", func() {
		opts := resolveOptions(
			WithListenAddress("localhost:1234"),
		)

		Expect(opts.ListenAddress).To(Equal("localhost:1234"))
	})

	It("uses the default if the address is empty", func() {
		opts := resolveOptions(
			WithListenAddress(""),
		)

		Expect(opts.ListenAddress).To(Equal(DefaultListenAddress))
	})

	It("panics if the address is malformed", func() {
		Expect(func() {
			WithListenAddress("missing-port")
		}).To(Panic())
	})

	It("panics if the post is an unknown service name", func() {
		Expect(func() {
			WithListenAddress("host:xxx")
		}).To(Panic())
	})
})

var _ = Describe("func WithListener()", func() {
	It("sets the listener", func() {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ShouldNot(HaveOccurred())
		defer lis.Close()

		opts := resolveOptions(
			WithListener(lis),
		)

		Expect(opts.Listener).To(BeIdenticalTo(lis))
	})
})

var _ = Describe("func WithService()", func() {
	desc := &grpc.ServiceDesc{
		ServiceName: "test.Service",
		HandlerType: (*interface{})(nil),
	}

	It("adds the service", func() {
		opts := resolveOptions(
			WithService(desc, struct{}{}),
		)

		Expect(opts.Services).To(HaveLen(1))
		Expect(opts.Services[0].Desc).To(BeIdenticalTo(desc))
	})

	It("panics if the service is registered more than once", func() {
		Expect(func() {
			resolveOptions(
				WithService(desc, struct{}{}),
				WithService(desc, struct{}{}),
			)
		}).To(PanicWith("can not register test.Service more than once"))
	})

	It("panics if the description is nil", func() {
		Expect(func() {
			WithService(nil, struct{}{})
		}).To(PanicWith("service description must not be nil"))
	})
})

var _ = Describe("func WithLogger()", func() {
	It("sets the logger", func() {
		opts := resolveOptions(
			WithLogger(logging.DebugLogger),
		)

		Expect(opts.Logger).To(BeIdenticalTo(logging.DebugLogger))
	})

	It("uses the default if the logger is nil", func() {
		opts := resolveOptions(
			WithLogger(nil),
		)

		Expect(opts.Logger).To(BeIdenticalTo(DefaultLogger))
	})
})

var _ = Describe("func resolveOptions()", func() {
	It("does not share handlers between exchanges when a factory is used", func() {
		opts := resolveOptions(
			WithHandler(&ProtocolHandlerStub{}),
			WithHandlerFactory(func() []handler.Handler {
				return []handler.Handler{
					&LogicalHandlerStub{
						HandleMessageFunc: func(*exchange.LogicalContext) (bool, error) {
							return true, nil
						},
					},
				}
			}),
		)

		a := opts.handlers()
		b := opts.handlers()

		Expect(a[0]).To(BeIdenticalTo(b[0]))
		Expect(a[1]).NotTo(BeIdenticalTo(b[1]))
	})
})

var _ = Describe("func WithConcurrencyLimit()", func() {
	It("sets the concurrency limit", func() {
		opts := resolveOptions(
			WithConcurrencyLimit(10),
		)

		Expect(opts.ConcurrencyLimit).To(BeNumerically("==", 10))
	})

	It("uses the default if the limit is zero", func() {
		opts := resolveOptions(
			WithConcurrencyLimit(0),
		)

		Expect(opts.ConcurrencyLimit).To(Equal(DefaultConcurrencyLimit))
	})
})

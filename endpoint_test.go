package conduit

import (
	"context"
	"net"
	"path/filepath"
	"time"

	"github.com/dogmatiq/conduit/chain"
	"github.com/dogmatiq/conduit/exchange"
	. "github.com/dogmatiq/conduit/fixtures"
	"github.com/dogmatiq/conduit/handler"
	"github.com/dogmatiq/conduit/journal"
	"github.com/dogmatiq/conduit/journal/boltdb"
	"github.com/dogmatiq/conduit/journal/memory"
	"github.com/jmalloc/gomegax"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

// testService is a gRPC service with no methods. Its health is reported by
// the endpoint's health service.
var testService = &grpc.ServiceDesc{
	ServiceName: "conduit.test.Service",
	HandlerType: (*interface{})(nil),
}

var _ = Describe("type Endpoint", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		logger *LoggerStub
		rec    *Recorder
		lis    *bufconn.Listener
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		DeferCleanup(cancel)

		logger = &LoggerStub{}
		rec = &Recorder{}
		lis = bufconn.Listen(1024 * 1024)
	})

	// start runs ep in the background and returns a channel that receives the
	// result of Run().
	start := func(ep *Endpoint) <-chan error {
		result := make(chan error, 1)

		go func() {
			result <- ep.Run(ctx)
		}()

		return result
	}

	dial := func(options ...grpc.DialOption) *grpc.ClientConn {
		conn, err := grpc.Dial(
			"bufnet",
			append(
				options,
				grpc.WithContextDialer(
					func(ctx context.Context, _ string) (net.Conn, error) {
						return lis.DialContext(ctx)
					},
				),
				grpc.WithTransportCredentials(insecure.NewCredentials()),
			)...,
		)
		Expect(err).ShouldNot(HaveOccurred())

		return conn
	}

	check := func(conn *grpc.ClientConn) *healthpb.HealthCheckResponse {
		res, err := healthpb.NewHealthClient(conn).Check(
			ctx,
			&healthpb.HealthCheckRequest{Service: testService.ServiceName},
		)
		Expect(err).ShouldNot(HaveOccurred())

		return res
	}

	Describe("func NewInvoker()", func() {
		It("returns an invoker over the endpoint's handlers", func() {
			ep := New(
				WithHandler(rec.Protocol("P1")),
				WithHandlerFactory(func() []handler.Handler {
					return []handler.Handler{rec.Logical("L1")}
				}),
				WithLogger(logger),
			)

			inv := ep.NewInvoker(exchange.New(), chain.Inbound)
			Expect(inv.IsInbound()).To(BeTrue())

			Expect(inv.InvokeProtocol()).To(BeTrue())
			Expect(inv.InvokeLogical()).To(BeTrue())
			Expect(inv.Complete()).To(Succeed())

			Expect(rec.Calls).To(Equal([]string{
				"P1.message",
				"L1.message",
				"P1.close",
				"L1.close",
			}))
		})
	})

	Describe("func Run()", func() {
		It("serves the registered services through the handler chain", func() {
			jrnl := &memory.Journal{}
			ep := New(
				WithListener(lis),
				WithService(testService, struct{}{}),
				WithHandler(rec.Protocol("P1")),
				WithJournal(jrnl),
				WithLogger(logger),
			)
			result := start(ep)

			conn := dial()
			res := check(conn)
			conn.Close()

			Expect(res).To(gomegax.EqualX(
				&healthpb.HealthCheckResponse{
					Status: healthpb.HealthCheckResponse_SERVING,
				},
			))
			Expect(rec.Calls).To(Equal([]string{
				"P1.message",
				"P1.message",
				"P1.close",
			}))
			Expect(jrnl.Len()).To(Equal(1))

			cancel()
			Eventually(result).Should(Receive(Equal(context.Canceled)))
		})

		It("journals exchanges to the journal file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "journal.boltdb")

			var id string
			p := &ProtocolHandlerStub{
				HandleMessageFunc: func(ctx *exchange.Context) (bool, error) {
					id = ctx.ID()
					return true, nil
				},
			}

			ep := New(
				WithListener(lis),
				WithService(testService, struct{}{}),
				WithHandler(p),
				WithJournalFile(path),
				WithLogger(logger),
			)
			result := start(ep)

			conn := dial()
			check(conn)
			conn.Close()

			cancel()
			Eventually(result).Should(Receive(Equal(context.Canceled)))

			j, err := boltdb.Open(context.Background(), path, 0, nil)
			Expect(err).ShouldNot(HaveOccurred())
			defer j.Close()

			rep, ok, err := j.Load(context.Background(), id)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(rep.Outcome).To(Equal(journal.Completed))
			Expect(rep.Operation).To(Equal("/grpc.health.v1.Health/Check"))
		})

		It("logs the listen address", func() {
			ep := New(
				WithListener(lis),
				WithService(testService, struct{}{}),
				WithLogger(logger),
			)
			result := start(ep)

			Eventually(logger.Messages).Should(ContainElement(
				"listening for gRPC requests on bufconn",
			))

			cancel()
			Eventually(result).Should(Receive())
		})

		It("returns an error if no services are registered", func() {
			err := New().Run(ctx)
			Expect(err).To(MatchError("no services configured, see conduit.WithService()"))
		})
	})

	Describe("func ClientInterceptor()", func() {
		It("applies the endpoint's handlers to outgoing requests", func() {
			server := New(
				WithListener(lis),
				WithService(testService, struct{}{}),
				WithLogger(logger),
			)
			result := start(server)

			client := New(
				WithHandler(rec.Logical("L1"), rec.Protocol("P1")),
				WithLogger(logger),
			)

			conn := dial(grpc.WithUnaryInterceptor(client.ClientInterceptor()))
			check(conn)
			conn.Close()

			Expect(rec.Calls).To(Equal([]string{
				"L1.message",
				"P1.message",
				"P1.message",
				"L1.message",
				"P1.close",
				"L1.close",
			}))

			cancel()
			Eventually(result).Should(Receive(Equal(context.Canceled)))
		})

		It("does not invoke the handlers for the response of a one-way operation", func() {
			server := New(
				WithListener(lis),
				WithService(testService, struct{}{}),
				WithLogger(logger),
			)
			result := start(server)

			client := New(
				WithHandler(rec.Logical("L1"), rec.Protocol("P1")),
				WithOneWay(func(method string) bool {
					return method == "/grpc.health.v1.Health/Check"
				}),
				WithLogger(logger),
			)

			conn := dial(grpc.WithUnaryInterceptor(client.ClientInterceptor()))
			check(conn)
			conn.Close()

			Expect(rec.Calls).To(Equal([]string{
				"L1.message",
				"P1.message",
				"P1.close",
				"L1.close",
			}))

			cancel()
			Eventually(result).Should(Receive(Equal(context.Canceled)))
		})
	})

	Describe("func ServerInterceptor()", func() {
		It("applies the endpoint's handlers to incoming requests", func() {
			ep := New(
				WithHandler(rec.Protocol("P1")),
				WithLogger(logger),
			)

			s := grpc.NewServer(grpc.UnaryInterceptor(ep.ServerInterceptor()))
			healthpb.RegisterHealthServer(s, &healthpb.UnimplementedHealthServer{})
			go s.Serve(lis)
			defer s.Stop()

			conn := dial()
			defer conn.Close()

			_, err := healthpb.NewHealthClient(conn).Check(
				ctx,
				&healthpb.HealthCheckRequest{},
			)
			Expect(err).Should(HaveOccurred())

			Expect(rec.Calls).To(Equal([]string{
				"P1.message",
				"P1.fault",
				"P1.close",
			}))
		})
	})
})

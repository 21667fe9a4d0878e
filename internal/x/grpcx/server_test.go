package grpcx_test

import (
	"context"
	"time"

	. "github.com/dogmatiq/conduit/internal/x/grpcx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

var _ = Describe("func Serve()", func() {
	DescribeTable(
		"it returns the context error when the context is canceled",
		func(timeout time.Duration) {
			ctx, cancel := context.WithCancel(context.Background())
			lis := bufconn.Listen(1024)
			s := grpc.NewServer()

			result := make(chan error, 1)
			go func() {
				result <- Serve(ctx, lis, s, timeout)
			}()

			cancel()

			Eventually(result).Should(Receive(Equal(context.Canceled)))
		},
		Entry("graceful stop", DefaultStopTimeout),
		Entry("immediate stop", time.Duration(0)),
	)

	It("returns an error if the server can not serve", func() {
		lis := bufconn.Listen(1024)
		lis.Close()

		err := Serve(context.Background(), lis, grpc.NewServer(), 0)
		Expect(err).Should(HaveOccurred())
	})
})

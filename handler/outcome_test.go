package handler_test

import (
	"errors"

	. "github.com/dogmatiq/conduit/handler"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc/codes"
)

var _ = DescribeTable(
	"func Classify()",
	func(ok bool, err error, expect Outcome) {
		Expect(Classify(ok, err)).To(Equal(expect))
	},
	Entry("continue", true, nil, Continue),
	Entry("cooperative stop", false, nil, Stop),
	Entry("protocol fault", false, NewFault(codes.Internal, "<fault>"), Faulted),
	Entry("protocol fault with a true result", true, NewFault(codes.Internal, "<fault>"), Faulted),
	Entry("unexpected failure", false, errors.New("<error>"), Failed),
	Entry("unexpected failure with a true result", true, errors.New("<error>"), Failed),
)

var _ = Describe("type Outcome", func() {
	Describe("func String()", func() {
		It("returns a description of the outcome", func() {
			Expect(Continue.String()).To(Equal("continue"))
			Expect(Stop.String()).To(Equal("stop"))
			Expect(Faulted.String()).To(Equal("fault"))
			Expect(Failed.String()).To(Equal("failure"))
			Expect(Outcome(100).String()).To(Equal("outcome(100)"))
		})
	})
})

package handler_test

import (
	"github.com/dogmatiq/conduit/exchange"
	. "github.com/dogmatiq/conduit/fixtures"
	. "github.com/dogmatiq/conduit/handler"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type unnamedHandler struct{}

func (unnamedHandler) Close(*exchange.Context) error { return nil }

var _ = Describe("func NameOf()", func() {
	It("returns the name provided by the handler", func() {
		h := &ProtocolHandlerStub{Name: "<name>"}
		Expect(NameOf(h)).To(Equal("<name>"))
	})

	It("returns the type name if the handler does not provide a name", func() {
		Expect(NameOf(unnamedHandler{})).To(Equal("github.com/dogmatiq/conduit/handler_test.unnamedHandler"))
		Expect(NameOf(&unnamedHandler{})).To(Equal("github.com/dogmatiq/conduit/handler_test.unnamedHandler"))
	})
})

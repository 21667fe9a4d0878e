package mlog_test

import (
	"strings"

	. "github.com/dogmatiq/conduit/internal/mlog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var entries = []TableEntry{
	Entry(
		"renders a standard log message",
		"= 123  Λ ▲ ↻  <foo> ● <bar>",
		[]IconWithLabel{
			ExchangeIDIcon.WithLabel("123"),
		},
		[]Icon{
			LogicalChainIcon,
			OutboundIcon,
			ReverseIcon,
		},
		[]string{
			"<foo>",
			"<bar>",
		},
	),
	Entry(
		"renders a hyphen in place of empty labels",
		"= -  Π ▼    <foo>",
		[]IconWithLabel{
			ExchangeIDIcon.WithLabel(""),
		},
		[]Icon{
			ProtocolChainIcon,
			InboundIcon,
			"",
		},
		[]string{
			"<foo>",
		},
	),
	Entry(
		"skips empty text",
		"= 123  ⚙ ✖  <foo> ● <bar>",
		[]IconWithLabel{
			ExchangeIDIcon.WithLabel("123"),
		},
		[]Icon{
			SystemIcon,
			ErrorIcon,
		},
		[]string{
			"<foo>",
			"",
			"<bar>",
		},
	),
}

var _ = DescribeTable(
	"func String()",
	func(expected string, ids []IconWithLabel, icons []Icon, text []string) {
		Expect(
			String(ids, icons, text...),
		).To(Equal(expected))
	},
	entries,
)

var _ = DescribeTable(
	"func Write()",
	func(expected string, ids []IconWithLabel, icons []Icon, text []string) {
		w := &strings.Builder{}

		n, err := Write(w, ids, icons, text...)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(n).To(Equal(len(expected)))

		Expect(w.String()).To(Equal(expected))
	},
	entries,
)

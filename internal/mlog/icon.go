package mlog

import (
	"fmt"
	"io"

	"github.com/dogmatiq/iago/must"
)

const (
	// ExchangeIDIcon is the icon shown directly before an exchange ID. It is an
	// "equals sign", indicating that this exchange "has exactly" the displayed
	// ID.
	ExchangeIDIcon Icon = "="

	// ProtocolChainIcon is the icon shown directly before the name of the
	// protocol chain. It is the uppercase Pi, for "protocol".
	ProtocolChainIcon Icon = "Π"

	// LogicalChainIcon is the icon shown directly before the name of the
	// logical chain. It is the uppercase Lambda, for "logical".
	LogicalChainIcon Icon = "Λ"

	// InboundIcon is the icon shown to indicate that a chain is traversed in the
	// inbound direction. It is a downward pointing arrow, as inbound messages
	// could be considered as being "downloaded" from the network.
	InboundIcon Icon = "▼"

	// InboundErrorIcon is a variant of InboundIcon used when there is an error
	// condition. It is a hollow version of the regular inbound icon,
	// indicating that the requirement remains "unfulfilled".
	InboundErrorIcon Icon = "▽"

	// OutboundIcon is the icon shown to indicate that a chain is traversed in
	// the outbound direction. It is an upward pointing arrow, as outbound
	// messages could be considered as being "uploaded" to the network.
	OutboundIcon Icon = "▲"

	// OutboundErrorIcon is a variant of OutboundIcon used when there is an
	// error condition.
	OutboundErrorIcon Icon = "△"

	// ReverseIcon is the icon shown when a handler stops a chain and the
	// exchange changes direction. It is an open-circle with an arrow,
	// indicating that the message has "come around again".
	ReverseIcon Icon = "↻"

	// FaultIcon is the icon shown when a handler raises a protocol fault, or
	// when a chain is traversed along the fault path.
	FaultIcon Icon = "⚠"

	// ErrorIcon is the icon shown when logging information about an
	// unexpected failure. It is a heavy cross, indicating a failure.
	ErrorIcon Icon = "✖"

	// SystemIcon is an icon shown when a log message relates to the internals
	// of the invoker rather than to a specific handler.
	SystemIcon Icon = "⚙"

	// SeparatorIcon is an icon used to separate strings of unrelated text
	// inside a log message.
	SeparatorIcon Icon = "●"
)

// Icon is a unicode symbol used as an icon in log messages.
type Icon string

func (i Icon) String() string {
	return string(i)
}

// WriteTo writes a string representation of the icon to w.
// If i is the zero-value, a single space is rendered.
func (i Icon) WriteTo(w io.Writer) (int64, error) {
	s := i.String()
	if i == "" {
		s = " "
	}

	n, err := io.WriteString(w, s)
	return int64(n), err
}

// WithLabel returns an IconWithLabel containing this icon and the given label.
func (i Icon) WithLabel(f string, v ...interface{}) IconWithLabel {
	return IconWithLabel{
		i,
		formatLabel(fmt.Sprintf(f, v...)),
	}
}

// WithID returns an IconWithLabel containing this icon and an ID as its label.
//
// The id is formatted using FormatID().
func (i Icon) WithID(id string) IconWithLabel {
	return i.WithLabel("%s", FormatID(id))
}

// IconWithLabel is a container for an icon and its associated text label.
type IconWithLabel struct {
	Icon  Icon
	Label string
}

func (i IconWithLabel) String() string {
	return i.Icon.String() + " " + i.Label
}

// WriteTo writes a string representation of the icon and its label to w.
func (i IconWithLabel) WriteTo(w io.Writer) (_ int64, err error) {
	defer must.Recover(&err)

	n := must.WriteTo(w, i.Icon)
	n += must.Write(w, space1)
	n += must.WriteString(w, i.Label)

	return int64(n), err
}

func formatLabel(label string) string {
	if label == "" {
		return "-"
	}

	return label
}

// ChainIcon returns the icon to use for the chain with the given name.
func ChainIcon(chain string) Icon {
	switch chain {
	case "protocol":
		return ProtocolChainIcon
	case "logical":
		return LogicalChainIcon
	default:
		return SystemIcon
	}
}

// DirectionIcon returns the icon to use for a traversal in the given
// direction.
func DirectionIcon(outbound, failed bool) Icon {
	switch {
	case outbound && failed:
		return OutboundErrorIcon
	case outbound:
		return OutboundIcon
	case failed:
		return InboundErrorIcon
	default:
		return InboundIcon
	}
}

package handler

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// Fault is a protocol fault deliberately signaled by a handler.
//
// A fault is recoverable. It is captured in the exchange context and offered
// to the fault path of subsequent chain traversals, rather than terminating
// the exchange.
type Fault struct {
	// Code classifies the fault. The gRPC binding uses it as the status code of
	// the response.
	Code codes.Code

	// Reason is a human-readable description of the fault.
	Reason string

	// Cause is the underlying error, if any.
	Cause error
}

// NewFault returns a new fault with a formatted reason.
func NewFault(c codes.Code, f string, v ...interface{}) *Fault {
	return &Fault{
		Code:   c,
		Reason: fmt.Sprintf(f, v...),
	}
}

// WrapFault returns a new fault caused by err.
func WrapFault(c codes.Code, err error) *Fault {
	return &Fault{
		Code:   c,
		Reason: err.Error(),
		Cause:  err,
	}
}

func (f *Fault) Error() string {
	return f.Reason
}

// Unwrap returns the cause of the fault.
func (f *Fault) Unwrap() error {
	return f.Cause
}

// IsFault returns true if err is, or wraps, a *Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// AsFault returns the *Fault in err's chain, if any.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	ok := errors.As(err, &f)
	return f, ok
}

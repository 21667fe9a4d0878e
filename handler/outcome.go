package handler

import "fmt"

// Outcome is the result of a single call to HandleMessage() or HandleFault().
type Outcome int

const (
	// Continue indicates that processing continues with the next handler.
	Continue Outcome = iota

	// Stop indicates that the handler stopped the chain cooperatively.
	Stop

	// Faulted indicates that the handler raised a protocol fault.
	Faulted

	// Failed indicates that the handler failed unexpectedly.
	Failed
)

// Classify returns the outcome of a handler call that returned ok and err.
//
// An error takes precedence over the boolean result.
func Classify(ok bool, err error) Outcome {
	switch {
	case err == nil && ok:
		return Continue
	case err == nil:
		return Stop
	case IsFault(err):
		return Faulted
	default:
		return Failed
	}
}

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	case Faulted:
		return "fault"
	case Failed:
		return "failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

package mlog

import (
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
)

// LogTraversal logs a debug message indicating that a chain is about to be
// traversed.
func LogTraversal(
	log logging.Logger,
	id, chain string,
	outbound bool,
	n int,
	fault bool,
) {
	if !logging.IsDebug(log) {
		return
	}

	path := "message path"
	if fault {
		path = "fault path"
	}

	logging.DebugString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				ChainIcon(chain),
				DirectionIcon(outbound, false),
				faultIcon(fault),
			},
			fmt.Sprintf("invoking %d %s handler(s)", n, chain),
			path,
		),
	)
}

// LogStop logs a message indicating that a handler stopped a chain and the
// direction of the exchange has been reversed.
//
// outbound is the direction that was in effect when the handler was invoked.
func LogStop(
	log logging.Logger,
	id, chain string,
	outbound bool,
	handler string,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				ChainIcon(chain),
				DirectionIcon(outbound, false),
				ReverseIcon,
			},
			handler,
			"handler stopped processing",
			"reversing direction",
		),
	)
}

// LogFault logs a message indicating that a handler raised a protocol fault.
func LogFault(
	log logging.Logger,
	id, chain string,
	outbound bool,
	handler string,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				ChainIcon(chain),
				DirectionIcon(outbound, true),
				FaultIcon,
			},
			handler,
			cause.Error(),
		),
	)
}

// LogFailure logs a message indicating that a handler failed unexpectedly and
// the invoker has been closed.
func LogFailure(
	log logging.Logger,
	id, chain string,
	outbound bool,
	handler string,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				ChainIcon(chain),
				DirectionIcon(outbound, true),
				ErrorIcon,
			},
			handler,
			cause.Error(),
			"no further handlers will be invoked",
		),
	)
}

// LogCloseFailure logs a message indicating that a handler failed to close.
func LogCloseFailure(
	log logging.Logger,
	id, handler string,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				SystemIcon,
				ErrorIcon,
			},
			handler,
			cause.Error(),
			"close failed",
		),
	)
}

// LogComplete logs a debug message indicating that an exchange is complete.
func LogComplete(
	log logging.Logger,
	id string,
	closed, failed int,
) {
	if !logging.IsDebug(log) {
		return
	}

	logging.DebugString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				SystemIcon,
				errorIcon(failed),
			},
			"exchange complete",
			fmt.Sprintf("closed %d handler(s)", closed),
			failures(failed),
		),
	)
}

// LogJournalFailure logs a message indicating that a completed exchange could
// not be recorded in the journal.
func LogJournalFailure(
	log logging.Logger,
	id string,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				SystemIcon,
				ErrorIcon,
			},
			"unable to record exchange",
			cause.Error(),
		),
	)
}

// LogRetry logs a message indicating that an attempt to deliver a message
// failed and will be retried after a delay.
func LogRetry(
	log logging.Logger,
	id string,
	attempt int,
	delay time.Duration,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				ExchangeIDIcon.WithID(id),
			},
			[]Icon{
				SystemIcon,
				ErrorIcon,
			},
			cause.Error(),
			fmt.Sprintf("attempt %d failed", attempt),
			fmt.Sprintf("retrying in %s", delay),
		),
	)
}

func faultIcon(fault bool) Icon {
	if fault {
		return FaultIcon
	}

	return ""
}

func errorIcon(n int) Icon {
	if n == 0 {
		return ""
	}

	return ErrorIcon
}

func failures(n int) string {
	if n == 0 {
		return ""
	}

	return fmt.Sprintf("%d close failure(s)", n)
}

package conduit

import (
	"fmt"
	"strconv"

	"github.com/dogmatiq/dodeca/config"
	"github.com/dogmatiq/dodeca/logging"
)

const (
	// ListenAddressEnvVar is the environment variable that sets the TCP
	// address for the endpoint's gRPC listener.
	ListenAddressEnvVar = "CONDUIT_LISTEN_ADDRESS"

	// JournalPathEnvVar is the environment variable that sets the path of the
	// BoltDB database used to journal exchanges.
	JournalPathEnvVar = "CONDUIT_JOURNAL_PATH"

	// DebugEnvVar is the environment variable that enables debug logging.
	DebugEnvVar = "CONDUIT_DEBUG"
)

// FromEnvironment returns options that configure an endpoint from environment
// variables.
//
// Options for variables that are not set are omitted, so the returned options
// may be combined with other options that provide fallback values.
func FromEnvironment() []Option {
	return fromConfig(config.Environment())
}

// fromConfig returns options that configure an endpoint from the values in b.
func fromConfig(b config.Bucket) []Option {
	var options []Option

	if addr := config.AsStringDefault(b, ListenAddressEnvVar, ""); addr != "" {
		options = append(options, WithListenAddress(addr))
	}

	if path := config.AsStringDefault(b, JournalPathEnvVar, ""); path != "" {
		options = append(options, WithJournalFile(path))
	}

	if v := config.AsStringDefault(b, DebugEnvVar, ""); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Sprintf("%s must be a boolean: %s", DebugEnvVar, err))
		}

		var logger logging.Logger = logging.DefaultLogger
		if debug {
			logger = logging.DebugLogger
		}

		options = append(options, WithLogger(logger))
	}

	return options
}

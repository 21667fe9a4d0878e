package boltdb

import (
	"fmt"
	"time"

	"github.com/dogmatiq/conduit/internal/x/bboltx"
	"github.com/dogmatiq/conduit/journal"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// marshalReport marshals r to its protocol buffers representation.
func marshalReport(r journal.Report) []byte {
	s, err := structpb.NewStruct(
		map[string]interface{}{
			"exchange_id":  r.ExchangeID,
			"operation":    r.Operation,
			"direction":    r.Direction,
			"invoked":      marshalStrings(r.Invoked),
			"outcome":      string(r.Outcome),
			"fault":        r.Fault,
			"failure":      r.Failure,
			"close_errors": marshalStrings(r.CloseErrors),
			"completed_at": r.CompletedAt.Format(time.RFC3339Nano),
		},
	)
	bboltx.Must(err)

	data, err := proto.Marshal(s)
	bboltx.Must(err)

	return data
}

// unmarshalReport unmarshals a report from its protocol buffers
// representation.
func unmarshalReport(data []byte) journal.Report {
	var s structpb.Struct
	bboltx.Must(proto.Unmarshal(data, &s))

	f := s.GetFields()

	completedAt, err := time.Parse(
		time.RFC3339Nano,
		f["completed_at"].GetStringValue(),
	)
	if err != nil {
		panic(bboltx.PanicSentinel{
			Cause: fmt.Errorf("data is corrupt, invalid completion time: %w", err),
		})
	}

	return journal.Report{
		ExchangeID:  f["exchange_id"].GetStringValue(),
		Operation:   f["operation"].GetStringValue(),
		Direction:   f["direction"].GetStringValue(),
		Invoked:     unmarshalStrings(f["invoked"]),
		Outcome:     journal.Outcome(f["outcome"].GetStringValue()),
		Fault:       f["fault"].GetStringValue(),
		Failure:     f["failure"].GetStringValue(),
		CloseErrors: unmarshalStrings(f["close_errors"]),
		CompletedAt: completedAt,
	}
}

func marshalStrings(values []string) []interface{} {
	list := make([]interface{}, len(values))
	for i, v := range values {
		list[i] = v
	}
	return list
}

// unmarshalStrings returns nil if v holds no values.
func unmarshalStrings(v *structpb.Value) []string {
	var values []string
	for _, x := range v.GetListValue().GetValues() {
		values = append(values, x.GetStringValue())
	}
	return values
}

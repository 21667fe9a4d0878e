package grpcx

import (
	"errors"

	"github.com/dogmatiq/conduit/handler"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/runtime/protoiface"
	"google.golang.org/protobuf/runtime/protoimpl"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Errorf returns a new gRPC status error, with optional detail messages.
func Errorf(
	code codes.Code,
	details []proto.Message,
	f string,
	v ...interface{},
) error {
	s := status.Newf(code, f, v...)

	detailsV1 := make([]protoiface.MessageV1, len(details))

	for i, m := range details {
		detailsV1[i] = protoimpl.X.ProtoMessageV1Of(m)
	}

	s, err := s.WithDetails(detailsV1...)
	if err != nil {
		panic(err)
	}

	return s.Err()
}

// FaultError returns a gRPC status error that conveys a protocol fault raised
// during the exchange with the given ID.
//
// The exchange ID is attached as a detail message.
func FaultError(id string, err error) error {
	f := AsFault(err)

	code := f.Code
	if code == codes.OK {
		code = codes.Unknown
	}

	return Errorf(
		code,
		[]proto.Message{wrapperspb.String(id)},
		"%s",
		f.Reason,
	)
}

// AsFault converts err into a protocol fault.
//
// A *handler.Fault in err's chain is returned as-is. A gRPC status error is
// converted to a fault with the same code. Any other error is converted to a
// fault with the codes.Unknown code.
func AsFault(err error) *handler.Fault {
	if f, ok := handler.AsFault(err); ok {
		return f
	}

	if s, ok := status.FromError(err); ok {
		return &handler.Fault{
			Code:   s.Code(),
			Reason: s.Message(),
			Cause:  err,
		}
	}

	return handler.WrapFault(codes.Unknown, err)
}

// ExchangeID returns the exchange ID attached to a status error produced by
// FaultError().
func ExchangeID(err error) (string, bool) {
	s, ok := status.FromError(err)
	if !ok {
		return "", false
	}

	for _, d := range s.Details() {
		if id, ok := d.(*wrapperspb.StringValue); ok {
			return id.GetValue(), true
		}
	}

	return "", false
}

// IsUnavailable returns true if err is a gRPC status error with the
// codes.Unavailable code.
func IsUnavailable(err error) bool {
	var s interface{ GRPCStatus() *status.Status }
	if errors.As(err, &s) {
		return s.GRPCStatus().Code() == codes.Unavailable
	}

	return false
}

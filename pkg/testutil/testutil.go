package testutil

import (
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// RequireEqualStatus asserts that two errors, assumed to be gRPC
// statuses, have the same code and message. Plain errors are compared
// as if they had code UNKNOWN.
func RequireEqualStatus(t *testing.T, want, got error) {
	t.Helper()
	wantProto := status.Convert(want).Proto()
	gotProto := status.Convert(got).Proto()
	if !proto.Equal(wantProto, gotProto) {
		t.Fatalf("Not equal:\nWant:\n\n%s\n\nGot:\n\n%s", mustMarshalToString(t, wantProto), mustMarshalToString(t, gotProto))
	}
}

type eqStatusMatcher struct {
	status        error
	statusMessage proto.Message
}

// EqStatus is a gomock matcher for gRPC status equality. It can be
// used to match errors passed to mocked ErrorLoggers.
func EqStatus(s error) gomock.Matcher {
	return &eqStatusMatcher{
		status:        s,
		statusMessage: status.Convert(s).Proto(),
	}
}

func (s *eqStatusMatcher) Matches(got interface{}) bool {
	if gotError, ok := got.(error); ok {
		return proto.Equal(s.statusMessage, status.Convert(gotError).Proto())
	}
	return false
}

func (s *eqStatusMatcher) String() string {
	return fmt.Sprintf("is status equal to %v", s.status)
}

func mustMarshalToString(t *testing.T, m proto.Message) string {
	s, err := protojson.MarshalOptions{
		Multiline: true,
	}.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return string(s)
}

package rpc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/jbweber/corral/api/v1alpha1"
)

// InstanceErrorsTypeURL identifies the CBOR-encoded InstanceErrors detail.
const InstanceErrorsTypeURL = "type.corral.dev/corral.v1alpha1.InstanceErrors"

// Outcome is the classification of a finished daemon call.
type Outcome int

const (
	// OutcomeOK means the call succeeded.
	OutcomeOK Outcome = iota
	// OutcomeNotFound means a single target does not exist.
	OutcomeNotFound
	// OutcomeAborted means a multi-target call failed for some instances.
	OutcomeAborted
	// OutcomeFailure is any other failure.
	OutcomeFailure
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeAborted:
		return "aborted"
	default:
		return "failure"
	}
}

// Classify reduces a call error to an Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	switch status.Code(err) {
	case codes.OK:
		return OutcomeOK
	case codes.NotFound:
		return OutcomeNotFound
	case codes.Aborted:
		return OutcomeAborted
	default:
		return OutcomeFailure
	}
}

// Aborted builds an Aborted status error carrying a per-instance error map.
// A nil or empty map produces a status with no detail.
func Aborted(msg string, errs map[string]v1alpha1.InstanceErrorKind) error {
	st := &spb.Status{Code: int32(codes.Aborted), Message: msg}
	if len(errs) > 0 {
		payload, err := encMode.Marshal(v1alpha1.InstanceErrors{Errors: errs})
		if err != nil {
			return fmt.Errorf("failed to encode instance errors: %w", err)
		}
		st.Details = []*anypb.Any{{TypeUrl: InstanceErrorsTypeURL, Value: payload}}
	}
	return status.FromProto(st).Err()
}

// InstanceErrors decodes the per-instance error map attached to err.
// It returns a nil map when err carries no such detail.
func InstanceErrors(err error) (map[string]v1alpha1.InstanceErrorKind, error) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, nil
	}
	for _, d := range st.Proto().GetDetails() {
		if d.GetTypeUrl() != InstanceErrorsTypeURL {
			continue
		}
		var decoded v1alpha1.InstanceErrors
		if err := decMode.Unmarshal(d.GetValue(), &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode instance errors: %w", err)
		}
		return decoded.Errors, nil
	}
	return nil, nil
}

// FormatInstanceErrors renders one line per failed instance. Instances named
// in order come first, in that order; any others follow sorted by name.
func FormatInstanceErrors(errs map[string]v1alpha1.InstanceErrorKind, order []string) string {
	seen := make(map[string]bool, len(errs))
	var lines []string
	for _, name := range order {
		kind, ok := errs[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		lines = append(lines, fmt.Sprintf("instance %q %s", name, kind))
	}

	var rest []string
	for name := range errs {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		lines = append(lines, fmt.Sprintf("instance %q %s", name, errs[name]))
	}

	return strings.Join(lines, "\n")
}

// FailureMessage builds the standard report for a failed daemon call:
// "<command> failed: <message>" followed by per-instance details and then
// one line per other status detail.
func FailureMessage(command string, err error, targets []string) string {
	st := statusOf(err)
	msg := fmt.Sprintf("%s failed: %s", command, st.Message())

	errs, decodeErr := InstanceErrors(err)
	if decodeErr != nil {
		return msg + "\n" + decodeErr.Error()
	}
	if len(errs) > 0 {
		msg += "\n" + FormatInstanceErrors(errs, targets)
	}
	for _, line := range detailLines(st) {
		msg += "\n" + line
	}
	return msg
}

// detailLines renders the status details other than the instance error map.
// Unknown detail types are shown as their raw value.
func detailLines(st *status.Status) []string {
	var lines []string
	for _, d := range st.Proto().GetDetails() {
		if d.GetTypeUrl() == InstanceErrorsTypeURL {
			continue
		}
		m, err := d.UnmarshalNew()
		if err != nil {
			if raw := strings.TrimSpace(string(d.GetValue())); raw != "" {
				lines = append(lines, raw)
			}
			continue
		}
		if s, ok := m.(*wrapperspb.StringValue); ok {
			lines = append(lines, s.GetValue())
			continue
		}
		lines = append(lines, strings.TrimSpace(prototext.Format(m)))
	}
	return lines
}

// statusOf returns the status carried by err or by any error it wraps,
// keeping the daemon's original message.
func statusOf(err error) *status.Status {
	var gs interface{ GRPCStatus() *status.Status }
	if errors.As(err, &gs) {
		if st := gs.GRPCStatus(); st != nil {
			return st
		}
	}
	return status.New(codes.Unknown, err.Error())
}

package recovery

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the three failure kinds. A *Failure matches exactly one
// of them with errors.Is.
var (
	// ErrNoPayloadFound means no extraction strategy found a candidate span.
	ErrNoPayloadFound = errors.New("recovery: no structured payload found")

	// ErrDecode means a span was found but is not valid JSON, even after the
	// single repair pass.
	ErrDecode = errors.New("recovery: payload is not valid JSON")

	// ErrMissingFields means the payload decoded but lacks mandatory keys.
	ErrMissingFields = errors.New("recovery: mandatory fields missing")
)

// Stage identifies the pipeline component that produced a failure.
type Stage string

const (
	StageExtractor Stage = "extractor"
	StageDecoder   Stage = "decoder"
	StageValidator Stage = "validator"
)

// Reason is the machine-readable failure kind.
type Reason string

const (
	ReasonNoPayloadFound Reason = "NoPayloadFound"
	ReasonDecodeError    Reason = "DecodeError"
	ReasonMissingFields  Reason = "MissingFields"
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonNoPayloadFound:
		return ErrNoPayloadFound
	case ReasonDecodeError:
		return ErrDecode
	case ReasonMissingFields:
		return ErrMissingFields
	default:
		return nil
	}
}

// Failure is the terminal error of a recovery attempt.
type Failure struct {
	Stage  Stage  `json:"stage"`
	Reason Reason `json:"reason"`
	// Missing lists the absent mandatory keys when Reason is MissingFields.
	Missing []string `json:"missing,omitempty"`
	// Cause is the stage's own error: *DecodeError or *ValidationError.
	// It is nil for NoPayloadFound.
	Cause error `json:"-"`
	// Excerpt is a bounded slice of the text the failing stage operated on.
	Excerpt string `json:"excerpt"`
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Stage))
	b.WriteString(": ")
	b.WriteString(string(f.Reason))
	switch {
	case len(f.Missing) > 0:
		fmt.Fprintf(&b, " %v", f.Missing)
	case f.Cause != nil:
		b.WriteString(": ")
		b.WriteString(f.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the reason sentinel and the stage cause.
func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := f.Reason.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if f.Cause != nil {
		errs = append(errs, f.Cause)
	}
	return errs
}

// DecodeError reports why text could not be decoded.
type DecodeError struct {
	// Offset is the byte offset into Text where the parser stopped.
	Offset int64
	Msg    string
	// Text is the input that failed, after repair when a repair was tried.
	Text string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s (offset %d)", e.Msg, e.Offset)
}

// ValidationError lists the mandatory keys a decoded value lacks.
type ValidationError struct {
	Missing []string
	// Kind is the JSON kind of the top-level value when it was not an object;
	// in that case every mandatory key is reported missing.
	Kind string
}

func (e *ValidationError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("top-level value is %s, not object; missing %s", e.Kind, strings.Join(e.Missing, ", "))
	}
	return "missing mandatory fields: " + strings.Join(e.Missing, ", ")
}

package recovery

import (
	"github.com/leofalp/toonboard/internal/utils"
)

const (
	// rawExcerptLen bounds the raw-response excerpt of a NoPayloadFound failure.
	rawExcerptLen = 500
	// ExcerptLen bounds every other failure excerpt.
	ExcerptLen = 1000
)

// Outcome is the result of one Recover call. Exactly one of Record and
// Failure is non-nil.
type Outcome struct {
	Record  *Object  `json:"record,omitempty"`
	Failure *Failure `json:"failure,omitempty"`

	// Span is the extracted region of the raw response; zero for NoPayloadFound.
	Span Span `json:"span"`
	// Repaired is true when the repair pass ran, whether or not it helped.
	Repaired bool `json:"repaired"`
	// InitialError is the decode error that triggered the repair pass.
	InitialError *DecodeError `json:"-"`
}

// OK reports whether a validated record was recovered.
func (o Outcome) OK() bool {
	return o.Failure == nil && o.Record != nil
}

// Err returns the failure as an error, or nil on success.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}

// Engine runs the recovery pipeline. The zero value is not usable; build one
// with New. An Engine is immutable and safe for concurrent use.
type Engine struct {
	required []string
	repair   RepairFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithRequiredKeys replaces the mandatory top-level keys.
func WithRequiredKeys(keys ...string) Option {
	return func(e *Engine) {
		e.required = append([]string(nil), keys...)
	}
}

// WithRepair replaces the repair pass applied after a failed first decode.
func WithRepair(fn RepairFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.repair = fn
		}
	}
}

// New builds an Engine. Without options it requires the storyboard keys and
// repairs trailing commas only.
func New(opts ...Option) *Engine {
	e := &Engine{
		required: DefaultRequiredKeys(),
		repair:   trailingCommaRepair,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Recover runs raw through the default Engine.
func Recover(raw string) Outcome {
	return defaultEngine.Recover(raw)
}

// Recover extracts, normalizes, decodes (with at most one repair) and
// validates the payload in raw.
func (e *Engine) Recover(raw string) Outcome {
	span, ok := Extract(raw)
	if !ok {
		return Outcome{Failure: &Failure{
			Stage:   StageExtractor,
			Reason:  ReasonNoPayloadFound,
			Excerpt: utils.Excerpt(raw, rawExcerptLen),
		}}
	}

	out := Outcome{Span: span}
	text := Normalize(span.Text(raw))

	value, initialErr, err := e.decode(text)
	out.Repaired = initialErr != nil
	out.InitialError = initialErr
	if err != nil {
		out.Failure = &Failure{
			Stage:   StageDecoder,
			Reason:  ReasonDecodeError,
			Cause:   err,
			Excerpt: utils.Excerpt(err.Text, ExcerptLen),
		}
		return out
	}

	record, verr := Validate(value, e.required...)
	if verr != nil {
		ve := verr.(*ValidationError)
		out.Failure = &Failure{
			Stage:   StageValidator,
			Reason:  ReasonMissingFields,
			Missing: ve.Missing,
			Cause:   ve,
			Excerpt: utils.Excerpt(render(value), ExcerptLen),
		}
		return out
	}

	out.Record = record
	return out
}

// decode tries text as-is, then once more after the repair pass. It returns
// the decoded value, the first-attempt error if a repair was needed, and the
// final error if the repaired text still failed.
func (e *Engine) decode(text string) (any, *DecodeError, *DecodeError) {
	value, err := Decode(text)
	if err == nil {
		return value, nil, nil
	}
	initial := err.(*DecodeError)

	repaired, rerr := e.repair(text)
	if rerr != nil {
		return nil, initial, &DecodeError{
			Offset: initial.Offset,
			Msg:    "repair failed: " + rerr.Error(),
			Text:   text,
		}
	}

	value, err = Decode(repaired)
	if err != nil {
		return nil, initial, err.(*DecodeError)
	}
	return value, initial, nil
}

// Package recovery turns the loosely structured text returned by a language
// model into a validated storyboard record, or into a precise diagnosis of why
// that was not possible.
//
// Models routinely wrap their JSON in prose, markdown fences, type hints, or
// emit near-valid syntax such as trailing commas. Recovery runs a strictly
// forward pipeline over a single response:
//
//	raw text → [Extract] → span → [Normalize] → text → [Decode] (+ one repair) → value → [Validate] → record
//
// Every stage fails closed. A call either yields an [Outcome] with a record
// whose mandatory keys are present, or a [*Failure] naming the stage that
// gave up, one of three reasons ([ErrNoPayloadFound], [ErrDecode],
// [ErrMissingFields]) and a bounded excerpt of the text that stage saw.
//
// The engine is pure: no I/O, no logging, no shared mutable state. An
// [Engine] may be used from many goroutines at once. Retrying the upstream
// model call is left to the caller.
package recovery

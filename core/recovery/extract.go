package recovery

import (
	"regexp"
	"strings"
	"unicode"
)

// Strategy names the extraction heuristic that produced a span.
type Strategy string

const (
	StrategyTaggedFence   Strategy = "tagged_fence"
	StrategyUntaggedFence Strategy = "untagged_fence"
	StrategyBraceSpan     Strategy = "brace_span"
	StrategyWholeText     Strategy = "whole_text"
)

// Span is a contiguous region raw[Start:End] believed to hold the payload.
type Span struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Strategy Strategy `json:"strategy"`
}

// Text returns the spanned substring of raw.
func (s Span) Text(raw string) string {
	return raw[s.Start:s.End]
}

// ExtractFunc is a single extraction strategy.
type ExtractFunc func(raw string) (Span, bool)

var (
	taggedFenceRegex = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	fenceRegex       = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// Strategies is the fixed priority order used by Extract.
var Strategies = []ExtractFunc{
	ExtractTaggedFence,
	ExtractUntaggedFence,
	ExtractBraceSpan,
	ExtractWholeText,
}

// Extract returns the first span any strategy in Strategies finds.
func Extract(raw string) (Span, bool) {
	for _, strategy := range Strategies {
		if span, ok := strategy(raw); ok {
			return span, true
		}
	}
	return Span{}, false
}

// ExtractTaggedFence captures the body of the first fence opened with a
// "json" tag (case-insensitive), trimmed.
func ExtractTaggedFence(raw string) (Span, bool) {
	m := taggedFenceRegex.FindStringSubmatchIndex(raw)
	if m == nil {
		return Span{}, false
	}
	return trimmedSpan(raw, m[2], m[3], StrategyTaggedFence)
}

// ExtractUntaggedFence captures the body of the first generic fence, but only
// when the trimmed body is bounded by braces. A prose block is rejected
// rather than skipped: later fences are not considered.
func ExtractUntaggedFence(raw string) (Span, bool) {
	m := fenceRegex.FindStringSubmatchIndex(raw)
	if m == nil {
		return Span{}, false
	}
	span, ok := trimmedSpan(raw, m[2], m[3], StrategyUntaggedFence)
	if !ok {
		return Span{}, false
	}
	body := span.Text(raw)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return Span{}, false
	}
	return span, true
}

// ExtractBraceSpan captures everything from the first '{' to the last '}'.
func ExtractBraceSpan(raw string) (Span, bool) {
	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first < 0 || last < 0 || first >= last {
		return Span{}, false
	}
	return Span{Start: first, End: last + 1, Strategy: StrategyBraceSpan}, true
}

// ExtractWholeText accepts the whole trimmed response when it is bounded by
// braces.
func ExtractWholeText(raw string) (Span, bool) {
	span, ok := trimmedSpan(raw, 0, len(raw), StrategyWholeText)
	if !ok {
		return Span{}, false
	}
	body := span.Text(raw)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return Span{}, false
	}
	return span, true
}

// trimmedSpan narrows raw[start:end] to exclude surrounding whitespace. An
// empty result is not a match.
func trimmedSpan(raw string, start, end int, strategy Strategy) (Span, bool) {
	if start < 0 || end < start {
		return Span{}, false
	}
	body := raw[start:end]
	trimmedLeft := strings.TrimLeftFunc(body, unicode.IsSpace)
	start += len(body) - len(trimmedLeft)
	trimmed := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	end = start + len(trimmed)
	if start == end {
		return Span{}, false
	}
	return Span{Start: start, End: end, Strategy: strategy}, true
}

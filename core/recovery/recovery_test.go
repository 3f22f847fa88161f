package recovery

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

const validPayload = `{"wholeTitle":"T","storyTopic":"S","hashtags":["a"],"pages":[{"page":1,"character":["A"],"background":"B","dialogue":{"A":"hi"},"expressionPose":"smile"}]}`

func pagesLen(t *testing.T, rec *Object) int {
	t.Helper()
	v, ok := rec.Get(KeyPages)
	if !ok {
		t.Fatal("record has no pages")
	}
	pages, ok := v.([]any)
	if !ok {
		t.Fatalf("pages is %T, not []any", v)
	}
	return len(pages)
}

func TestRecover_TaggedFenceWithTrailingComma(t *testing.T) {
	raw := "Here you go:\n```json\n" +
		`{"wholeTitle":"T","storyTopic":"S","hashtags":["a"],"pages":[{"page":1,"character":["A"],"background":"B","dialogue":{"A":"hi"},"expressionPose":"smile"}],}` +
		"\n```"

	out := Recover(raw)
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	if out.Span.Strategy != StrategyTaggedFence {
		t.Errorf("strategy = %s, want %s", out.Span.Strategy, StrategyTaggedFence)
	}
	if !out.Repaired || out.InitialError == nil {
		t.Error("expected the repair pass to have run")
	}
	if n := pagesLen(t, out.Record); n != 1 {
		t.Errorf("pages length = %d, want 1", n)
	}
	if got := out.Record.Keys(); !cmp.Equal(got, DefaultRequiredKeys()) {
		t.Errorf("key order = %v", got)
	}
}

func TestRecover_TaggedFenceRoundTrip(t *testing.T) {
	raw := "Sure!\n```JSON\n" + validPayload + "\n```\nEnjoy."
	out := Recover(raw)
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	if out.Repaired {
		t.Error("valid payload should not be repaired")
	}
	if got := out.Record.String(); got != validPayload {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", got, validPayload)
	}
}

func TestRecover_BraceSpanInProse(t *testing.T) {
	raw := "I wrote the storyboard below.\n" + validPayload + "\nLet me know if you want changes!"
	out := Recover(raw)
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	if out.Span.Strategy != StrategyBraceSpan {
		t.Errorf("strategy = %s, want %s", out.Span.Strategy, StrategyBraceSpan)
	}
	if out.Span.Text(raw) != validPayload {
		t.Errorf("span text = %q", out.Span.Text(raw))
	}
}

func TestRecover_UntaggedFence(t *testing.T) {
	raw := "```\n" + validPayload + "\n```"
	out := Recover(raw)
	if !out.OK() || out.Span.Strategy != StrategyUntaggedFence {
		t.Fatalf("expected untagged fence success, got %+v", out)
	}
}

func TestRecover_WholeText(t *testing.T) {
	out := Recover("  \n" + validPayload + "\n\t")
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	// The brace span is tried before whole text and matches the same region.
	if out.Span.Strategy != StrategyBraceSpan {
		t.Errorf("strategy = %s", out.Span.Strategy)
	}
}

func TestRecover_TrailingCommaBeforeBracket(t *testing.T) {
	raw := `{"wholeTitle":"T","storyTopic":"S","hashtags":["a","b",],"pages":[]}`
	out := Recover(raw)
	if !out.OK() || !out.Repaired {
		t.Fatalf("expected repaired success, got %+v", out)
	}
	tags, _ := out.Record.Get(KeyHashtags)
	if got := len(tags.([]any)); got != 2 {
		t.Errorf("hashtags length = %d, want 2", got)
	}
}

func TestRecover_DecodeErrorBeyondRepair(t *testing.T) {
	raw := "```json\n{'wholeTitle': \"T\", storyTopic: \"S\", \"hashtags\": [], \"pages\": []}\n```"
	out := Recover(raw)
	if out.OK() {
		t.Fatal("expected failure")
	}
	f := out.Failure
	if f.Reason != ReasonDecodeError || f.Stage != StageDecoder {
		t.Fatalf("failure = %+v", f)
	}
	if !errors.Is(out.Err(), ErrDecode) {
		t.Error("expected errors.Is(err, ErrDecode)")
	}
	var de *DecodeError
	if !errors.As(out.Err(), &de) {
		t.Fatal("expected *DecodeError cause")
	}
	if de.Offset <= 0 {
		t.Errorf("expected positive offset, got %d", de.Offset)
	}
	if !out.Repaired {
		t.Error("expected exactly one repair attempt to be recorded")
	}
	if !strings.Contains(f.Excerpt, "storyTopic") {
		t.Errorf("excerpt should show the failing text, got %q", f.Excerpt)
	}
}

func TestRecover_LenientRepairFixesQuoting(t *testing.T) {
	raw := "{'wholeTitle': \"T\", storyTopic: \"S\", \"hashtags\": [], \"pages\": []}"
	out := New(WithRepair(LenientRepair)).Recover(raw)
	if !out.OK() {
		t.Fatalf("expected lenient repair to succeed, got %v", out.Err())
	}
	title, _ := out.Record.Get(KeyWholeTitle)
	if title != "T" {
		t.Errorf("wholeTitle = %v", title)
	}
}

func TestRecover_MissingFieldsCollectsAll(t *testing.T) {
	out := Recover(`{"wholeTitle":"T","storyTopic":"S"}`)
	if out.OK() {
		t.Fatal("expected failure")
	}
	f := out.Failure
	if f.Reason != ReasonMissingFields || f.Stage != StageValidator {
		t.Fatalf("failure = %+v", f)
	}
	if diff := cmp.Diff([]string{KeyHashtags, KeyPages}, f.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(out.Err(), ErrMissingFields) || errors.Is(out.Err(), ErrDecode) {
		t.Error("failure should match only ErrMissingFields")
	}
	var ve *ValidationError
	if !errors.As(out.Err(), &ve) || ve.Kind != "" {
		t.Errorf("expected object ValidationError, got %v", out.Err())
	}
	if f.Excerpt != `{"wholeTitle":"T","storyTopic":"S"}` {
		t.Errorf("excerpt = %q", f.Excerpt)
	}
}

func TestRecover_TopLevelArray(t *testing.T) {
	out := Recover("```json\n[1, 2]\n```")
	if out.OK() {
		t.Fatal("expected failure")
	}
	if out.Failure.Reason != ReasonMissingFields {
		t.Fatalf("reason = %s", out.Failure.Reason)
	}
	if diff := cmp.Diff(DefaultRequiredKeys(), out.Failure.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	var ve *ValidationError
	if !errors.As(out.Err(), &ve) || ve.Kind != "array" {
		t.Errorf("expected array kind, got %v", out.Err())
	}
}

func TestRecover_NoPayloadFound(t *testing.T) {
	raw := strings.Repeat("no structure here ", 100)
	out := Recover(raw)
	if out.OK() {
		t.Fatal("expected failure")
	}
	f := out.Failure
	if f.Reason != ReasonNoPayloadFound || f.Stage != StageExtractor || f.Cause != nil {
		t.Fatalf("failure = %+v", f)
	}
	if !errors.Is(out.Err(), ErrNoPayloadFound) {
		t.Error("expected errors.Is(err, ErrNoPayloadFound)")
	}
	if n := utf8.RuneCountInString(f.Excerpt); n != 500 {
		t.Errorf("excerpt length = %d, want 500", n)
	}
	if !strings.HasPrefix(raw, f.Excerpt) {
		t.Error("excerpt should be a prefix of the raw text")
	}
}

func TestRecover_EmptyInput(t *testing.T) {
	out := Recover("")
	if out.OK() || out.Failure.Reason != ReasonNoPayloadFound || out.Failure.Excerpt != "" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestRecover_ExcerptBounded(t *testing.T) {
	long := `{"wholeTitle":"` + strings.Repeat("긴", 3000) + `","storyTopic":"S"}`
	out := Recover(long)
	if out.OK() {
		t.Fatal("expected missing fields")
	}
	if n := utf8.RuneCountInString(out.Failure.Excerpt); n != ExcerptLen {
		t.Errorf("excerpt runes = %d, want %d", n, ExcerptLen)
	}
	if !utf8.ValidString(out.Failure.Excerpt) {
		t.Error("excerpt split a rune")
	}
}

func TestRecover_EmptyTaggedFenceFallsThrough(t *testing.T) {
	raw := "```json\n```\nActually here it is: " + validPayload
	out := Recover(raw)
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	if out.Span.Strategy != StrategyBraceSpan {
		t.Errorf("strategy = %s, want brace span", out.Span.Strategy)
	}
}

func TestRecover_CustomRequiredKeys(t *testing.T) {
	engine := New(WithRequiredKeys("title"))
	if out := engine.Recover(`{"title":"x"}`); !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	out := engine.Recover(validPayload)
	if out.OK() || out.Failure.Missing[0] != "title" {
		t.Fatalf("expected missing title, got %+v", out.Failure)
	}
}

func TestRecover_RepairFuncError(t *testing.T) {
	engine := New(WithRepair(func(string) (string, error) {
		return "", errors.New("nope")
	}))
	out := engine.Recover(`{"a":1,}`)
	if out.OK() || out.Failure.Reason != ReasonDecodeError {
		t.Fatalf("expected decode error, got %+v", out)
	}
	if !strings.Contains(out.Failure.Error(), "repair failed: nope") {
		t.Errorf("error = %v", out.Failure)
	}
}

// TestRecover_Idempotent checks that identical input gives identical outcomes.
func TestRecover_Idempotent(t *testing.T) {
	inputs := []string{
		"Here:\n```json\n" + validPayload + "\n```",
		`{"wholeTitle":"T","storyTopic":"S","hashtags":[],"pages":[],}`,
		`{"wholeTitle":"T"}`,
		`{"broken": }`,
		"nothing",
	}
	for i, raw := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			first, second := Recover(raw), Recover(raw)
			if diff := cmp.Diff(first, second, cmp.AllowUnexported(Object{})); diff != "" {
				t.Errorf("outcomes differ (-first +second):\n%s", diff)
			}
		})
	}
}

func TestRecover_Concurrent(t *testing.T) {
	engine := New()
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw := validPayload
			if i%2 == 1 {
				raw = `{"wholeTitle":"T"}`
			}
			out := engine.Recover(raw)
			if out.OK() != (i%2 == 0) {
				errs <- fmt.Errorf("goroutine %d: unexpected outcome %v", i, out.Err())
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestFailureError(t *testing.T) {
	f := &Failure{Stage: StageValidator, Reason: ReasonMissingFields, Missing: []string{"pages"}}
	if got := f.Error(); got != "validator: MissingFields [pages]" {
		t.Errorf("Error() = %q", got)
	}
	f = &Failure{Stage: StageExtractor, Reason: ReasonNoPayloadFound}
	if got := f.Error(); got != "extractor: NoPayloadFound" {
		t.Errorf("Error() = %q", got)
	}
}

package storyboard

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/leofalp/toonboard/core/recovery"
)

// Storyboard is the typed view of a recovered storyboard record.
type Storyboard struct {
	WholeTitle string   `json:"wholeTitle"`
	StoryTopic string   `json:"storyTopic"`
	Hashtags   []string `json:"hashtags"`
	Pages      []Page   `json:"pages"`
}

// Page is one square cut of the storyboard.
type Page struct {
	Number         int      `json:"page"`
	Characters     []string `json:"character"`
	Background     string   `json:"background"`
	Dialogue       Dialogue `json:"dialogue"`
	ExpressionPose string   `json:"expressionPose"`
}

// Line is a single spoken line. Speaker may be empty for narration.
type Line struct {
	Speaker string
	Text    string
}

// Dialogue is the ordered list of lines on a page. It encodes as a JSON
// object keyed by speaker, in speaking order.
type Dialogue []Line

// MarshalJSON writes the lines as an object so the output matches the shape
// the model produced.
func (d Dialogue) MarshalJSON() ([]byte, error) {
	obj := recovery.NewObject()
	for _, line := range d {
		obj.Set(line.Speaker, line.Text)
	}
	return obj.MarshalJSON()
}

// UnmarshalJSON accepts an object of speaker to line, keeping speaker order.
func (d *Dialogue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}
	v, err := recovery.Decode(string(data))
	if err != nil {
		return err
	}
	*d = dialogueFrom(v)
	return nil
}

// Parse decodes a storyboard document with the same lenient rules as
// FromRecord. The document must be a JSON object.
func Parse(data []byte) (Storyboard, error) {
	v, err := recovery.Decode(string(data))
	if err != nil {
		return Storyboard{}, fmt.Errorf("invalid storyboard JSON: %w", err)
	}
	obj, ok := v.(*recovery.Object)
	if !ok {
		return Storyboard{}, fmt.Errorf("storyboard must be a JSON object")
	}
	return FromRecord(obj), nil
}

// MarshalIndent encodes v with two-space indentation and without HTML
// escaping, so non-ASCII text and markup characters stay readable.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

package storyboard

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/leofalp/toonboard/core/recovery"
)

// Nested keys of a page record.
const (
	keyPage           = "page"
	keyCharacter      = "character"
	keyBackground     = "background"
	keyDialogue       = "dialogue"
	keyExpressionPose = "expressionPose"
)

// FromRecord builds a Storyboard from a recovered record. Only the presence
// of the top-level keys is guaranteed by recovery, so every nested field is
// read leniently. Wrong-typed values degrade to zero values, scalars are
// stringified where text is expected, and a page without a usable number
// takes its 1-based position.
func FromRecord(rec *recovery.Object) Storyboard {
	sb := Storyboard{
		WholeTitle: text(field(rec, recovery.KeyWholeTitle)),
		StoryTopic: text(field(rec, recovery.KeyStoryTopic)),
		Hashtags:   texts(field(rec, recovery.KeyHashtags)),
	}

	pages, _ := field(rec, recovery.KeyPages).([]any)
	for i, p := range pages {
		obj, ok := p.(*recovery.Object)
		if !ok {
			continue
		}
		page := Page{
			Number:         number(field(obj, keyPage)),
			Characters:     texts(field(obj, keyCharacter)),
			Background:     text(field(obj, keyBackground)),
			Dialogue:       dialogueFrom(field(obj, keyDialogue)),
			ExpressionPose: text(field(obj, keyExpressionPose)),
		}
		if page.Number <= 0 {
			page.Number = i + 1
		}
		sb.Pages = append(sb.Pages, page)
	}
	return sb
}

func field(obj *recovery.Object, key string) any {
	v, _ := obj.Get(key)
	return v
}

// text renders a scalar as a string. Containers are rendered as compact JSON.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case *recovery.Object:
		return t.String()
	case []any:
		return strings.Join(texts(t), ", ")
	default:
		return ""
	}
}

// texts reads a list of strings. A lone scalar becomes a one-element list.
func texts(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := text(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := text(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

func number(v any) int {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return int(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

// dialogueFrom accepts an object of speaker to line, a list of such objects,
// or a bare string (narration).
func dialogueFrom(v any) Dialogue {
	switch t := v.(type) {
	case *recovery.Object:
		d := make(Dialogue, 0, t.Len())
		for _, speaker := range t.Keys() {
			d = append(d, Line{Speaker: speaker, Text: text(field(t, speaker))})
		}
		return d
	case []any:
		var d Dialogue
		for _, e := range t {
			d = append(d, dialogueFrom(e)...)
		}
		return d
	case string:
		if t == "" {
			return nil
		}
		return Dialogue{{Text: t}}
	default:
		return nil
	}
}

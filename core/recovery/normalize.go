package recovery

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// typeHint is the bare language token models sometimes leave in front of the
// payload.
const typeHint = "json"

// Normalize strips wrapper artifacts that survived extraction: surrounding
// whitespace, leading and trailing backtick runs, and a leading "json" type
// hint. Text inside the payload body is never touched.
func Normalize(text string) string {
	text = strings.TrimFunc(text, isFenceOrSpace)
	if hasTypeHint(text) {
		text = strings.TrimLeftFunc(text[len(typeHint):], unicode.IsSpace)
	}
	return text
}

func isFenceOrSpace(r rune) bool {
	return r == '`' || unicode.IsSpace(r)
}

// hasTypeHint reports whether text opens with the "json" token as a whole
// word, so that e.g. "jsonData" is left alone.
func hasTypeHint(text string) bool {
	if len(text) < len(typeHint) || !strings.EqualFold(text[:len(typeHint)], typeHint) {
		return false
	}
	rest := text[len(typeHint):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r) || r == '{' || r == '['
}

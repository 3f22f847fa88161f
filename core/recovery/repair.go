package recovery

import (
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// RepairFunc rewrites text that failed to decode. The engine applies it once
// and decodes the result once; there is no further retry.
type RepairFunc func(text string) (string, error)

// RepairTrailingCommas removes a comma that is followed only by whitespace and
// a closing '}', then does the same for closing ']'. The scan tracks string
// literals, so commas and brackets inside quoted values are never altered.
func RepairTrailingCommas(text string) string {
	text = dropCommaBefore(text, '}')
	return dropCommaBefore(text, ']')
}

// trailingCommaRepair adapts RepairTrailingCommas to RepairFunc.
func trailingCommaRepair(text string) (string, error) {
	return RepairTrailingCommas(text), nil
}

// LenientRepair hands the text to jsonrepair, which also fixes unquoted
// keys, single quotes, missing closers and similar damage. It is broader than
// the default repair and is only used when an Engine is built with
// WithRepair(LenientRepair).
func LenientRepair(text string) (string, error) {
	return jsonrepair.JSONRepair(text)
}

// dropCommaBefore makes one left-to-right pass removing each comma outside a
// string literal whose next non-whitespace byte is closer. Whitespace between
// the comma and closer is kept.
func dropCommaBefore(text string, closer byte) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',':
			if nextSignificant(text, i+1) == closer {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// nextSignificant returns the first non-whitespace byte at or after i, or 0.
func nextSignificant(text string, i int) byte {
	for ; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return text[i]
		}
	}
	return 0
}

package storyboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Page count limits.
const (
	MinPages = 1
	MaxPages = 10
)

// ErrInvalidInput is matched by every *InputError.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes why user input was rejected. Message is safe to show
// to the user.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PageCount is the requested number of pages as the user typed it. It
// decodes from either a JSON string or a JSON number.
type PageCount string

func (p *PageCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PageCount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pages must be a string or number: %w", err)
	}
	*p = PageCount(n.String())
	return nil
}

// Int parses the count.
func (p PageCount) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(p)))
}

// Input is what the user asks for.
type Input struct {
	Characters string    `json:"characters"`
	Keywords   string    `json:"keywords"`
	Plot       string    `json:"plot"`
	Pages      PageCount `json:"pages"`
	// PlotURL is fetched and used as the plot when Plot is blank.
	PlotURL string `json:"plot_url,omitempty"`
}

// Validate requires a plot and a page count between MinPages and MaxPages.
// When allowURL is true a PlotURL may stand in for the plot.
func (in Input) Validate(allowURL bool) error {
	if strings.TrimSpace(in.Plot) == "" && !(allowURL && strings.TrimSpace(in.PlotURL) != "") {
		return &InputError{Field: "plot", Message: "plot is required"}
	}
	if strings.TrimSpace(string(in.Pages)) == "" {
		return &InputError{Field: "pages", Message: "page count is required"}
	}
	n, err := in.Pages.Int()
	if err != nil {
		return &InputError{Field: "pages", Message: "page count must be a number"}
	}
	if n < MinPages || n > MaxPages {
		return &InputError{Field: "pages", Message: fmt.Sprintf("page count must be between %d and %d", MinPages, MaxPages)}
	}
	return nil
}

// Key identifies equivalent requests, ignoring surrounding whitespace.
func (in Input) Key() string {
	parts := []string{in.Characters, in.Keywords, in.Plot, string(in.Pages), in.PlotURL}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "\x1f")
}

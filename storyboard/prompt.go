package storyboard

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// Canvas geometry quoted in the prompt.
const (
	ImageSize = 1080
	SafeZone  = 120
)

// DefaultLanguage is used when no output language is configured.
const DefaultLanguage = "Korean"

// placeholder replaces optional fields the user left blank.
const placeholder = "none"

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

type promptData struct {
	Characters string
	Keywords   string
	Plot       string
	Pages      string
	Language   string
	ImageSize  int
	SafeZone   int
}

// BuildPrompt renders the user prompt for in. Blank characters and keywords
// become "none".
func BuildPrompt(in Input, language string) (string, error) {
	if language == "" {
		language = DefaultLanguage
	}
	data := promptData{
		Characters: orPlaceholder(in.Characters),
		Keywords:   orPlaceholder(in.Keywords),
		Plot:       strings.TrimSpace(in.Plot),
		Pages:      strings.TrimSpace(string(in.Pages)),
		Language:   language,
		ImageSize:  ImageSize,
		SafeZone:   SafeZone,
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}

// SystemPrompt is the instruction sent ahead of every request.
func SystemPrompt(language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return "You are an instatoon storyboard expert. Produce the storyboard as exactly " +
		"the JSON structure requested, written in " + language + ". " +
		"Reply with valid JSON only."
}

func orPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return placeholder
}

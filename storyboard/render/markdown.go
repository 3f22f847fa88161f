package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/leofalp/toonboard/storyboard"
	"github.com/yuin/goldmark"
)

// DefaultWidth is the terminal wrap width used when none is given.
const DefaultWidth = 80

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
)

// Markdown renders sb as a Markdown document with one section per page.
func Markdown(sb storyboard.Storyboard) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(sb.WholeTitle))
	fmt.Fprintf(&b, "**%s:** %s\n\n", labelTopic, escape(sb.StoryTopic))
	fmt.Fprintf(&b, "**%s:** %s\n", labelHashtags, escape(strings.Join(sb.Hashtags, " ")))

	for _, page := range sb.Pages {
		fmt.Fprintf(&b, "\n## %s %d\n\n", labelPage, page.Number)
		fmt.Fprintf(&b, "- **%s:** %s\n", labelCharacters, escape(strings.Join(page.Characters, ", ")))
		fmt.Fprintf(&b, "- **%s:** %s\n", labelBackground, escape(page.Background))
		fmt.Fprintf(&b, "- **%s:**\n", labelDialogue)
		for _, line := range page.Dialogue {
			if line.Speaker == "" {
				fmt.Fprintf(&b, "  - *%s*\n", escape(line.Text))
				continue
			}
			fmt.Fprintf(&b, "  - **%s:** \"%s\"\n", escape(line.Speaker), escape(line.Text))
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", labelPose, escape(page.ExpressionPose))
	}

	return b.String()
}

// HTML renders the Markdown form of sb as an HTML fragment. Markup in the
// storyboard text is escaped, never passed through.
func HTML(sb storyboard.Storyboard) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(sb)), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders sb for a terminal, wrapped at width columns. Styling
// follows the terminal background; output without a TTY is unstyled.
func Terminal(sb storyboard.Storyboard, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(sb))
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// JSON encodes v (a Storyboard or a recovered record) with two-space indent,
// keeping key order and non-ASCII text as written.
func JSON(v any) (string, error) {
	data, err := storyboard.MarshalIndent(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func escape(s string) string {
	// Newlines inside a field would break list items and headings.
	s = strings.Join(strings.Fields(s), " ")
	return markdownEscaper.Replace(s)
}

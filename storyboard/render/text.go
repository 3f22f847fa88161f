package render

import (
	"fmt"
	"strings"

	"github.com/leofalp/toonboard/storyboard"
)

const (
	majorRule = 50
	minorRule = 30
)

// Labels shared by every rendering.
const (
	labelTopic      = "Story topic"
	labelHashtags   = "Hashtags"
	labelPage       = "Page"
	labelCharacters = "Characters"
	labelBackground = "Background"
	labelDialogue   = "Dialogue"
	labelPose       = "Expression/pose"
)

// Text renders sb in the plain readable layout used for copy and paste.
func Text(sb storyboard.Storyboard) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("📖 %s", sb.WholeTitle)
	add("%s", strings.Repeat("=", majorRule))
	add("📝 %s: %s", labelTopic, sb.StoryTopic)
	add("")
	add("🏷️ %s: %s", labelHashtags, strings.Join(sb.Hashtags, " "))
	add("")
	add("%s", strings.Repeat("=", majorRule))
	add("")

	for _, page := range sb.Pages {
		add("📄 %s %d", labelPage, page.Number)
		add("%s", strings.Repeat("-", minorRule))
		add("👥 %s: %s", labelCharacters, strings.Join(page.Characters, ", "))
		add("🎬 %s: %s", labelBackground, page.Background)
		add("💬 %s:", labelDialogue)
		for _, line := range page.Dialogue {
			add("   %s", quoteLine(line))
		}
		add("🎭 %s: %s", labelPose, page.ExpressionPose)
		add("")
	}

	return strings.Join(lines, "\n")
}

// quoteLine formats a line as `Speaker: "text"`, or just the quoted text for
// narration.
func quoteLine(line storyboard.Line) string {
	if line.Speaker == "" {
		return "\"" + line.Text + "\""
	}
	return line.Speaker + ": \"" + line.Text + "\""
}

package storyboard

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFullStoryboard(t *testing.T) {
	doc := `{
  "wholeTitle": "Umbrella Day",
  "storyTopic": "Sharing makes rain lighter.",
  "hashtags": ["#rain", "#friends"],
  "pages": [
    {
      "page": 1,
      "character": ["Mina", "Joon"],
      "background": "bus stop in the rain",
      "dialogue": {"Mina": "No umbrella again?", "Joon": "Forgot it."},
      "expressionPose": "Mina smiles, holding out her umbrella"
    }
  ]
}`
	got, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Storyboard{
		WholeTitle: "Umbrella Day",
		StoryTopic: "Sharing makes rain lighter.",
		Hashtags:   []string{"#rain", "#friends"},
		Pages: []Page{{
			Number:     1,
			Characters: []string{"Mina", "Joon"},
			Background: "bus stop in the rain",
			Dialogue: Dialogue{
				{Speaker: "Mina", Text: "No umbrella again?"},
				{Speaker: "Joon", Text: "Forgot it."},
			},
			ExpressionPose: "Mina smiles, holding out her umbrella",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDegradesLooseShapes(t *testing.T) {
	doc := `{
  "wholeTitle": 42,
  "storyTopic": null,
  "hashtags": "#solo",
  "pages": [
    "not a page",
    {"character": "Mina", "dialogue": "It was quiet.", "background": ["park", "dusk"]},
    {"page": "7", "dialogue": [{"A": "hi"}, {"B": "hey"}]}
  ]
}`
	got, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Storyboard{
		WholeTitle: "42",
		Hashtags:   []string{"#solo"},
		Pages: []Page{
			{
				Number:     2,
				Characters: []string{"Mina"},
				Background: "park, dusk",
				Dialogue:   Dialogue{{Text: "It was quiet."}},
			},
			{
				Number:   7,
				Dialogue: Dialogue{{Speaker: "A", Text: "hi"}, {Speaker: "B", Text: "hey"}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	if _, err := Parse([]byte(`[1, 2]`)); err == nil {
		t.Error("expected error for top-level array")
	}
	if _, err := Parse([]byte(`{"wholeTitle":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestDialogueJSONKeepsSpeakerOrder(t *testing.T) {
	page := Page{
		Number:   1,
		Dialogue: Dialogue{{Speaker: "Zed", Text: "first"}, {Speaker: "Amy", Text: "second"}},
	}
	data, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"dialogue":{"Zed":"first","Amy":"second"}`) {
		t.Errorf("unexpected dialogue encoding: %s", data)
	}

	var back Page
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(page.Dialogue, back.Dialogue); diff != "" {
		t.Errorf("dialogue mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalIndentKeepsText(t *testing.T) {
	data, err := MarshalIndent(map[string]string{"t": "<b>안녕</b>"})
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	if string(data) != "{\n  \"t\": \"<b>안녕</b>\"\n}" {
		t.Errorf("MarshalIndent() = %q", data)
	}
}

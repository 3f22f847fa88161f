package recovery

// Mandatory top-level keys of a storyboard payload. Names are exact and
// case-sensitive.
const (
	KeyWholeTitle = "wholeTitle"
	KeyStoryTopic = "storyTopic"
	KeyHashtags   = "hashtags"
	KeyPages      = "pages"
)

// DefaultRequiredKeys returns the mandatory keys checked by a default Engine.
func DefaultRequiredKeys() []string {
	return []string{KeyWholeTitle, KeyStoryTopic, KeyHashtags, KeyPages}
}

// Validate checks that value is an object holding every key in required and
// returns it as an *Object. All missing keys are collected in the order of
// required before failing. Value types and nested shapes are not checked;
// consumers must tolerate any shape below the top level.
func Validate(value any, required ...string) (*Object, error) {
	obj, ok := value.(*Object)
	if !ok || obj == nil {
		return nil, &ValidationError{
			Missing: append([]string(nil), required...),
			Kind:    kindOf(value),
		}
	}

	var missing []string
	for _, key := range required {
		if !obj.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	return obj, nil
}

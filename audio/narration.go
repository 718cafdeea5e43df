package audio

import "strings"

// NarrationMarker is the annotation token the code-generation prompt requires
// on each major animation step.
const NarrationMarker = "# NARRATION:"

// DefaultNarration is spoken when the generated code carries no annotations;
// narration must never block pipeline completion.
const DefaultNarration = "Watch this educational animation."

// ExtractNarration recovers narration lines from the sanitized scene source.
// Each annotation's remainder is quote-stripped and all lines are joined with
// a single space in source order.
func ExtractNarration(code string) string {
	var parts []string
	for _, line := range strings.Split(code, "\n") {
		idx := strings.Index(line, NarrationMarker)
		if idx < 0 {
			continue
		}
		text := strings.TrimSpace(line[idx+len(NarrationMarker):])
		text = strings.Trim(text, `"'`)
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return DefaultNarration
	}
	return strings.Join(parts, " ")
}

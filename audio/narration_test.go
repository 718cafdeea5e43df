package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNarration(t *testing.T) {
	code := `from manim import *

class EducationScene(Scene):
    def construct(self):
        # NARRATION: "Let's draw a circle step by step."
        title = Text("Circles")
        self.play(Write(title))
        # NARRATION: 'First, we start with a center point.'
        dot = Dot()
        self.play(FadeIn(dot))
        # NARRATION: And there we have it!
        self.wait(1)
`

	got := ExtractNarration(code)
	assert.Equal(t,
		"Let's draw a circle step by step. First, we start with a center point. And there we have it!",
		got)
}

func TestExtractNarrationFallsBackToDefault(t *testing.T) {
	code := `from manim import *

class EducationScene(Scene):
    def construct(self):
        self.wait(1)
`
	assert.Equal(t, DefaultNarration, ExtractNarration(code))
	assert.Equal(t, DefaultNarration, ExtractNarration(""))
}

func TestExtractNarrationIgnoresEmptyAnnotations(t *testing.T) {
	code := "# NARRATION:\n# NARRATION: \"\"\n# NARRATION: \"real line\""
	assert.Equal(t, "real line", ExtractNarration(code))
}

func TestExtractNarrationPreservesSourceOrder(t *testing.T) {
	code := "# NARRATION: \"second\"\n# NARRATION: \"third\""
	assert.Equal(t, "second third", ExtractNarration(code))
}

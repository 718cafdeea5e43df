package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduvid-pipeline/audio"
	"eduvid-pipeline/config"
	"eduvid-pipeline/render"
	"eduvid-pipeline/types"
)

const stubCompletion = "```python\n" + `from manim import *

class EducationScene(Scene):
    def construct(self):
        # NARRATION: "A circle is a set of points at equal distance."
        circle = Circle(radius=1, color=BLUE)
        self.play(Create(circle))
        # NARRATION: "Watch it grow."
        self.play(circle.animate.scale(2), run_time=2)
        self.wait(1)
` + "\n```"

// fakeLLM answers the elaboration prompt and the code prompt with fixed text
type fakeLLM struct {
	calls int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if strings.Contains(prompt, "expert educator") {
		return "Title: Circles\nNarration: A circle is round.", nil
	}
	return stubCompletion, nil
}

// fakeExecutor stands in for the renderer: it drops a dummy video somewhere
// under the scratch tree, mimicking the renderer's unpredictable layout.
type fakeExecutor struct {
	sawSource string
}

func (f *fakeExecutor) Execute(ctx context.Context, sanitized, scratchDir string, use3D bool) (*types.ExecutionResult, error) {
	f.sawSource = sanitized
	out := filepath.Join(scratchDir, "videos", "1080p30", "EducationScene.mp4")
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, make([]byte, 4096), 0644); err != nil {
		return nil, err
	}
	return &types.ExecutionResult{ExitCode: 0}, nil
}

type fakeSynth struct {
	sawText string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, outFile string) (*types.AudioTrack, error) {
	f.sawText = text
	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outFile, make([]byte, 128), 0644); err != nil {
		return nil, err
	}
	return &types.AudioTrack{Path: outFile, Duration: 5}, nil
}

// fakeReconciler marks the video as muxed and consumes the audio temp file,
// matching the real reconciler's cleanup contract.
type fakeReconciler struct {
	attached bool
}

func (f *fakeReconciler) Attach(ctx context.Context, videoPath string, track *types.AudioTrack) error {
	f.attached = true
	if err := os.Remove(track.Path); err != nil {
		return err
	}
	return os.WriteFile(videoPath, make([]byte, 8192), 0644)
}

func testPipeline(t *testing.T) (*Pipeline, *fakeLLM, *fakeExecutor, *fakeSynth, *fakeReconciler, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Output = t.TempDir()
	cfg.Paths.Scratch = t.TempDir()
	cfg.Locate.SettleDelayMs = 1

	client := &fakeLLM{}
	ex := &fakeExecutor{}
	syn := &fakeSynth{}
	rec := &fakeReconciler{}

	p := &Pipeline{
		cfg:            cfg,
		llm:            client,
		exec:           ex,
		loc:            render.NewLocator(cfg),
		synth:          syn,
		recon:          rec,
		cleanupScratch: true,
	}
	return p, client, ex, syn, rec, cfg
}

func TestRunEndToEnd(t *testing.T) {
	p, client, ex, syn, rec, cfg := testPipeline(t)

	res, err := p.Run(context.Background(), types.GenerationRequest{
		Topic:      "explain what is a circle",
		SceneMode:  types.ModeAuto,
		OutputName: "circle_test",
	})
	require.NoError(t, err)

	// Exactly one artifact at the canonical path.
	canonical := filepath.Join(cfg.Paths.Output, "circle_test.mp4")
	assert.Equal(t, canonical, res.VideoPath)
	info, err := os.Stat(canonical)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	entries, err := os.ReadDir(cfg.Paths.Output)
	require.NoError(t, err)
	var mp4s []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".mp4" {
			mp4s = append(mp4s, e.Name())
		}
	}
	assert.Equal(t, []string{"circle_test.mp4"}, mp4s)

	// Scratch tree is gone afterwards.
	scratch, err := os.ReadDir(cfg.Paths.Scratch)
	require.NoError(t, err)
	assert.Empty(t, scratch, "scratch dir should be cleaned up")

	// Both LLM steps ran, code fence was stripped before execution.
	assert.Equal(t, 2, client.calls)
	assert.NotContains(t, ex.sawSource, "```")
	assert.Contains(t, ex.sawSource, "class EducationScene(Scene):")

	// Narration came from the annotations, and audio/video were reconciled.
	assert.Equal(t, "A circle is a set of points at equal distance. Watch it grow.", res.Narration)
	assert.Equal(t, res.Narration, syn.sawText)
	assert.True(t, rec.attached)
	assert.False(t, res.Use3D)
}

func TestRunUsesDefaultNarrationWhenUnannotated(t *testing.T) {
	p, _, _, syn, _, _ := testPipeline(t)
	p.llm = llmFunc(func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "expert educator") {
			return "Title: Plain\nNarration: nothing special.", nil
		}
		return "```python\nfrom manim import *\n\nclass EducationScene(Scene):\n    def construct(self):\n        self.wait(1)\n```", nil
	})

	res, err := p.Run(context.Background(), types.GenerationRequest{
		Topic:      "a topic with no narration hints",
		OutputName: "plain",
	})
	require.NoError(t, err)
	assert.Equal(t, audio.DefaultNarration, res.Narration)
	assert.Equal(t, audio.DefaultNarration, syn.sawText)
}

type llmFunc func(ctx context.Context, prompt string) (string, error)

func (f llmFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestRunRejectsInvalidTopics(t *testing.T) {
	p, _, _, _, _, _ := testPipeline(t)

	_, err := p.Run(context.Background(), types.GenerationRequest{Topic: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = p.Run(context.Background(), types.GenerationRequest{Topic: "too short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 10 characters")
}

func TestRunForcedSceneModes(t *testing.T) {
	p, _, _, _, _, _ := testPipeline(t)

	res, err := p.Run(context.Background(), types.GenerationRequest{
		Topic:      "explain what is a circle",
		SceneMode:  types.ModeForce3D,
		OutputName: "forced3d",
	})
	require.NoError(t, err)
	assert.True(t, res.Use3D)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "how_rainbows_form", SanitizeName("how rainbows form?"))
	assert.Equal(t, "whats_a_2-sphere", SanitizeName("what's a 2-sphere!"))

	long := strings.Repeat("a", 80)
	assert.Len(t, SanitizeName(long), 50)
}

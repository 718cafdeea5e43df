// Package pipeline sequences one video-generation request end to end:
// elaborate → generate code → sanitize → render → locate → narrate →
// reconcile durations. Any stage's failure aborts the request.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"eduvid-pipeline/audio"
	"eduvid-pipeline/config"
	"eduvid-pipeline/llm"
	"eduvid-pipeline/mux"
	"eduvid-pipeline/render"
	"eduvid-pipeline/sanitize"
	"eduvid-pipeline/script"
	"eduvid-pipeline/types"
)

type executor interface {
	Execute(ctx context.Context, sanitized, scratchDir string, use3D bool) (*types.ExecutionResult, error)
}

type locator interface {
	Locate(searchRoots []string, destPath string) (string, error)
}

type synthesizer interface {
	Synthesize(ctx context.Context, text, outFile string) (*types.AudioTrack, error)
}

type reconciler interface {
	Attach(ctx context.Context, videoPath string, track *types.AudioTrack) error
}

// Pipeline runs one generation request at a time. Each run gets its own
// scratch subdirectory, so concurrent Pipelines sharing an output directory
// rely only on the locator's recency window.
type Pipeline struct {
	cfg   *config.Config
	llm   llm.Client
	exec  executor
	loc   locator
	synth synthesizer
	recon reconciler

	// cleanupScratch is disabled only by tests that inspect scratch contents
	cleanupScratch bool
}

// New creates a Pipeline with the standard stage implementations
func New(cfg *config.Config, client llm.Client) *Pipeline {
	return &Pipeline{
		cfg:            cfg,
		llm:            client,
		exec:           render.NewExecutor(cfg),
		loc:            render.NewLocator(cfg),
		synth:          audio.New(cfg),
		recon:          mux.New(cfg),
		cleanupScratch: true,
	}
}

// Run executes the full pipeline for one request
func (p *Pipeline) Run(ctx context.Context, req types.GenerationRequest) (*types.Result, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}
	if len(topic) < 10 {
		return nil, fmt.Errorf("topic is too short, provide at least 10 characters")
	}

	outputName := req.OutputName
	if outputName == "" {
		outputName = SanitizeName(topic)
	}

	use3D := false
	switch req.SceneMode {
	case types.ModeForce3D:
		use3D = true
	case types.ModeForce2D:
		use3D = false
	default:
		use3D = script.Detect3D(topic)
	}

	log.Infof("[pipeline] Generating video for: %q (3D: %v, output: %s)", topic, use3D, outputName)

	// Step 1: elaborate the topic into narration + visual outline
	elaboration, err := p.llm.Complete(ctx, script.ElaborationPrompt(topic))
	if err != nil {
		return nil, fmt.Errorf("elaborate: %w", err)
	}
	log.Info("[pipeline] Content elaborated")

	// Step 2: generate the scene code
	raw, err := p.llm.Complete(ctx, script.CodePrompt(elaboration, use3D))
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	code := llm.StripCodeFence(raw)
	log.Info("[pipeline] Scene code generated")

	// Step 3: sanitize and render
	sanitized := sanitize.Sanitize(code)

	runID := uuid.NewString()[:8]
	scratchDir := filepath.Join(p.cfg.Paths.Scratch, runID)
	if p.cleanupScratch {
		defer removeAll(scratchDir)
	}

	if _, err := p.exec.Execute(ctx, sanitized, scratchDir, use3D); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	// Step 4: locate the renderer's output and pin it to the canonical path
	canonical := filepath.Join(p.cfg.Paths.Output, outputName+".mp4")
	videoPath, err := p.loc.Locate([]string{scratchDir, p.cfg.Paths.Output}, canonical)
	if err != nil {
		return nil, fmt.Errorf("locate artifact: %w", err)
	}

	// Step 5: narration
	narration := audio.ExtractNarration(sanitized)
	track, err := p.synth.Synthesize(ctx, narration, filepath.Join(scratchDir, "narration.mp3"))
	if err != nil {
		return nil, fmt.Errorf("synthesize narration: %w", err)
	}

	// Step 6: reconcile durations and mux
	if err := p.recon.Attach(ctx, videoPath, track); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	log.Infof("[pipeline] ✅ Complete: %s", videoPath)

	return &types.Result{
		VideoPath:   videoPath,
		Elaboration: elaboration,
		SceneCode:   sanitized,
		Narration:   narration,
		Use3D:       use3D,
	}, nil
}

func removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warnf("[pipeline] Could not clean scratch dir %s: %v", dir, err)
	}
}

var nameStrip = regexp.MustCompile(`[^\w\s-]`)

// SanitizeName turns a topic into a safe filename stem: strip everything but
// word characters, spaces and dashes, cap at 50 chars, spaces become
// underscores.
func SanitizeName(topic string) string {
	name := nameStrip.ReplaceAllString(topic, "")
	if len(name) > 50 {
		name = name[:50]
	}
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

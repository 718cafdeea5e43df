// Package render executes sanitized scene source through the Manim
// renderer subprocess and locates the video it produced.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"eduvid-pipeline/config"
	"eduvid-pipeline/types"
)

// SceneClass is the entry-point identifier every generated scene must define.
// The code-generation prompt enforces the same convention.
const SceneClass = "EducationScene"

// ErrTimeout reports that the renderer exceeded its wall-clock bound.
// Not retried: the generated code is the most likely cause.
var ErrTimeout = errors.New("renderer timed out")

// Executor runs the Manim renderer on sanitized scene source
type Executor struct {
	cfg *config.Config
}

// NewExecutor creates an Executor
func NewExecutor(cfg *config.Config) *Executor {
	return &Executor{cfg: cfg}
}

// Execute writes the sanitized source to a scratch file and renders it.
// scratchDir must be dedicated to this job; execution is synchronous and the
// scene file name is fixed, so concurrent jobs need disjoint scratch dirs.
func (e *Executor) Execute(ctx context.Context, sanitized, scratchDir string, use3D bool) (*types.ExecutionResult, error) {
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	if err := os.MkdirAll(e.cfg.Paths.Output, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	codeFile := filepath.Join(scratchDir, "scene.py")
	if err := os.WriteFile(codeFile, []byte(sanitized), 0644); err != nil {
		return nil, fmt.Errorf("write scene file: %w", err)
	}
	log.Infof("[render] Scene saved to: %s", codeFile)

	// 3D renders are heavier: lower quality tier, longer timeout.
	quality := "-qm"
	timeout := e.cfg.Timeout2D()
	if use3D {
		quality = "-ql"
		timeout = e.cfg.Timeout3D()
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.cfg.Render.ManimBin,
		quality,
		"--format", "mp4",
		"--media_dir", e.cfg.Paths.Output,
		"--disable_caching",
		"--fps", fmt.Sprintf("%d", e.cfg.Render.FPS),
		codeFile,
		SceneClass,
	)
	cmd.Dir = scratchDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Infof("[render] Running: %s (timeout %s)", cmd.String(), timeout)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := &types.ExecutionResult{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: elapsed,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		log.Errorf("[render] Timed out after %s", elapsed.Round(time.Second))
		return res, fmt.Errorf("%w (>%s)", ErrTimeout, timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		log.Errorf("[render] Renderer failed (exit %d)", res.ExitCode)
		return res, fmt.Errorf("renderer failed: %s", firstNonEmpty(res.Stderr, res.Stdout, err.Error()))
	}

	log.Infof("[render] Renderer finished in %s", elapsed.Round(time.Millisecond))
	return res, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduvid-pipeline/config"
)

// fakeRenderer writes an executable stand-in for the manim CLI
func fakeRenderer(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manim")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func testExecutorConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Output = t.TempDir()
	return cfg
}

func TestExecuteWritesSceneAndSucceeds(t *testing.T) {
	cfg := testExecutorConfig(t)
	cfg.Render.ManimBin = fakeRenderer(t, `echo "File ready"`)

	scratch := filepath.Join(t.TempDir(), "job1")
	ex := NewExecutor(cfg)

	res, err := ex.Execute(context.Background(), "from manim import *\n", scratch, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.Contains(t, res.Stdout, "File ready")

	data, err := os.ReadFile(filepath.Join(scratch, "scene.py"))
	require.NoError(t, err)
	assert.Equal(t, "from manim import *\n", string(data))
}

func TestExecuteClassifiesRendererFailure(t *testing.T) {
	cfg := testExecutorConfig(t)
	cfg.Render.ManimBin = fakeRenderer(t, `echo "NameError: name 'Foo' is not defined" >&2; exit 3`)

	ex := NewExecutor(cfg)
	res, err := ex.Execute(context.Background(), "bad code", filepath.Join(t.TempDir(), "job"), false)

	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.TimedOut)
	// The captured stderr must surface in the error detail.
	assert.Contains(t, err.Error(), "NameError")
}

func TestExecuteTimesOut(t *testing.T) {
	cfg := testExecutorConfig(t)
	cfg.Render.ManimBin = fakeRenderer(t, `sleep 5`)
	cfg.Render.Timeout2DSec = 1

	ex := NewExecutor(cfg)
	res, err := ex.Execute(context.Background(), "slow code", filepath.Join(t.TempDir(), "job"), false)

	require.ErrorIs(t, err, ErrTimeout)
	assert.True(t, res.TimedOut)
}

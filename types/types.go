package types

import "time"

// SceneMode controls whether the generated scene is rendered in 2D or 3D
type SceneMode string

const (
	ModeAuto    SceneMode = "auto"
	ModeForce2D SceneMode = "2d"
	ModeForce3D SceneMode = "3d"
)

// GenerationRequest is one user request for an educational video
type GenerationRequest struct {
	Topic      string    `json:"topic"`
	SceneMode  SceneMode `json:"scene_mode"`
	OutputName string    `json:"output_name"`
}

// ExecutionResult captures the outcome of one renderer subprocess run
type ExecutionResult struct {
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Elapsed  time.Duration `json:"elapsed"`
	TimedOut bool          `json:"timed_out"`
}

// AudioTrack is a synthesized narration file
type AudioTrack struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration_sec"`
}

// Result is the terminal payload of one pipeline run
type Result struct {
	VideoPath   string `json:"video_path"`
	Elaboration string `json:"elaboration"`
	SceneCode   string `json:"scene_code"`
	Narration   string `json:"narration"`
	Use3D       bool   `json:"use_3d"`
}

package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Render RenderConfig `yaml:"render"`
	Locate LocateConfig `yaml:"locate"`
	Audio  AudioConfig  `yaml:"audio"`
	Mux    MuxConfig    `yaml:"mux"`
	Server ServerConfig `yaml:"server"`
	Paths  PathsConfig  `yaml:"paths"`
}

type LLMConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxRetries  int     `yaml:"max_retries"`
}

type RenderConfig struct {
	ManimBin     string `yaml:"manim_bin"`
	FPS          int    `yaml:"fps"`
	Timeout2DSec int    `yaml:"timeout_2d_sec"`
	Timeout3DSec int    `yaml:"timeout_3d_sec"`
}

type LocateConfig struct {
	RecencyWindowSec int   `yaml:"recency_window_sec"`
	SettleDelayMs    int   `yaml:"settle_delay_ms"`
	MinSizeBytes     int64 `yaml:"min_size_bytes"`
}

type AudioConfig struct {
	Language     string `yaml:"language"`
	Voice        string `yaml:"voice"`
	EdgeTTSVoice string `yaml:"edge_tts_voice"`
}

type MuxConfig struct {
	FFmpegBin    string  `yaml:"ffmpeg_bin"`
	FFprobeBin   string  `yaml:"ffprobe_bin"`
	MinTargetSec float64 `yaml:"min_target_sec"`
	MaxTargetSec float64 `yaml:"max_target_sec"`
	LoadRetries  int     `yaml:"load_retries"`
	LoadDelaySec int     `yaml:"load_delay_sec"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PathsConfig struct {
	Output  string `yaml:"output"`
	Scratch string `yaml:"scratch"`
}

// Load reads config.yaml and returns a Config struct with defaults filled in
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with all defaults, for callers without a config.yaml
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.LLM.MaxRetries <= 0 {
		c.LLM.MaxRetries = 3
	}
	if c.Render.ManimBin == "" {
		c.Render.ManimBin = "manim"
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = 30
	}
	if c.Render.Timeout2DSec <= 0 {
		c.Render.Timeout2DSec = 60
	}
	if c.Render.Timeout3DSec <= 0 {
		c.Render.Timeout3DSec = 120
	}
	if c.Locate.RecencyWindowSec <= 0 {
		c.Locate.RecencyWindowSec = 60
	}
	if c.Locate.SettleDelayMs <= 0 {
		c.Locate.SettleDelayMs = 500
	}
	if c.Locate.MinSizeBytes <= 0 {
		c.Locate.MinSizeBytes = 1000
	}
	if c.Audio.Language == "" {
		c.Audio.Language = "en-US"
	}
	if c.Audio.EdgeTTSVoice == "" {
		c.Audio.EdgeTTSVoice = "en-US-GuyNeural"
	}
	if c.Mux.FFmpegBin == "" {
		c.Mux.FFmpegBin = "ffmpeg"
	}
	if c.Mux.FFprobeBin == "" {
		c.Mux.FFprobeBin = "ffprobe"
	}
	if c.Mux.MinTargetSec <= 0 {
		c.Mux.MinTargetSec = 30
	}
	if c.Mux.MaxTargetSec <= 0 {
		c.Mux.MaxTargetSec = 60
	}
	if c.Mux.LoadRetries <= 0 {
		c.Mux.LoadRetries = 3
	}
	if c.Mux.LoadDelaySec <= 0 {
		c.Mux.LoadDelaySec = 2
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.Scratch == "" {
		c.Paths.Scratch = filepath.Join(os.TempDir(), "manim_ai")
	}
}

// Timeout2D is the wall-clock bound for a 2D render
func (c *Config) Timeout2D() time.Duration {
	return time.Duration(c.Render.Timeout2DSec) * time.Second
}

// Timeout3D is the wall-clock bound for a 3D render
func (c *Config) Timeout3D() time.Duration {
	return time.Duration(c.Render.Timeout3DSec) * time.Second
}

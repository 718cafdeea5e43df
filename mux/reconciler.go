// Package mux reconciles the rendered video and the synthesized narration
// into one artifact with matching track durations, then muxes them.
package mux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"eduvid-pipeline/config"
	"eduvid-pipeline/types"
)

// Plan is the deterministic reconciliation decision for one video/audio pair.
// The target duration is the video duration clamped to [MinTarget, MaxTarget];
// audio is then cut or silence-padded to the target.
type Plan struct {
	Target      float64
	TrimVideo   bool    // video runs past the upper bound
	ExtendVideo float64 // seconds of freeze-frame to append below the lower bound
	TrimAudio   bool
	PadAudio    bool
}

// PlanReconciliation applies the fixed target-duration policy.
func PlanReconciliation(videoDur, audioDur, minTarget, maxTarget float64) Plan {
	p := Plan{Target: videoDur}
	switch {
	case videoDur > maxTarget:
		p.Target = maxTarget
		p.TrimVideo = true
	case videoDur < minTarget:
		p.Target = minTarget
		p.ExtendVideo = minTarget - videoDur
	}
	if audioDur > p.Target {
		p.TrimAudio = true
	} else if audioDur < p.Target {
		p.PadAudio = true
	}
	return p
}

// Reconciler attaches a narration track to a rendered video
type Reconciler struct {
	cfg *config.Config
}

// New creates a Reconciler
func New(cfg *config.Config) *Reconciler {
	return &Reconciler{cfg: cfg}
}

// Attach reconciles durations and muxes the audio track into the video at
// videoPath, atomically replacing the video-only file. The standalone audio
// temp file and any muxer temp output are removed on every exit path.
func (r *Reconciler) Attach(ctx context.Context, videoPath string, track *types.AudioTrack) error {
	tempOut := strings.TrimSuffix(videoPath, ".mp4") + "_temp_audio.mp4"
	defer os.Remove(track.Path)
	defer os.Remove(tempOut)

	log.Info("[mux] Adding narration audio...")

	// Loading: probe the rendered video. Decode-based loading can fail on
	// files the muxer can still stream-copy, so a persistent probe failure
	// routes to the stream-copy fallback rather than aborting.
	videoDur, err := r.probeWithRetry(videoPath)
	if err != nil {
		log.Warnf("[mux] Could not open rendered video after retries: %v", err)
		log.Info("[mux] Falling back to stream-copy merge...")
		return r.fallbackMerge(ctx, videoPath, track.Path, tempOut)
	}

	audioDur := track.Duration
	if audioDur <= 0 {
		if audioDur, err = r.probeDuration(track.Path); err != nil {
			return fmt.Errorf("probe audio: %w", err)
		}
	}

	plan := PlanReconciliation(videoDur, audioDur, r.cfg.Mux.MinTargetSec, r.cfg.Mux.MaxTargetSec)
	log.Infof("[mux] Video: %.1fs, Audio: %.1fs → target %.1fs (trimV=%v extV=%.1fs trimA=%v padA=%v)",
		videoDur, audioDur, plan.Target, plan.TrimVideo, plan.ExtendVideo, plan.TrimAudio, plan.PadAudio)

	if err := r.primaryMerge(ctx, videoPath, track.Path, tempOut, plan); err != nil {
		return fmt.Errorf("mux failed: %w", err)
	}

	// Atomic replace: never leave a half-written file at the canonical path.
	if err := os.Rename(tempOut, videoPath); err != nil {
		return fmt.Errorf("replace video: %w", err)
	}

	log.Infof("[mux] Audio merged: %s (%.1fs)", videoPath, plan.Target)
	return nil
}

// primaryMerge runs one precise ffmpeg filter-graph pass: trims or
// freeze-extends the video, cuts or silence-pads the audio, and forces both
// tracks to the exact target before encoding.
func (r *Reconciler) primaryMerge(ctx context.Context, videoPath, audioPath, outPath string, plan Plan) error {
	videoChain := "null"
	switch {
	case plan.TrimVideo:
		videoChain = fmt.Sprintf("trim=0:%.3f,setpts=PTS-STARTPTS", plan.Target)
	case plan.ExtendVideo > 0:
		videoChain = fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f", plan.ExtendVideo)
	}

	audioChain := "anull"
	switch {
	case plan.TrimAudio:
		audioChain = fmt.Sprintf("atrim=0:%.3f,asetpts=PTS-STARTPTS", plan.Target)
	case plan.PadAudio:
		// apad appends zero-amplitude samples at the source sample rate.
		audioChain = fmt.Sprintf("apad=whole_dur=%.3f", plan.Target)
	}

	filter := fmt.Sprintf("[0:v]%s[v];[1:a]%s[a]", videoChain, audioChain)

	cmd := exec.CommandContext(ctx, r.cfg.Mux.FFmpegBin, "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "[a]",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		// Exact cut defends against off-by-epsilon durations from the filters.
		"-t", fmt.Sprintf("%.3f", plan.Target),
		"-movflags", "+faststart",
		outPath,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg merge: %w: %s", err, tail(stderr.String(), 500))
	}
	return nil
}

// fallbackMerge treats both files as opaque streams: the video is never
// decoded, audio is silence-padded to cover it and cut at the video's end.
func (r *Reconciler) fallbackMerge(ctx context.Context, videoPath, audioPath, outPath string) error {
	cmd := exec.CommandContext(ctx, r.cfg.Mux.FFmpegBin, "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-filter_complex", "[1:a]apad[a]",
		"-map", "0:v",
		"-map", "[a]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg fallback merge: %w: %s", err, tail(stderr.String(), 500))
	}

	if err := os.Rename(outPath, videoPath); err != nil {
		return fmt.Errorf("replace video: %w", err)
	}
	log.Infof("[mux] Fallback merge succeeded: %s", videoPath)
	return nil
}

// probeWithRetry retries a fixed number of times with fixed delay before
// giving up; a renderer may still hold the file open right after exiting.
func (r *Reconciler) probeWithRetry(path string) (float64, error) {
	delay := time.Duration(r.cfg.Mux.LoadDelaySec) * time.Second
	var dur float64
	var err error
	for attempt := 1; attempt <= r.cfg.Mux.LoadRetries; attempt++ {
		if dur, err = r.probeDuration(path); err == nil {
			return dur, nil
		}
		log.Warnf("[mux] Load attempt %d/%d failed: %v", attempt, r.cfg.Mux.LoadRetries, err)
		if attempt < r.cfg.Mux.LoadRetries {
			time.Sleep(delay)
		}
	}
	return 0, err
}

func (r *Reconciler) probeDuration(path string) (float64, error) {
	out, err := exec.Command(r.cfg.Mux.FFprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

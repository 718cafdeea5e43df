// Package audio turns narration text into a speech track.
package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"eduvid-pipeline/config"
	"eduvid-pipeline/types"
)

// Synthesizer produces narration audio via Google Cloud Text-to-Speech,
// falling back to the edge-tts CLI when no Google credentials are configured.
type Synthesizer struct {
	cfg *config.Config
}

// New creates a Synthesizer
func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Synthesize writes spoken audio for text to outFile and returns the track
// with its measured duration.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outFile string) (*types.AudioTrack, error) {
	log.Infof("[audio] Synthesizing narration (%d chars)...", len(text))

	var err error
	switch {
	case os.Getenv("GOOGLE_TTS_API_KEY") != "" || hasDefaultCredentials(ctx):
		err = s.googleTTS(ctx, text, outFile)
	default:
		err = s.edgeTTS(ctx, text, outFile)
	}
	if err != nil {
		return nil, err
	}

	track := &types.AudioTrack{Path: outFile}
	dur, err := getAudioDuration(s.cfg.Mux.FFprobeBin, outFile)
	if err != nil {
		log.Warnf("[audio] Could not measure narration duration: %v", err)
	} else {
		track.Duration = dur
	}

	log.Infof("[audio] Narration ready: %s (%.1fs)", outFile, track.Duration)
	return track, nil
}

// googleTTS calls the Cloud Text-to-Speech REST API
func (s *Synthesizer) googleTTS(ctx context.Context, text, outFile string) error {
	var opts []option.ClientOption
	if key := os.Getenv("GOOGLE_TTS_API_KEY"); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	} else {
		ts, err := google.DefaultTokenSource(ctx, texttospeech.CloudPlatformScope)
		if err != nil {
			return fmt.Errorf("tts credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}

	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("tts service: %w", err)
	}

	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: s.cfg.Audio.Language,
			Name:         s.cfg.Audio.Voice,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}

	resp, err := svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("tts synthesize: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return fmt.Errorf("decode tts audio: %w", err)
	}
	return os.WriteFile(outFile, data, 0644)
}

// edgeTTS shells out to the free edge-tts CLI, retrying transient failures
func (s *Synthesizer) edgeTTS(ctx context.Context, text, outFile string) error {
	if _, err := exec.LookPath("edge-tts"); err != nil {
		return fmt.Errorf("no TTS engine available: set GOOGLE_TTS_API_KEY or install edge-tts (pip install edge-tts)")
	}
	log.Info("[audio] Using edge-tts as TTS engine (fallback)")

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		cmd := exec.CommandContext(ctx,
			"edge-tts",
			"--voice", s.cfg.Audio.EdgeTTSVoice,
			"--text", text,
			"--write-media", outFile,
		)
		if err = cmd.Run(); err == nil {
			return nil
		}
		log.Warnf("[audio] edge-tts attempt %d failed: %v — retrying...", attempt, err)
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	return fmt.Errorf("edge-tts failed: %w", err)
}

func hasDefaultCredentials(ctx context.Context) bool {
	_, err := google.FindDefaultCredentials(ctx, texttospeech.CloudPlatformScope)
	return err == nil
}

// getAudioDuration uses ffprobe to get accurate audio duration in seconds
func getAudioDuration(ffprobeBin, audioFile string) (float64, error) {
	out, err := exec.Command(ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	).Output()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}

package render

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"eduvid-pipeline/config"
)

// NotFoundError reports that no recent artifact was found, with enough scan
// detail to diagnose without re-running.
type NotFoundError struct {
	Roots   []string
	Scanned int
	Window  time.Duration
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no video file newer than %s found (scanned %d mp4 files under %s)",
		e.Window, e.Scanned, strings.Join(e.Roots, ", "))
}

type candidate struct {
	path    string
	modTime time.Time
	size    int64
}

// Locator finds the renderer's output among stale and concurrent files.
// The renderer's output path convention is version-dependent and not part of
// its contract, so every run re-scans the search roots and picks the most
// recently modified match inside the recency window.
type Locator struct {
	cfg *config.Config

	// now is the clock used for the recency filter
	now func() time.Time
}

// NewLocator creates a Locator
func NewLocator(cfg *config.Config) *Locator {
	return &Locator{cfg: cfg, now: time.Now}
}

// Locate scans the search roots for .mp4 files modified within the recency
// window, copies the newest one to destPath and validates the copy.
// Ties on modification time break by lexicographic path order.
func (l *Locator) Locate(searchRoots []string, destPath string) (string, error) {
	window := time.Duration(l.cfg.Locate.RecencyWindowSec) * time.Second
	now := l.now()

	var all []candidate
	for _, root := range searchRoots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".mp4") {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			all = append(all, candidate{path: path, modTime: info.ModTime(), size: info.Size()})
			return nil
		})
	}

	var recent []candidate
	for _, c := range all {
		if now.Sub(c.modTime) < window {
			recent = append(recent, c)
		}
	}

	if len(recent) == 0 {
		log.Errorf("[locate] No recent video found; scanned %d mp4 files under %v", len(all), searchRoots)
		return "", &NotFoundError{Roots: searchRoots, Scanned: len(all), Window: window}
	}

	// Newest wins; lexicographic path order makes equal timestamps deterministic.
	sort.Slice(recent, func(i, j int) bool {
		if !recent[i].modTime.Equal(recent[j].modTime) {
			return recent[i].modTime.After(recent[j].modTime)
		}
		return recent[i].path < recent[j].path
	})
	latest := recent[0]
	log.Infof("[locate] Selected %s (%.1f KB, %d candidates)",
		latest.path, float64(latest.size)/1024, len(recent))

	// The renderer may still be flushing encoder buffers after its process
	// reports completion; give the writes a moment to settle.
	settle := time.Duration(l.cfg.Locate.SettleDelayMs) * time.Millisecond
	time.Sleep(settle)

	if err := copyFile(latest.path, destPath); err != nil {
		return "", fmt.Errorf("copy artifact: %w", err)
	}

	// Re-validate the copy: racing a still-flushing writer can leave a
	// truncated file at the destination.
	info, err := os.Stat(destPath)
	if err != nil {
		return "", fmt.Errorf("copied artifact missing: %w", err)
	}
	if info.Size() < l.cfg.Locate.MinSizeBytes {
		return "", fmt.Errorf("copied artifact too small (%d bytes < %d): %s",
			info.Size(), l.cfg.Locate.MinSizeBytes, destPath)
	}

	time.Sleep(settle)

	log.Infof("[locate] Video saved: %s (%.1f KB)", destPath, float64(info.Size())/1024)
	return destPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

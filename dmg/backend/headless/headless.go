// Package headless is a backend without any output, for automated runs.
package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/video"
)

// Backend runs a fixed amount of frames, recording a digest of each and
// optionally writing text snapshots.
type Backend struct {
	config         backend.Config
	logger         *slog.Logger
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	digests        []uint64
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

func New(maxFrames int, snapshotConfig SnapshotConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		logger:         logger,
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
		digests:        make([]uint64, 0, maxFrames),
	}
}

func (h *Backend) Init(config backend.Config) error {
	if h.maxFrames <= 0 {
		return fmt.Errorf("headless mode needs a positive frame count, got %d", h.maxFrames)
	}
	h.config = config

	h.logger.Info("running headless",
		"title", config.Title,
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update records the frame and asks to quit once the frame count is reached.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.Event, error) {
	h.frameCount++

	digest := frame.Hash()
	h.digests = append(h.digests, digest)
	h.logger.Debug("frame", "n", h.frameCount, "digest", fmt.Sprintf("%016x", digest))

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%10 == 0 {
		h.logger.Info("frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount < h.maxFrames {
		return nil, nil
	}

	// always keep the last frame around
	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
		h.saveSnapshot(frame)
	}
	h.logger.Info("headless execution completed",
		"frames", h.frameCount,
		"last_digest", fmt.Sprintf("%016x", digest))

	return []backend.Event{backend.EventQuit}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns the number of frames presented so far.
func (h *Backend) Frames() int {
	return h.frameCount
}

// Digests returns the hash of every frame presented, in order.
func (h *Backend) Digests() []uint64 {
	return h.digests
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters.
// An empty directory means a new temporary one.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "dmg-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.ROMName = strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))

	return config, nil
}

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	path, err := debug.SaveFrameSnapshot(frame, h.snapshotConfig.ROMName, h.snapshotConfig.Directory, uint64(h.frameCount))
	if err != nil {
		h.logger.Error("failed to save snapshot", "frame", h.frameCount, "error", err)
		return
	}
	h.logger.Info("saved frame snapshot", "frame", h.frameCount, "path", path)
}

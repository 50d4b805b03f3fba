package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/valerio/go-dmg/dmg/video"
)

// WriteFrameSnapshot writes the frame as text with a short metadata header.
func WriteFrameSnapshot(w io.Writer, frame *video.FrameBuffer, frameNumber uint64) error {
	_, err := fmt.Fprintf(w,
		"# Game Boy Frame Snapshot\n"+
			"# Frame: %d, Hash: %016x\n"+
			"# Resolution: %dx%d pixels\n"+
			"# Legend: █=black ▒=dark ░=light ' '=white\n"+
			"#\n%s",
		frameNumber, frame.Hash(), video.Width, video.Height, frame.String())
	return err
}

// SaveFrameSnapshot writes the frame to <directory>/<baseName>_frame_<n>.txt
// and returns the path of the new file.
func SaveFrameSnapshot(frame *video.FrameBuffer, baseName, directory string, frameNumber uint64) (string, error) {
	path := filepath.Join(directory, fmt.Sprintf("%s_frame_%d.txt", baseName, frameNumber))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteFrameSnapshot(file, frame, frameNumber); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return path, file.Close()
}

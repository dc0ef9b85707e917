package ffmpeg

import (
	"fmt"
	"log/slog"
	"os/exec"
)

// EnsureBinary verifies that the configured ffmpeg executable runs. Called
// once at startup; the bot refuses to start without a working encoder.
func EnsureBinary(path string) error {
	cmd := exec.Command(path, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg not found or not working at %q: %w", path, err)
	}
	slog.Debug("FFmpeg found and working", "path", path)
	return nil
}

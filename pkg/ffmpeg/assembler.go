package ffmpeg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	// ErrMerge signals a failed audio+video remux. Inputs are left in place.
	ErrMerge = errors.New("merge failed")
	// ErrConvert signals a failed container conversion. The input is left in
	// place.
	ErrConvert = errors.New("convert failed")
)

// Assembler drives the external ffmpeg process. All invocations use an
// argument vector; filenames never pass through a shell. A non-zero exit
// status is the only failure signal the tool gives us.
type Assembler struct {
	BinaryPath string
}

// Merge remuxes the elementary video track of videoPath with the audio
// track of audioPath into outPath without re-encoding video. The output
// container follows outPath (the caller derives it from the video input).
// Both inputs are deleted on success and kept on failure.
func (a *Assembler) Merge(audioPath, videoPath, outPath string) error {
	slog.Info("Merging", "out", filepath.Base(outPath))

	cmd := exec.Command(
		a.BinaryPath,
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-y",
		outPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s, output: %s", ErrMerge, err, strings.TrimSpace(string(output)))
	}

	removeInput(videoPath)
	removeInput(audioPath)
	slog.Info("Merged", "out", filepath.Base(outPath))
	return nil
}

// Convert re-wraps a single-stream file into the target container: "mp3"
// drops any video track and transcodes the audio, anything else is a pure
// stream copy into the new container. The input is deleted on success and
// kept on failure. Returns the output path.
func (a *Assembler) Convert(inputPath, targetExt string) (string, error) {
	outPath := swapExt(inputPath, targetExt)
	slog.Info("Converting", "in", filepath.Base(inputPath), "target", targetExt)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
	}
	if targetExt == "mp3" {
		args = append(args, "-vn")
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, "-y", outPath)

	cmd := exec.Command(a.BinaryPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %s, output: %s", ErrConvert, err, strings.TrimSpace(string(output)))
	}

	removeInput(inputPath)
	slog.Info("Converted", "out", filepath.Base(outPath))
	return outPath, nil
}

func removeInput(path string) {
	if err := os.Remove(path); err != nil {
		slog.Error("Failed to remove assembler input", "path", path, "err", err)
	}
}

// swapExt replaces the extension of path with ext ("mp3", "mp4").
func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}

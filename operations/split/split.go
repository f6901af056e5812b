// Package split converts a video file in to still frames by shelling out to
// an external ffmpeg binary. The frames are written to a folder that keeps
// the camera-id prefix of the source so they can be re-ingested as images.
package split

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sfomuseum/go-camera-trap/media"
)

// ErrNotVideo indicates the input file is not a recognized video type.
var ErrNotVideo = errors.New("not a video file")

// SplitOptions is a struct containing application-specific options for
// splitting one video.
type SplitOptions struct {
	// The ffmpeg binary to invoke. Defaults to "ffmpeg" on the PATH.
	FFmpeg string
	// The video file to split.
	Video string
	// The folder frames are written to. Defaults to a "<stem>-frames"
	// folder alongside the video. Created if absent.
	OutputDir string
	// Frames extracted per second of video. Defaults to 1.
	FrameRate float64
	// JPEG quality passed to ffmpeg's -q:v (2 is near-lossless).
	// Defaults to 2.
	JPEGQuality int
}

// Split extracts still frames from the video described by opts and returns
// the produced frame paths in frame order.
func Split(ctx context.Context, opts *SplitOptions) ([]string, error) {

	if media.Classify(opts.Video) != media.Video {
		return nil, fmt.Errorf("%w: %s", ErrNotVideo, opts.Video)
	}

	_, err := os.Stat(opts.Video)

	if err != nil {
		return nil, fmt.Errorf("Failed to stat video %s, %w", opts.Video, err)
	}

	ffmpeg := opts.FFmpeg

	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	rate := opts.FrameRate

	if rate <= 0 {
		rate = 1.0
	}

	quality := opts.JPEGQuality

	if quality <= 0 {
		quality = 2
	}

	base := filepath.Base(opts.Video)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	out_dir := opts.OutputDir

	if out_dir == "" {
		out_dir = filepath.Join(filepath.Dir(opts.Video), fmt.Sprintf("%s-frames", stem))
	}

	err = os.MkdirAll(out_dir, 0755)

	if err != nil {
		return nil, fmt.Errorf("Failed to create output folder %s, %w", out_dir, err)
	}

	pattern := filepath.Join(out_dir, fmt.Sprintf("%s-%%04d.jpg", stem))

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-i", opts.Video,
		"-vf", fmt.Sprintf("fps=%g", rate),
		"-q:v", fmt.Sprintf("%d", quality),
		pattern,
	}

	cmd := exec.CommandContext(ctx, ffmpeg, args...)

	out, err := cmd.CombinedOutput()

	if err != nil {
		return nil, fmt.Errorf("Failed to run %s, %w (%s)", ffmpeg, err, tail(out))
	}

	glob := filepath.Join(out_dir, fmt.Sprintf("%s-*.jpg", stem))
	frames, err := filepath.Glob(glob)

	if err != nil {
		return nil, fmt.Errorf("Failed to glob frames, %w", err)
	}

	sort.Strings(frames)
	return frames, nil
}

// tail returns the last few lines of ffmpeg output for error messages.
func tail(out []byte) string {

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")

	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}

	return strings.Join(lines, " / ")
}

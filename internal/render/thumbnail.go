package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"vidscript/internal/artifact"
	"vidscript/internal/services"
	"vidscript/internal/transcript"
)

// FFmpegCommand is the default encoder binary used for thumbnails.
const FFmpegCommand = "ffmpeg"

// thumbnailFrames is the batch size the ffmpeg thumbnail filter picks the most
// representative frame from.
const thumbnailFrames = 60

// Thumbnail extracts a representative JPEG frame from a media file with ffmpeg.
type Thumbnail struct {
	Size   Size
	FFmpeg string

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Thumbnail) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

// Name implements artifact.Converter.
func (*Thumbnail) Name() string { return "thumbnail" }

// OutputPath implements artifact.Converter.
func (*Thumbnail) OutputPath(source string) string { return artifact.ReplaceExt(source, "jpeg") }

// ResolveSource implements artifact.SourceResolver: record streams are mapped
// to the media file they describe.
func (*Thumbnail) ResolveSource(source string) (string, error) {
	if strings.EqualFold(filepath.Ext(source), transcript.Extension) {
		return transcript.ResolveMedia(source)
	}
	return source, nil
}

// Generate implements artifact.Converter. A missing ffmpeg binary is fatal for
// the whole batch.
func (t *Thumbnail) Generate(ctx context.Context, source, output string) error {
	binary := t.FFmpeg
	if binary == "" {
		binary = FFmpegCommand
	}
	size := t.Size
	if size == (Size{}) {
		size = DefaultThumbnailSize
	}
	if t.commandRunner == nil {
		if _, err := exec.LookPath(binary); err != nil {
			return services.Wrap(services.ErrFatal, "thumbnail", "lookup", fmt.Sprintf("%s not found in PATH", binary), err)
		}
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrIO, "thumbnail", "stat source", source, err)
	}

	tmp := filepath.Join(filepath.Dir(output), "."+strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))+".partial.jpeg")
	args := buildThumbnailArgs(source, tmp, size)
	if err := t.run(ctx, binary, args...); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrExternalTool, "thumbnail", "ffmpeg", source, err)
	}
	if err := os.Rename(tmp, output); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrIO, "thumbnail", "rename", output, err)
	}
	return nil
}

func buildThumbnailArgs(source, output string, size Size) []string {
	return []string{
		"-v", "error",
		"-y",
		"-pattern_type", "none",
		"-i", source,
		"-vf", fmt.Sprintf("scale=%d:%d,thumbnail=%d", size.Width, size.Height, thumbnailFrames),
		"-frames:v", "1",
		"-update", "1",
		output,
	}
}

func (t *Thumbnail) run(ctx context.Context, name string, args ...string) error {
	if t.commandRunner != nil {
		return t.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

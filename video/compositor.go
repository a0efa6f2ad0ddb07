package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"shortsbot/captions"
	"shortsbot/config"
	"shortsbot/types"
)

// Output geometry is fixed: vertical 1080x1920 for shorts platforms.
const (
	outputWidth  = 1080
	outputHeight = 1920

	titleFontSize   = 90
	captionFontSize = 70

	// tail buffer appended after the narration ends
	longTailBuffer = 5 * time.Second
)

// Compositor renders final videos with ffmpeg: background footage scaled,
// cropped and looped to the target duration, text overlays, and a
// narration/music audio mix.
type Compositor struct {
	cfg *config.Config

	// render retry policy, overridable in tests
	Attempts int
	Backoff  time.Duration
}

func New(cfg *config.Config) *Compositor {
	return &Compositor{cfg: cfg, Attempts: 3, Backoff: 10 * time.Second}
}

type inputFile struct {
	name string
	path string
}

// validateInputs stats every required file before any rendering work begins
// and identifies the missing one in the error.
func validateInputs(files []inputFile) error {
	for _, f := range files {
		if _, err := os.Stat(f.path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s file not found: %s", f.name, f.path)
			}
			return fmt.Errorf("%s file not readable: %w", f.name, err)
		}
		log.Printf("[render] ✓ %s: %s", f.name, f.path)
	}
	return nil
}

func (c *Compositor) fontPath() string {
	return filepath.Join(c.cfg.Paths.Fonts, c.cfg.Video.Font)
}

// ComposeShort renders a short: background looped/trimmed to the fixed clip
// duration, background music as the only audio, title and story text overlaid
// for the full clip.
func (c *Compositor) ComposeShort(ctx context.Context, job *types.RenderJob) (string, error) {
	err := validateInputs([]inputFile{
		{"background video", job.Background.Path},
		{"background music", job.Music.Path},
		{"font", c.fontPath()},
	})
	if err != nil {
		return "", err
	}

	duration := time.Duration(c.cfg.Video.ClipDurationSec * float64(time.Second))
	args := c.shortArgs(job, duration)

	log.Printf("[render] Creating short (%.0fs): %s", duration.Seconds(), job.OutputPath)
	if err := c.runFFmpeg(ctx, args); err != nil {
		return "", err
	}
	return job.OutputPath, nil
}

// ComposeLong renders a narrated story video: duration follows the narration
// plus a short tail, captions appear in their computed windows after the
// title, music sits under the voice.
func (c *Compositor) ComposeLong(ctx context.Context, job *types.RenderJob) (string, error) {
	err := validateInputs([]inputFile{
		{"background video", job.Background.Path},
		{"voiceover", job.NarrationPath},
		{"background music", job.Music.Path},
		{"font", c.fontPath()},
	})
	if err != nil {
		return "", err
	}

	narration, err := Probe(job.NarrationPath)
	if err != nil {
		return "", err
	}
	duration := narration + longTailBuffer
	args := c.longArgs(job, duration)

	log.Printf("[render] Creating story video (%.0fs narration + %.0fs tail): %s",
		narration.Seconds(), longTailBuffer.Seconds(), job.OutputPath)
	if err := c.runFFmpeg(ctx, args); err != nil {
		return "", err
	}
	return job.OutputPath, nil
}

// RenderWithRetry runs render up to Attempts times with a fixed Backoff
// between failures, then reports the last error upward.
func (c *Compositor) RenderWithRetry(ctx context.Context, render func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.Attempts; attempt++ {
		out, err := render(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		log.Printf("[render] attempt %d/%d failed: %v", attempt, c.Attempts, err)
		if attempt < c.Attempts {
			select {
			case <-time.After(c.Backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("render failed after %d attempts: %w", c.Attempts, lastErr)
}

func (c *Compositor) shortArgs(job *types.RenderJob, duration time.Duration) []string {
	args := []string{"-y"}
	if c.cfg.Video.HardwareAccel {
		args = append(args, "-hwaccel", "qsv")
	}
	args = append(args,
		"-stream_loop", "-1",
		"-i", job.Background.Path,
		"-i", job.Music.Path,
		"-filter_complex", c.shortFilter(job),
		"-map", "[video]",
		"-map", "[audio]",
	)
	return append(args, c.outputArgs(duration, job.OutputPath)...)
}

func (c *Compositor) longArgs(job *types.RenderJob, duration time.Duration) []string {
	args := []string{"-y"}
	if c.cfg.Video.HardwareAccel {
		args = append(args, "-hwaccel", "qsv")
	}
	args = append(args,
		"-stream_loop", "-1",
		"-i", job.Background.Path,
		"-i", job.NarrationPath,
		"-i", job.Music.Path,
		"-filter_complex", c.longFilter(job),
		"-map", "[video]",
		"-map", "[audio]",
	)
	return append(args, c.outputArgs(duration, job.OutputPath)...)
}

// outputArgs holds the encoder flags shared by both forms: quality tier,
// qsv/libx264 switch, aac audio, exact duration, faststart for streaming.
func (c *Compositor) outputArgs(duration time.Duration, outPath string) []string {
	p := presetFor(c.cfg.Video.Quality)

	var args []string
	if c.cfg.Video.HardwareAccel {
		args = append(args, "-c:v", "h264_qsv")
	} else {
		args = append(args, "-c:v", "libx264")
	}
	return append(args,
		"-preset", p.preset,
		"-crf", p.crf,
		"-profile:v", "high",
		"-level", "4.0",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "48000",
		"-t", fmt.Sprintf("%.3f", duration.Seconds()),
		"-movflags", "+faststart",
		outPath,
	)
}

// videoChain scales the background to fill 1920 height, center-crops to
// 1080 wide and normalizes fps/timestamps.
func (c *Compositor) videoChain() string {
	return fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,setpts=PTS-STARTPTS",
		outputWidth, outputHeight, outputWidth, outputHeight, c.cfg.Video.FPS,
	)
}

func (c *Compositor) shortFilter(job *types.RenderJob) string {
	width := c.cfg.Captions.LineWidth

	chain := c.videoChain()
	chain += "," + c.drawText(strings.ToUpper(captions.Wrap(job.Story.Title, width)), titleFontSize, true, "(h-text_h)/4", "")
	chain += "," + c.drawText(captions.Wrap(job.Story.Body, width), captionFontSize, false, "(h-text_h)/2", "")
	chain += "[video]"

	audio := "[1:a]volume=1.0,aloop=loop=-1:size=2e+09[audio]"
	return chain + ";" + audio
}

func (c *Compositor) longFilter(job *types.RenderJob) string {
	width := c.cfg.Captions.LineWidth

	chain := c.videoChain()
	if job.TitleWindow > 0 {
		enable := fmt.Sprintf("between(t,0,%.3f)", job.TitleWindow.Seconds())
		chain += "," + c.drawText(strings.ToUpper(captions.Wrap(job.Story.Title, width)), titleFontSize, true, "(h-text_h)/2", enable)
	}
	for _, seg := range job.Segments {
		enable := fmt.Sprintf("between(t,%.3f,%.3f)", seg.Start.Seconds(), seg.End.Seconds())
		chain += "," + c.drawText(captions.Wrap(seg.Text, width), captionFontSize, false, "(h-text_h)/2", enable)
	}
	chain += "[video]"

	audio := fmt.Sprintf(
		"[2:a]volume=%.2f,aloop=loop=-1:size=2e+09[bg_music];"+
			"[1:a]volume=1.0[voice];"+
			"[voice][bg_music]amix=inputs=2:duration=first:dropout_transition=3[audio]",
		c.cfg.Video.MusicVolume,
	)
	return chain + ";" + audio
}

func (c *Compositor) drawText(text string, fontSize int, boxed bool, yExpr, enable string) string {
	d := fmt.Sprintf(
		"drawtext=fontfile='%s':text='%s':fontcolor=white:fontsize=%d:borderw=3:bordercolor=black",
		c.fontPath(), escapeDrawtext(text), fontSize,
	)
	if boxed {
		d += ":box=1:boxcolor=black@0.5:boxborderw=20"
	}
	d += ":x=(w-text_w)/2:y=" + yExpr
	if enable != "" {
		d += fmt.Sprintf(":enable='%s'", enable)
	}
	return d
}

// escapeDrawtext makes text safe inside a quoted drawtext value. Quote
// characters are dropped rather than escaped, matching how titles are
// sanitized before display.
var drawtextReplacer = strings.NewReplacer(
	"'", "",
	`"`, "",
	"\\", "",
	":", "\\:",
	",", "\\,",
	";", "",
	"%", "\\%",
	"[", "(",
	"]", ")",
)

func escapeDrawtext(s string) string {
	return drawtextReplacer.Replace(s)
}

func (c *Compositor) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg render: %w", err)
	}
	return nil
}

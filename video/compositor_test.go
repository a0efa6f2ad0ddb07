package video

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"shortsbot/config"
	"shortsbot/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	fontsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(fontsDir, "test.ttf"), []byte("f"), 0644); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		Captions: config.CaptionsConfig{LineWidth: 30, MaxLines: 8},
		Video: config.VideoConfig{
			FPS:             30,
			ClipDurationSec: 20,
			Quality:         "medium",
			MusicVolume:     0.08,
			Font:            "test.ttf",
		},
		Paths: config.PathsConfig{Fonts: fontsDir},
	}
}

func testJob(t *testing.T, withNarration bool) *types.RenderJob {
	t.Helper()
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.mp4")
	music := filepath.Join(dir, "music.mp3")
	for _, p := range []string{bg, music} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	job := &types.RenderJob{
		Story:      &types.Story{Title: "The Attic", Body: "The ladder was already down."},
		Background: types.MediaAsset{Path: bg, Kind: types.BackgroundVideo},
		Music:      types.MediaAsset{Path: music, Kind: types.BackgroundAudio},
		OutputPath: filepath.Join(dir, "out.mp4"),
	}
	if withNarration {
		narr := filepath.Join(dir, "narration.mp3")
		if err := os.WriteFile(narr, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		job.NarrationPath = narr
	}
	return job
}

func TestValidateInputsIdentifiesMissingFile(t *testing.T) {
	dir := t.TempDir()
	exists := filepath.Join(dir, "a.mp4")
	if err := os.WriteFile(exists, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "b.mp3")

	err := validateInputs([]inputFile{
		{"background video", exists},
		{"voiceover", missing},
	})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	assert.Equal(t, true, strings.Contains(err.Error(), "voiceover"))
	assert.Equal(t, true, strings.Contains(err.Error(), missing))
}

func TestComposeLongFailsFastWithoutRenderer(t *testing.T) {
	// Narration file missing: must fail during validation, before any
	// ffmpeg/ffprobe invocation.
	c := New(testConfig(t))
	job := testJob(t, false)
	_, err := c.ComposeLong(t.Context(), job)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assert.Equal(t, true, strings.Contains(err.Error(), "voiceover"))
}

func TestQualityPresets(t *testing.T) {
	assert.Equal(t, qualityPreset{"ultrafast", "28"}, presetFor("fast"))
	assert.Equal(t, qualityPreset{"medium", "23"}, presetFor("medium"))
	assert.Equal(t, qualityPreset{"slow", "20"}, presetFor("high"))
	assert.Equal(t, qualityPreset{"veryslow", "18"}, presetFor("best"))
	// unknown tier falls back to the balanced default
	assert.Equal(t, qualityPreset{"medium", "23"}, presetFor("turbo"))
}

func TestShortArgsDuration(t *testing.T) {
	c := New(testConfig(t))
	job := testJob(t, false)
	args := c.shortArgs(job, 20*time.Second)

	joined := strings.Join(args, " ")
	// the clip duration drives -t exactly, so a shorter background is
	// looped and a longer one trimmed to the same length
	assert.Equal(t, true, strings.Contains(joined, "-t 20.000"))
	assert.Equal(t, true, strings.Contains(joined, "-stream_loop -1"))
	assert.Equal(t, true, strings.Contains(joined, "-movflags +faststart"))
	assert.Equal(t, true, strings.Contains(joined, "-c:v libx264"))
	assert.Equal(t, false, strings.Contains(joined, "h264_qsv"))
}

func TestHardwareAccelSwitch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Video.HardwareAccel = true
	c := New(cfg)
	job := testJob(t, true)

	joined := strings.Join(c.longArgs(job, time.Minute), " ")
	assert.Equal(t, true, strings.Contains(joined, "-hwaccel qsv"))
	assert.Equal(t, true, strings.Contains(joined, "-c:v h264_qsv"))
	assert.Equal(t, false, strings.Contains(joined, "libx264"))
}

func TestLongFilterSegmentWindows(t *testing.T) {
	c := New(testConfig(t))
	job := testJob(t, true)
	job.TitleWindow = 3 * time.Second
	job.Segments = []types.CaptionSegment{
		{Text: "First part.", Start: 3 * time.Second, End: 10 * time.Second},
		{Text: "Second part.", Start: 10 * time.Second, End: 20 * time.Second},
	}

	filter := c.longFilter(job)

	assert.Equal(t, 3, strings.Count(filter, "drawtext=")) // title + 2 segments
	assert.Equal(t, true, strings.Contains(filter, "between(t,0,3.000)"))
	assert.Equal(t, true, strings.Contains(filter, "between(t,3.000,10.000)"))
	assert.Equal(t, true, strings.Contains(filter, "between(t,10.000,20.000)"))
	assert.Equal(t, true, strings.Contains(filter, "scale=1080:1920"))
	assert.Equal(t, true, strings.Contains(filter, "crop=1080:1920"))
	assert.Equal(t, true, strings.Contains(filter, "amix=inputs=2:duration=first:dropout_transition=3"))
	assert.Equal(t, true, strings.Contains(filter, "volume=0.08"))
}

func TestShortFilterOverlaysTitleAndBody(t *testing.T) {
	c := New(testConfig(t))
	job := testJob(t, false)

	filter := c.shortFilter(job)
	assert.Equal(t, 2, strings.Count(filter, "drawtext="))
	assert.Equal(t, true, strings.Contains(filter, "THE ATTIC"))
	assert.Equal(t, true, strings.Contains(filter, "box=1:boxcolor=black@0.5"))
	// short-form audio is the music track only, at full volume
	assert.Equal(t, true, strings.Contains(filter, "[1:a]volume=1.0,aloop"))
	assert.Equal(t, false, strings.Contains(filter, "amix"))
}

func TestEscapeDrawtext(t *testing.T) {
	assert.Equal(t, "its here", escapeDrawtext("it's here"))
	assert.Equal(t, "a\\: b\\, c", escapeDrawtext("a: b, c"))
	assert.Equal(t, "100\\% done", escapeDrawtext("100% done"))
}

func TestRenderWithRetryGivesUp(t *testing.T) {
	c := New(testConfig(t))
	c.Backoff = time.Millisecond

	calls := 0
	_, err := c.RenderWithRetry(t.Context(), func(ctx context.Context) (string, error) {
		calls++
		return "", os.ErrNotExist
	})
	assert.Equal(t, 3, calls)
	if err == nil {
		t.Fatal("expected failure after retries")
	}
}

func TestRenderWithRetryStopsOnSuccess(t *testing.T) {
	c := New(testConfig(t))
	c.Backoff = time.Millisecond

	calls := 0
	out, err := c.RenderWithRetry(t.Context(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", os.ErrNotExist
		}
		return "final.mp4", nil
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "final.mp4", out)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
video:
  clip_duration_sec: 25
upload:
  platforms: ["youtube", "facebook"]
schedule:
  short_times: ["09:00", "18:00"]
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	assert.Equal(t, nil, err)

	// explicit values survive
	assert.Equal(t, 25.0, cfg.Video.ClipDurationSec)
	assert.Equal(t, []string{"youtube", "facebook"}, cfg.Upload.Platforms)
	assert.Equal(t, []string{"09:00", "18:00"}, cfg.Schedule.ShortTimes)

	// defaults fill the rest
	assert.Equal(t, "openai", cfg.Content.Source)
	assert.Equal(t, 30, cfg.Captions.LineWidth)
	assert.Equal(t, 8, cfg.Captions.MaxLines)
	assert.Equal(t, 3.0, cfg.Captions.TitleWindowSec)
	assert.Equal(t, "medium", cfg.Video.Quality)
	assert.Equal(t, 30, cfg.Video.FPS)
	assert.Equal(t, 0.08, cfg.Video.MusicVolume)
	assert.Equal(t, "22", cfg.Upload.CategoryID)
	assert.Equal(t, "America/New_York", cfg.Schedule.Timezone)
	assert.Equal(t, "assets/background_videos", cfg.Paths.BackgroundVideos)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NotEqual(t, nil, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("video: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	assert.NotEqual(t, nil, err)
}

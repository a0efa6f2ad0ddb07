package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Content   ContentConfig   `yaml:"content"`
	Narration NarrationConfig `yaml:"narration"`
	Captions  CaptionsConfig  `yaml:"captions"`
	Video     VideoConfig     `yaml:"video"`
	Upload    UploadConfig    `yaml:"upload"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Paths     PathsConfig     `yaml:"paths"`
}

type ContentConfig struct {
	Source        string   `yaml:"source"` // openai | reddit
	OpenAIModel   string   `yaml:"openai_model"`
	Categories    []string `yaml:"categories"`
	ShortMaxWords int      `yaml:"short_max_words"`
	LongMinChars  int      `yaml:"long_min_chars"`
	Subreddit     string   `yaml:"subreddit"`
}

type NarrationConfig struct {
	Voice         string `yaml:"voice"`
	Rate          string `yaml:"rate"`
	Pitch         string `yaml:"pitch"`
	ChunkMaxChars int    `yaml:"chunk_max_chars"`
}

type CaptionsConfig struct {
	LineWidth      int     `yaml:"line_width"`
	MaxLines       int     `yaml:"max_lines"`
	TitleWindowSec float64 `yaml:"title_window_sec"`
}

type VideoConfig struct {
	FPS             int     `yaml:"fps"`
	ClipDurationSec float64 `yaml:"clip_duration_sec"`
	Quality         string  `yaml:"quality"` // fast | medium | high | best
	MusicVolume     float64 `yaml:"music_volume"`
	HardwareAccel   bool    `yaml:"hardware_accel"`
	Font            string  `yaml:"font"`
}

type UploadConfig struct {
	Platforms           []string `yaml:"platforms"`
	TitleTemplate       string   `yaml:"title_template"`
	DescriptionTemplate string   `yaml:"description_template"`
	Tags                []string `yaml:"tags"`
	CategoryID          string   `yaml:"category_id"`
	Privacy             string   `yaml:"privacy"`
	MadeForKids         bool     `yaml:"made_for_kids"`
	GraphAPIURL         string   `yaml:"graph_api_url"`
	ChunkSizeMB         int      `yaml:"chunk_size_mb"`
}

type ScheduleConfig struct {
	Timezone         string   `yaml:"timezone"`
	ShortTimes       []string `yaml:"short_times"`
	LongTimes        []string `yaml:"long_times"`
	TokenRefreshTime string   `yaml:"token_refresh_time"`
}

type PathsConfig struct {
	BackgroundVideos string `yaml:"background_videos"`
	AudioTracks      string `yaml:"audio_tracks"`
	Fonts            string `yaml:"fonts"`
	OutputShort      string `yaml:"output_short"`
	OutputLong       string `yaml:"output_long"`
	Runs             string `yaml:"runs"`
	Tokens           string `yaml:"tokens"`
}

// Load reads config.yaml and returns a Config struct with defaults applied
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Content.Source == "" {
		c.Content.Source = "openai"
	}
	if c.Content.OpenAIModel == "" {
		c.Content.OpenAIModel = "gpt-4o-mini"
	}
	if len(c.Content.Categories) == 0 {
		c.Content.Categories = []string{
			"Paranormal/Supernatural", "Psychological Horror", "Creature Feature/Monster",
			"Home Invasion/Stalker", "Urban Legend/Folklore", "Techno-Horror",
			"Surprise/Twist Endings", "Dark Comedy/Absurdist", "Mystery (Micro-Mystery)",
			"Historical Horror",
		}
	}
	if c.Content.ShortMaxWords == 0 {
		c.Content.ShortMaxWords = 50
	}
	if c.Content.LongMinChars == 0 {
		c.Content.LongMinChars = 2000
	}
	if c.Content.Subreddit == "" {
		c.Content.Subreddit = "shortscarystories"
	}
	if c.Narration.Voice == "" {
		c.Narration.Voice = "en-US-JennyNeural"
	}
	if c.Narration.Rate == "" {
		c.Narration.Rate = "0%"
	}
	if c.Narration.Pitch == "" {
		c.Narration.Pitch = "0%"
	}
	if c.Narration.ChunkMaxChars == 0 {
		c.Narration.ChunkMaxChars = 2500
	}
	if c.Captions.LineWidth == 0 {
		c.Captions.LineWidth = 30
	}
	if c.Captions.MaxLines == 0 {
		c.Captions.MaxLines = 8
	}
	if c.Captions.TitleWindowSec == 0 {
		c.Captions.TitleWindowSec = 3.0
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 30
	}
	if c.Video.ClipDurationSec == 0 {
		c.Video.ClipDurationSec = 20
	}
	if c.Video.Quality == "" {
		c.Video.Quality = "medium"
	}
	if c.Video.MusicVolume == 0 {
		c.Video.MusicVolume = 0.08
	}
	if c.Video.Font == "" {
		c.Video.Font = "Lato-Regular.ttf"
	}
	if c.Upload.TitleTemplate == "" {
		c.Upload.TitleTemplate = "{title} #Shorts"
	}
	if c.Upload.DescriptionTemplate == "" {
		c.Upload.DescriptionTemplate = "{title}\n\n{summary}\n\nFollow for daily stories."
	}
	if len(c.Upload.Tags) == 0 {
		c.Upload.Tags = []string{"shorts", "story", "horror", "creepy", "scarystory"}
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = "22"
	}
	if c.Upload.Privacy == "" {
		c.Upload.Privacy = "public"
	}
	if c.Upload.GraphAPIURL == "" {
		c.Upload.GraphAPIURL = "https://graph.facebook.com/v19.0"
	}
	if c.Upload.ChunkSizeMB == 0 {
		c.Upload.ChunkSizeMB = 4
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if c.Schedule.TokenRefreshTime == "" {
		c.Schedule.TokenRefreshTime = "03:30"
	}
	if c.Paths.BackgroundVideos == "" {
		c.Paths.BackgroundVideos = "assets/background_videos"
	}
	if c.Paths.AudioTracks == "" {
		c.Paths.AudioTracks = "assets/audio_tracks"
	}
	if c.Paths.Fonts == "" {
		c.Paths.Fonts = "assets/fonts"
	}
	if c.Paths.OutputShort == "" {
		c.Paths.OutputShort = "data/generated_shorts"
	}
	if c.Paths.OutputLong == "" {
		c.Paths.OutputLong = "data/generated_long_videos"
	}
	if c.Paths.Runs == "" {
		c.Paths.Runs = "data/runs"
	}
	if c.Paths.Tokens == "" {
		c.Paths.Tokens = "data/tokens"
	}
}

package types

import "time"

// Story holds one generated (or fallback) story for a single cycle
type Story struct {
	Title   string `json:"title"`
	Body    string `json:"story"`
	Summary string `json:"summary,omitempty"`
}

// AssetKind identifies what a media file is used for
type AssetKind string

const (
	BackgroundVideo AssetKind = "background_video"
	BackgroundAudio AssetKind = "background_audio"
)

// MediaAsset is a reference to a local media file
type MediaAsset struct {
	Path string    `json:"path"`
	Kind AssetKind `json:"kind"`
}

// CaptionSegment is one chunk of story text shown during [Start, End)
type CaptionSegment struct {
	Text  string        `json:"text"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// RenderJob aggregates everything the compositor needs for one output file
type RenderJob struct {
	Story         *Story           `json:"story"`
	Background    MediaAsset       `json:"background"`
	Music         MediaAsset       `json:"music"`
	NarrationPath string           `json:"narration_path,omitempty"`
	Segments      []CaptionSegment `json:"segments,omitempty"`
	TitleWindow   time.Duration    `json:"title_window"`
	OutputPath    string           `json:"output_path"`
}

// CycleState tracks one generation cycle for the run's state file
type CycleState struct {
	RunID         string   `json:"run_id"`
	Kind          string   `json:"kind"` // short | long
	StartedAt     string   `json:"started_at"`
	CompletedAt   string   `json:"completed_at"`
	Story         *Story   `json:"story,omitempty"`
	NarrationFile string   `json:"narration_file,omitempty"`
	VideoFile     string   `json:"video_file,omitempty"`
	Uploaded      []string `json:"uploaded,omitempty"`
	Error         string   `json:"error,omitempty"`
}

package upload

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shortsbot/config"
	"shortsbot/types"
)

// Uploader publishes a finished video to one platform
type Uploader interface {
	Name() string
	Upload(ctx context.Context, videoPath string, story *types.Story) error
}

// Dispatcher holds the configured uploader set and fans a video out to the
// enabled platforms. One platform failing never stops the others.
type Dispatcher struct {
	platforms []string
	uploaders map[string]Uploader
}

func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		platforms: cfg.Upload.Platforms,
		uploaders: make(map[string]Uploader),
	}
}

// Register adds an uploader keyed by its lowercase name
func (d *Dispatcher) Register(u Uploader) {
	d.uploaders[strings.ToLower(u.Name())] = u
}

// UploadAll tries every enabled platform. It succeeds when at least one
// platform accepted the video, or trivially when no platforms are enabled.
// Unknown platform names are warned about and skipped.
func (d *Dispatcher) UploadAll(ctx context.Context, videoPath string, story *types.Story) ([]string, error) {
	if len(d.platforms) == 0 {
		log.Println("[upload] no platforms configured — skipping upload stage")
		return nil, nil
	}

	var succeeded []string
	attempted := 0
	for _, name := range d.platforms {
		u, ok := d.uploaders[strings.ToLower(name)]
		if !ok {
			log.Printf("[upload] ⚠️  unknown platform %q — skipping", name)
			continue
		}
		attempted++

		log.Printf("[upload] uploading to %s...", u.Name())
		if err := u.Upload(ctx, videoPath, story); err != nil {
			log.Printf("[upload] %s upload failed: %v", u.Name(), err)
			continue
		}
		log.Printf("[upload] ✅ %s upload complete", u.Name())
		succeeded = append(succeeded, u.Name())
	}

	if attempted > 0 && len(succeeded) == 0 {
		return nil, fmt.Errorf("all %d platform upload(s) failed", attempted)
	}
	return succeeded, nil
}

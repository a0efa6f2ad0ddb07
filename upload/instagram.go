package upload

import (
	"context"
	"fmt"

	"shortsbot/types"
)

// InstagramUploader is a placeholder. The Reels Content Publishing API
// requires a publicly reachable video URL, which this pipeline does not
// provide yet.
type InstagramUploader struct{}

func NewInstagram() *InstagramUploader { return &InstagramUploader{} }

func (u *InstagramUploader) Name() string { return "Instagram" }

func (u *InstagramUploader) Upload(ctx context.Context, videoPath string, story *types.Story) error {
	return fmt.Errorf("instagram publishing is not implemented: the Reels API needs a public video URL")
}

package assets

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"shortsbot/types"
)

var videoExts = map[string]bool{".mp4": true, ".avi": true, ".mov": true, ".mkv": true}
var audioExts = map[string]bool{".mp3": true, ".wav": true, ".aac": true}

// Selector picks random background footage and music from the local
// asset folders.
type Selector struct {
	videoDir string
	audioDir string
}

func NewSelector(videoDir, audioDir string) *Selector {
	return &Selector{videoDir: videoDir, audioDir: audioDir}
}

// RandomBackgroundVideo returns one uniformly random background video.
func (s *Selector) RandomBackgroundVideo() (types.MediaAsset, error) {
	return s.pick(s.videoDir, videoExts, types.BackgroundVideo)
}

// RandomAudioTrack returns one uniformly random background music track.
func (s *Selector) RandomAudioTrack() (types.MediaAsset, error) {
	return s.pick(s.audioDir, audioExts, types.BackgroundAudio)
}

func (s *Selector) pick(dir string, exts map[string]bool, kind types.AssetKind) (types.MediaAsset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return types.MediaAsset{}, fmt.Errorf("read %s dir: %w", kind, err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(e.Name()))] {
			candidates = append(candidates, e.Name())
		}
	}

	if len(candidates) == 0 {
		return types.MediaAsset{}, fmt.Errorf("no %s assets found in %s", kind, dir)
	}

	name := candidates[rand.Intn(len(candidates))]
	log.Printf("[assets] picked %s: %s", kind, name)
	return types.MediaAsset{Path: filepath.Join(dir, name), Kind: kind}, nil
}

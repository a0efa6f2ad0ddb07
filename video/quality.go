package video

// qualityPreset maps a named tier to an encoder speed/quality trade-off
type qualityPreset struct {
	preset string
	crf    string
}

var qualityPresets = map[string]qualityPreset{
	"fast":   {preset: "ultrafast", crf: "28"},
	"medium": {preset: "medium", crf: "23"},
	"high":   {preset: "slow", crf: "20"},
	"best":   {preset: "veryslow", crf: "18"},
}

func presetFor(tier string) qualityPreset {
	if p, ok := qualityPresets[tier]; ok {
		return p
	}
	return qualityPresets["medium"]
}

package upload

import (
	"strings"

	"shortsbot/config"
	"shortsbot/types"
)

// renderTemplate fills {title} and {summary} placeholders from the story
func renderTemplate(tmpl string, story *types.Story) string {
	out := strings.ReplaceAll(tmpl, "{title}", story.Title)
	out = strings.ReplaceAll(out, "{summary}", story.Summary)
	return strings.TrimSpace(out)
}

func buildTitle(cfg *config.Config, story *types.Story) string {
	return renderTemplate(cfg.Upload.TitleTemplate, story)
}

func buildDescription(cfg *config.Config, story *types.Story) string {
	return renderTemplate(cfg.Upload.DescriptionTemplate, story)
}

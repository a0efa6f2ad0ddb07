package content

import (
	"context"
	"log"
	"math/rand"

	"shortsbot/config"
	"shortsbot/types"
)

// Pipeline wraps a Generator with the category rotation and the fallback
// recovery rule. Story never fails: any generation error is recovered by
// drawing from the fixed fallback list, so a cycle is never blocked by the
// text API.
type Pipeline struct {
	gen        Generator
	categories []string
}

func NewPipeline(cfg *config.Config, gen Generator) *Pipeline {
	return &Pipeline{gen: gen, categories: cfg.Content.Categories}
}

// Story fetches a story for a uniformly random category, falling back to a
// canned story on any failure.
func (p *Pipeline) Story(ctx context.Context, tier LengthTier) *types.Story {
	category := p.categories[rand.Intn(len(p.categories))]
	log.Printf("[content] generating %s story, category %q", tier, category)

	stop := startSpinner("Generating story")
	story, err := p.gen.Generate(ctx, category, tier)
	stop()

	if err != nil {
		log.Printf("[content] generation failed: %v — using fallback story", err)
		return randomFallback()
	}
	log.Printf("[content] ✅ story ready: %q (%d chars)", story.Title, len(story.Body))
	return story
}

package content

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"shortsbot/config"
	"shortsbot/types"
)

type stubGenerator struct {
	story *types.Story
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, category string, tier LengthTier) (*types.Story, error) {
	s.calls++
	return s.story, s.err
}

func testCfg() *config.Config {
	return &config.Config{
		Content: config.ContentConfig{
			Categories: []string{"Psychological Horror", "Urban Legend/Folklore"},
		},
	}
}

func TestStoryReturnsGeneratedStory(t *testing.T) {
	gen := &stubGenerator{story: &types.Story{Title: "A Title", Body: "A body."}}
	p := NewPipeline(testCfg(), gen)

	story := p.Story(context.Background(), TierShort)
	assert.Equal(t, "A Title", story.Title)
	assert.Equal(t, 1, gen.calls)
}

func TestStoryFallsBackOnFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("api unreachable")}
	p := NewPipeline(testCfg(), gen)

	inFallback := func(s *types.Story) bool {
		for _, f := range fallbackStories {
			if f.Title == s.Title && f.Body == s.Body {
				return true
			}
		}
		return false
	}

	// always a story, always from the fixed list, never an error or empty
	for i := 0; i < 10; i++ {
		story := p.Story(context.Background(), TierLong)
		if story == nil || story.Body == "" {
			t.Fatal("fallback story missing")
		}
		if !inFallback(story) {
			t.Fatalf("story %q not from the fallback list", story.Title)
		}
	}
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"title":"x"}`, cleanJSON("```json\n{\"title\":\"x\"}\n```"))
	assert.Equal(t, `{"title":"x"}`, cleanJSON("```\n{\"title\":\"x\"}\n```"))
	assert.Equal(t, `{"title":"x"}`, cleanJSON(`{"title":"x"}`))
}

func TestBuildPromptTiers(t *testing.T) {
	g := &OpenAIGenerator{shortMaxWords: 50, longMinChars: 2000}

	short := g.buildPrompt("Techno-Horror", TierShort)
	long := g.buildPrompt("Techno-Horror", TierLong)

	assert.Equal(t, true, len(short) > 0 && len(long) > 0)
	if short == long {
		t.Fatal("tiers should produce different prompts")
	}
}

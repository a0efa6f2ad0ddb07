package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"shortsbot/types"
)

// LengthTier selects how much story the generator is asked for
type LengthTier string

const (
	TierShort LengthTier = "short"
	TierLong  LengthTier = "long"
)

// Generator produces a story for a category and length tier
type Generator interface {
	Generate(ctx context.Context, category string, tier LengthTier) (*types.Story, error)
}

// OpenAIGenerator fetches stories from a chat-completions API
type OpenAIGenerator struct {
	client        openai.Client
	model         string
	shortMaxWords int
	longMinChars  int
}

func NewOpenAIGenerator(apiKey, model string, shortMaxWords, longMinChars int) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return &OpenAIGenerator{
		client:        openai.NewClient(option.WithAPIKey(apiKey)),
		model:         model,
		shortMaxWords: shortMaxWords,
		longMinChars:  longMinChars,
	}, nil
}

type storyJSON struct {
	Title   string `json:"title"`
	Story   string `json:"story"`
	Summary string `json:"summary"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, category string, tier LengthTier) (*types.Story, error) {
	story, err := g.complete(ctx, g.buildPrompt(category, tier))
	if err != nil {
		return nil, err
	}

	// A long story that came back too thin gets one follow-up pass before
	// we give up on the API's output.
	if tier == TierLong && len(story.Body) < g.longMinChars {
		log.Printf("[content] story too short (%d chars), requesting extension", len(story.Body))
		extended, err := g.extend(ctx, story)
		if err != nil {
			log.Printf("[content] extension failed, keeping original: %v", err)
		} else {
			story = extended
		}
	}
	return story, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) (*types.Story, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a writer for a faceless shorts channel. Respond with ONLY valid JSON, no markdown, no explanation."),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("story request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("story request returned no choices")
	}

	content := cleanJSON(resp.Choices[0].Message.Content)

	var raw storyJSON
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse story JSON: %w", err)
	}
	if raw.Title == "" || raw.Story == "" {
		return nil, fmt.Errorf("story response missing title or story")
	}
	return &types.Story{Title: raw.Title, Body: raw.Story, Summary: raw.Summary}, nil
}

func (g *OpenAIGenerator) extend(ctx context.Context, story *types.Story) (*types.Story, error) {
	prompt := fmt.Sprintf(
		"The following story is too short for a narrated video. Rewrite it as a longer, fuller version of at least %d characters, keeping the same title, tone and ending.\n\nTITLE: %s\n\nSTORY:\n%s\n\nReturn json with keys 'title', 'story' and 'summary', nothing else.",
		g.longMinChars, story.Title, story.Body,
	)
	return g.complete(ctx, prompt)
}

func (g *OpenAIGenerator) buildPrompt(category string, tier LengthTier) string {
	var sb strings.Builder
	switch tier {
	case TierLong:
		sb.WriteString(fmt.Sprintf("Write an original, engaging %s story for a narrated vertical video of about five minutes.\n", category))
		sb.WriteString("The story should:\n")
		sb.WriteString("- read naturally when spoken aloud\n")
		sb.WriteString("- build tension steadily and land its twist near the end\n")
		sb.WriteString(fmt.Sprintf("- be at least %d characters long\n", g.longMinChars))
	default:
		sb.WriteString(fmt.Sprintf("Generate an original, engaging %s story that would work well for a YouTube Short.\n", category))
		sb.WriteString("The story should be:\n")
		sb.WriteString(fmt.Sprintf("- about %d words maximum\n", g.shortMaxWords))
		sb.WriteString("- easy to read on screen\n")
		sb.WriteString("- original, not attributed to anyone\n")
		sb.WriteString("- built around an immediate punch\n")
	}
	sb.WriteString("\nReturn the title, the story text and a one-line summary as json with keys 'title', 'story' and 'summary', nothing else.")
	return sb.String()
}

// cleanJSON strips markdown fences if the model wraps its response in
// ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

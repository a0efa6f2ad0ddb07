package content

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"shortsbot/types"
)

// RedditGenerator sources stories from a subreddit's top posts instead of a
// generation API. The category argument is ignored; the subreddit is the
// category.
type RedditGenerator struct {
	client    *reddit.Client
	subreddit string
}

func NewRedditGenerator(subreddit string) (*RedditGenerator, error) {
	creds := reddit.Credentials{
		ID:       os.Getenv("REDDIT_CLIENT_ID"),
		Secret:   os.Getenv("REDDIT_CLIENT_SECRET"),
		Username: os.Getenv("REDDIT_USERNAME"),
		Password: os.Getenv("REDDIT_PASSWORD"),
	}
	if creds.ID == "" || creds.Secret == "" {
		return nil, fmt.Errorf("REDDIT_CLIENT_ID or REDDIT_CLIENT_SECRET not set")
	}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent("shortsbot/1.0"))
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &RedditGenerator{client: client, subreddit: subreddit}, nil
}

func (g *RedditGenerator) Generate(ctx context.Context, _ string, tier LengthTier) (*types.Story, error) {
	opts := &reddit.ListPostOptions{
		ListOptions: reddit.ListOptions{Limit: 10},
		Time:        "day",
	}
	posts, _, err := g.client.Subreddit.TopPosts(ctx, g.subreddit, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch top posts from r/%s: %w", g.subreddit, err)
	}

	var candidates []*reddit.Post
	for _, p := range posts {
		if p.Body != "" && !p.NSFW {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no usable text posts in r/%s today", g.subreddit)
	}

	post := candidates[rand.Intn(len(candidates))]
	return &types.Story{Title: post.Title, Body: post.Body}, nil
}

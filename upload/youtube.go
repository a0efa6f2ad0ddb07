package upload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shortsbot/config"
	"shortsbot/types"
)

// YouTubeUploader publishes videos through the YouTube Data API with a
// locally persisted, refreshable OAuth token.
type YouTubeUploader struct {
	cfg    *config.Config
	tokens *TokenStore
}

func NewYouTube(cfg *config.Config) *YouTubeUploader {
	return &YouTubeUploader{
		cfg:    cfg,
		tokens: NewTokenStore(filepath.Join(cfg.Paths.Tokens, "youtube_token.json")),
	}
}

func (u *YouTubeUploader) Name() string { return "YouTube" }

func (u *YouTubeUploader) oauthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID or YOUTUBE_CLIENT_SECRET not set")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://localhost",
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}, nil
}

// tokenSource wraps the stored token in a refreshing source. The refreshed
// token is persisted again after use so the next run skips the refresh.
func (u *YouTubeUploader) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	conf, err := u.oauthConfig()
	if err != nil {
		return nil, err
	}

	tok, err := u.tokens.Load()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil, fmt.Errorf(
				"no YouTube token stored. Run `shortsbot -authorize` once on a machine with a browser, then copy %s to this host",
				filepath.Join(u.cfg.Paths.Tokens, "youtube_token.json"))
		}
		return nil, err
	}
	return oauth2.ReuseTokenSource(tok, conf.TokenSource(ctx, tok)), nil
}

func (u *YouTubeUploader) persist(ts oauth2.TokenSource) {
	tok, err := ts.Token()
	if err != nil {
		return
	}
	if err := u.tokens.Save(tok); err != nil {
		log.Printf("[upload] warning: could not save refreshed YouTube token: %v", err)
	}
}

// Upload sends the video with a resumable chunked upload and progress
// logging.
func (u *YouTubeUploader) Upload(ctx context.Context, videoPath string, story *types.Story) error {
	ts, err := u.tokenSource(ctx)
	if err != nil {
		return fmt.Errorf("youtube auth: %w", err)
	}
	defer u.persist(ts)

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:           buildTitle(u.cfg, story),
			Description:     buildDescription(u.cfg, story),
			Tags:            u.cfg.Upload.Tags,
			CategoryId:      u.cfg.Upload.CategoryID,
			DefaultLanguage: "en",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.cfg.Upload.Privacy,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	log.Printf("[upload] YouTube: %q (%.1f MB)", video.Snippet.Title, float64(fi.Size())/1024/1024)

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f, googleapi.ChunkSize(int(u.cfg.Upload.ChunkSizeMB)<<20))
	call.ProgressUpdater(func(current, total int64) {
		if total > 0 {
			log.Printf("[upload] YouTube: %d%%", current*100/total)
		}
	})

	uploaded, err := call.Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
			return fmt.Errorf("youtube auth rejected (HTTP %d): re-run `shortsbot -authorize` to refresh credentials: %w", gerr.Code, err)
		}
		return fmt.Errorf("youtube upload: %w", err)
	}

	log.Printf("[upload] YouTube video ID: %s", uploaded.Id)
	log.Printf("[upload] https://www.youtube.com/shorts/%s", uploaded.Id)
	return nil
}

// RefreshToken forces a token refresh and re-saves the result. Registered
// as a periodic scheduler job so the refresh token never goes stale between
// upload windows.
func (u *YouTubeUploader) RefreshToken(ctx context.Context) error {
	conf, err := u.oauthConfig()
	if err != nil {
		return err
	}
	tok, err := u.tokens.Load()
	if err != nil {
		return fmt.Errorf("youtube token refresh: %w", err)
	}

	// expire the copy so the source actually round-trips to the server
	stale := *tok
	stale.Expiry = time.Now().Add(-time.Minute)
	fresh, err := conf.TokenSource(ctx, &stale).Token()
	if err != nil {
		return fmt.Errorf("youtube token refresh: %w", err)
	}
	if err := u.tokens.Save(fresh); err != nil {
		return err
	}
	log.Printf("[upload] YouTube token refreshed, expires %s", fresh.Expiry.Format("2006-01-02 15:04"))
	return nil
}

// Authorize runs the installed-app flow interactively and stores the
// resulting token. Meant for a one-time run on a machine with a browser.
func (u *YouTubeUploader) Authorize(ctx context.Context) error {
	conf, err := u.oauthConfig()
	if err != nil {
		return err
	}

	url := conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open this URL in a browser, approve access, then paste the code below:\n\n%s\n\nCode: ", url)

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := u.tokens.Save(tok); err != nil {
		return err
	}
	log.Printf("[upload] YouTube token saved to %s", filepath.Join(u.cfg.Paths.Tokens, "youtube_token.json"))
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"shortsbot/assets"
	"shortsbot/captions"
	"shortsbot/config"
	"shortsbot/content"
	"shortsbot/narration"
	"shortsbot/scheduler"
	"shortsbot/types"
	"shortsbot/upload"
	"shortsbot/video"
)

// App wires the pipeline stages together for one process lifetime. The
// story generator and narrator need API secrets, so they are built lazily
// by the cycle that uses them instead of at startup: `-authorize` then runs
// without any content/TTS credentials, and short cycles without Azure ones.
type App struct {
	cfg        *config.Config
	segmenter  *captions.Segmenter
	assets     *assets.Selector
	compositor *video.Compositor
	dispatcher *upload.Dispatcher
	youtube    *upload.YouTubeUploader

	storiesOnce sync.Once
	stories     *content.Pipeline
	storiesErr  error

	narratorOnce sync.Once
	narrator     *narration.Synthesizer
	narratorErr  error
}

func main() {
	// Load .env (local dev only — CI uses injected secrets)
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single cycle and exit instead of scheduling")
	kind := flag.String("kind", "short", "cycle kind for -once: short | long")
	authorize := flag.Bool("authorize", false, "run the interactive YouTube OAuth flow and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	for _, dir := range []string{
		cfg.Paths.BackgroundVideos, cfg.Paths.AudioTracks, cfg.Paths.Fonts,
		cfg.Paths.OutputShort, cfg.Paths.OutputLong, cfg.Paths.Runs, cfg.Paths.Tokens,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create dir %s: %v", dir, err)
		}
	}

	app := newApp(cfg)
	ctx := context.Background()

	if *authorize {
		if err := app.youtube.Authorize(ctx); err != nil {
			log.Fatalf("Authorization failed: %v", err)
		}
		return
	}

	if *once {
		var err error
		switch *kind {
		case "short":
			err = app.RunShortCycle(ctx)
		case "long":
			err = app.RunLongCycle(ctx)
		default:
			log.Fatalf("Unknown cycle kind %q (want short or long)", *kind)
		}
		if err != nil {
			log.Fatalf("❌ Cycle failed: %v", err)
		}
		return
	}

	app.runScheduler(ctx)
}

func newApp(cfg *config.Config) *App {
	dispatcher := upload.NewDispatcher(cfg)
	yt := upload.NewYouTube(cfg)
	dispatcher.Register(yt)
	dispatcher.Register(upload.NewFacebook(cfg))
	dispatcher.Register(upload.NewInstagram())

	return &App{
		cfg:        cfg,
		segmenter:  captions.NewSegmenter(cfg.Captions.LineWidth, cfg.Captions.MaxLines),
		assets:     assets.NewSelector(cfg.Paths.BackgroundVideos, cfg.Paths.AudioTracks),
		compositor: video.New(cfg),
		dispatcher: dispatcher,
		youtube:    yt,
	}
}

// storyPipeline builds the content pipeline on first use so missing
// generator credentials fail the cycle that needs them, not the process.
func (a *App) storyPipeline() (*content.Pipeline, error) {
	a.storiesOnce.Do(func() {
		gen, err := newGenerator(a.cfg)
		if err != nil {
			a.storiesErr = err
			return
		}
		a.stories = content.NewPipeline(a.cfg, gen)
	})
	return a.stories, a.storiesErr
}

// synthesizer builds the TTS client on first use. Only long cycles touch it.
func (a *App) synthesizer() (*narration.Synthesizer, error) {
	a.narratorOnce.Do(func() {
		a.narrator, a.narratorErr = narration.New(a.cfg)
	})
	return a.narrator, a.narratorErr
}

func newGenerator(cfg *config.Config) (content.Generator, error) {
	switch cfg.Content.Source {
	case "reddit":
		return content.NewRedditGenerator(cfg.Content.Subreddit)
	case "openai", "":
		return content.NewOpenAIGenerator(
			os.Getenv("OPENAI_API_KEY"),
			cfg.Content.OpenAIModel,
			cfg.Content.ShortMaxWords,
			cfg.Content.LongMinChars,
		)
	default:
		return nil, fmt.Errorf("unknown content source %q (want openai or reddit)", cfg.Content.Source)
	}
}

// RunShortCycle produces and publishes one caption-only short. The clip
// runs a fixed duration with the title and body burned in over looping
// background footage and music. No narration stage.
func (a *App) RunShortCycle(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	log.Printf("🎬 Short cycle starting — Run ID: %s", runID)

	state := &types.CycleState{
		RunID:     runID,
		Kind:      "short",
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer a.saveState(state)

	log.Println("\n━━━ STAGE 1: Story ━━━")
	stories, err := a.storyPipeline()
	if err != nil {
		state.Error = fmt.Sprintf("Stage 1 Story: %v", err)
		return err
	}
	story := stories.Story(ctx, content.TierShort)
	state.Story = story

	log.Println("\n━━━ STAGE 2: Assets ━━━")
	bg, music, err := a.pickAssets()
	if err != nil {
		state.Error = fmt.Sprintf("Stage 2 Assets: %v", err)
		return err
	}

	log.Println("\n━━━ STAGE 3: Render ━━━")
	job := &types.RenderJob{
		Story:      story,
		Background: bg,
		Music:      music,
		OutputPath: a.outputPath("short", story),
	}
	out, err := a.compositor.ComposeShort(ctx, job)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 3 Render: %v", err)
		return err
	}
	state.VideoFile = out

	log.Println("\n━━━ STAGE 4: Upload ━━━")
	uploaded, err := a.dispatcher.UploadAll(ctx, out, story)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 4 Upload: %v", err)
		return err
	}
	state.Uploaded = uploaded

	log.Printf("✅ Short cycle complete! Video: %s", out)
	return nil
}

// RunLongCycle produces and publishes one narrated long-form video: the
// story is voiced, captions are timed against the narration, and the video
// runs until the voiceover ends plus a short tail.
func (a *App) RunLongCycle(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	log.Printf("🎬 Long cycle starting — Run ID: %s", runID)

	state := &types.CycleState{
		RunID:     runID,
		Kind:      "long",
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer a.saveState(state)

	log.Println("\n━━━ STAGE 1: Story ━━━")
	stories, err := a.storyPipeline()
	if err != nil {
		state.Error = fmt.Sprintf("Stage 1 Story: %v", err)
		return err
	}
	story := stories.Story(ctx, content.TierLong)
	state.Story = story

	log.Println("\n━━━ STAGE 2: Narration ━━━")
	narrator, err := a.synthesizer()
	if err != nil {
		state.Error = fmt.Sprintf("Stage 2 Narration: %v", err)
		return err
	}
	// The narration file is kept next to the run state for manual recovery
	// if a later stage fails.
	narrationPath := filepath.Join(a.cfg.Paths.Runs, fmt.Sprintf("narration_%s.mp3", runID))
	if err := narrator.Synthesize(ctx, story.Body, narrationPath); err != nil {
		state.Error = fmt.Sprintf("Stage 2 Narration: %v", err)
		return err
	}
	state.NarrationFile = narrationPath

	narrationDur, err := video.Probe(narrationPath)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 2 Narration probe: %v", err)
		return err
	}
	log.Printf("[narration] voiceover duration: %s", narrationDur.Round(time.Second))

	log.Println("\n━━━ STAGE 3: Captions ━━━")
	titleWindow := time.Duration(a.cfg.Captions.TitleWindowSec * float64(time.Second))
	segments, err := a.segmenter.Segment(story.Body, narrationDur, titleWindow)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 3 Captions: %v", err)
		return err
	}
	log.Printf("[captions] %d caption segment(s)", len(segments))

	log.Println("\n━━━ STAGE 4: Assets ━━━")
	bg, music, err := a.pickAssets()
	if err != nil {
		state.Error = fmt.Sprintf("Stage 4 Assets: %v", err)
		return err
	}

	log.Println("\n━━━ STAGE 5: Render ━━━")
	job := &types.RenderJob{
		Story:         story,
		Background:    bg,
		Music:         music,
		NarrationPath: narrationPath,
		Segments:      segments,
		TitleWindow:   titleWindow,
		OutputPath:    a.outputPath("long", story),
	}
	out, err := a.compositor.RenderWithRetry(ctx, func(ctx context.Context) (string, error) {
		return a.compositor.ComposeLong(ctx, job)
	})
	if err != nil {
		state.Error = fmt.Sprintf("Stage 5 Render: %v", err)
		return err
	}
	state.VideoFile = out

	log.Println("\n━━━ STAGE 6: Upload ━━━")
	uploaded, err := a.dispatcher.UploadAll(ctx, out, story)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 6 Upload: %v", err)
		return err
	}
	state.Uploaded = uploaded

	log.Printf("✅ Long cycle complete! Video: %s", out)
	return nil
}

func (a *App) pickAssets() (bg, music types.MediaAsset, err error) {
	bg, err = a.assets.RandomBackgroundVideo()
	if err != nil {
		return
	}
	music, err = a.assets.RandomAudioTrack()
	if err != nil {
		return
	}
	log.Printf("[assets] background: %s", filepath.Base(bg.Path))
	log.Printf("[assets] music: %s", filepath.Base(music.Path))
	return
}

func (a *App) outputPath(kind string, story *types.Story) string {
	dir := a.cfg.Paths.OutputShort
	if kind == "long" {
		dir = a.cfg.Paths.OutputLong
	}
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_story_%s.mp4", kind, stamp))
}

func (a *App) saveState(state *types.CycleState) {
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	path := filepath.Join(a.cfg.Paths.Runs, fmt.Sprintf("run_%s.json", state.RunID))
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("⚠️  Failed to marshal run state: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("⚠️  Failed to save run state: %v", err)
	}
}

func (a *App) runScheduler(ctx context.Context) {
	sched, err := scheduler.New(a.cfg.Schedule.Timezone)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	for _, at := range a.cfg.Schedule.ShortTimes {
		sched.AddDaily(at, "short cycle", func() error { return a.RunShortCycle(ctx) })
	}
	for _, at := range a.cfg.Schedule.LongTimes {
		sched.AddDaily(at, "long cycle", func() error { return a.RunLongCycle(ctx) })
	}
	if at := a.cfg.Schedule.TokenRefreshTime; at != "" {
		sched.AddDaily(at, "token refresh", func() error { return a.youtube.RefreshToken(ctx) })
	}

	sched.Run()
}

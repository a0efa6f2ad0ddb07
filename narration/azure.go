package narration

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shortsbot/config"
)

// Synthesizer converts story text to a narration audio file using the Azure
// neural TTS endpoint. Long texts are synthesized in sentence chunks and
// joined with ffmpeg, since the plain synthesis endpoint rejects very long
// bodies.
type Synthesizer struct {
	key    string
	region string
	voice  string
	rate   string
	pitch  string

	chunkMaxChars int
	httpClient    *http.Client
	retryWait     time.Duration

	// endpoint overrides the regional URL in tests
	endpoint string
}

func New(cfg *config.Config) (*Synthesizer, error) {
	key := os.Getenv("AZURE_SPEECH_KEY")
	region := os.Getenv("AZURE_SPEECH_REGION")
	if key == "" || region == "" {
		return nil, fmt.Errorf("AZURE_SPEECH_KEY or AZURE_SPEECH_REGION not set")
	}
	return &Synthesizer{
		key:           key,
		region:        region,
		voice:         cfg.Narration.Voice,
		rate:          cfg.Narration.Rate,
		pitch:         cfg.Narration.Pitch,
		chunkMaxChars: cfg.Narration.ChunkMaxChars,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		retryWait:     2 * time.Second,
	}, nil
}

func (s *Synthesizer) url() string {
	if s.endpoint != "" {
		return s.endpoint
	}
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", s.region)
}

// Synthesize writes narration audio for text to outPath. Any failure means
// no narration was produced; the caller aborts the render for that cycle.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	chunks, err := chunkText(text, s.chunkMaxChars)
	if err != nil {
		return fmt.Errorf("split narration text: %w", err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no narration text to synthesize")
	}

	workDir, err := os.MkdirTemp("", "narration")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	log.Printf("[narration] synthesizing %d chunk(s), voice %s", len(chunks), s.voice)

	chunkFiles := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		chunkFile := filepath.Join(workDir, fmt.Sprintf("chunk_%03d.mp3", i))
		if err := s.synthesizeChunk(ctx, chunk, chunkFile); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		chunkFiles = append(chunkFiles, chunkFile)
	}

	if len(chunkFiles) == 1 {
		return copyFile(chunkFiles[0], outPath)
	}
	return concatAudio(ctx, chunkFiles, workDir, outPath)
}

// synthesizeChunk POSTs one SSML request and writes the returned audio
// bytes. Retries up to 3 times; Azure occasionally drops long connections.
func (s *Synthesizer) synthesizeChunk(ctx context.Context, text, outFile string) error {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		data, err := s.requestAudio(ctx, text)
		if err == nil {
			return os.WriteFile(outFile, data, 0644)
		}
		lastErr = err
		log.Printf("[narration] attempt %d failed: %v — retrying...", attempt, err)
		select {
		case <-time.After(time.Duration(attempt) * s.retryWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (s *Synthesizer) requestAudio(ctx context.Context, text string) ([]byte, error) {
	ssml := fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>`+
			`<voice name='%s'><prosody rate='%s' pitch='%s'>%s</prosody></voice></speak>`,
		s.voice, s.rate, s.pitch, html.EscapeString(text),
	)

	req, err := http.NewRequestWithContext(ctx, "POST", s.url(), strings.NewReader(ssml))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-96kbitrate-mono-mp3")
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts request failed with status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("tts returned empty audio")
	}
	return data, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

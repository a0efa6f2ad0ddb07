package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-playground/assert/v2"

	"shortsbot/config"
)

// graphStub simulates the Graph API resumable video upload endpoints.
type graphStub struct {
	t         *testing.T
	fileSize  int64
	chunkSize int64

	sessionStarted bool
	received       []byte
	finished       bool
	finishTitle    string
}

func (g *graphStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/123456", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(g.t, r.URL.Query().Get("fields"), "access_token")
		assert.Equal(g.t, r.URL.Query().Get("access_token"), "user-token")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "page-token"})
	})
	mux.HandleFunc("/123456/videos", g.videos)
	return mux
}

func (g *graphStub) videos(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			g.t.Fatalf("parse form: %v", err)
		}
	}
	assert.Equal(g.t, r.FormValue("access_token"), "page-token")

	switch phase := r.FormValue("upload_phase"); phase {
	case "start":
		g.sessionStarted = true
		size, _ := strconv.ParseInt(r.FormValue("file_size"), 10, 64)
		assert.Equal(g.t, size, g.fileSize)
		json.NewEncoder(w).Encode(map[string]string{
			"upload_session_id": "sess-1",
			"start_offset":      "0",
			"end_offset":        strconv.FormatInt(min64(g.chunkSize, g.fileSize), 10),
		})

	case "transfer":
		assert.Equal(g.t, r.FormValue("upload_session_id"), "sess-1")
		file, _, err := r.FormFile("video_file_chunk")
		if err != nil {
			g.t.Fatalf("missing video_file_chunk: %v", err)
		}
		defer file.Close()
		chunk, err := io.ReadAll(file)
		if err != nil {
			g.t.Fatalf("read chunk: %v", err)
		}
		g.received = append(g.received, chunk...)

		next := int64(len(g.received))
		json.NewEncoder(w).Encode(map[string]string{
			"start_offset": strconv.FormatInt(next, 10),
			"end_offset":   strconv.FormatInt(min64(next+g.chunkSize, g.fileSize), 10),
		})

	case "finish":
		assert.Equal(g.t, r.FormValue("upload_session_id"), "sess-1")
		g.finished = true
		g.finishTitle = r.FormValue("title")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})

	default:
		g.t.Fatalf("unexpected upload_phase %q", phase)
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func facebookFixture(t *testing.T, stub *graphStub) (*FacebookUploader, string) {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	t.Setenv("FACEBOOK_PAGE_ID", "123456")
	t.Setenv("FACEBOOK_ACCESS_TOKEN", "user-token")

	cfg := &config.Config{Upload: config.UploadConfig{
		TitleTemplate:       "{title}",
		DescriptionTemplate: "{summary}",
	}}
	u := &FacebookUploader{cfg: cfg, graphURL: srv.URL, httpClient: srv.Client()}

	video := filepath.Join(t.TempDir(), "out.mp4")
	payload := make([]byte, stub.fileSize)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	if err := os.WriteFile(video, payload, 0644); err != nil {
		t.Fatal(err)
	}
	return u, video
}

func TestFacebookUploadSingleChunk(t *testing.T) {
	stub := &graphStub{t: t, fileSize: 1024, chunkSize: 4096}
	u, video := facebookFixture(t, stub)

	if err := u.Upload(t.Context(), video, testStory()); err != nil {
		t.Fatalf("upload: %v", err)
	}
	assert.Equal(t, stub.sessionStarted, true)
	assert.Equal(t, stub.finished, true)
	assert.Equal(t, int64(len(stub.received)), stub.fileSize)
	assert.Equal(t, stub.finishTitle, "The Attic")
}

func TestFacebookUploadMultipleChunks(t *testing.T) {
	stub := &graphStub{t: t, fileSize: 10_000, chunkSize: 3000}
	u, video := facebookFixture(t, stub)

	if err := u.Upload(t.Context(), video, testStory()); err != nil {
		t.Fatalf("upload: %v", err)
	}
	assert.Equal(t, int64(len(stub.received)), stub.fileSize)

	data, err := os.ReadFile(video)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, stub.received, data)
}

func TestFacebookUploadMissingCredentials(t *testing.T) {
	t.Setenv("FACEBOOK_PAGE_ID", "")
	t.Setenv("FACEBOOK_ACCESS_TOKEN", "")

	u := NewFacebook(&config.Config{Upload: config.UploadConfig{GraphAPIURL: "https://graph.facebook.com/v19.0"}})
	err := u.Upload(t.Context(), "out.mp4", testStory())
	if err == nil {
		t.Fatal("expected credential error")
	}
}

func TestFacebookPageTokenExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid OAuth access token"}}`)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("FACEBOOK_PAGE_ID", "123456")
	t.Setenv("FACEBOOK_ACCESS_TOKEN", "bad-token")

	u := &FacebookUploader{
		cfg:        &config.Config{},
		graphURL:   srv.URL,
		httpClient: srv.Client(),
	}
	err := u.Upload(t.Context(), "out.mp4", testStory())
	if err == nil {
		t.Fatal("expected page token exchange error")
	}
}

func TestInstagramAlwaysErrors(t *testing.T) {
	u := NewInstagram()
	assert.Equal(t, u.Name(), "Instagram")
	if err := u.Upload(t.Context(), "out.mp4", testStory()); err == nil {
		t.Fatal("expected not-implemented error")
	}
}

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"shortsbot/config"
	"shortsbot/types"
)

// FacebookUploader publishes videos to a Facebook page through the Graph
// API resumable upload protocol (start / transfer / finish).
type FacebookUploader struct {
	cfg        *config.Config
	graphURL   string
	httpClient *http.Client
}

func NewFacebook(cfg *config.Config) *FacebookUploader {
	return &FacebookUploader{
		cfg:        cfg,
		graphURL:   strings.TrimRight(cfg.Upload.GraphAPIURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (u *FacebookUploader) Name() string { return "Facebook" }

func (u *FacebookUploader) credentials() (pageID, userToken string, err error) {
	pageID = os.Getenv("FACEBOOK_PAGE_ID")
	userToken = os.Getenv("FACEBOOK_ACCESS_TOKEN")
	if pageID == "" || userToken == "" {
		return "", "", fmt.Errorf("FACEBOOK_PAGE_ID or FACEBOOK_ACCESS_TOKEN not set")
	}
	return pageID, userToken, nil
}

// pageAccessToken exchanges the user token for the page token that video
// endpoints require.
func (u *FacebookUploader) pageAccessToken(ctx context.Context, pageID, userToken string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=access_token&access_token=%s",
		u.graphURL, pageID, url.QueryEscape(userToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("page token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page token exchange: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("page token exchange: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("page token exchange: empty access_token in response")
	}
	return out.AccessToken, nil
}

func (u *FacebookUploader) Upload(ctx context.Context, videoPath string, story *types.Story) error {
	pageID, userToken, err := u.credentials()
	if err != nil {
		return fmt.Errorf("facebook auth: %w", err)
	}

	pageToken, err := u.pageAccessToken(ctx, pageID, userToken)
	if err != nil {
		return err
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
	log.Printf("[upload] Facebook: %q (%.1f MB)", story.Title, float64(fi.Size())/1024/1024)

	videosURL := fmt.Sprintf("%s/%s/videos", u.graphURL, pageID)

	sessionID, startOffset, endOffset, err := u.startSession(ctx, videosURL, pageToken, fi.Size())
	if err != nil {
		return err
	}

	for startOffset < endOffset {
		startOffset, endOffset, err = u.transferChunk(ctx, videosURL, pageToken, sessionID, f, startOffset, endOffset)
		if err != nil {
			return err
		}
		if fi.Size() > 0 {
			log.Printf("[upload] Facebook: %d%%", startOffset*100/fi.Size())
		}
	}

	if err := u.finishSession(ctx, videosURL, pageToken, sessionID, story); err != nil {
		return err
	}
	log.Println("[upload] ✅ Facebook upload complete")
	return nil
}

func (u *FacebookUploader) startSession(ctx context.Context, videosURL, pageToken string, fileSize int64) (sessionID string, start, end int64, err error) {
	form := url.Values{
		"upload_phase": {"start"},
		"access_token": {pageToken},
		"file_size":    {strconv.FormatInt(fileSize, 10)},
	}
	body, err := u.post(ctx, videosURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, 0, fmt.Errorf("facebook start phase: %w", err)
	}

	var out struct {
		UploadSessionID string `json:"upload_session_id"`
		StartOffset     string `json:"start_offset"`
		EndOffset       string `json:"end_offset"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", 0, 0, fmt.Errorf("facebook start phase: %w", err)
	}
	if out.UploadSessionID == "" {
		return "", 0, 0, fmt.Errorf("facebook start phase: no upload_session_id in response")
	}
	start, end, err = parseOffsets(out.StartOffset, out.EndOffset)
	if err != nil {
		return "", 0, 0, fmt.Errorf("facebook start phase: %w", err)
	}
	return out.UploadSessionID, start, end, nil
}

func (u *FacebookUploader) transferChunk(ctx context.Context, videosURL, pageToken, sessionID string, f *os.File, start, end int64) (nextStart, nextEnd int64, err error) {
	chunk := make([]byte, end-start)
	if _, err := f.ReadAt(chunk, start); err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("read chunk at %d: %w", start, err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("upload_phase", "transfer")
	w.WriteField("access_token", pageToken)
	w.WriteField("upload_session_id", sessionID)
	w.WriteField("start_offset", strconv.FormatInt(start, 10))
	part, err := w.CreateFormFile("video_file_chunk", "chunk.mp4")
	if err != nil {
		return 0, 0, err
	}
	if _, err := part.Write(chunk); err != nil {
		return 0, 0, err
	}
	if err := w.Close(); err != nil {
		return 0, 0, err
	}

	body, err := u.post(ctx, videosURL, w.FormDataContentType(), &buf)
	if err != nil {
		return 0, 0, fmt.Errorf("facebook transfer phase: %w", err)
	}

	var out struct {
		StartOffset string `json:"start_offset"`
		EndOffset   string `json:"end_offset"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, 0, fmt.Errorf("facebook transfer phase: %w", err)
	}
	nextStart, nextEnd, err = parseOffsets(out.StartOffset, out.EndOffset)
	if err != nil {
		return 0, 0, fmt.Errorf("facebook transfer phase: %w", err)
	}
	return nextStart, nextEnd, nil
}

func (u *FacebookUploader) finishSession(ctx context.Context, videosURL, pageToken, sessionID string, story *types.Story) error {
	form := url.Values{
		"upload_phase":      {"finish"},
		"access_token":      {pageToken},
		"upload_session_id": {sessionID},
		"title":             {buildTitle(u.cfg, story)},
		"description":       {buildDescription(u.cfg, story)},
	}
	body, err := u.post(ctx, videosURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("facebook finish phase: %w", err)
	}

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("facebook finish phase: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("facebook finish phase: server reported failure: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

func (u *FacebookUploader) post(ctx context.Context, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func parseOffsets(start, end string) (int64, int64, error) {
	s, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad start_offset %q", start)
	}
	e, err := strconv.ParseInt(end, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad end_offset %q", end)
	}
	return s, e, nil
}

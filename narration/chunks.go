package narration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"shortsbot/captions"
)

// chunkText splits narration text into sentence-aligned chunks under
// maxChars each, so no single synthesis request grows past what the plain
// endpoint accepts. A lone sentence longer than maxChars stays whole.
func chunkText(text string, maxChars int) ([]string, error) {
	sents, err := captions.SplitSentences(text)
	if err != nil {
		return nil, err
	}

	var chunks []string
	var cur []string
	curLen := 0

	for _, sent := range sents {
		sLen := len(sent)
		if curLen > 0 && curLen+1+sLen > maxChars {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = cur[:0]
			curLen = 0
		}
		cur = append(cur, sent)
		if curLen == 0 {
			curLen = sLen
		} else {
			curLen += 1 + sLen
		}
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks, nil
}

// concatAudio joins chunk files in order with ffmpeg's concat demuxer
func concatAudio(ctx context.Context, files []string, workDir, outPath string) error {
	listFile := filepath.Join(workDir, "concat_list.txt")
	var lines []string
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("file '%s'", f))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat narration: %w", err)
	}
	return nil
}

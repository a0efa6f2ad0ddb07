package captions

import (
	"strings"
	"sync"
	"time"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"shortsbot/types"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

// SplitSentences splits text into trimmed sentences using a trained
// English sentence boundary detector.
func SplitSentences(text string) ([]string, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
	})
	if tokenizerErr != nil {
		return nil, tokenizerErr
	}

	var out []string
	for _, s := range tokenizer.Tokenize(text) {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// Segmenter splits narration text into display-sized caption segments and
// estimates each segment's on-screen time window.
type Segmenter struct {
	lineWidth int
	maxLines  int
}

func NewSegmenter(lineWidth, maxLines int) *Segmenter {
	return &Segmenter{lineWidth: lineWidth, maxLines: maxLines}
}

// Segment produces an ordered, non-overlapping sequence of caption segments
// covering [titleWindow, total). Segment durations are proportional to
// character count and normalized so they sum exactly to total-titleWindow:
// the timing is an approximation of spoken pace, but the drift is bounded
// because the last segment absorbs all rounding.
//
// Empty text yields an empty sequence; the caller skips the caption overlay.
func (s *Segmenter) Segment(text string, total, titleWindow time.Duration) ([]types.CaptionSegment, error) {
	sents, err := SplitSentences(text)
	if err != nil {
		return nil, err
	}
	if len(sents) == 0 {
		return nil, nil
	}

	available := total - titleWindow
	if available <= 0 {
		return nil, nil
	}

	chunks := s.chunk(sents)

	totalChars := 0
	for _, c := range chunks {
		totalChars += len([]rune(c))
	}

	segments := make([]types.CaptionSegment, 0, len(chunks))
	start := titleWindow
	for i, c := range chunks {
		end := start + time.Duration(float64(available)*float64(len([]rune(c)))/float64(totalChars))
		if i == len(chunks)-1 {
			end = total
		}
		segments = append(segments, types.CaptionSegment{Text: c, Start: start, End: end})
		start = end
	}
	return segments, nil
}

// chunk greedily accumulates sentences while the wrapped line count stays
// within the max-lines budget. A single sentence that alone exceeds the
// budget still becomes its own segment; no splitting happens inside a
// sentence.
func (s *Segmenter) chunk(sents []string) []string {
	var chunks []string
	var cur []string

	for _, sent := range sents {
		candidate := strings.Join(append(cur, sent), " ")
		if len(cur) > 0 && len(wrapLines(candidate, s.lineWidth)) > s.maxLines {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = []string{sent}
			continue
		}
		cur = append(cur, sent)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

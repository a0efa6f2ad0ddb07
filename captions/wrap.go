package captions

import "strings"

// wrapLines simulates greedy fixed-width word wrapping and returns the
// resulting lines. It must produce the same breaks the compositor renders,
// so the segmenter's line budget matches what ends up on screen.
func wrapLines(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, w := range words {
		wLen := len([]rune(w))

		// A word wider than the whole line gets broken hard, the way a
		// caption box would clip it across rows.
		if wLen > width {
			flush()
			runes := []rune(w)
			for len(runes) > width {
				lines = append(lines, string(runes[:width]))
				runes = runes[width:]
			}
			cur.WriteString(string(runes))
			curLen = len(runes)
			continue
		}

		if curLen == 0 {
			cur.WriteString(w)
			curLen = wLen
		} else if curLen+1+wLen <= width {
			cur.WriteByte(' ')
			cur.WriteString(w)
			curLen += 1 + wLen
		} else {
			flush()
			cur.WriteString(w)
			curLen = wLen
		}
	}
	flush()
	return lines
}

// Wrap returns text wrapped to the given width with newline separators,
// ready for an on-screen text overlay.
func Wrap(text string, width int) string {
	return strings.Join(wrapLines(text, width), "\n")
}

package lectio

import (
	"regexp"
	"strings"
)

// Refrain lines open with "R." (or "R/"), optionally qualified with a verse
// hint like "(7a)".
var defaultRefrainRe = regexp.MustCompile(`^R[./]?(\s*\([^)]*\))?\s`)

// ChunkRefrain splits text that alternates between refrain lines and
// stanzas. Each refrain line becomes its own chunk; each maximal run of
// non-refrain lines between refrains becomes one chunk with internal line
// breaks preserved. No length bounds apply.
func ChunkRefrain(text string) []string {
	return chunkRefrain(text, defaultRefrainRe)
}

func chunkRefrain(text string, refrainRe *regexp.Regexp) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	var stanza []string
	flush := func() {
		if s := strings.TrimSpace(strings.Join(stanza, "\n")); s != "" {
			chunks = append(chunks, s)
		}
		stanza = stanza[:0]
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if refrainRe.MatchString(ln) || strings.HasPrefix(ln, "R.") {
			flush()
			chunks = append(chunks, ln)
			continue
		}
		stanza = append(stanza, ln)
	}
	flush()
	return chunks
}

package lectio

import (
	"regexp"
	"strings"
)

// DefaultMaxChars and DefaultMinChars bound the length of a chunk destined
// for a single slide. Tuned for the body text box of the reading layouts.
const (
	DefaultMaxChars = 140
	DefaultMinChars = 100
)

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// NormalizeText canonicalizes line endings, strips trailing whitespace per
// line and collapses runs of blank lines down to a single blank line.
// Idempotent: NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	out := strings.Join(lines, "\n")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// Sanitize flattens all line breaks to spaces and collapses repeated
// whitespace. Used on text headed for a single text run.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

func joined(buf []string, next string) string {
	if len(buf) == 0 {
		return next
	}
	return strings.Join(buf, " ") + " " + next
}

// Chunkify splits text into display-sized chunks preferring whole
// sentences, falling back to clauses, then to words.
//
// Sentences are greedily packed while the joined buffer stays within
// maxChars. A sentence longer than maxChars is split on clause punctuation
// and packed the same way; a clause longer than maxChars is hard-wrapped by
// words. A trailing chunk shorter than minChars is merged into its
// predecessor when the result still fits.
func Chunkify(text string, maxChars, minChars int) []string {
	text = NormalizeText(text)
	if text == "" {
		return nil
	}

	var chunks []string
	push := func(buf []string) []string {
		if s := strings.TrimSpace(strings.Join(buf, " ")); s != "" {
			chunks = append(chunks, s)
		}
		return buf[:0]
	}

	var buf []string
	for _, sent := range SplitSentences(text) {
		if len(joined(buf, sent)) <= maxChars {
			buf = append(buf, sent)
			continue
		}
		buf = push(buf)

		if len(sent) <= maxChars {
			buf = append(buf, sent)
			continue
		}

		// Sentence alone exceeds the bound: pack its clauses.
		var clauseBuf []string
		for _, cl := range splitClauses(sent) {
			if len(joined(clauseBuf, cl)) <= maxChars {
				clauseBuf = append(clauseBuf, cl)
				continue
			}
			clauseBuf = push(clauseBuf)
			if len(cl) <= maxChars {
				clauseBuf = append(clauseBuf, cl)
				continue
			}
			// Clause alone exceeds the bound: hard-wrap by words.
			var wordBuf []string
			for _, w := range strings.Fields(cl) {
				if len(joined(wordBuf, w)) <= maxChars {
					wordBuf = append(wordBuf, w)
					continue
				}
				wordBuf = push(wordBuf)
				wordBuf = append(wordBuf, w)
			}
			push(wordBuf)
		}
		push(clauseBuf)
	}
	push(buf)

	// Avoid a tiny trailing chunk when a legal merge exists.
	if n := len(chunks); n >= 2 && len(chunks[n-1]) < minChars {
		merged := chunks[n-2] + " " + chunks[n-1]
		if len(merged) <= maxChars {
			chunks[n-2] = merged
			chunks = chunks[:n-1]
		}
	}

	return chunks
}

// EnforceChunkBounds re-checks an existing chunk sequence against the
// bounds, merging a chunk shorter than minChars into its immediate
// successor when the combined length stays within maxChars. A second pass
// is needed because sanitization after packing can change chunk lengths.
func EnforceChunkBounds(chunks []string, minChars, maxChars int) []string {
	out := make([]string, 0, len(chunks))
	for i := 0; i < len(chunks); i++ {
		cur := chunks[i]
		if len(cur) < minChars && i+1 < len(chunks) {
			next := chunks[i+1]
			if len(cur)+1+len(next) <= maxChars {
				out = append(out, strings.TrimSpace(cur+" "+next))
				i++
				continue
			}
		}
		out = append(out, cur)
	}
	return out
}

package lectio

import (
	"slices"
	"strings"
	"unicode"
)

// Abbreviations whose trailing period must not be read as a sentence
// boundary. Matched literally, case-sensitive.
var protectedAbbreviations = []string{
	"Sr.",
	"Sra.",
	"Dr.",
	"Dra.",
	"p.ej.",
	"etc.",
}

// ProtectAbbreviations adds abbreviations whose trailing periods must not
// end a sentence. Intended for config-driven extension at startup.
func ProtectAbbreviations(abbrs ...string) {
	for _, a := range abbrs {
		if a != "" && !slices.Contains(protectedAbbreviations, a) {
			protectedAbbreviations = append(protectedAbbreviations, a)
		}
	}
}

const dotMask = "\x00"

// SplitSentences splits normalized text into sentence-like units.
//
// A boundary is a sentence-terminal mark (".", "!", "?", "…") followed by
// whitespace and a character that looks like the start of a new sentence:
// an uppercase letter (accented included), an opening quote, "¿" or "¡".
// Periods inside protected abbreviations are masked beforehand so they
// never terminate a sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, abbr := range protectedAbbreviations {
		text = strings.ReplaceAll(text, abbr, strings.ReplaceAll(abbr, ".", dotMask))
	}

	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceTerminal(runes[i]) {
			continue
		}
		// Skip over a run of terminal marks ("?!", "...").
		j := i + 1
		for j < len(runes) && isSentenceTerminal(runes[j]) {
			j++
		}
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == j || k >= len(runes) || !isSentenceStart(runes[k]) {
			i = j - 1
			continue
		}
		if s := unmask(strings.TrimSpace(string(runes[start:j]))); s != "" {
			sentences = append(sentences, s)
		}
		start = k
		i = k - 1
	}
	if s := unmask(strings.TrimSpace(string(runes[start:]))); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func unmask(s string) string {
	return strings.ReplaceAll(s, dotMask, ".")
}

func isSentenceTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isSentenceStart(r rune) bool {
	switch r {
	case '"', '“', '«', '¿', '¡':
		return true
	}
	return unicode.IsUpper(r)
}

// splitClauses splits a sentence on clause punctuation (",", ";", ":")
// followed by whitespace, keeping the punctuation attached to the clause
// it terminates.
func splitClauses(sent string) []string {
	var clauses []string
	runes := []rune(sent)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case ',', ';', ':':
			if unicode.IsSpace(runes[i+1]) {
				if c := strings.TrimSpace(string(runes[start : i+1])); c != "" {
					clauses = append(clauses, c)
				}
				start = i + 1
			}
		}
	}
	if c := strings.TrimSpace(string(runes[start:])); c != "" {
		clauses = append(clauses, c)
	}
	return clauses
}

package lectio

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "crlf to lf",
			in:       "uno\r\ndos\r\n",
			expected: "uno\ndos",
		},
		{
			name:     "trailing spaces stripped per line",
			in:       "uno   \ndos\t\n",
			expected: "uno\ndos",
		},
		{
			name:     "blank runs collapse to one blank line",
			in:       "uno\n\n\n\n\ndos",
			expected: "uno\n\ndos",
		},
		{
			name:     "surrounding whitespace trimmed",
			in:       "\n\n  uno  \n\n",
			expected: "uno",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.in)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
			if again := NormalizeText(got); again != got {
				t.Errorf("not idempotent: %q then %q", got, again)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize("  uno\ndos\n\ttres  ")
	if want := "uno dos tres"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestChunkifySentencePacking(t *testing.T) {
	// Three sentences of 90, 95 and 120 characters. The first two cannot
	// share a chunk (185 > 140), so each sentence gets its own chunk.
	s1 := "Xx" + strings.Repeat(" xx", 29) + "." // 90
	s2 := "Yy" + strings.Repeat(" yy", 31) + "." // 96
	s3 := "Zz" + strings.Repeat(" zz", 39) + "." // 120
	text := s1 + " " + s2 + " " + s3

	chunks := Chunkify(text, 140, 100)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %#v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if len([]rune(c)) > 140 {
			t.Errorf("chunk %d exceeds max: %d chars", i, len([]rune(c)))
		}
	}
}

func TestChunkifyPacksShortSentences(t *testing.T) {
	chunks := Chunkify("Uno corto. Dos corto. Tres corto.", 140, 10)
	want := []string{"Uno corto. Dos corto. Tres corto."}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}
}

func TestChunkifyFallsBackToClauses(t *testing.T) {
	// One long sentence with clause breaks. It must split on the commas,
	// never mid-word.
	sent := strings.Repeat("palabra ", 10) + "una, " + strings.Repeat("palabra ", 10) + "dos, " + strings.Repeat("palabra ", 10) + "tres."
	chunks := Chunkify(sent, 100, 40)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2: %#v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Errorf("chunk %d exceeds max: %q", i, c)
		}
		for _, w := range strings.Fields(c) {
			if !strings.Contains(sent, strings.Trim(w, ",.")) {
				t.Errorf("chunk %d broke a word: %q", i, w)
			}
		}
	}
}

func TestChunkifyFallsBackToWords(t *testing.T) {
	// No sentence or clause boundaries at all.
	text := strings.TrimSpace(strings.Repeat("palabra ", 40))
	chunks := Chunkify(text, 60, 20)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	if got := strings.Join(chunks, " "); got != text {
		t.Errorf("chunks lose text:\ngot  %q\nwant %q", got, text)
	}
	for i, c := range chunks {
		if len([]rune(c)) > 60 {
			t.Errorf("chunk %d exceeds max: %q", i, c)
		}
	}
}

func TestChunkifyMergesShortTail(t *testing.T) {
	// The trailing fragment is below min and fits into the previous chunk.
	chunks := Chunkify("Primera frase bastante larga para un bloque. Fin.", 140, 20)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %#v", len(chunks), chunks)
	}
}

func TestChunkifyEmpty(t *testing.T) {
	if got := Chunkify("   \n  ", 140, 100); got != nil {
		t.Errorf("got %#v, want nil", got)
	}
}

func TestEnforceChunkBounds(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		expected []string
	}{
		{
			name:     "short chunk merges with successor",
			chunks:   []string{"corto", "otra parte con suficiente texto para quedarse"},
			expected: []string{"corto otra parte con suficiente texto para quedarse"},
		},
		{
			name:     "merge skipped when it would exceed max",
			chunks:   []string{"corto", strings.Repeat("x", 75)},
			expected: []string{"corto", strings.Repeat("x", 75)},
		},
		{
			name:     "short final chunk stays",
			chunks:   []string{strings.Repeat("y", 70), strings.Repeat("z", 70), "fin"},
			expected: []string{strings.Repeat("y", 70), strings.Repeat("z", 70), "fin"},
		},
		{
			name:     "empty in empty out",
			chunks:   nil,
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnforceChunkBounds(tt.chunks, 20, 80)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("chunks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

package lectio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPayloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "payload.json")
	p := &Payload{
		Meta: Meta{
			ID:       "0b724b0e-3c80-41a3-94ec-9b7f3f64e4c5",
			Date:     "2025-12-14",
			Language: "es-US",
			Source:   "usccb_rss",
			Link:     "https://bible.usccb.org/es/bible/lecturas/121425.cfm",
			Title:    "Tercer Domingo de Adviento",
		},
		Placeholders: map[string]string{
			TokenLiturgicalDay:   "Tercer Domingo de Adviento",
			TokenFirstReadingTxt: "Canta, hija de Sión.",
		},
		Chunks: map[string][]string{
			TokenFirstReadingTxt: {"Canta, hija de Sión."},
		},
	}
	if err := WritePayload(p, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadPayload(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(b), "\n") {
		t.Error("payload file must end with a newline")
	}
}

func TestLoadPayloadMissing(t *testing.T) {
	if _, err := LoadPayload(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("want error for missing file")
	}
}

func TestPayloadHasText(t *testing.T) {
	p := &Payload{
		Placeholders: map[string]string{
			TokenGospelTxt: "En aquel tiempo.",
			TokenPsalmTxt:  "   ",
		},
	}
	tests := []struct {
		token    string
		expected bool
	}{
		{TokenGospelTxt, true},
		{TokenPsalmTxt, false},
		{TokenSecondReadingTxt, false},
	}
	for _, tt := range tests {
		if got := p.HasText(tt.token); got != tt.expected {
			t.Errorf("HasText(%q) = %v, want %v", tt.token, got, tt.expected)
		}
	}
}

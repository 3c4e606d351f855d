package lectio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/k1LoW/errors"
)

// Payload is the content handed to the renderer: a flat token→text mapping
// plus optional pre-computed chunk sequences for the waterfall tokens.
type Payload struct {
	Meta         Meta                `json:"meta"`
	Placeholders map[string]string   `json:"placeholders"`
	Chunks       map[string][]string `json:"chunks,omitempty"`
}

// Meta describes where the payload came from.
type Meta struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Language string `json:"language"`
	Source   string `json:"source"`
	Link     string `json:"link,omitempty"`
	Title    string `json:"title"`
}

// LoadPayload reads a payload JSON file.
func LoadPayload(path string) (_ *Payload, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p := &Payload{}
	if err := json.NewDecoder(f).Decode(p); err != nil {
		return nil, err
	}
	if p.Placeholders == nil {
		p.Placeholders = map[string]string{}
	}
	return p, nil
}

// WritePayload writes a payload as indented JSON, creating parent
// directories as needed.
func WritePayload(p *Payload, path string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// HasText reports whether the payload carries non-empty content for the
// token, either as raw text or as at least one non-blank chunk.
func (p *Payload) HasText(token string) bool {
	if strings.TrimSpace(p.Placeholders[token]) != "" {
		return true
	}
	for _, c := range p.Chunks[token] {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// Package lectio renders liturgical reading payloads into PPTX decks by
// filling template tokens and waterfall-expanding long readings across
// duplicated slides.
package lectio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/ecollado/lectio/pptx"
	"github.com/google/uuid"
	"github.com/k1LoW/errors"
)

// Renderer fills one deck from one payload. It owns the deck exclusively
// for the duration of Render; deck mutation is synchronous and
// single-threaded because the underlying document format cannot tolerate
// concurrent structural edits.
type Renderer struct {
	deck       *pptx.Deck
	maxChars   int
	minChars   int
	known      []string
	waterfall  []string
	refrain    string
	pruneEmpty bool
	logger     *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) error {
		r.logger = logger
		return nil
	}
}

// WithChunkBounds overrides the chunk length bounds.
func WithChunkBounds(minChars, maxChars int) Option {
	return func(r *Renderer) error {
		if minChars <= 0 || maxChars < minChars {
			return fmt.Errorf("invalid chunk bounds: min=%d max=%d", minChars, maxChars)
		}
		r.minChars = minChars
		r.maxChars = maxChars
		return nil
	}
}

// WithTokens overrides the known and waterfall token sets.
func WithTokens(known, waterfall []string) Option {
	return func(r *Renderer) error {
		for _, w := range waterfall {
			if !slices.Contains(known, w) {
				return fmt.Errorf("waterfall token %s is not a known token", w)
			}
		}
		r.known = known
		r.waterfall = waterfall
		return nil
	}
}

// WithRefrainToken sets the token chunked by alternation instead of length.
func WithRefrainToken(token string) Option {
	return func(r *Renderer) error {
		r.refrain = token
		return nil
	}
}

// WithPruneEmpty enables deletion of slides left entirely blank after all
// tokens resolved to empty content.
func WithPruneEmpty(prune bool) Option {
	return func(r *Renderer) error {
		r.pruneEmpty = prune
		return nil
	}
}

// New creates a Renderer for the deck.
func New(deck *pptx.Deck, opts ...Option) (_ *Renderer, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	r := &Renderer{
		deck:      deck,
		maxChars:  DefaultMaxChars,
		minChars:  DefaultMinChars,
		known:     KnownTokens(),
		waterfall: WaterfallTokens(),
		refrain:   RefrainToken,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return r, nil
}

// Render resolves every token in the deck from the payload.
//
// Order of operations is load-bearing. The flat substitution pass runs
// first so later slide copies inherit already-resolved static content.
// Seed indices for all waterfall fields are computed before any slide is
// inserted, and fields are then processed in descending seed order, so an
// insertion for one field can never shift the seed index of a field still
// waiting its turn.
func (r *Renderer) Render(p *Payload) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	run := uuid.New().String()
	logger := r.logger.With(slog.String("render", run))
	logger.Info("rendering deck", slog.String("title", p.Meta.Title), slog.Int("slides", r.deck.Len()))
	r.snapshot(logger, "before")

	simple := r.simpleMapping(p)
	for i := 0; i < r.deck.Len(); i++ {
		if _, err := r.deck.ReplaceTokens(i, simple); err != nil {
			return err
		}
		logger.Debug("filled slide", slog.Int("index", i))
	}

	// All seeds up front, then descending order. Protocol invariant, not an
	// optimization: it removes the need to revalidate indices after each
	// insertion.
	type seed struct {
		token string
		index int
	}
	var seeds []seed
	for _, token := range r.waterfall {
		indices := r.deck.FindToken(token)
		if len(indices) == 0 {
			raw := Sanitize(p.Placeholders[token])
			logger.Warn("no seed slide for token, applying flat substitution", slog.String("token", token))
			for i := 0; i < r.deck.Len(); i++ {
				if _, err := r.deck.ReplaceTokens(i, map[string]string{token: raw}); err != nil {
					return err
				}
			}
			continue
		}
		if len(indices) > 1 {
			// Only the first seed is expanded; duplicate seeds are a
			// template authoring mistake worth surfacing.
			logger.Warn("multiple seed slides for token, using first",
				slog.String("token", token), slog.Any("extra_indices", indices[1:]))
		}
		seeds = append(seeds, seed{token: token, index: indices[0]})
		logger.Info("seed located", slog.String("token", token), slog.Int("index", indices[0]))
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].index > seeds[j].index })

	for _, sd := range seeds {
		chunks := r.chunksFor(p, sd.token)
		logger.Info("expanding field", slog.String("token", sd.token), slog.Int("chunks", len(chunks)))
		if len(chunks) == 0 {
			// Empty field: blank the slot rather than leaving the token
			// visible in the output.
			if _, err := r.deck.ReplaceTokens(sd.index, map[string]string{sd.token: ""}); err != nil {
				return err
			}
			continue
		}

		positions := []int{sd.index}
		current := sd.index
		for range len(chunks) - 1 {
			next, err := r.deck.DuplicateSlide(current, sd.token, r.known)
			if err != nil {
				return fmt.Errorf("failed to duplicate slide for %s: %w", sd.token, err)
			}
			// Copies are made from the already-substituted seed; re-applying
			// the flat mapping is a no-op safety net.
			if _, err := r.deck.ReplaceTokens(next, simple); err != nil {
				return err
			}
			positions = append(positions, next)
			current = next
		}

		for i, pos := range positions {
			if _, err := r.deck.ReplaceTokens(pos, map[string]string{sd.token: chunks[i]}); err != nil {
				return err
			}
			logger.Debug("filled slide",
				slog.Int("index", pos),
				slog.String("token", sd.token),
				slog.String("preview", preview(chunks[i])),
			)
		}
	}

	if r.pruneEmpty {
		if err := r.pruneEmptySlides(logger); err != nil {
			return err
		}
	}

	r.snapshot(logger, "after")
	logger.Info("rendered deck", slog.Int("slides", r.deck.Len()))
	return nil
}

// simpleMapping builds the flat substitution for every non-waterfall token:
// sanitized payload values, with missing known tokens blanked so no
// placeholder survives into the output.
func (r *Renderer) simpleMapping(p *Payload) map[string]string {
	mapping := map[string]string{}
	for token, val := range p.Placeholders {
		if slices.Contains(r.waterfall, token) {
			continue
		}
		mapping[token] = Sanitize(val)
	}
	for _, token := range r.known {
		if slices.Contains(r.waterfall, token) {
			continue
		}
		if _, ok := p.Placeholders[token]; !ok {
			mapping[token] = ""
		}
	}
	return mapping
}

// chunksFor derives the ordered chunk sequence for a waterfall token. The
// refrain token is always re-derived from raw text since alternation does
// not survive upstream sanitization. Other tokens prefer payload-provided
// chunks and fall back to packing the raw text. Sanitization changes
// lengths, so bounds are enforced again afterwards.
func (r *Renderer) chunksFor(p *Payload, token string) []string {
	var chunks []string
	if token == r.refrain {
		chunks = ChunkRefrain(p.Placeholders[token])
	} else {
		chunks = p.Chunks[token]
		if len(chunks) == 0 {
			chunks = Chunkify(p.Placeholders[token], r.maxChars, r.minChars)
		}
	}
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if s := Sanitize(c); s != "" {
			out = append(out, s)
		}
	}
	if token == r.refrain {
		// Alternation, not length, governs refrain fields.
		return out
	}
	return EnforceChunkBounds(out, r.minChars, r.maxChars)
}

// pruneEmptySlides deletes slides whose visible text is empty after every
// token resolved, high indices first.
func (r *Renderer) pruneEmptySlides(logger *slog.Logger) error {
	var empty []int
	for i := 0; i < r.deck.Len(); i++ {
		if strings.TrimSpace(r.deck.SlideText(i)) == "" {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return nil
	}
	logger.Info("pruning empty slides", slog.Any("indices", empty))
	return r.deck.DeleteSlides(empty)
}

// snapshot logs the token inventory of every slide, for chasing template
// mistakes under verbose output.
func (r *Renderer) snapshot(logger *slog.Logger, label string) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i := 0; i < r.deck.Len(); i++ {
		tokens := r.deck.TokensIn(i, r.known)
		if len(tokens) > 0 {
			logger.Debug("snapshot", slog.String("label", label), slog.Int("slide", i), slog.Any("tokens", tokens))
			continue
		}
		logger.Debug("snapshot", slog.String("label", label), slog.Int("slide", i), slog.String("preview", preview(r.deck.SlideText(i))))
	}
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", "|")
	if runes := []rune(s); len(runes) > 80 {
		return string(runes[:80]) + "..."
	}
	return s
}

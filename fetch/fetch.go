// Package fetch pulls the day's readings from the USCCB Spanish lectionary
// feed and turns them into a renderer payload: a token→text mapping plus
// pre-computed chunk sequences for the long body fields.
package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ecollado/lectio"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/k1LoW/errors"
)

// DefaultFeedURL is the USCCB Spanish daily readings feed.
const DefaultFeedURL = "https://bible.usccb.org/lecturas.rss"

// Fetcher retrieves and assembles payloads.
type Fetcher struct {
	feedURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithFeedURL overrides the feed URL.
func WithFeedURL(u string) Option {
	return func(f *Fetcher) error {
		f.feedURL = u
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		f.logger = logger
		return nil
	}
}

// New creates a Fetcher with a retrying HTTP client.
func New(opts ...Option) (_ *Fetcher, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	f := &Fetcher{
		feedURL: DefaultFeedURL,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 5
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = newFeedLogger(f.logger)
	f.client = retryClient.StandardClient()
	return f, nil
}

// feed is the RSS envelope of the lectionary feed.
type feed struct {
	Channel struct {
		Items []Item `xml:"item"`
	} `xml:"channel"`
}

// Item is one feed entry, one day's readings.
type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
}

// Fetch downloads the feed and returns the entry for the given date, keyed
// by the MMDDYY fragment in the entry link.
func (f *Fetcher) Fetch(ctx context.Context, date time.Time) (_ *Item, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch feed: %s", res.Status)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var fd feed
	if err := xml.Unmarshal(b, &fd); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	key := MMDDYY(date)
	item := PickItem(fd.Channel.Items, key)
	if item == nil {
		return nil, fmt.Errorf("no feed item found for %s", key)
	}
	f.logger.Info("fetched feed item", slog.String("title", item.Title), slog.String("link", item.Link))
	return item, nil
}

// BuildPayload fetches the entry for the date and assembles the payload.
func (f *Fetcher) BuildPayload(ctx context.Context, date time.Time) (_ *lectio.Payload, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	item, err := f.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}
	sections, err := ParseSections(StripFooter(item.Description))
	if err != nil {
		return nil, err
	}
	f.logger.Info("parsed sections", slog.Int("count", len(sections)))
	placeholders := ToPlaceholders(item.Title, sections)
	chunks := MakeChunks(placeholders)
	return BuildPayload(date, item, placeholders, chunks), nil
}

// MMDDYY formats a date the way the feed encodes it in entry links.
func MMDDYY(d time.Time) string {
	return d.Format("010206")
}

// PickItem returns the entry whose link contains the date key.
func PickItem(items []Item, key string) *Item {
	for i := range items {
		if strings.Contains(items[i].Link, key) {
			return &items[i]
		}
	}
	return nil
}

// ToPlaceholders maps classified sections onto template tokens. Reading
// references are rewritten as the spoken introductions used in Mass.
func ToPlaceholders(title string, sections []Section) map[string]string {
	ph := map[string]string{
		lectio.TokenLiturgicalDay: title,
	}
	for _, sec := range sections {
		switch Classify(sec.Header) {
		case KindFirst:
			ph[lectio.TokenFirstReadingRef] = FirstReadingIntro(sec.Header)
			ph[lectio.TokenFirstReadingTxt] = sec.Body
		case KindPsalm:
			ph[lectio.TokenPsalmRef] = PsalmRef(sec.Header)
			ph[lectio.TokenPsalmTxt] = sec.Body
		case KindSecond:
			ph[lectio.TokenSecondReadingRef] = SecondReadingIntro(sec.Header)
			ph[lectio.TokenSecondReadingTxt] = sec.Body
		case KindAcclamation:
			ph[lectio.TokenAcclamationRef] = ExtractBibleRef(sec.Body)
			ph[lectio.TokenAcclamationTxt] = NormalizeAcclamation(sec.Body)
		case KindGospel:
			ph[lectio.TokenGospelRef] = GospelName(sec.Header)
			ph[lectio.TokenGospelTxt] = sec.Body
		}
	}
	return ph
}

// MakeChunks pre-computes chunk sequences for the waterfall tokens that
// have text.
func MakeChunks(placeholders map[string]string) map[string][]string {
	out := map[string][]string{}
	for _, token := range lectio.WaterfallTokens() {
		txt := placeholders[token]
		if strings.TrimSpace(txt) == "" {
			continue
		}
		out[token] = lectio.Chunkify(txt, lectio.DefaultMaxChars, lectio.DefaultMinChars)
	}
	return out
}

// BuildPayload assembles the payload, normalizing every text value.
func BuildPayload(date time.Time, item *Item, placeholders map[string]string, chunks map[string][]string) *lectio.Payload {
	p := &lectio.Payload{
		Meta: lectio.Meta{
			ID:       uuid.New().String(),
			Date:     date.Format("2006-01-02"),
			Language: "es-US",
			Source:   "usccb_rss",
			Link:     item.Link,
			Title:    item.Title,
		},
		Placeholders: map[string]string{},
	}
	for k, v := range placeholders {
		p.Placeholders[k] = lectio.NormalizeText(v)
	}
	if len(chunks) > 0 {
		p.Chunks = map[string][]string{}
		for k, v := range chunks {
			normalized := make([]string, len(v))
			for i, c := range v {
				normalized[i] = lectio.NormalizeText(c)
			}
			p.Chunks[k] = normalized
		}
	}
	return p
}

var _ retryablehttp.LeveledLogger = (*feedLogger)(nil)

// feedLogger adapts slog to the retry client's leveled logger.
type feedLogger struct {
	l *slog.Logger
}

func newFeedLogger(l *slog.Logger) retryablehttp.LeveledLogger {
	return &feedLogger{l: l.WithGroup("feed")}
}

func (l *feedLogger) Error(msg string, keysAndValues ...any) {
	l.l.Error(msg, keysAndValues...)
}

func (l *feedLogger) Info(msg string, keysAndValues ...any) {
	l.l.Info(msg, keysAndValues...)
}

func (l *feedLogger) Debug(msg string, keysAndValues ...any) {
	l.l.Debug(msg, keysAndValues...)
}

func (l *feedLogger) Warn(msg string, keysAndValues ...any) {
	l.l.Warn(msg, keysAndValues...)
}

package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/k1LoW/errors"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
	contentTypesPart = "[Content_Types].xml"
	corePropsPart    = "docProps/core.xml"

	relsNS = "http://schemas.openxmlformats.org/package/2006/relationships"
	relNS  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	slideRelType     = relNS + "/slide"
	layoutRelType    = relNS + "/slideLayout"
	slideContentType = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
)

// Deck is a PPTX presentation opened for mutation. Slide ordering (the
// sldIdLst of presentation.xml) and the relationship table
// (presentation.xml.rels) are tracked separately: a slide's identity is its
// relationship ID and survives reordering, its position is just an index
// into the ordered list.
type Deck struct {
	parts    map[string][]byte
	presBody []byte
	presRels *relationships
	types    *contentTypes
	sldIDs   []sldID
	slides   []*Slide
	logger   *slog.Logger
}

// Slide is one slide part plus its own relationship file.
type Slide struct {
	rID      string
	partName string
	doc      *node
	rels     *relationships
}

type sldID struct {
	id  int
	rID string
}

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type contentTypes struct {
	XMLName   xml.Name     `xml:"Types"`
	Xmlns     string       `xml:"xmlns,attr"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Option configures a Deck.
type Option func(*Deck) error

// WithLogger sets the logger used for mutation logging.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deck) error {
		d.logger = logger
		return nil
	}
}

// Open reads a PPTX file into a mutable Deck.
func Open(p string, opts ...Option) (_ *Deck, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return OpenBytes(b, opts...)
}

// OpenBytes reads a PPTX archive from memory.
func OpenBytes(b []byte, opts ...Option) (_ *Deck, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	d := &Deck{
		parts: map[string][]byte{},
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", f.Name, err)
		}
		pb, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", f.Name, err)
		}
		d.parts[f.Name] = pb
	}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Deck) load() (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	pres, ok := d.parts[presentationPart]
	if !ok {
		return fmt.Errorf("not a presentation: %s missing", presentationPart)
	}
	d.presBody = pres

	rb, ok := d.parts[presentationRels]
	if !ok {
		return fmt.Errorf("not a presentation: %s missing", presentationRels)
	}
	d.presRels = &relationships{}
	if err := xml.Unmarshal(rb, d.presRels); err != nil {
		return fmt.Errorf("failed to parse presentation relationships: %w", err)
	}
	d.presRels.Xmlns = relsNS

	tb, ok := d.parts[contentTypesPart]
	if !ok {
		return fmt.Errorf("not a presentation: %s missing", contentTypesPart)
	}
	d.types = &contentTypes{}
	if err := xml.Unmarshal(tb, d.types); err != nil {
		return fmt.Errorf("failed to parse content types: %w", err)
	}
	d.types.Xmlns = "http://schemas.openxmlformats.org/package/2006/content-types"

	sldIDs, err := parseSldIDs(pres)
	if err != nil {
		return err
	}
	d.sldIDs = sldIDs

	relByID := map[string]relationship{}
	for _, r := range d.presRels.Rels {
		relByID[r.ID] = r
	}
	for _, sid := range d.sldIDs {
		rel, ok := relByID[sid.rID]
		if !ok {
			return fmt.Errorf("slide %s has no relationship entry", sid.rID)
		}
		partName := path.Join("ppt", rel.Target)
		if strings.HasPrefix(rel.Target, "/") {
			partName = strings.TrimPrefix(rel.Target, "/")
		}
		pb, ok := d.parts[partName]
		if !ok {
			return fmt.Errorf("slide part missing: %s", partName)
		}
		doc, err := parseXML(pb)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", partName, err)
		}
		s := &Slide{
			rID:      sid.rID,
			partName: partName,
			doc:      doc,
		}
		if srb, ok := d.parts[relsPath(partName)]; ok {
			rels := &relationships{}
			if err := xml.Unmarshal(srb, rels); err != nil {
				return fmt.Errorf("failed to parse %s: %w", relsPath(partName), err)
			}
			rels.Xmlns = relsNS
			s.rels = rels
		}
		d.slides = append(d.slides, s)
	}
	return nil
}

// parseSldIDs extracts the ordered slide identity entries from
// presentation.xml. The plain id attribute is the numeric slide ID, the
// r:id attribute is the relationship ID.
func parseSldIDs(pres []byte) (_ []sldID, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	var out []sldID
	dec := xml.NewDecoder(bytes.NewReader(pres))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse presentation.xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sldId" {
			continue
		}
		var sid sldID
		for _, a := range se.Attr {
			switch {
			case a.Name.Local == "id" && a.Name.Space == "":
				sid.id, _ = strconv.Atoi(a.Value)
			case a.Name.Local == "id" && a.Name.Space == relNS:
				sid.rID = a.Value
			}
		}
		if sid.rID == "" {
			return nil, fmt.Errorf("sldId entry without r:id")
		}
		out = append(out, sid)
	}
	return out, nil
}

func relsPath(partName string) string {
	return path.Join(path.Dir(partName), "_rels", path.Base(partName)+".rels")
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	return len(d.slides)
}

// FindToken returns the indices of every slide whose visible text contains
// the token, in ascending order.
func (d *Deck) FindToken(token string) []int {
	var out []int
	for i, s := range d.slides {
		if containsText(s.doc, token) {
			out = append(out, i)
		}
	}
	return out
}

// ContainsToken reports whether the slide at index contains the token.
func (d *Deck) ContainsToken(index int, token string) bool {
	if index < 0 || index >= len(d.slides) {
		return false
	}
	return containsText(d.slides[index].doc, token)
}

// ReplaceTokens substitutes every occurrence of each token on the slide at
// index and reports whether anything changed.
func (d *Deck) ReplaceTokens(index int, mapping map[string]string) (bool, error) {
	if index < 0 || index >= len(d.slides) {
		return false, errors.WithStack(fmt.Errorf("slide index out of range: %d", index))
	}
	return replaceText(d.slides[index].doc, mapping), nil
}

// TokensIn returns which of the given tokens appear on the slide at index,
// in the given order.
func (d *Deck) TokensIn(index int, tokens []string) []string {
	if index < 0 || index >= len(d.slides) {
		return nil
	}
	txt := nodeText(d.slides[index].doc)
	var present []string
	for _, t := range tokens {
		if strings.Contains(txt, t) {
			present = append(present, t)
		}
	}
	return present
}

// SlideText returns the visible text of the slide at index.
func (d *Deck) SlideText(index int) string {
	if index < 0 || index >= len(d.slides) {
		return ""
	}
	return nodeText(d.slides[index].doc)
}

// DeleteSlides removes the slides at the given indices, dropping each
// slide's ordering entry, relationship entry, part and content-type
// override together. All indices are validated before any mutation, so a
// bad index leaves the deck unchanged. Indices are resolved high to low
// since each removal shifts the positions after it.
func (d *Deck) DeleteSlides(indices []int) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if len(indices) == 0 {
		return nil
	}
	uniq := map[int]struct{}{}
	for _, idx := range indices {
		if idx < 0 || idx >= len(d.slides) {
			return fmt.Errorf("slide index out of range: %d", idx)
		}
		uniq[idx] = struct{}{}
	}
	sorted := make([]int, 0, len(uniq))
	for idx := range uniq {
		sorted = append(sorted, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	d.logger.Info("deleting slides", slog.Any("indices", sorted))
	for _, idx := range sorted {
		s := d.slides[idx]
		d.slides = append(d.slides[:idx], d.slides[idx+1:]...)
		d.sldIDs = append(d.sldIDs[:idx], d.sldIDs[idx+1:]...)
		d.dropRel(s.rID)
		delete(d.parts, s.partName)
		delete(d.parts, relsPath(s.partName))
		d.dropOverride("/" + s.partName)
	}
	return nil
}

func (d *Deck) dropRel(rID string) {
	rels := d.presRels.Rels[:0]
	for _, r := range d.presRels.Rels {
		if r.ID != rID {
			rels = append(rels, r)
		}
	}
	d.presRels.Rels = rels
}

func (d *Deck) dropOverride(partName string) {
	overrides := d.types.Overrides[:0]
	for _, o := range d.types.Overrides {
		if o.PartName != partName {
			overrides = append(overrides, o)
		}
	}
	d.types.Overrides = overrides
}

// validate checks the ordering/relationship invariant: every slide identity
// appears exactly once in the ordering and exactly once in the relationship
// table, and vice versa.
func (d *Deck) validate() error {
	if len(d.slides) != len(d.sldIDs) {
		return fmt.Errorf("slide list and ordering out of sync: %d != %d", len(d.slides), len(d.sldIDs))
	}
	seen := map[string]int{}
	for i, s := range d.slides {
		if d.sldIDs[i].rID != s.rID {
			return fmt.Errorf("ordering entry %d points to %s, slide has %s", i, d.sldIDs[i].rID, s.rID)
		}
		seen[s.rID]++
	}
	slideRels := map[string]int{}
	for _, r := range d.presRels.Rels {
		if r.Type == slideRelType {
			slideRels[r.ID]++
		}
	}
	for rID, n := range seen {
		if n != 1 {
			return fmt.Errorf("slide identity %s appears %d times in ordering", rID, n)
		}
		if slideRels[rID] != 1 {
			return fmt.Errorf("slide %s has %d relationship entries", rID, slideRels[rID])
		}
	}
	for rID := range slideRels {
		if seen[rID] == 0 {
			return fmt.Errorf("dangling slide relationship: %s", rID)
		}
	}
	return nil
}

var sldIDLstRe = regexp.MustCompile(`(?s)<p:sldIdLst(?:\s[^>]*)?(?:/>|>.*?</p:sldIdLst>)`)

func (d *Deck) rebuildPresentation() ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("<p:sldIdLst>")
	for _, sid := range d.sldIDs {
		fmt.Fprintf(&sb, `<p:sldId id="%d" r:id="%s"/>`, sid.id, sid.rID)
	}
	sb.WriteString("</p:sldIdLst>")
	if !sldIDLstRe.Match(d.presBody) {
		return nil, fmt.Errorf("presentation.xml has no slide id list")
	}
	return sldIDLstRe.ReplaceAll(d.presBody, []byte(sb.String())), nil
}

var (
	coreModifiedRe = regexp.MustCompile(`(<dcterms:modified[^>]*>)[^<]*(</dcterms:modified>)`)
	coreLastModRe  = regexp.MustCompile(`(<cp:lastModifiedBy[^>]*>)[^<]*(</cp:lastModifiedBy>)`)
)

// Write assembles the archive and writes it out. Nothing is written if the
// deck fails its structural invariant, so a failed render never produces a
// partial document.
func (d *Deck) Write(w io.Writer) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if err := d.validate(); err != nil {
		return fmt.Errorf("deck is structurally invalid: %w", err)
	}
	out := make(map[string][]byte, len(d.parts)+len(d.slides)*2)
	for name, b := range d.parts {
		out[name] = b
	}
	for _, s := range d.slides {
		out[s.partName] = s.doc.bytes()
		if s.rels != nil {
			rb, err := marshalPart(s.rels)
			if err != nil {
				return err
			}
			out[relsPath(s.partName)] = rb
		}
	}
	pres, err := d.rebuildPresentation()
	if err != nil {
		return err
	}
	out[presentationPart] = pres
	if out[presentationRels], err = marshalPart(d.presRels); err != nil {
		return err
	}
	if out[contentTypesPart], err = marshalPart(d.types); err != nil {
		return err
	}
	if core, ok := out[corePropsPart]; ok {
		now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
		core = coreModifiedRe.ReplaceAll(core, []byte("${1}"+now+"${2}"))
		core = coreLastModRe.ReplaceAll(core, []byte("${1}lectio${2}"))
		out[corePropsPart] = core
	}

	names := make([]string, 0, len(out))
	for name := range out {
		if name == contentTypesPart {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	names = append([]string{contentTypesPart}, names...)

	zw := zip.NewWriter(w)
	for _, name := range names {
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", name, err)
		}
		if _, err := f.Write(out[name]); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}
	return zw.Close()
}

// Save writes the deck to path. The archive is assembled in memory first so
// an error leaves no output file behind.
func (d *Deck) Save(p string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(p, buf.Bytes(), 0o644)
}

func marshalPart(v any) ([]byte, error) {
	b, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

package pptx

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/k1LoW/errors"
)

// DuplicateSlide clones the slide at index and inserts the copy immediately
// after it, returning the copy's index. Only shapes safe to duplicate are
// copied:
//
//   - shapes referencing embedded media are skipped (the media part is not
//     copied, so the reference would dangle);
//   - shapes containing a known token other than the one being paginated
//     are skipped (stray placeholders must not multiply across copies);
//   - everything else — the target token's shape, static labels,
//     decoration — is copied.
func (d *Deck) DuplicateSlide(index int, token string, known []string) (_ int, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if index < 0 || index >= len(d.slides) {
		return 0, fmt.Errorf("slide index out of range: %d", index)
	}
	seed := d.slides[index]
	doc := seed.doc.clone()
	spTree := doc.find("cSld", "spTree")
	if spTree == nil {
		return 0, fmt.Errorf("cannot duplicate %s: no shape tree", seed.partName)
	}

	kept := make([]*node, 0, len(spTree.kids))
	for _, kid := range spTree.kids {
		if kid.name != "" && isShapeElem(kid.local()) && !shouldCopyShape(kid, token, known) {
			continue
		}
		kept = append(kept, kid)
	}
	spTree.kids = kept

	partName := d.nextSlidePart()
	rID := d.nextRelID()
	id := d.nextSlideID()

	// The copy's relationship file keeps only the layout reference; media
	// and notes targets belong to the seed alone.
	var rels *relationships
	if seed.rels != nil {
		rels = &relationships{Xmlns: relsNS}
		for _, r := range seed.rels.Rels {
			if r.Type == layoutRelType {
				rels.Rels = append(rels.Rels, r)
			}
		}
	}

	d.presRels.Rels = append(d.presRels.Rels, relationship{
		ID:     rID,
		Type:   slideRelType,
		Target: strings.TrimPrefix(partName, "ppt/"),
	})
	d.types.Overrides = append(d.types.Overrides, ctOverride{
		PartName:    "/" + partName,
		ContentType: slideContentType,
	})

	s := &Slide{
		rID:      rID,
		partName: partName,
		doc:      doc,
		rels:     rels,
	}
	d.insertSlideAfter(s, sldID{id: id, rID: rID}, index)
	d.logger.Info("duplicated slide",
		slog.Int("seed_index", index),
		slog.Int("new_index", index+1),
		slog.String("part", partName),
	)
	return index + 1, nil
}

func shouldCopyShape(shape *node, token string, known []string) bool {
	if hasMediaRef(shape) {
		return false
	}
	txt := nodeText(shape)
	if strings.Contains(txt, token) {
		return true
	}
	for _, t := range known {
		if t != token && strings.Contains(txt, t) {
			return false
		}
	}
	return true
}

// insertSlideAfter splices the slide into both the slide list and the
// ordering list right after the given index, keeping identity and position
// in lockstep.
func (d *Deck) insertSlideAfter(s *Slide, sid sldID, after int) {
	at := after + 1
	d.slides = append(d.slides[:at], append([]*Slide{s}, d.slides[at:]...)...)
	d.sldIDs = append(d.sldIDs[:at], append([]sldID{sid}, d.sldIDs[at:]...)...)
}

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func (d *Deck) nextSlidePart() string {
	max := 0
	for name := range d.parts {
		if m := slidePartRe.FindStringSubmatch(name); m != nil {
			if n, _ := strconv.Atoi(m[1]); n > max {
				max = n
			}
		}
	}
	for _, s := range d.slides {
		if m := slidePartRe.FindStringSubmatch(s.partName); m != nil {
			if n, _ := strconv.Atoi(m[1]); n > max {
				max = n
			}
		}
	}
	return fmt.Sprintf("ppt/slides/slide%d.xml", max+1)
}

func (d *Deck) nextRelID() string {
	max := 0
	for _, r := range d.presRels.Rels {
		if strings.HasPrefix(r.ID, "rId") {
			if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "rId")); err == nil && n > max {
				max = n
			}
		}
	}
	return fmt.Sprintf("rId%d", max+1)
}

// Slide IDs must be 256 or greater per the presentationml schema.
func (d *Deck) nextSlideID() int {
	max := 255
	for _, sid := range d.sldIDs {
		if sid.id > max {
			max = sid.id
		}
	}
	return max + 1
}

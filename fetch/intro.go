package fetch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind classifies a feed section by reading type.
type Kind string

const (
	KindFirst       Kind = "FIRST"
	KindSecond      Kind = "SECOND"
	KindPsalm       Kind = "PSALM"
	KindAcclamation Kind = "ACCLAMATION"
	KindGospel      Kind = "GOSPEL"
	KindOther       Kind = "OTHER"
)

// Classify maps a section header to its reading type.
func Classify(header string) Kind {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case strings.HasPrefix(h, "primera lectura"):
		return KindFirst
	case strings.HasPrefix(h, "segunda lectura"):
		return KindSecond
	case strings.HasPrefix(h, "salmo responsorial"):
		return KindPsalm
	case strings.HasPrefix(h, "aclamación antes del evangelio"):
		return KindAcclamation
	case strings.HasPrefix(h, "evangelio"):
		return KindGospel
	}
	return KindOther
}

var (
	categoryRe   = regexp.MustCompile(`(?i)^(Primera Lectura|Segunda Lectura|Evangelio|Salmo Responsorial)\s+`)
	bookPhraseRe = regexp.MustCompile(`^(?:\d\s+)?[^\d]+`)
	psalmRefRe   = regexp.MustCompile(`(?i)^Salmo\s+Responsorial\s+`)
	ordinalRe    = regexp.MustCompile(`^(\d)\s+(.+)$`)
	bibleRefRe   = regexp.MustCompile(`([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)\s+(\d{1,3})\s*[,.:]\s*([\d\-–, ]+)`)
)

// extractBookPhrase drops the category words and the chapter/verse
// numbering from a header, leaving the book name:
// "Primera Lectura Sofonías 3, 1-2. 9-13" → "Sofonías".
func extractBookPhrase(header string) string {
	h := categoryRe.ReplaceAllString(strings.TrimSpace(header), "")
	if m := bookPhraseRe.FindString(h); m != "" {
		h = m
	}
	h = strings.Join(strings.Fields(h), " ")
	return strings.Trim(h, " ,·—–-")
}

var prophets = map[string]struct{}{
	"Isaías": {}, "Jeremías": {}, "Ezequiel": {}, "Daniel": {}, "Oseas": {},
	"Joel": {}, "Amós": {}, "Abdías": {}, "Jonás": {}, "Miqueas": {},
	"Nahúm": {}, "Habacuc": {}, "Sofonías": {}, "Ageo": {}, "Zacarías": {},
	"Malaquías": {}, "Baruc": {},
}

// FirstReadingIntro formats the spoken introduction for a first reading.
func FirstReadingIntro(header string) string {
	book := extractBookPhrase(header)
	nb := foldAccents(strings.ToLower(book))
	if _, ok := prophets[book]; ok {
		return "Lectura del profeta " + book
	}
	if strings.Contains(nb, "hechos") {
		return "Lectura del libro de los Hechos de los Apóstoles"
	}
	if book == "Sabiduría" || strings.HasPrefix(nb, "la ") {
		return "Lectura del libro de la " + strings.TrimSpace(strings.TrimPrefix(book, "la "))
	}
	return "Lectura del libro de " + book
}

// Addressees of the Pauline letters. Plural communities take "a los",
// individuals take "a".
var (
	paulinePlurals = map[string]string{
		"romanos":        "Romanos",
		"corintios":      "Corintios",
		"galatas":        "Gálatas",
		"filipenses":     "Filipenses",
		"colosenses":     "Colosenses",
		"tesalonicenses": "Tesalonicenses",
		"efesios":        "Efesios",
	}
	paulineSingulars = map[string]string{
		"timoteo": "Timoteo",
		"tito":    "Tito",
		"filemon": "Filemón",
	}
)

func ordinalSpanish(n string) string {
	switch n {
	case "1":
		return "primera"
	case "2":
		return "segunda"
	case "3":
		return "tercera"
	}
	return ""
}

// SecondReadingIntro formats the spoken introduction for a second reading
// the way it is said in Mass: "Lectura de la primera carta del apóstol san
// Pablo a los Corintios", "Lectura de la carta a los Hebreos", and so on.
func SecondReadingIntro(header string) string {
	book := extractBookPhrase(header)
	ordNum := ""
	base := book
	if m := ordinalRe.FindStringSubmatch(book); m != nil {
		ordNum = m[1]
		base = strings.TrimSpace(m[2])
	}
	nb := foldAccents(strings.ToLower(base))

	switch nb {
	case "hebreos":
		return "Lectura de la carta a los Hebreos"
	case "apocalipsis":
		return "Lectura del libro del Apocalipsis"
	case "juan":
		if ordNum != "" {
			return "Lectura de la " + ordinalSpanish(ordNum) + " carta del apóstol san Juan"
		}
		return "Lectura de la carta del apóstol san Juan"
	case "pedro":
		if ordNum != "" {
			return "Lectura de la " + ordinalSpanish(ordNum) + " carta del apóstol san Pedro"
		}
		return "Lectura de la carta del apóstol san Pedro"
	case "santiago":
		return "Lectura de la carta del apóstol Santiago"
	case "judas":
		return "Lectura de la carta del apóstol Judas"
	}
	if name, ok := paulinePlurals[nb]; ok {
		if ordNum == "1" || ordNum == "2" {
			return "Lectura de la " + ordinalSpanish(ordNum) + " carta del apóstol san Pablo a los " + name
		}
		return "Lectura de la carta del apóstol san Pablo a los " + name
	}
	if name, ok := paulineSingulars[nb]; ok {
		if ordNum == "1" || ordNum == "2" {
			return "Lectura de la " + ordinalSpanish(ordNum) + " carta del apóstol san Pablo a " + name
		}
		return "Lectura de la carta del apóstol san Pablo a " + name
	}
	return "Lectura de la carta de " + base
}

// GospelName returns the evangelist's name from a gospel header.
func GospelName(header string) string {
	return extractBookPhrase(header)
}

// PsalmRef trims the category words from a psalm header, keeping the
// psalm reference.
func PsalmRef(header string) string {
	return strings.TrimSpace(psalmRefRe.ReplaceAllString(header, ""))
}

// NormalizeAcclamation drops the refrain and Aleluya lines of an
// acclamation, keeping only the verse.
func NormalizeAcclamation(body string) string {
	var kept []string
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		low := strings.ToLower(ln)
		if strings.HasPrefix(low, "r.") || strings.Contains(low, "aleluya") {
			continue
		}
		kept = append(kept, ln)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ExtractBibleRef pulls a scripture reference like "Mateo 21, 28-32" out of
// text, normalized to "Mateo 21:28-32". Returns "" when none is found.
func ExtractBibleRef(text string) string {
	m := bibleRefRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	verses := strings.ReplaceAll(m[3], " ", "")
	verses = strings.ReplaceAll(verses, "–", "-")
	return m[1] + " " + m[2] + ":" + verses
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents strips combining marks for accent-insensitive matching of
// book names ("Gálatas" → "galatas" after lowering).
func foldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

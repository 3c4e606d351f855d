package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ecollado/lectio"
	"github.com/google/go-cmp/cmp"
)

func TestMMDDYY(t *testing.T) {
	d := time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)
	if got := MMDDYY(d); got != "121425" {
		t.Errorf("got %q, want %q", got, "121425")
	}
}

func TestPickItem(t *testing.T) {
	items := []Item{
		{Link: "https://bible.usccb.org/es/bible/lecturas/121325.cfm"},
		{Link: "https://bible.usccb.org/es/bible/lecturas/121425.cfm"},
	}
	got := PickItem(items, "121425")
	if got == nil || got.Link != items[1].Link {
		t.Errorf("got %+v, want item with 121425 link", got)
	}
	if PickItem(items, "010199") != nil {
		t.Error("want nil for unknown date key")
	}
}

const testFeed = `<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0">
<channel>
<title>Lecturas diarias</title>
<item>
<title>Tercer Domingo de Adviento</title>
<link>https://bible.usccb.org/es/bible/lecturas/121425.cfm</link>
<description>&lt;h4&gt;Primera Lectura Sofonías 3, 14-18&lt;/h4&gt;&lt;div class="poetry"&gt;&lt;p&gt;Canta, hija de Sión.&lt;/p&gt;&lt;/div&gt;- - -boilerplate</description>
</item>
</channel>
</rss>`

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	defer ts.Close()

	f, err := New(WithFeedURL(ts.URL))
	if err != nil {
		t.Fatal(err)
	}
	date := time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)
	item, err := f.Fetch(context.Background(), date)
	if err != nil {
		t.Fatal(err)
	}
	if item.Title != "Tercer Domingo de Adviento" {
		t.Errorf("title = %q", item.Title)
	}

	if _, err := f.Fetch(context.Background(), date.AddDate(0, 0, 7)); err == nil {
		t.Error("want error when no item matches the date")
	}
}

func TestBuildPayloadFromFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testFeed))
	}))
	defer ts.Close()

	f, err := New(WithFeedURL(ts.URL))
	if err != nil {
		t.Fatal(err)
	}
	date := time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)
	p, err := f.BuildPayload(context.Background(), date)
	if err != nil {
		t.Fatal(err)
	}
	if p.Meta.ID == "" {
		t.Error("payload meta has no id")
	}
	if p.Meta.Date != "2025-12-14" {
		t.Errorf("date = %q", p.Meta.Date)
	}
	if p.Meta.Source != "usccb_rss" {
		t.Errorf("source = %q", p.Meta.Source)
	}
	if got := p.Placeholders[lectio.TokenLiturgicalDay]; got != "Tercer Domingo de Adviento" {
		t.Errorf("liturgical day = %q", got)
	}
	if got := p.Placeholders[lectio.TokenFirstReadingRef]; got != "Lectura del profeta Sofonías" {
		t.Errorf("first reading ref = %q", got)
	}
	if got := p.Placeholders[lectio.TokenFirstReadingTxt]; got != "Canta, hija de Sión." {
		t.Errorf("first reading text = %q", got)
	}
	if len(p.Chunks[lectio.TokenFirstReadingTxt]) == 0 {
		t.Error("first reading has no chunks")
	}
	if strings.Contains(p.Placeholders[lectio.TokenFirstReadingTxt], "boilerplate") {
		t.Error("footer not stripped")
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(testFeed))
	}))
	defer ts.Close()

	f, err := New(WithFeedURL(ts.URL))
	if err != nil {
		t.Fatal(err)
	}
	date := time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)
	if _, err := f.Fetch(context.Background(), date); err != nil {
		t.Fatal(err)
	}
	if calls < 2 {
		t.Errorf("got %d calls, want a retry after the 500", calls)
	}
}

func TestToPlaceholders(t *testing.T) {
	sections := []Section{
		{Header: "Primera Lectura Isaías 35, 1-6", Body: "Regocíjate, tierra."},
		{Header: "Salmo Responsorial Salmo 145", Body: "R. Ven, Señor.\nEl Señor es fiel."},
		{Header: "Segunda Lectura Santiago 5, 7-10", Body: "Hermanos, tengan paciencia."},
		{Header: "Aclamación antes del Evangelio", Body: "R. Aleluya\nIsaías 61, 1\nEl Espíritu está sobre mí.\nR. Aleluya"},
		{Header: "Evangelio Mateo 11, 2-11", Body: "En aquel tiempo."},
		{Header: "Otra cosa", Body: "se ignora"},
	}
	got := ToPlaceholders("Tercer Domingo de Adviento", sections)
	want := map[string]string{
		lectio.TokenLiturgicalDay:    "Tercer Domingo de Adviento",
		lectio.TokenFirstReadingRef:  "Lectura del profeta Isaías",
		lectio.TokenFirstReadingTxt:  "Regocíjate, tierra.",
		lectio.TokenPsalmRef:         "Salmo 145",
		lectio.TokenPsalmTxt:         "R. Ven, Señor.\nEl Señor es fiel.",
		lectio.TokenSecondReadingRef: "Lectura de la carta del apóstol Santiago",
		lectio.TokenSecondReadingTxt: "Hermanos, tengan paciencia.",
		lectio.TokenAcclamationRef:   "Isaías 61:1",
		lectio.TokenAcclamationTxt:   "Isaías 61, 1\nEl Espíritu está sobre mí.",
		lectio.TokenGospelRef:        "Mateo",
		lectio.TokenGospelTxt:        "En aquel tiempo.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("placeholders mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeChunks(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("La palabra del Señor permanece para siempre. ", 10))
	placeholders := map[string]string{
		lectio.TokenFirstReadingTxt: long,
		lectio.TokenGospelTxt:       "   ",
	}
	got := MakeChunks(placeholders)
	if len(got[lectio.TokenFirstReadingTxt]) < 2 {
		t.Errorf("long reading should chunk into several parts, got %d", len(got[lectio.TokenFirstReadingTxt]))
	}
	if _, ok := got[lectio.TokenGospelTxt]; ok {
		t.Error("blank field must not produce chunks")
	}
	if _, ok := got[lectio.TokenPsalmTxt]; ok {
		t.Error("absent field must not produce chunks")
	}
}

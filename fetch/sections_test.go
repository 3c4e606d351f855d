package fetch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStripFooter(t *testing.T) {
	in := "<h4>Evangelio</h4><div class=\"poetry\"><p>texto</p></div>\n- - -\n<p>Derechos reservados.</p>"
	got := StripFooter(in)
	want := "<h4>Evangelio</h4><div class=\"poetry\"><p>texto</p></div>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := StripFooter("sin separador"); got != "sin separador" {
		t.Errorf("got %q, want unchanged input", got)
	}
}

func TestParseSections(t *testing.T) {
	desc := `
<h4>Primera Lectura <a href="/x">Sofonías 3, 1-2. 9-13</a></h4>
<div class="poetry">
<p>Esto dice el Señor:<br/>
"Ay de la ciudad rebelde".</p>
<p>Aquel día no te avergonzarás.</p>
</div>
<h4>Salmo Responsorial Salmo 33</h4>
<div class="poetry"><p>R. (7a) El Señor escucha<br/>Bendigo al Señor.</p></div>
<h4>Sin cuerpo</h4>
<h4>Evangelio Mateo 21, 28-32</h4>
<div class="other">ignorar</div>
<div class="poetry extra"><p>En aquel tiempo.</p></div>
`
	got, err := ParseSections(desc)
	if err != nil {
		t.Fatal(err)
	}
	want := []Section{
		{
			Header: "Primera Lectura Sofonías 3, 1-2. 9-13",
			Body:   "Esto dice el Señor:\n\"Ay de la ciudad rebelde\".\n\nAquel día no te avergonzarás.",
		},
		{
			Header: "Salmo Responsorial Salmo 33",
			Body:   "R. (7a) El Señor escucha\nBendigo al Señor.",
		},
		{
			Header: "Evangelio Mateo 21, 28-32",
			Body:   "En aquel tiempo.",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSectionsEmpty(t *testing.T) {
	got, err := ParseSections("<p>nada que leer</p>")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d sections, want 0", len(got))
	}
}

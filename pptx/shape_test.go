package pptx

import "testing"

func mustParse(t *testing.T, s string) *node {
	t.Helper()
	n, err := parseXML([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestNodeTextNestedShapes(t *testing.T) {
	// A group shape and a table inside a graphic frame: text bodies at any
	// depth must be found.
	tree := mustParse(t, `<p:spTree>`+
		`<p:grpSp><p:sp><p:txBody><a:p><a:r><a:t>dentro del grupo</a:t></a:r></a:p></p:txBody></p:sp></p:grpSp>`+
		`<p:graphicFrame><a:graphic><a:graphicData><a:tbl><a:tr><a:tc><a:txBody><a:p><a:r><a:t>celda</a:t></a:r></a:p></a:txBody></a:tc></a:tr></a:tbl></a:graphicData></a:graphic></p:graphicFrame>`+
		`</p:spTree>`)
	want := "dentro del grupo\ncelda"
	if got := nodeText(tree); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNodeTextJoinsRunsWithinParagraph(t *testing.T) {
	tree := mustParse(t, `<p:sp><p:txBody>`+
		`<a:p><a:r><a:t>una </a:t></a:r><a:r><a:t>línea</a:t></a:r></a:p>`+
		`<a:p><a:r><a:t>otra</a:t></a:r></a:p>`+
		`</p:txBody></p:sp>`)
	want := "una línea\notra"
	if got := nodeText(tree); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReplaceTextSingleRunOnly(t *testing.T) {
	// A token split across two runs is left alone: templates author each
	// token in one run.
	tree := mustParse(t, `<p:sp><p:txBody><a:p>`+
		`<a:r><a:t>{CUER</a:t></a:r><a:r><a:t>PO}</a:t></a:r>`+
		`</a:p></p:txBody></p:sp>`)
	if replaceText(tree, map[string]string{"{CUERPO}": "x"}) {
		t.Error("split token must not be replaced")
	}
	if got := nodeText(tree); got != "{CUERPO}" {
		t.Errorf("text changed: %q", got)
	}
}

func TestHasMediaRef(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected bool
	}{
		{
			name:     "picture with blip",
			in:       `<p:pic><p:blipFill><a:blip r:embed="rId2"/></p:blipFill></p:pic>`,
			expected: true,
		},
		{
			name:     "video reference",
			in:       `<p:sp><p:nvSpPr><p:nvPr><a:videoFile r:link="rId3"/></p:nvPr></p:nvSpPr></p:sp>`,
			expected: true,
		},
		{
			name:     "plain text shape",
			in:       `<p:sp><p:txBody><a:p><a:r><a:t>texto</a:t></a:r></a:p></p:txBody></p:sp>`,
			expected: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasMediaRef(mustParse(t, tt.in)); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestShouldCopyShape(t *testing.T) {
	known := []string{"{CUERPO}", "{REF}"}
	tests := []struct {
		name     string
		in       string
		expected bool
	}{
		{
			name:     "shape with target token",
			in:       `<p:sp><p:txBody><a:p><a:r><a:t>{CUERPO}</a:t></a:r></a:p></p:txBody></p:sp>`,
			expected: true,
		},
		{
			name:     "shape with foreign token",
			in:       `<p:sp><p:txBody><a:p><a:r><a:t>{REF}</a:t></a:r></a:p></p:txBody></p:sp>`,
			expected: false,
		},
		{
			name:     "static label",
			in:       `<p:sp><p:txBody><a:p><a:r><a:t>Lectura</a:t></a:r></a:p></p:txBody></p:sp>`,
			expected: true,
		},
		{
			name:     "media shape",
			in:       `<p:pic><p:blipFill><a:blip r:embed="rId2"/></p:blipFill></p:pic>`,
			expected: false,
		},
		{
			name:     "shape with both target and foreign token",
			in:       `<p:sp><p:txBody><a:p><a:r><a:t>{CUERPO} {REF}</a:t></a:r></a:p></p:txBody></p:sp>`,
			expected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldCopyShape(mustParse(t, tt.in), "{CUERPO}", known); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

package fetch

import (
	"strings"

	"github.com/k1LoW/errors"
	"golang.org/x/net/html"
)

// Section is one reading block of the feed item: the heading line (for
// example "Primera Lectura Sofonías 3, 1-2") and the body text with line
// breaks restored.
type Section struct {
	Header string
	Body   string
}

// footerSep marks the boilerplate tail of every feed item.
const footerSep = "- - -"

// StripFooter drops everything from the boilerplate separator on.
func StripFooter(desc string) string {
	if i := strings.Index(desc, footerSep); i >= 0 {
		return desc[:i]
	}
	return desc
}

// ParseSections extracts the reading sections from a feed item description.
// Each section is an <h4> heading followed (possibly with intervening
// nodes) by a sibling <div class="poetry"> holding the reading text.
func ParseSections(desc string) (_ []Section, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	doc, err := html.Parse(strings.NewReader(desc))
	if err != nil {
		return nil, err
	}
	var sections []Section
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "h4" {
			header := collapseSpace(nodeText(n))
			if div := nextPoetrySibling(n); div != nil {
				sections = append(sections, Section{
					Header: header,
					Body:   divToText(div),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sections, nil
}

func nextPoetrySibling(h4 *html.Node) *html.Node {
	for s := h4.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data == "div" && hasClass(s, "poetry") {
			return s
		}
		// Another heading before a poetry div means this section has no body.
		if s.Type == html.ElementNode && s.Data == "h4" {
			return nil
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// divToText renders a poetry div as plain text: <br> becomes a line break,
// each <p> becomes a paragraph, paragraphs are separated by a blank line.
func divToText(div *html.Node) string {
	var paras []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			txt := nodeText(n)
			var lines []string
			for _, ln := range strings.Split(txt, "\n") {
				if ln = strings.TrimSpace(ln); ln != "" {
					lines = append(lines, ln)
				}
			}
			if len(lines) > 0 {
				paras = append(paras, strings.Join(lines, "\n"))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(div)
	return strings.TrimSpace(strings.Join(paras, "\n\n"))
}

// nodeText flattens a node to text, turning <br> into newlines.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

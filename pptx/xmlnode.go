// Package pptx mutates PPTX presentation archives: token search and
// replacement inside slide text, filtered slide duplication, and slide
// deletion that keeps the slide ordering and the relationship table in
// sync.
package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// node is a minimal XML tree that round-trips OOXML slide parts without
// losing namespace prefixes. encoding/xml's namespace resolution rewrites
// prefixes on output, which PowerPoint tolerates badly, so parsing uses
// RawToken and serialization writes qualified names verbatim.
type node struct {
	name  string // qualified name like "p:sp"; empty for character data
	attrs []xml.Attr
	kids  []*node
	text  string // set only for character data nodes
}

func parseXML(b []byte) (_ *node, err error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	var root *node
	var stack []*node
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: qname(t.Name)}
			for _, a := range t.Attr {
				n.attrs = append(n.attrs, xml.Attr{Name: a.Name, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.kids = append(parent.kids, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element: %s", qname(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.kids = append(parent.kids, &node{text: string(t)})
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element: %s", stack[len(stack)-1].name)
	}
	return root, nil
}

func qname(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

// bytes serializes the tree with the standard OOXML declaration.
func (n *node) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n")
	n.write(&buf)
	return buf.Bytes()
}

func (n *node) write(buf *bytes.Buffer) {
	if n.name == "" {
		_ = xml.EscapeText(buf, []byte(n.text))
		return
	}
	buf.WriteByte('<')
	buf.WriteString(n.name)
	for _, a := range n.attrs {
		buf.WriteByte(' ')
		buf.WriteString(qname(a.Name))
		buf.WriteString(`="`)
		_ = xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if len(n.kids) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, k := range n.kids {
		k.write(buf)
	}
	buf.WriteString("</")
	buf.WriteString(n.name)
	buf.WriteByte('>')
}

func (n *node) clone() *node {
	c := &node{name: n.name, text: n.text}
	if len(n.attrs) > 0 {
		c.attrs = make([]xml.Attr, len(n.attrs))
		copy(c.attrs, n.attrs)
	}
	for _, k := range n.kids {
		c.kids = append(c.kids, k.clone())
	}
	return c
}

// local returns the element name without its namespace prefix.
func (n *node) local() string {
	if i := strings.IndexByte(n.name, ':'); i >= 0 {
		return n.name[i+1:]
	}
	return n.name
}

// find descends through child elements matching the given local names,
// returning the first match at each level.
func (n *node) find(locals ...string) *node {
	cur := n
	for _, want := range locals {
		var next *node
		for _, k := range cur.kids {
			if k.name != "" && k.local() == want {
				next = k
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// walk visits n and every descendant element in document order. Returning
// false from fn prunes the subtree.
func (n *node) walk(fn func(*node) bool) {
	if n.name == "" {
		return
	}
	if !fn(n) {
		return
	}
	for _, k := range n.kids {
		k.walk(fn)
	}
}

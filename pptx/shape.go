package pptx

import "strings"

// Shape element names that may appear as children of a shape tree. Group
// shapes nest arbitrarily; tables live inside graphic frames; pictures
// carry embedded-media references.
func isShapeElem(local string) bool {
	switch local {
	case "sp", "grpSp", "graphicFrame", "pic", "cxnSp":
		return true
	}
	return false
}

// hasMediaRef reports whether the subtree references embedded media (an
// image blip or audio/video file). Copying such a shape without copying the
// referenced resource part produces a document viewers refuse to open.
func hasMediaRef(n *node) bool {
	found := false
	n.walk(func(e *node) bool {
		switch e.local() {
		case "blip", "videoFile", "audioFile", "wavAudioFile":
			found = true
			return false
		}
		return !found
	})
	return found
}

// textBodies collects every text body in the subtree: plain shape bodies,
// table cell bodies and bodies nested inside group shapes, with a single
// traversal shared by search, replacement and extraction.
func textBodies(n *node) []*node {
	var bodies []*node
	n.walk(func(e *node) bool {
		if e.local() == "txBody" {
			bodies = append(bodies, e)
			return false
		}
		return true
	})
	return bodies
}

// nodeText renders the visible text of the subtree the way a viewer shows
// it: runs concatenated within a paragraph, paragraphs joined by newlines.
func nodeText(n *node) string {
	var paras []string
	for _, body := range textBodies(n) {
		for _, k := range body.kids {
			if k.name == "" || k.local() != "p" {
				continue
			}
			var runs []string
			k.walk(func(e *node) bool {
				if e.local() == "t" {
					runs = append(runs, elementText(e))
				}
				return true
			})
			paras = append(paras, strings.Join(runs, ""))
		}
	}
	return strings.Join(paras, "\n")
}

func elementText(e *node) string {
	var sb strings.Builder
	for _, k := range e.kids {
		if k.name == "" {
			sb.WriteString(k.text)
		}
	}
	return sb.String()
}

func setElementText(e *node, s string) {
	e.kids = []*node{{text: s}}
}

// containsText reports whether the subtree's visible text contains the
// token, without mutating anything. Used for seed discovery.
func containsText(n *node, token string) bool {
	return strings.Contains(nodeText(n), token)
}

// replaceText substitutes every literal occurrence of each token inside the
// subtree's text runs and reports whether anything changed. A token must
// sit inside a single run to be replaced, matching how templates are
// authored (each token typed in one go, no partial formatting).
func replaceText(n *node, mapping map[string]string) bool {
	replaced := false
	for _, body := range textBodies(n) {
		body.walk(func(e *node) bool {
			if e.local() != "t" {
				return true
			}
			txt := elementText(e)
			changed := false
			for token, val := range mapping {
				if strings.Contains(txt, token) {
					txt = strings.ReplaceAll(txt, token, val)
					changed = true
				}
			}
			if changed {
				setElementText(e, txt)
				replaced = true
			}
			return false
		})
	}
	return replaced
}

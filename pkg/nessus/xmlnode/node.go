// Package xmlnode adapts github.com/antchfx/xmlquery nodes to nessus.Node.
package xmlnode

import (
	"io"

	"github.com/antchfx/xmlquery"

	"github.com/exploopio/nessus/pkg/nessus"
)

// Element wraps an element node of a parsed document.
type Element struct {
	n *xmlquery.Node
}

// attribute is the value of one attribute. It has no children.
type attribute struct {
	value string
}

// Wrap returns n as a nessus.Node.
func Wrap(n *xmlquery.Node) *Element {
	return &Element{n: n}
}

// Parse reads a whole document and returns its root.
func Parse(r io.Reader) (*xmlquery.Node, error) {
	return xmlquery.Parse(r)
}

// Raw returns the underlying xmlquery node.
func (e *Element) Raw() *xmlquery.Node {
	return e.n
}

// Get returns the attribute or first direct child element named by sel.
func (e *Element) Get(sel nessus.Selector) (nessus.Node, bool) {
	if sel.Attr {
		for _, a := range e.n.Attr {
			if a.Name.Local == sel.Name {
				return &attribute{value: a.Value}, true
			}
		}
		return nil, false
	}
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == sel.Name {
			return &Element{n: c}, true
		}
	}
	return nil, false
}

// GetAll returns every direct child element named by sel. Attribute
// selectors match at most once.
func (e *Element) GetAll(sel nessus.Selector) []nessus.Node {
	if sel.Attr {
		if n, ok := e.Get(sel); ok {
			return []nessus.Node{n}
		}
		return nil
	}
	var out []nessus.Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == sel.Name {
			out = append(out, &Element{n: c})
		}
	}
	return out
}

// Text returns the concatenated text content of the element.
func (e *Element) Text() string {
	return e.n.InnerText()
}

func (a *attribute) Get(nessus.Selector) (nessus.Node, bool) { return nil, false }
func (a *attribute) GetAll(nessus.Selector) []nessus.Node   { return nil }
func (a *attribute) Text() string                           { return a.value }

var (
	_ nessus.Node = (*Element)(nil)
	_ nessus.Node = (*attribute)(nil)
)

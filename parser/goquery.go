package parser

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

type selectionNode struct {
	sel *goquery.Selection
}

// Wrap adapts a goquery selection to Node.
func Wrap(sel *goquery.Selection) Node {
	return selectionNode{sel: sel}
}

// ParseDocument parses an HTML document and returns its root node.
func ParseDocument(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return Wrap(doc.Selection), nil
}

func (n selectionNode) Find(selector string) []Node {
	found := n.sel.Find(selector)
	out := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, selectionNode{sel: s})
	})
	return out
}

func (n selectionNode) Text() string {
	return n.sel.Text()
}

func (n selectionNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

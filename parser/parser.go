package parser

import (
	"net/url"
	"strings"

	"github.com/aluiziolira/go-scrape-internships/config"
	"github.com/aluiziolira/go-scrape-internships/models"
)

// Node is the subset of an HTML tree the extractor needs.
type Node interface {
	// Find returns the descendants matching a CSS selector, in document order.
	Find(selector string) []Node
	Text() string
	Attr(name string) (string, bool)
}

// ParseListing extracts one listing from its container element. Fields that
// cannot be located are left missing.
func ParseListing(container Node, sel config.Selectors, origin *url.URL) models.Listing {
	return models.Listing{
		Title:       firstText(container, sel.Title),
		Description: firstText(container, sel.Description),
		OpenedOn:    firstText(container, sel.OpenedOn),
		Link:        firstLink(container, sel.Link, origin),
	}
}

// ParseListings extracts every listing under root.
func ParseListings(root Node, sel config.Selectors, origin *url.URL) []models.Listing {
	containers := root.Find(sel.Container)
	out := make([]models.Listing, 0, len(containers))
	for _, c := range containers {
		out = append(out, ParseListing(c, sel, origin))
	}
	return out
}

// NormalizeText trims the value and collapses inner whitespace runs.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ResolveLink makes href absolute against origin. Absolute hrefs are kept.
func ResolveLink(origin *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if origin == nil || ref.IsAbs() {
		return ref.String(), true
	}
	return origin.ResolveReference(ref).String(), true
}

func firstText(container Node, selector string) models.Field {
	if selector == "" {
		return models.Missing()
	}
	found := container.Find(selector)
	if len(found) == 0 {
		return models.Missing()
	}
	text := NormalizeText(found[0].Text())
	if text == "" {
		return models.Missing()
	}
	return models.Present(text)
}

func firstLink(container Node, selector string, origin *url.URL) models.Field {
	if selector == "" {
		return models.Missing()
	}
	found := container.Find(selector)
	if len(found) == 0 {
		return models.Missing()
	}
	href, ok := found[0].Attr("href")
	if !ok {
		return models.Missing()
	}
	link, ok := ResolveLink(origin, href)
	if !ok {
		return models.Missing()
	}
	return models.Present(link)
}

// Package models defines data structures shared by the extractor and cleaner.
package models

import "time"

// Sentinel stands in for a field that could not be located in the markup.
const Sentinel = "N/A"

// Field is a listing value that may be absent.
type Field struct {
	Value string
	Valid bool
}

// Present wraps a located value.
func Present(v string) Field {
	return Field{Value: v, Valid: true}
}

// Missing is the field for a value the markup did not carry.
func Missing() Field {
	return Field{}
}

// IsSentinel reports whether a located value is the missing-value placeholder.
func (f Field) IsSentinel() bool {
	return f.Valid && f.Value == Sentinel
}

// Raw renders the field in its persisted form, substituting the sentinel.
func (f Field) Raw() string {
	if !f.Valid {
		return Sentinel
	}
	return f.Value
}

// Listing is one internship posting extracted from a results page.
type Listing struct {
	Title       Field
	Description Field
	OpenedOn    Field
	Link        Field
}

// Complete reports whether every field was located.
func (l Listing) Complete() bool {
	return l.Title.Valid && l.Description.Valid && l.OpenedOn.Valid && l.Link.Valid
}

// Aggregate is the columnar record written once per extraction run. The four
// sequences always have the same length.
type Aggregate struct {
	Title       []string `json:"title"`
	Description []string `json:"description"`
	OpenedOn    []string `json:"opened_on"`
	Link        []string `json:"link"`
}

// NewAggregate returns an empty record whose sequences encode as [] rather than null.
func NewAggregate() *Aggregate {
	return &Aggregate{
		Title:       []string{},
		Description: []string{},
		OpenedOn:    []string{},
		Link:        []string{},
	}
}

// Append adds one listing, one entry per sequence.
func (a *Aggregate) Append(l Listing) {
	a.Title = append(a.Title, l.Title.Raw())
	a.Description = append(a.Description, l.Description.Raw())
	a.OpenedOn = append(a.OpenedOn, l.OpenedOn.Raw())
	a.Link = append(a.Link, l.Link.Raw())
}

// Len returns the number of listings held.
func (a *Aggregate) Len() int {
	return len(a.Title)
}

// Row is one cleaned listing with its 1-based position index.
type Row struct {
	Index   int
	Listing Listing
}

// Table is the cleaner's tabular view of the persisted aggregate records.
type Table struct {
	Rows []Row
}

// Columns lists the exported column headers after the index column.
var Columns = []string{"title", "description", "opened_on", "link"}

// Values returns the row's fields in column order.
func (r Row) Values() []Field {
	return []Field{r.Listing.Title, r.Listing.Description, r.Listing.OpenedOn, r.Listing.Link}
}

// ExtractResult holds the overall result of an extraction run.
type ExtractResult struct {
	Aggregate         *Aggregate
	StartTime         time.Time
	EndTime           time.Time
	PagesAttempted    int
	PagesSucceeded    int
	ListingCount      int
	DuplicatesSkipped int
	FailedURLs        []string
	ErrorsByType      map[string]int
}

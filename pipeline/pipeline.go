package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-scrape-internships/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Accumulator builds the columnar aggregate record for one extraction run.
// It is not safe for concurrent use; the extractor feeds it from a single goroutine.
type Accumulator struct {
	aggregate *models.Aggregate
	seen      *lru.Cache[string, struct{}]
	metrics   metrics
}

// NewAccumulator returns an empty accumulator. A dedupeSize of zero disables
// link de-duplication.
func NewAccumulator(dedupeSize int) (*Accumulator, error) {
	a := &Accumulator{
		aggregate: models.NewAggregate(),
		metrics:   newMetrics(),
	}
	if dedupeSize > 0 {
		cache, err := lru.New[string, struct{}](dedupeSize)
		if err != nil {
			return nil, fmt.Errorf("create dedupe cache: %w", err)
		}
		a.seen = cache
	}
	return a, nil
}

// Process appends listings to the aggregate. Each accepted listing adds exactly
// one entry to every sequence. It returns the number accepted.
func (a *Accumulator) Process(listings ...models.Listing) int {
	accepted := 0
	for _, l := range listings {
		if a.duplicate(l) {
			a.metrics.duplicates++
			slog.Debug("skipping duplicate listing", slog.String("link", l.Link.Value))
			continue
		}
		a.aggregate.Append(l)
		a.metrics.record(l)
		accepted++
	}
	return accepted
}

// Aggregate returns the record built so far.
func (a *Accumulator) Aggregate() *models.Aggregate {
	return a.aggregate
}

// Len returns the number of listings accepted.
func (a *Accumulator) Len() int {
	return a.aggregate.Len()
}

// Duplicates returns the number of listings skipped as already seen.
func (a *Accumulator) Duplicates() int {
	return a.metrics.duplicates
}

// GetMetrics returns a snapshot of the internal counters.
func (a *Accumulator) GetMetrics() map[string]interface{} {
	return a.metrics.snapshot()
}

func (a *Accumulator) duplicate(l models.Listing) bool {
	if a.seen == nil || !l.Link.Valid {
		return false
	}
	if a.seen.Contains(l.Link.Value) {
		return true
	}
	a.seen.Add(l.Link.Value, struct{}{})
	return false
}

type metrics struct {
	processed  int
	duplicates int
	missing    map[string]int
}

func newMetrics() metrics {
	return metrics{
		missing: make(map[string]int),
	}
}

func (m *metrics) record(l models.Listing) {
	m.processed++
	for i, f := range (models.Row{Listing: l}).Values() {
		if !f.Valid {
			m.missing[models.Columns[i]]++
		}
	}
}

func (m *metrics) snapshot() map[string]interface{} {
	copyMissing := make(map[string]int, len(m.missing))
	for k, v := range m.missing {
		copyMissing[k] = v
	}

	return map[string]interface{}{
		"processed_listings": m.processed,
		"duplicate_listings": m.duplicates,
		"missing_fields":     copyMissing,
	}
}

package pipeline

import (
	"testing"

	"github.com/aluiziolira/go-scrape-internships/models"
)

func listing(title, desc, opened, link string) models.Listing {
	field := func(v string) models.Field {
		if v == "" {
			return models.Missing()
		}
		return models.Present(v)
	}
	return models.Listing{
		Title:       field(title),
		Description: field(desc),
		OpenedOn:    field(opened),
		Link:        field(link),
	}
}

func TestAccumulatorKeepsSequencesAligned(t *testing.T) {
	acc, err := NewAccumulator(0)
	if err != nil {
		t.Fatalf("new accumulator: %v", err)
	}

	acc.Process(
		listing("Intern A", "", "2024-01-01", "https://x/1"),
		listing("Intern B", "Data role", "", "https://x/2"),
		listing("", "", "", ""),
	)

	agg := acc.Aggregate()
	for name, seq := range map[string][]string{
		"title":       agg.Title,
		"description": agg.Description,
		"opened_on":   agg.OpenedOn,
		"link":        agg.Link,
	} {
		if len(seq) != 3 {
			t.Fatalf("%s length = %d, want 3", name, len(seq))
		}
	}
	if agg.Description[0] != models.Sentinel || agg.OpenedOn[1] != models.Sentinel {
		t.Fatalf("missing fields should hold the sentinel: %+v", agg)
	}
	if agg.Link[2] != models.Sentinel || agg.Title[2] != models.Sentinel {
		t.Fatalf("empty listing should be all sentinels: %+v", agg)
	}

	missing, ok := acc.GetMetrics()["missing_fields"].(map[string]int)
	if !ok {
		t.Fatalf("expected missing fields map")
	}
	if missing["description"] != 2 || missing["link"] != 1 {
		t.Fatalf("missing fields = %v", missing)
	}
}

func TestAccumulatorDedupesLinks(t *testing.T) {
	acc, err := NewAccumulator(16)
	if err != nil {
		t.Fatalf("new accumulator: %v", err)
	}

	accepted := acc.Process(
		listing("Intern A", "Role", "Today", "https://x/1"),
		listing("Intern A again", "Role", "Today", "https://x/1"),
		listing("No link 1", "Role", "Today", ""),
		listing("No link 2", "Role", "Today", ""),
	)

	if accepted != 3 {
		t.Fatalf("accepted = %d, want 3", accepted)
	}
	if acc.Duplicates() != 1 {
		t.Fatalf("duplicates = %d, want 1", acc.Duplicates())
	}
	if acc.Len() != 3 || len(acc.Aggregate().Link) != 3 {
		t.Fatalf("aggregate length = %d, want 3", acc.Len())
	}
}

func TestAccumulatorDedupeDisabled(t *testing.T) {
	acc, err := NewAccumulator(0)
	if err != nil {
		t.Fatalf("new accumulator: %v", err)
	}
	acc.Process(
		listing("A", "d", "o", "https://x/1"),
		listing("A", "d", "o", "https://x/1"),
	)
	if acc.Len() != 2 {
		t.Fatalf("len = %d, want 2 with dedupe disabled", acc.Len())
	}
}

package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"homehunt-engine/internal/domain"
	"homehunt-engine/internal/scrape/types"
)

// fakeAdapter serves the scrape package tests: Extract decodes a JSON array
// and BuildPageRequest emits predictable URLs.
type fakeAdapter struct {
	name     string
	pageSize int
}

func (f *fakeAdapter) Name() string  { return f.name }
func (f *fakeAdapter) PageSize() int { return f.pageSize }

func (f *fakeAdapter) DiscoverFirstPage(ctx context.Context) (*types.FirstPage, error) {
	return &types.FirstPage{}, nil
}

func (f *fakeAdapter) Extract(content []byte) ([]domain.Record, error) {
	var recs []domain.Record
	if err := json.Unmarshal(content, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (f *fakeAdapter) BuildPageRequest(index int) domain.PageDescriptor {
	return domain.PageDescriptor{
		Source: f.name,
		Index:  index,
		URL:    fmt.Sprintf("http://test.local/%s/page/%d", f.name, index),
	}
}

func TestPlanPagesCeil(t *testing.T) {
	a := &fakeAdapter{name: "daft", pageSize: 20}

	tests := []struct {
		total int
		want  int // descriptors beyond page 1
	}{
		{45, 2}, // pages 2 and 3
		{40, 1},
		{20, 0},
		{19, 0},
		{21, 1},
		{0, 0}, // absent metadata collapses to the first page
	}
	for _, tt := range tests {
		pages := PlanPages(a, &types.FirstPage{TotalResults: tt.total})
		if len(pages) != tt.want {
			t.Errorf("total=%d: got %d descriptors, want %d", tt.total, len(pages), tt.want)
		}
	}
}

func TestPlanPagesAscendingOrder(t *testing.T) {
	a := &fakeAdapter{name: "daft", pageSize: 20}
	pages := PlanPages(a, &types.FirstPage{TotalResults: 45})

	if len(pages) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(pages))
	}
	if pages[0].Index != 2 || pages[1].Index != 3 {
		t.Errorf("indexes = %d,%d, want 2,3", pages[0].Index, pages[1].Index)
	}
}

func TestPlanPagesFromLastPage(t *testing.T) {
	a := &fakeAdapter{name: "property"}

	pages := PlanPages(a, &types.FirstPage{LastPage: 7})
	if len(pages) != 6 {
		t.Fatalf("got %d descriptors, want 6", len(pages))
	}
	for i, p := range pages {
		if p.Index != i+2 {
			t.Errorf("pages[%d].Index = %d, want %d", i, p.Index, i+2)
		}
	}

	if got := PlanPages(a, &types.FirstPage{LastPage: 1}); len(got) != 0 {
		t.Errorf("single-page source should yield no extra descriptors, got %d", len(got))
	}
}

package types

import (
	"context"

	"homehunt-engine/internal/domain"
)

// FirstPage is what discovery learns from a source's opening page: the
// records on it plus whatever pagination metadata the page exposes. Exactly
// one of TotalResults/LastPage is set for sources that paginate; both stay
// zero when the page carries no usable metadata.
type FirstPage struct {
	Records      []domain.Record
	TotalResults int // item count from embedded metadata (script/api sources)
	LastPage     int // highest page number seen in pagination links (html sources)
}

// Adapter translates one site's page structure into listing records. The
// three variants (embedded script JSON, CSS selector map, paginated REST API)
// are selected by configuration; no adapter mutates shared state, so every
// call is independently retryable.
type Adapter interface {
	Name() string
	PageSize() int

	// DiscoverFirstPage fetches page 1 and returns its records together with
	// pagination metadata for planning the rest of the batch.
	DiscoverFirstPage(ctx context.Context) (*FirstPage, error)

	// Extract turns one fetched page body into records. Zero records with a
	// nil error is a valid outcome (page had no matches).
	Extract(content []byte) ([]domain.Record, error)

	// BuildPageRequest maps a 1-based page index to its request descriptor.
	BuildPageRequest(index int) domain.PageDescriptor
}

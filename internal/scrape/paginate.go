package scrape

import (
	"log"

	"homehunt-engine/internal/domain"
	"homehunt-engine/internal/scrape/types"
)

// PlanPages decides how many pages a source has beyond the first and builds
// their descriptors in ascending index order. Page count is the declared last
// page when the source paginates by links, otherwise ceil(total/pageSize).
// Missing metadata falls back to the single page already captured by
// discovery.
func PlanPages(a types.Adapter, first *types.FirstPage) []domain.PageDescriptor {
	last := 1
	switch {
	case first.LastPage > 0:
		last = first.LastPage
	case first.TotalResults > 0 && a.PageSize() > 0:
		last = (first.TotalResults + a.PageSize() - 1) / a.PageSize()
	default:
		log.Printf("[%s] first page carries no pagination metadata; collecting a single page", a.Name())
	}

	var pages []domain.PageDescriptor
	for i := 2; i <= last; i++ {
		pages = append(pages, a.BuildPageRequest(i))
	}
	return pages
}

package domain

// Record is one property listing as extracted from a source page. Field names
// and shapes vary per source; the processed layer derives its column set from
// whatever fields show up, so nothing is unified here.
type Record map[string]any

// PageDescriptor is the unit of fetch work: one request URL plus its position
// within a source's result set. Index is 1-based; page 1 is always captured
// during discovery and never gets a descriptor.
type PageDescriptor struct {
	Source   string
	Index    int
	URL      string
	Filename string // optional debug-dump name
}

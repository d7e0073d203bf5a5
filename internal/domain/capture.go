package domain

import "time"

// RawCapture records one successful collection run of one source. A new run
// always produces a new capture at a new timestamped path; captures are never
// rewritten.
type RawCapture struct {
	Source     string
	CapturedAt time.Time
	Records    []Record
	Path       string
}

// ProcessedSnapshot is the columnar derivation of the most recent raw capture
// for a source. Consumers treat it as read-only.
type ProcessedSnapshot struct {
	Source  string
	RawPath string
	Path    string
	Rows    int64
}

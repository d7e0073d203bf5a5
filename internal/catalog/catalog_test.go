package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndHistory(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	started := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)

	if err := db.RecordRun(ctx, Run{
		Source:        "daft",
		StartedAt:     started,
		RawPath:       "raw/daft/2026/08/24/daft_093000.json",
		ProcessedPath: "processed/daft/2026/08/24/daft_093000.parquet",
		Rows:          45,
		FailedPages:   1,
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := db.RecordRun(ctx, Run{
		Source: "property",
		Error:  "no records extracted",
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := db.History(ctx, "daft", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs for daft, want 1", len(runs))
	}
	r := runs[0]
	if r.Rows != 45 || r.FailedPages != 1 {
		t.Errorf("run = %+v", r)
	}
	if !r.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", r.StartedAt, started)
	}

	runs, err = db.History(ctx, "property", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Error != "no records extracted" {
		t.Errorf("property runs = %+v", runs)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := db.RecordRun(ctx, Run{
			Source:    "daft",
			StartedAt: base.AddDate(0, 0, i),
			Rows:      int64(i),
		}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.History(ctx, "daft", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Rows != 2 || runs[1].Rows != 1 {
		t.Errorf("order wrong: %+v", runs)
	}
}

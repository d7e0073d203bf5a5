package lake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"homehunt-engine/internal/domain"
)

// Manager owns the two-phase store: immutable raw JSON captures under
// raw/<source>/<year>/<month>/<day>/, and parquet snapshots derived from them
// under the mirrored processed/ tree. Partition directories may be created
// concurrently by multiple sources; MkdirAll keeps that idempotent.
type Manager struct {
	base string
}

func New(base string) (*Manager, error) {
	m := &Manager{base: base}
	for _, p := range []string{m.rawRoot(), m.processedRoot()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return nil, fmt.Errorf("create lake dir: %w", err)
		}
	}
	return m, nil
}

func (m *Manager) rawRoot() string       { return filepath.Join(m.base, "raw") }
func (m *Manager) processedRoot() string { return filepath.Join(m.base, "processed") }

func partition(root, source string, t time.Time) string {
	return filepath.Join(root, source,
		fmt.Sprintf("%d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()))
}

// StoreRaw writes the full record list as one JSON array named with the run
// time. The write goes to a temp file first and is renamed into place, so a
// partially written capture is never visible under its final name.
func (m *Manager) StoreRaw(records []domain.Record, source string) (domain.RawCapture, error) {
	var rc domain.RawCapture

	now := time.Now()
	dir := partition(m.rawRoot(), source, now)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rc, fmt.Errorf("create raw partition: %w", err)
	}

	b, err := json.Marshal(records)
	if err != nil {
		return rc, fmt.Errorf("encode raw capture: %w", err)
	}

	final := filepath.Join(dir, fmt.Sprintf("%s_%s.json", source, now.Format("150405")))
	tmp, err := os.CreateTemp(dir, "."+source+"-*.json.tmp")
	if err != nil {
		return rc, fmt.Errorf("create raw temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return rc, fmt.Errorf("write raw capture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return rc, fmt.Errorf("close raw capture: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return rc, fmt.Errorf("publish raw capture: %w", err)
	}

	return domain.RawCapture{
		Source:     source,
		CapturedAt: now,
		Records:    records,
		Path:       final,
	}, nil
}

// ProcessAndStore reads the just-written raw capture back and derives its
// columnar snapshot. The column set is the union of fields across all
// records; rows missing a field get nulls. Like StoreRaw, the parquet file
// only appears under its final name once complete.
func (m *Manager) ProcessAndStore(rawPath, source string) (domain.ProcessedSnapshot, error) {
	var snap domain.ProcessedSnapshot

	b, err := os.ReadFile(rawPath)
	if err != nil {
		return snap, fmt.Errorf("read raw capture: %w", err)
	}
	var records []domain.Record
	if err := json.Unmarshal(b, &records); err != nil {
		return snap, fmt.Errorf("decode raw capture: %w", err)
	}

	now := time.Now()
	dir := partition(m.processedRoot(), source, now)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return snap, fmt.Errorf("create processed partition: %w", err)
	}

	final := filepath.Join(dir, fmt.Sprintf("%s_%s.parquet", source, now.Format("150405")))
	tmp := filepath.Join(dir, fmt.Sprintf(".%s_%s.parquet.tmp", source, now.Format("150405.000")))

	rows, err := writeParquet(tmp, records)
	if err != nil {
		os.Remove(tmp)
		return snap, fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return snap, fmt.Errorf("publish snapshot: %w", err)
	}

	return domain.ProcessedSnapshot{
		Source:  source,
		RawPath: rawPath,
		Path:    final,
		Rows:    rows,
	}, nil
}

// ReadProcessed loads a snapshot back as records, one per row, with nulls for
// fields a row did not have.
func (m *Manager) ReadProcessed(path string) ([]domain.Record, error) {
	return readParquet(path)
}

package lake

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sources lists every source with at least one processed snapshot.
func (m *Manager) Sources() ([]string, error) {
	entries, err := os.ReadDir(m.processedRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sources []string
	for _, e := range entries {
		if e.IsDir() {
			sources = append(sources, e.Name())
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// LatestProcessed finds the most recent snapshot for a source: newest year,
// then month, then day, then modification time within the day.
func (m *Manager) LatestProcessed(source string) (string, error) {
	root := filepath.Join(m.processedRoot(), source)

	for _, year := range dirsDesc(root) {
		for _, month := range dirsDesc(filepath.Join(root, year)) {
			for _, day := range dirsDesc(filepath.Join(root, year, month)) {
				if f := newestParquet(filepath.Join(root, year, month, day)); f != "" {
					return f, nil
				}
			}
		}
	}
	return "", fmt.Errorf("no processed snapshot for source %q", source)
}

func dirsDesc(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

func newestParquet(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var (
		best     string
		bestTime int64
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if t := info.ModTime().UnixNano(); best == "" || t > bestTime {
			best = filepath.Join(dir, e.Name())
			bestTime = t
		}
	}
	return best
}

package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"homehunt-engine/internal/domain"
	"homehunt-engine/internal/lake"
)

// Each source names its columns differently; map the search keys to the
// variants seen across the lake.
var columnAliases = map[string][]string{
	"address":       {"address", "DisplayAddress", "location", "title"},
	"price":         {"price", "PriceAsString", "price_string"},
	"bedrooms":      {"bedrooms", "BedsString", "beds", "num_bedrooms"},
	"property_type": {"property_type", "PropertyType", "type"},
	"ber_rating":    {"ber_rating", "BerRating", "ber"},
}

// Filters are pattern matches (case-insensitive regexp) plus an optional
// price window. Zero values mean "no constraint".
type Filters struct {
	Address      string
	Bedrooms     string
	PropertyType string
	BERRating    string
	MinPrice     float64
	MaxPrice     float64
}

// Latest loads the most recent processed snapshot for a source.
func Latest(m *lake.Manager, source string) ([]domain.Record, string, error) {
	path, err := m.LatestProcessed(source)
	if err != nil {
		return nil, "", err
	}
	rows, err := m.ReadProcessed(path)
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return rows, path, nil
}

// Search filters rows by the given patterns and price window.
func Search(rows []domain.Record, f Filters) ([]domain.Record, error) {
	patterns := map[string]string{
		"address":       f.Address,
		"bedrooms":      f.Bedrooms,
		"property_type": f.PropertyType,
		"ber_rating":    f.BERRating,
	}

	for key, pattern := range patterns {
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("bad %s pattern: %w", key, err)
		}
		col := findColumn(rows, columnAliases[key])
		if col == "" {
			// no source column to match against; everything filters out
			return nil, nil
		}
		rows = keep(rows, func(r domain.Record) bool {
			v, ok := r[col]
			return ok && v != nil && re.MatchString(asString(v))
		})
	}

	if f.MinPrice > 0 || f.MaxPrice > 0 {
		col := findColumn(rows, columnAliases["price"])
		if col == "" {
			return nil, nil
		}
		rows = keep(rows, func(r domain.Record) bool {
			p, ok := parsePrice(r[col])
			if !ok {
				return false
			}
			if f.MinPrice > 0 && p < f.MinPrice {
				return false
			}
			if f.MaxPrice > 0 && p > f.MaxPrice {
				return false
			}
			return true
		})
	}

	return rows, nil
}

// findColumn picks the first alias present with a value in at least one row.
func findColumn(rows []domain.Record, aliases []string) string {
	for _, col := range aliases {
		for _, r := range rows {
			if v, ok := r[col]; ok && v != nil {
				return col
			}
		}
	}
	return ""
}

func keep(rows []domain.Record, pred func(domain.Record) bool) []domain.Record {
	out := rows[:0:0]
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

var priceRe = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// parsePrice extracts the first number from a price value, tolerating
// currency symbols, thousands separators, and trailing text like
// "€2,100 per month".
func parsePrice(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		m := priceRe.FindString(t)
		if m == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		return p, err == nil
	default:
		return 0, false
	}
}

package main

import (
	"encoding/json"
	"fmt"

	"homehunt-engine/internal/domain"
)

// Preferred display order; anything else falls back to the JSON dump.
var displayColumns = []string{
	"address", "DisplayAddress", "title",
	"price", "PriceAsString",
	"beds", "bedrooms", "BedsString",
	"property_type", "PropertyType",
	"ber", "BerRating",
}

func printResults(source string, rows []domain.Record, debug bool) {
	fmt.Printf("\n%d results from %s\n\n", len(rows), source)

	for _, row := range rows {
		if debug {
			b, _ := json.Marshal(row)
			fmt.Printf("  %s\n\n", b)
			continue
		}
		printed := false
		for _, col := range displayColumns {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			fmt.Printf("  %s: %v\n", col, v)
			printed = true
		}
		if !printed {
			b, _ := json.Marshal(row)
			fmt.Printf("  %s\n", b)
		}
		fmt.Println()
	}
}

package lake

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"homehunt-engine/internal/domain"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

type column struct {
	name string
	kind string // BOOLEAN, DOUBLE, or UTF8
}

// inferColumns builds the union column set over all records. A column keeps a
// typed physical form only when every non-null value agrees on it; mixed
// columns degrade to UTF8 so source schema drift cannot fail a snapshot.
func inferColumns(records []domain.Record) []column {
	kinds := map[string]string{}
	for _, rec := range records {
		for name, v := range rec {
			if v == nil {
				if _, ok := kinds[name]; !ok {
					kinds[name] = ""
				}
				continue
			}
			var k string
			switch v.(type) {
			case bool:
				k = "BOOLEAN"
			case float64:
				k = "DOUBLE"
			default:
				k = "UTF8"
			}
			if prev, ok := kinds[name]; !ok || prev == "" {
				kinds[name] = k
			} else if prev != k {
				kinds[name] = "UTF8"
			}
		}
	}

	cols := make([]column, 0, len(kinds))
	for name, k := range kinds {
		if k == "" {
			k = "UTF8"
		}
		cols = append(cols, column{name: name, kind: k})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].name < cols[j].name })
	return cols
}

// buildSchema emits the dynamic all-optional JSON schema parquet-go expects.
func buildSchema(cols []column) string {
	fields := make([]map[string]string, 0, len(cols))
	for _, c := range cols {
		var tag string
		switch c.kind {
		case "BOOLEAN":
			tag = fmt.Sprintf("name=%s, type=BOOLEAN, repetitiontype=OPTIONAL", c.name)
		case "DOUBLE":
			tag = fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", c.name)
		default:
			tag = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", c.name)
		}
		fields = append(fields, map[string]string{"Tag": tag})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func projectRow(rec domain.Record, cols []column) map[string]any {
	row := make(map[string]any, len(cols))
	for _, c := range cols {
		v, ok := rec[c.name]
		if !ok || v == nil {
			row[c.name] = nil
			continue
		}
		if c.kind == "UTF8" {
			row[c.name] = stringify(v)
		} else {
			row[c.name] = v
		}
	}
	return row
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func writeParquet(path string, records []domain.Record) (int64, error) {
	cols := inferColumns(records)

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return 0, err
	}
	pw, err := writer.NewJSONWriter(buildSchema(cols), fw, 4)
	if err != nil {
		fw.Close()
		return 0, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var rows int64
	for _, rec := range records {
		b, err := json.Marshal(projectRow(rec, cols))
		if err != nil {
			_ = pw.WriteStop()
			fw.Close()
			return rows, err
		}
		if err := pw.Write(string(b)); err != nil {
			_ = pw.WriteStop()
			fw.Close()
			return rows, err
		}
		rows++
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return rows, err
	}
	return rows, fw.Close()
}

func readParquet(path string) ([]domain.Record, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	vals, err := pr.ReadByNumber(int(pr.GetNumRows()))
	if err != nil {
		return nil, err
	}

	// ReadByNumber materializes rows as generated structs whose field names
	// are the Go-ified InNames; map them back to the original column names.
	rename := map[string]string{}
	for _, info := range pr.SchemaHandler.Infos[1:] {
		rename[info.InName] = info.ExName
	}

	b, err := json.Marshal(vals)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(domain.Record, len(row))
		for k, v := range row {
			if ex, ok := rename[k]; ok {
				k = ex
			}
			rec[k] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

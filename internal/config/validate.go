package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims the obvious whitespace mistakes and checks the
// per-kind required fields. Missing configuration is the one error class that
// should stop the whole pipeline before any fetch happens.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	if strings.TrimSpace(out.Lake.Dir) == "" {
		out.Lake.Dir = "housing_data"
	}

	if out.Fetch.MaxInFlight < 0 {
		res.addErr("fetch.max_in_flight must not be negative")
	}
	if out.Fetch.MaxInFlight > 10 {
		res.addWarn("fetch.max_in_flight is %d; most portals rate-limit well below that", out.Fetch.MaxInFlight)
	}
	if out.Fetch.MaxRetries < 0 {
		res.addErr("fetch.max_retries must not be negative")
	}

	enabled := 0
	seen := map[string]bool{}
	for i := range out.Sources {
		s := &out.Sources[i]
		s.Name = strings.TrimSpace(s.Name)

		if s.Name == "" {
			res.addErr("sources[%d]: name is required", i)
			continue
		}
		if seen[s.Name] {
			res.addErr("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true

		if !s.Enabled {
			continue
		}
		enabled++

		switch s.Kind {
		case KindScript:
			if s.URL == "" {
				res.addErr("source %q: url is required", s.Name)
			}
			if s.PageSize <= 0 {
				res.addWarn("source %q: page_size not set; defaulting to 20", s.Name)
			}
		case KindHTML:
			if s.URL == "" {
				res.addErr("source %q: url is required", s.Name)
			}
			if s.Parent == "" {
				res.addErr("source %q: parent selector is required for html sources", s.Name)
			}
			if len(s.Fields) == 0 {
				res.addErr("source %q: at least one field selector is required", s.Name)
			}
			if s.Pagination.Selector == "" {
				res.addWarn("source %q: no pagination selector; only the first page will be collected", s.Name)
			}
		case KindAPI:
			if s.API.BaseURL == "" {
				res.addErr("source %q: api.base_url is required", s.Name)
			}
			if s.API.Endpoint == "" {
				res.addErr("source %q: api.endpoint is required", s.Name)
			}
			if strings.TrimSpace(s.API.Key) == "" {
				res.addErr("source %q: api.key is required (or set MYHOME_API_KEY)", s.Name)
			}
			if s.PageSize <= 0 {
				res.addWarn("source %q: page_size not set; defaulting to 20", s.Name)
			}
		default:
			res.addErr("source %q: unknown kind %q (want script, html, or api)", s.Name, s.Kind)
		}
	}

	if enabled == 0 {
		res.addErr("no sources enabled")
	}

	return out, res
}

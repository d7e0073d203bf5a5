package scrape

import (
	"fmt"

	"homehunt-engine/internal/config"
	"homehunt-engine/internal/scrape/htmlsel"
	"homehunt-engine/internal/scrape/restapi"
	"homehunt-engine/internal/scrape/script"
	"homehunt-engine/internal/scrape/types"
	"homehunt-engine/internal/scrape/util"
)

// NewAdapter builds the adapter variant a source's configuration selects.
func NewAdapter(sc config.Source, client *util.Client) (types.Adapter, error) {
	switch sc.Kind {
	case config.KindScript:
		return script.New(script.Config{
			Source:   sc.Name,
			URL:      sc.URL,
			PageSize: sc.PageSize,
		}, client), nil

	case config.KindHTML:
		fields := make(map[string]htmlsel.Field, len(sc.Fields))
		for name, f := range sc.Fields {
			fields[name] = htmlsel.Field{Selector: f.Selector, Attribute: f.Attribute}
		}
		return htmlsel.New(htmlsel.Config{
			Source:       sc.Name,
			URL:          sc.URL,
			Parent:       sc.Parent,
			Fields:       fields,
			PageSelector: sc.Pagination.Selector,
			PagePattern:  sc.Pagination.Pattern,
		}, client), nil

	case config.KindAPI:
		return restapi.New(restapi.Config{
			Source:        sc.Name,
			BaseURL:       sc.API.BaseURL,
			Endpoint:      sc.API.Endpoint,
			APIKey:        sc.API.Key,
			CorrelationID: sc.API.CorrelationID,
			PageSize:      sc.PageSize,
		}, client), nil
	}

	return nil, fmt.Errorf("source %q: unknown adapter kind %q", sc.Name, sc.Kind)
}

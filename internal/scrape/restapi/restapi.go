package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"homehunt-engine/internal/domain"
	"homehunt-engine/internal/scrape/types"
	"homehunt-engine/internal/scrape/util"
)

type Config struct {
	Source        string
	BaseURL       string // search endpoint, e.g. https://api.myhome.ie/search
	Endpoint      string // portal URL the API proxies for
	APIKey        string
	CorrelationID string
	PageSize      int
}

// Adapter handles JSON search APIs paginated by page/size query params
// (myhome.ie style). The shared client already classifies 429 as transient
// and other non-200s as terminal for the page.
type Adapter struct {
	cfg    Config
	client *util.Client
}

func New(cfg Config, client *util.Client) *Adapter {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string  { return a.cfg.Source }
func (a *Adapter) PageSize() int { return a.cfg.PageSize }

type searchResponse struct {
	SearchResults []domain.Record `json:"SearchResults"`
	TotalResults  int             `json:"TotalResults"`
}

func (a *Adapter) DiscoverFirstPage(ctx context.Context) (*types.FirstPage, error) {
	body, err := a.client.Get(ctx, a.BuildPageRequest(1).URL)
	if err != nil {
		return nil, err
	}

	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &types.ExtractionError{Source: a.cfg.Source, Reason: fmt.Sprintf("decode search response: %v", err)}
	}

	return &types.FirstPage{
		Records:      res.SearchResults,
		TotalResults: res.TotalResults,
	}, nil
}

func (a *Adapter) Extract(content []byte) ([]domain.Record, error) {
	var res searchResponse
	if err := json.Unmarshal(content, &res); err != nil {
		return nil, fmt.Errorf("%s: decode search response: %w", a.cfg.Source, err)
	}
	return res.SearchResults, nil
}

func (a *Adapter) BuildPageRequest(index int) domain.PageDescriptor {
	q := url.Values{}
	q.Set("ApiKey", a.cfg.APIKey)
	q.Set("CorrelationId", a.cfg.CorrelationID)
	q.Set("RequestTypeId", "2")
	q.Set("RequestVerb", "GET")
	q.Set("Endpoint", a.cfg.Endpoint)
	q.Set("Page", strconv.Itoa(index))
	q.Set("PageSize", strconv.Itoa(a.cfg.PageSize))
	q.Set("SortColumn", "2")
	q.Set("SortDirection", "2")
	q.Set("Url", a.cfg.Endpoint)

	return domain.PageDescriptor{
		Source: a.cfg.Source,
		Index:  index,
		URL:    a.cfg.BaseURL + "?" + q.Encode(),
	}
}

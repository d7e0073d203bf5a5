package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"homehunt-engine/internal/domain"
	"homehunt-engine/internal/scrape/types"
	"homehunt-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// Selector priority mirrors how server-rendered portals embed their state:
// plain JSON payloads first, Next.js data blob, then the looser script kinds.
var scriptSelectors = []string{
	"script[type='application/json']",
	"script#__NEXT_DATA__",
	"script[type='text/javascript']",
	"script[type='application/ld+json']",
}

type Config struct {
	Source   string
	URL      string
	PageSize int
}

// Adapter handles sources that ship their listings as JSON inside a script
// tag (daft.ie style). Records are read from props.pageProps.listings and
// the total item count from props.pageProps.paging.
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

func (a *Adapter) DiscoverFirstPage(ctx context.Context) (*types.FirstPage, error) {
	body, err := a.client.Get(ctx, a.cfg.URL)
	if err != nil {
		return nil, err
	}

	payload, err := a.decode(body)
	if err != nil {
		return nil, err
	}

	return &types.FirstPage{
		Records:      listings(payload),
		TotalResults: totalResults(payload),
	}, nil
}

func (a *Adapter) Extract(content []byte) ([]domain.Record, error) {
	payload, err := a.decode(content)
	if err != nil {
		return nil, err
	}
	return listings(payload), nil
}

// BuildPageRequest maps a page index to the portal's offset-based URL:
// page 2 starts at offset PageSize, page 3 at 2*PageSize, and so on.
func (a *Adapter) BuildPageRequest(index int) domain.PageDescriptor {
	offset := (index - 1) * a.cfg.PageSize

	pageURL := a.cfg.URL
	if u, err := url.Parse(a.cfg.URL); err == nil {
		q := u.Query()
		q.Set("pageSize", strconv.Itoa(a.cfg.PageSize))
		q.Set("from", strconv.Itoa(offset))
		u.RawQuery = q.Encode()
		pageURL = u.String()
	}

	return domain.PageDescriptor{
		Source:   a.cfg.Source,
		Index:    index,
		URL:      pageURL,
		Filename: fmt.Sprintf("results_%s_%d.json", a.cfg.Source, offset),
	}
}

// decode scans the selector list in priority order and returns the first
// script body that parses as JSON. Nothing parseable means the site layout
// changed, which is an extraction failure rather than something to retry.
func (a *Adapter) decode(content []byte) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &types.ExtractionError{Source: a.cfg.Source, Reason: fmt.Sprintf("parse html: %v", err)}
	}

	for _, sel := range scriptSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(node.Text()), &payload); err != nil {
			continue
		}
		return payload, nil
	}

	return nil, &types.ExtractionError{Source: a.cfg.Source, Reason: "no script tag yielded parseable JSON"}
}

func listings(payload map[string]any) []domain.Record {
	items, _ := dig(payload, "props", "pageProps", "listings").([]any)

	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		wrapper, _ := item.(map[string]any)
		listing, _ := wrapper["listing"].(map[string]any)
		if listing == nil {
			continue
		}

		rec := domain.Record{
			"title": valueOr(listing, "title", "No Title"),
			"price": valueOr(listing, "price", "No Price"),
			"beds":  valueOr(listing, "numBedrooms", "N/A"),
			"baths": valueOr(listing, "numBathrooms", "N/A"),
		}
		// Optional fields the downstream search endpoint filters on.
		copyIfPresent(rec, listing, "propertyType", "property_type")
		copyIfPresent(rec, listing, "seoFriendlyPath", "seoFriendlyPath")
		if ber, ok := listing["ber"].(map[string]any); ok {
			copyIfPresent(rec, ber, "rating", "ber")
		}
		if media, ok := listing["media"].(map[string]any); ok {
			copyIfPresent(rec, media, "images", "images")
		}

		records = append(records, rec)
	}
	return records
}

func totalResults(payload map[string]any) int {
	n, _ := dig(payload, "props", "pageProps", "paging", "totalResults").(float64)
	return int(n)
}

func dig(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = mm[key]
	}
	return cur
}

func valueOr(m map[string]any, key string, fallback any) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return fallback
}

func copyIfPresent(dst domain.Record, src map[string]any, from, to string) {
	if v, ok := src[from]; ok && v != nil {
		dst[to] = v
	}
}

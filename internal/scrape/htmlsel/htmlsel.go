package htmlsel

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"homehunt-engine/internal/domain"
	"homehunt-engine/internal/scrape/types"
	"homehunt-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// Field maps one record field to a CSS selector scoped under the parent
// element. Attribute is "text" (or empty) for the element text, otherwise
// the attribute name to read.
type Field struct {
	Selector  string
	Attribute string
}

type Config struct {
	Source string
	URL    string

	Parent string
	Fields map[string]Field

	// Pagination link list, e.g. selector ".paging a" with pattern "p_"
	// matching hrefs like /property-to-let/dublin/p_2/.
	PageSelector string
	PagePattern  string
}

// Adapter handles plain server-rendered listing pages: one record per parent
// element, one field per selector. A field whose selector has no match is
// omitted from the record rather than defaulted.
type Adapter struct {
	cfg    Config
	client *util.Client
}

func New(cfg Config, client *util.Client) *Adapter {
	if cfg.PagePattern == "" {
		cfg.PagePattern = "p_"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Source }

// PageSize is unknown for selector sources; pagination comes from the link
// list instead of an item count.
func (a *Adapter) PageSize() int { return 0 }

func (a *Adapter) DiscoverFirstPage(ctx context.Context) (*types.FirstPage, error) {
	body, err := a.client.Get(ctx, a.cfg.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &types.ExtractionError{Source: a.cfg.Source, Reason: fmt.Sprintf("parse html: %v", err)}
	}

	return &types.FirstPage{
		Records:  a.extractDoc(doc),
		LastPage: a.lastPage(doc),
	}, nil
}

func (a *Adapter) Extract(content []byte) ([]domain.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &types.ExtractionError{Source: a.cfg.Source, Reason: fmt.Sprintf("parse html: %v", err)}
	}
	return a.extractDoc(doc), nil
}

// BuildPageRequest rewrites the configured URL for a page index, keeping the
// portal's /<pattern><n>/ path convention.
func (a *Adapter) BuildPageRequest(index int) domain.PageDescriptor {
	base := strings.TrimRight(strings.SplitN(a.cfg.URL, a.cfg.PagePattern, 2)[0], "/")
	return domain.PageDescriptor{
		Source: a.cfg.Source,
		Index:  index,
		URL:    fmt.Sprintf("%s/%s%d/", base, a.cfg.PagePattern, index),
	}
}

func (a *Adapter) extractDoc(doc *goquery.Document) []domain.Record {
	var records []domain.Record

	doc.Find(a.cfg.Parent).Each(func(_ int, parent *goquery.Selection) {
		rec := domain.Record{}
		for name, f := range a.cfg.Fields {
			el := parent.Find(f.Selector).First()
			if el.Length() == 0 {
				continue
			}
			if f.Attribute == "" || f.Attribute == "text" {
				rec[name] = strings.TrimSpace(el.Text())
			} else if v, ok := el.Attr(f.Attribute); ok {
				rec[name] = v
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	})

	return records
}

// lastPage takes the maximum page number declared by the pagination links.
// Malformed candidates are skipped; no pagination element at all means a
// single page.
func (a *Adapter) lastPage(doc *goquery.Document) int {
	if a.cfg.PageSelector == "" {
		return 1
	}

	last := 1
	doc.Find(a.cfg.PageSelector).Each(func(_ int, link *goquery.Selection) {
		n := 0
		if href, ok := link.Attr("href"); ok {
			n = pageNumber(href, a.cfg.PagePattern)
		}
		if n == 0 {
			n, _ = strconv.Atoi(strings.TrimSpace(link.Text()))
		}
		if n > last {
			last = n
		}
	})
	return last
}

func pageNumber(href, pattern string) int {
	_, tail, found := strings.Cut(href, pattern)
	if !found {
		return 0
	}
	n, err := strconv.Atoi(strings.Trim(tail, "/"))
	if err != nil {
		return 0
	}
	return n
}

package script

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"homehunt-engine/internal/scrape/types"
	"homehunt-engine/internal/scrape/util"
)

const nextDataPage = `<html><head>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{
  "listings":[
    {"listing":{"title":"12 Main Street, Dublin 7","price":"€2,400 per month","numBedrooms":"3 Bed","numBathrooms":"2 Bath","propertyType":"House","seoFriendlyPath":"/for-rent/12-main-street/123"}},
    {"listing":{"title":"4 Oak Road, Dublin 9","price":"€1,950 per month","numBedrooms":"2 Bed"}}
  ],
  "paging":{"totalResults":45}
}}}
</script>
</head><body></body></html>`

func newTestClient() *util.Client {
	return util.NewClient(5*time.Second, nil)
}

func TestDiscoverFirstPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nextDataPage))
	}))
	defer srv.Close()

	a := New(Config{Source: "daft", URL: srv.URL, PageSize: 20}, newTestClient())

	first, err := a.DiscoverFirstPage(context.Background())
	if err != nil {
		t.Fatalf("DiscoverFirstPage: %v", err)
	}
	if first.TotalResults != 45 {
		t.Errorf("TotalResults = %d, want 45", first.TotalResults)
	}
	if len(first.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(first.Records))
	}
	if got := first.Records[0]["title"]; got != "12 Main Street, Dublin 7" {
		t.Errorf("title = %v", got)
	}
	if got := first.Records[0]["beds"]; got != "3 Bed" {
		t.Errorf("beds = %v", got)
	}
	if got := first.Records[0]["property_type"]; got != "House" {
		t.Errorf("property_type = %v", got)
	}
	// numBathrooms absent on the second listing falls back, never panics
	if got := first.Records[1]["baths"]; got != "N/A" {
		t.Errorf("baths fallback = %v", got)
	}
}

func TestBuildPageRequestOffsets(t *testing.T) {
	a := New(Config{Source: "daft", URL: "https://www.daft.ie/property-for-rent/dublin/houses?numBeds_from=3&numBeds_to=3&pageSize=20", PageSize: 20}, newTestClient())

	p2 := a.BuildPageRequest(2)
	if p2.Index != 2 || !strings.Contains(p2.URL, "from=20") {
		t.Errorf("page 2 = %+v, want from=20", p2)
	}
	p3 := a.BuildPageRequest(3)
	if !strings.Contains(p3.URL, "from=40") {
		t.Errorf("page 3 URL = %q, want from=40", p3.URL)
	}
	if p2.Filename != "results_daft_20.json" {
		t.Errorf("filename = %q", p2.Filename)
	}
}

func TestExtractNoScriptsIsExtractionError(t *testing.T) {
	a := New(Config{Source: "daft", URL: "http://unused", PageSize: 20}, newTestClient())

	_, err := a.Extract([]byte(`<html><body><p>maintenance</p></body></html>`))
	var ee *types.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want ExtractionError", err)
	}
}

func TestExtractSkipsUnparseableScripts(t *testing.T) {
	page := `<html><head>
<script type="text/javascript">window.foo = bar;</script>
<script type="application/ld+json">{"props":{"pageProps":{"listings":[{"listing":{"title":"Fallback House"}}]}}}</script>
</head></html>`

	a := New(Config{Source: "daft", URL: "http://unused", PageSize: 20}, newTestClient())
	recs, err := a.Extract([]byte(page))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(recs) != 1 || recs[0]["title"] != "Fallback House" {
		t.Errorf("records = %+v", recs)
	}
}

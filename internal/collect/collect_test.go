package collect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"homehunt-engine/internal/catalog"
	"homehunt-engine/internal/config"
	"homehunt-engine/internal/lake"
	"homehunt-engine/internal/scrape/types"
)

const goodPage = `<html><body>
<div class="item"><span class="addr">14 Dorset Street</span><span class="cost">€1,950</span></div>
<div class="item"><span class="addr">3 Griffith Avenue</span><span class="cost">€2,400</span></div>
</body></html>`

// a page with no script tags at all: the script adapter must fail extraction
const brokenPage = `<html><body><p>we moved to a shiny new SPA</p></body></html>`

func testCollector(t *testing.T, goodURL, brokenURL string) (*Collector, *catalog.DB) {
	t.Helper()

	var cfg config.Config
	cfg.Lake.Dir = t.TempDir()
	cfg.Fetch.MaxInFlight = 3
	cfg.Fetch.MaxRetries = 1
	cfg.Fetch.BaseDelayMS = 1
	cfg.Fetch.BatchDelayMS = 1
	cfg.Fetch.TimeoutSeconds = 5
	cfg.Fetch.HostRPS = 1000
	cfg.Fetch.HostBurst = 100
	cfg.Sources = []config.Source{
		{
			Name:    "good",
			Kind:    config.KindHTML,
			Enabled: true,
			URL:     goodURL,
			Parent:  ".item",
			Fields: map[string]config.Field{
				"address": {Selector: ".addr", Attribute: "text"},
				"price":   {Selector: ".cost", Attribute: "text"},
			},
		},
		{
			Name:     "broken",
			Kind:     config.KindScript,
			Enabled:  true,
			URL:      brokenURL,
			PageSize: 20,
		},
		{
			Name:    "disabled",
			Kind:    config.KindHTML,
			Enabled: false,
			URL:     "http://never-fetched.invalid",
		},
	}

	lk, err := lake.New(cfg.Lake.Dir)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Open(filepath.Join(cfg.Lake.Dir, "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cat.Close() })

	return New(cfg, lk, cat), cat
}

func TestCollectAllIsolatesFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(goodPage))
	}))
	defer good.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(brokenPage))
	}))
	defer broken.Close()

	c, cat := testCollector(t, good.URL, broken.URL)
	results := c.CollectAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("got %d outcomes, want 2 (disabled source must not run)", len(results))
	}

	g := results["good"]
	if g.Err != nil {
		t.Fatalf("good source failed: %v", g.Err)
	}
	if g.Rows != 2 {
		t.Errorf("good rows = %d, want 2", g.Rows)
	}
	if g.ProcessedPath == "" || g.RawPath == "" {
		t.Errorf("good outcome missing paths: %+v", g)
	}

	b := results["broken"]
	if b.Err == nil {
		t.Fatal("broken source should fail")
	}
	var ee *types.ExtractionError
	if !errors.As(b.Err, &ee) {
		t.Errorf("broken err = %v, want ExtractionError", b.Err)
	}

	// both runs land in the catalog
	for _, source := range []string{"good", "broken"} {
		runs, err := cat.History(context.Background(), source, 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Errorf("%s: %d catalog runs, want 1", source, len(runs))
		}
	}
}

func TestCollectAllNoRecordsIsFailureOutcome(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	}))
	defer empty.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(brokenPage))
	}))
	defer broken.Close()

	c, _ := testCollector(t, empty.URL, broken.URL)
	results := c.CollectAll(context.Background())

	g := results["good"]
	if g.Err == nil {
		t.Fatal("a source yielding zero records should report a failure outcome")
	}
	if g.RawPath != "" {
		t.Errorf("no raw capture should be written for an empty run, got %q", g.RawPath)
	}
}

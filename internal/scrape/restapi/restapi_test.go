package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homehunt-engine/internal/scrape/types"
	"homehunt-engine/internal/scrape/util"
)

func testConfig(baseURL string) Config {
	return Config{
		Source:        "myhome",
		BaseURL:       baseURL,
		Endpoint:      "https://www.myhome.ie/rentals/dublin/property-to-rent",
		APIKey:        "test-key",
		CorrelationID: "test-correlation",
		PageSize:      20,
	}
}

func newTestClient() *util.Client {
	return util.NewClient(5*time.Second, nil)
}

func TestDiscoverFirstPage(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"SearchResults":[{"DisplayAddress":"22 Pearse Street, Dublin 2","PriceAsString":"€2,100","BedsString":"2 beds"}],"TotalResults":45}`))
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL), newTestClient())
	first, err := a.DiscoverFirstPage(context.Background())
	if err != nil {
		t.Fatalf("DiscoverFirstPage: %v", err)
	}

	if first.TotalResults != 45 {
		t.Errorf("TotalResults = %d, want 45", first.TotalResults)
	}
	if len(first.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(first.Records))
	}
	if got := first.Records[0]["DisplayAddress"]; got != "22 Pearse Street, Dublin 2" {
		t.Errorf("DisplayAddress = %v", got)
	}

	want := map[string]string{
		"ApiKey":        "test-key",
		"CorrelationId": "test-correlation",
		"RequestTypeId": "2",
		"RequestVerb":   "GET",
		"Page":          "1",
		"PageSize":      "20",
		"SortColumn":    "2",
		"SortDirection": "2",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestRateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL), newTestClient())
	_, err := a.DiscoverFirstPage(context.Background())
	if !types.IsTransient(err) {
		t.Fatalf("429 should classify as transient, got %v", err)
	}
}

func TestNotFoundIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL), newTestClient())
	_, err := a.DiscoverFirstPage(context.Background())
	if err == nil || types.IsTransient(err) {
		t.Fatalf("404 should be a terminal fetch error, got %v", err)
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want FetchError with status 404", err)
	}
}

func TestExtractMalformedBody(t *testing.T) {
	a := New(testConfig("http://unused"), newTestClient())
	if _, err := a.Extract([]byte("<html>not json</html>")); err == nil {
		t.Fatal("expected decode error for non-JSON body")
	}
}

package collect

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"homehunt-engine/internal/catalog"
	"homehunt-engine/internal/config"
	"homehunt-engine/internal/lake"
	"homehunt-engine/internal/scrape"
	"homehunt-engine/internal/scrape/util"

	"golang.org/x/sync/errgroup"
)

// Outcome is one source's result for a run: a processed snapshot on success,
// a captured error otherwise. A failed entry means "this source produced
// nothing this run", never "the run failed".
type Outcome struct {
	Source        string
	RawPath       string
	ProcessedPath string
	Rows          int64
	FailedPages   int
	Err           error
}

// Collector runs the discovery → schedule → store pipeline for every enabled
// source, concurrently, with complete isolation between sources. It owns the
// shared HTTP client for the lifetime of a run.
type Collector struct {
	cfg     config.Config
	client  *util.Client
	sched   *scrape.Scheduler
	lake    *lake.Manager
	catalog *catalog.DB // optional
}

func New(cfg config.Config, lk *lake.Manager, cat *catalog.DB) *Collector {
	rps := cfg.Fetch.HostRPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Fetch.HostBurst
	if burst <= 0 {
		burst = 3
	}
	client := util.NewClient(
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		util.NewHostLimiter(rps, burst),
	)

	sched := scrape.NewScheduler(client)
	sched.MaxInFlight = cfg.Fetch.MaxInFlight
	sched.MaxRetries = cfg.Fetch.MaxRetries
	sched.BaseDelay = time.Duration(cfg.Fetch.BaseDelayMS) * time.Millisecond
	sched.BatchDelay = time.Duration(cfg.Fetch.BatchDelayMS) * time.Millisecond

	return &Collector{
		cfg:     cfg,
		client:  client,
		sched:   sched,
		lake:    lk,
		catalog: cat,
	}
}

// CollectAll runs every enabled source and returns the per-source outcomes.
func (c *Collector) CollectAll(ctx context.Context) map[string]Outcome {
	enabled := make([]config.Source, 0, len(c.cfg.Sources))
	for _, sc := range c.cfg.Sources {
		if sc.Enabled {
			enabled = append(enabled, sc)
		}
	}

	results := make(chan Outcome, len(enabled))
	var g errgroup.Group
	for _, sc := range enabled {
		sc := sc
		g.Go(func() error {
			log.Printf("[%s] collecting...", sc.Name)
			results <- c.collectSource(ctx, sc)
			return nil // best-effort: one source never cancels siblings
		})
	}
	_ = g.Wait()
	close(results)

	out := make(map[string]Outcome, len(enabled))
	for r := range results {
		out[r.Source] = r
	}
	return out
}

func (c *Collector) collectSource(ctx context.Context, sc config.Source) (out Outcome) {
	out = Outcome{Source: sc.Name}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
		}
		c.record(started, out)
	}()

	a, err := scrape.NewAdapter(sc, c.client)
	if err != nil {
		out.Err = err
		return
	}

	first, err := a.DiscoverFirstPage(ctx)
	if err != nil {
		out.Err = fmt.Errorf("discover first page: %w", err)
		return
	}

	pages := scrape.PlanPages(a, first)
	records := first.Records
	rest, failedPages := c.sched.FetchAll(ctx, a, pages)
	records = append(records, rest...)
	out.FailedPages = failedPages

	if len(records) == 0 {
		log.Printf("[%s] no data retrieved", sc.Name)
		out.Err = errors.New("no records extracted")
		return
	}

	rc, err := c.lake.StoreRaw(records, sc.Name)
	if err != nil {
		out.Err = fmt.Errorf("store raw: %w", err)
		return
	}
	out.RawPath = rc.Path

	snap, err := c.lake.ProcessAndStore(rc.Path, sc.Name)
	if err != nil {
		out.Err = fmt.Errorf("process snapshot: %w", err)
		return
	}
	out.ProcessedPath = snap.Path
	out.Rows = snap.Rows

	log.Printf("[%s] %d records (%d pages failed) -> %s", sc.Name, snap.Rows, failedPages, snap.Path)
	return
}

// record writes the run to the catalog; catalog failures are logged, never
// escalated.
func (c *Collector) record(started time.Time, out Outcome) {
	if c.catalog == nil {
		return
	}
	errText := ""
	if out.Err != nil {
		errText = out.Err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.catalog.RecordRun(ctx, catalog.Run{
		Source:        out.Source,
		StartedAt:     started,
		RawPath:       out.RawPath,
		ProcessedPath: out.ProcessedPath,
		Rows:          out.Rows,
		FailedPages:   out.FailedPages,
		Error:         errText,
	}); err != nil {
		log.Printf("[%s] catalog write failed: %v", out.Source, err)
	}
}

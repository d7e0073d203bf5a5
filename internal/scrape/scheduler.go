package scrape

import (
	"context"
	"log"
	"sync"
	"time"

	"homehunt-engine/internal/domain"
	"homehunt-engine/internal/scrape/types"
	"homehunt-engine/internal/scrape/util"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxInFlight = 3
	defaultMaxRetries  = 3
	defaultBaseDelay   = time.Second
	defaultBatchDelay  = time.Second
)

// FetchFunc fetches one URL. Production code uses util.Client.Get; tests
// swap in instrumented stand-ins.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Scheduler drives the page fetches for one source without overwhelming the
// remote site: at most MaxInFlight requests at a time, doubling backoff on
// transient failures, and a fixed pause between batches. A page that fails
// after exhausting its retries contributes zero records and bumps the failure
// tally; it never aborts the batch.
type Scheduler struct {
	Fetch       FetchFunc
	MaxInFlight int
	MaxRetries  int
	BaseDelay   time.Duration
	BatchDelay  time.Duration
}

func NewScheduler(client *util.Client) *Scheduler {
	return &Scheduler{Fetch: client.Get}
}

// FetchAll fetches every descriptor and merges the extracted records in
// completion order. The returned tally counts pages that produced nothing
// after retries; callers log it but do not fail the run over it.
func (s *Scheduler) FetchAll(ctx context.Context, a types.Adapter, pages []domain.PageDescriptor) ([]domain.Record, int) {
	if len(pages) == 0 {
		return nil, 0
	}

	k := s.maxInFlight()
	sem := semaphore.NewWeighted(int64(k))

	var (
		mu      sync.Mutex
		records []domain.Record
		failed  int
	)

	for start := 0; start < len(pages); start += k {
		end := start + k
		if end > len(pages) {
			end = len(pages)
		}

		var g errgroup.Group
		for _, p := range pages[start:end] {
			p := p
			g.Go(func() error {
				if err := sem.Acquire(ctx, 1); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					return nil
				}
				defer sem.Release(1)

				recs, err := s.fetchPage(ctx, a, p)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed++
					log.Printf("[%s] page %d gave up: %v", a.Name(), p.Index, err)
					return nil
				}
				records = append(records, recs...)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(pages) {
			if err := sleep(ctx, s.batchDelay()); err != nil {
				mu.Lock()
				failed += len(pages) - end
				mu.Unlock()
				break
			}
		}
	}

	return records, failed
}

// fetchPage runs the retry loop for a single page. Only transient failures
// are retried; malformed content and terminal statuses report immediately.
func (s *Scheduler) fetchPage(ctx context.Context, a types.Adapter, p domain.PageDescriptor) ([]domain.Record, error) {
	delay := s.baseDelay()
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries(); attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return nil, lastErr
			}
			delay *= 2
		}

		body, err := s.Fetch(ctx, p.URL)
		if err != nil {
			lastErr = err
			if types.IsTransient(err) && ctx.Err() == nil {
				continue
			}
			break
		}

		recs, err := a.Extract(body)
		if err != nil {
			return nil, err
		}
		return recs, nil
	}

	return nil, lastErr
}

func (s *Scheduler) maxInFlight() int {
	if s.MaxInFlight > 0 {
		return s.MaxInFlight
	}
	return defaultMaxInFlight
}

func (s *Scheduler) maxRetries() int {
	if s.MaxRetries > 0 {
		return s.MaxRetries
	}
	return defaultMaxRetries
}

func (s *Scheduler) baseDelay() time.Duration {
	if s.BaseDelay > 0 {
		return s.BaseDelay
	}
	return defaultBaseDelay
}

func (s *Scheduler) batchDelay() time.Duration {
	if s.BatchDelay > 0 {
		return s.BatchDelay
	}
	return defaultBatchDelay
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

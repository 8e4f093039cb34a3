// Package crawl drives the full pipeline for a set of employers:
// resolve → fetch → normalize → reconcile. Employers are independent units
// of work; one failing never aborts the others.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/batch"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/normalize"
	"jobradar-engine/internal/reconcile"
	"jobradar-engine/internal/resolve"
)

// Fetcher is one platform's protocol implementation.
type Fetcher interface {
	Platform() domain.Platform
	FetchAll(ctx context.Context, p resolve.Params) (ats.Batch, error)
}

// TxRunner commits one employer's reconciliation as a single logical unit.
type TxRunner interface {
	InTx(ctx context.Context, fn func(reconcile.Store) error) error
}

// ParamResolver turns a board URL into fetch parameters; *resolve.Resolver
// in production.
type ParamResolver interface {
	Resolve(ctx context.Context, emp domain.Employer) (resolve.Params, error)
}

type Runner struct {
	Resolver ParamResolver
	Fetchers map[domain.Platform]Fetcher
	DB       TxRunner

	// EmployerConcurrency bounds how many employers crawl at once; page
	// concurrency within an employer is the fetcher's business.
	EmployerConcurrency int
	EmployerTimeout     time.Duration

	// Now is swappable for tests.
	Now func() time.Time
}

// Summary aggregates one run across all employers.
type Summary struct {
	Employers int
	Succeeded int
	Skipped   int // discovery failed or platform unsupported
	Partial   int // completed with pages lost, close step withheld
	Failed    int // first page (or reconciliation) failed

	JobsSeen    int
	JobsDropped int // normalization skips
	Inserted    int
	Updated     int
	Closed      int

	Elapsed time.Duration
}

type employerOutcome int

const (
	outcomeSucceeded employerOutcome = iota
	outcomeSkipped
	outcomePartial
	outcomeFailed
)

type employerResult struct {
	outcome employerOutcome
	seen    int
	dropped int
	rec     reconcile.Outcome
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Run crawls every employer and returns the run summary. Errors are
// per-employer and already folded into the summary; Run itself only fails
// on context cancellation.
func (r *Runner) Run(ctx context.Context, employers []domain.Employer) (Summary, error) {
	start := time.Now()
	sum := Summary{Employers: len(employers)}

	tasks := make([]func(context.Context) (employerResult, error), len(employers))
	for i, emp := range employers {
		emp := emp
		tasks[i] = func(ctx context.Context) (employerResult, error) {
			return r.crawlEmployer(ctx, emp)
		}
	}

	results, err := batch.Run(ctx, r.EmployerConcurrency, tasks)
	for _, res := range results {
		out := res.Value
		if res.Err != nil {
			out = employerResult{outcome: outcomeFailed}
		}
		switch out.outcome {
		case outcomeSucceeded:
			sum.Succeeded++
		case outcomeSkipped:
			sum.Skipped++
		case outcomePartial:
			sum.Partial++
		case outcomeFailed:
			sum.Failed++
		}
		sum.JobsSeen += out.seen
		sum.JobsDropped += out.dropped
		sum.Inserted += out.rec.Inserted
		sum.Updated += out.rec.Updated
		sum.Closed += out.rec.Closed
	}

	sum.Elapsed = time.Since(start)
	log.Printf("[run] employers=%d ok=%d skipped=%d partial=%d failed=%d seen=%d inserted=%d updated=%d closed=%d dropped=%d in %s",
		sum.Employers, sum.Succeeded, sum.Skipped, sum.Partial, sum.Failed,
		sum.JobsSeen, sum.Inserted, sum.Updated, sum.Closed, sum.JobsDropped, sum.Elapsed.Round(time.Millisecond))
	return sum, err
}

func (r *Runner) crawlEmployer(ctx context.Context, emp domain.Employer) (employerResult, error) {
	if r.EmployerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.EmployerTimeout)
		defer cancel()
	}

	params, err := r.Resolver.Resolve(ctx, emp)
	if err != nil {
		var de *resolve.DiscoveryError
		if errors.As(err, &de) {
			log.Printf("[run] employer=%q skipped: %v", emp.Name, err)
			return employerResult{outcome: outcomeSkipped}, nil
		}
		log.Printf("[run] employer=%q discovery fetch failed: %v", emp.Name, err)
		return employerResult{outcome: outcomeFailed}, nil
	}

	f, ok := r.Fetchers[emp.Platform]
	if !ok {
		log.Printf("[run] employer=%q skipped: no fetcher for platform %q", emp.Name, emp.Platform)
		return employerResult{outcome: outcomeSkipped}, nil
	}

	b, err := f.FetchAll(ctx, params)
	if err != nil {
		// A first-page failure means we can't tell absence from outage;
		// nothing is upserted and nothing may be closed this run.
		log.Printf("[run] employer=%q fetch failed: %v", emp.Name, err)
		return employerResult{outcome: outcomeFailed}, nil
	}

	var (
		jobs    []*domain.Job
		dropped int
	)
	for _, raw := range b.Jobs {
		if j := normalize.Normalize(emp, params, raw); j != nil {
			jobs = append(jobs, j)
		} else {
			dropped++
		}
	}

	complete := b.PagesFailed == 0

	var rec reconcile.Outcome
	err = r.DB.InTx(ctx, func(s reconcile.Store) error {
		var applyErr error
		rec, applyErr = reconcile.Apply(ctx, s, emp, jobs, complete, r.now())
		return applyErr
	})
	if err != nil {
		log.Printf("[run] employer=%q reconcile failed: %v", emp.Name, err)
		return employerResult{outcome: outcomeFailed, seen: len(b.Jobs), dropped: dropped}, nil
	}

	outcome := outcomeSucceeded
	if !complete {
		outcome = outcomePartial
	}
	log.Printf("[run] employer=%q platform=%s fetched=%d normalized=%d inserted=%d updated=%d closed=%d pagesFailed=%d",
		emp.Name, emp.Platform, len(b.Jobs), len(jobs), rec.Inserted, rec.Updated, rec.Closed, b.PagesFailed)

	return employerResult{outcome: outcome, seen: len(b.Jobs), dropped: dropped, rec: rec}, nil
}

// NewFetcherSet wires the standard production fetchers, one per platform,
// sharing a single rate-limited HTTP client.
func NewFetcherSet(fetchers ...Fetcher) (map[domain.Platform]Fetcher, error) {
	m := make(map[domain.Platform]Fetcher, len(fetchers))
	for _, f := range fetchers {
		if _, dup := m[f.Platform()]; dup {
			return nil, fmt.Errorf("duplicate fetcher for platform %q", f.Platform())
		}
		m[f.Platform()] = f
	}
	return m, nil
}

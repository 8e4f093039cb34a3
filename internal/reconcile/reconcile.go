// Package reconcile merges a freshly normalized crawl batch for one employer
// into the persisted job set. Identity is (employer, platform, externalId)
// and nothing else; title churn on the same id is just a field update.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobradar-engine/internal/domain"
)

// Store is the persistence sink. Implementations run one Apply call as a
// single logical transaction so a crash can't leave an employer half-closed.
type Store interface {
	FindActiveExternalIDs(ctx context.Context, employerID int64) (map[string]bool, error)
	UpsertJob(ctx context.Context, job *domain.Job) (inserted bool, err error)
	CloseJobs(ctx context.Context, employerID int64, externalIDs []string) (int, error)
}

type Outcome struct {
	Inserted int
	Updated  int
	Closed   int
	Deduped  int
}

// Apply upserts every job in the batch and, only when the crawl was
// complete, closes previously-ACTIVE jobs missing from it. A partial crawl
// must never close anything; a transient fetch gap is not a disappearance.
// CLOSED jobs are never reopened, even if their externalId resurfaces.
func Apply(ctx context.Context, s Store, emp domain.Employer, jobs []*domain.Job, complete bool, now time.Time) (Outcome, error) {
	var out Outcome

	active, err := s.FindActiveExternalIDs(ctx, emp.ID)
	if err != nil {
		return out, fmt.Errorf("find active jobs: %w", err)
	}

	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if seen[j.ExternalID] {
			out.Deduped++
			continue
		}
		seen[j.ExternalID] = true

		j.LastSeenAt = now
		inserted, err := s.UpsertJob(ctx, j)
		if err != nil {
			return out, fmt.Errorf("upsert %s/%s: %w", emp.Name, j.ExternalID, err)
		}
		if inserted {
			out.Inserted++
		} else {
			out.Updated++
		}
	}

	if !complete {
		log.Printf("[reconcile] employer=%q partial crawl, skipping close step", emp.Name)
		return out, nil
	}

	var missing []string
	for id := range active {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		closed, err := s.CloseJobs(ctx, emp.ID, missing)
		if err != nil {
			return out, fmt.Errorf("close jobs: %w", err)
		}
		out.Closed = closed
	}

	return out, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobradar-engine/internal/domain"
)

// txJobStore is the transaction-scoped reconcile.Store implementation.
type txJobStore struct {
	tx *sql.Tx
}

func (s *txJobStore) FindActiveExternalIDs(ctx context.Context, employerID int64) (map[string]bool, error) {
	rows, err := s.tx.QueryContext(ctx, `
SELECT external_id FROM jobs
WHERE employer_id = ? AND status = 'ACTIVE';`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// UpsertJob inserts the job or overwrites the mutable fields of the existing
// row matched by (employer, platform, external_id). first_seen_at, status,
// and created_at survive updates; a CLOSED row stays CLOSED.
func (s *txJobStore) UpsertJob(ctx context.Context, j *domain.Job) (bool, error) {
	var existingID int64
	err := s.tx.QueryRowContext(ctx, `
SELECT id FROM jobs
WHERE employer_id = ? AND platform = ? AND external_id = ?
LIMIT 1;`, j.EmployerID, j.Platform, j.ExternalID).Scan(&existingID)

	now := j.LastSeenAt.UTC().Format(time.RFC3339)
	var postedAt any
	if j.PostedAt != nil {
		postedAt = j.PostedAt.UTC().Format(time.RFC3339)
	}

	switch {
	case err == sql.ErrNoRows:
		_, err := s.tx.ExecContext(ctx, `
INSERT INTO jobs (employer_id, platform, external_id, title, location, location_type,
                  employment_type, job_url, apply_url, description, requirements,
                  posted_at, first_seen_at, last_seen_at, status, raw_payload,
                  created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'ACTIVE', ?, ?, ?);`,
			j.EmployerID, j.Platform, j.ExternalID, j.Title, j.Location, j.LocationType,
			j.EmploymentType, j.JobURL, j.ApplyURL, j.DescriptionText, j.RequirementsText,
			postedAt, now, now, string(j.RawPayload), now, now,
		)
		if err != nil {
			return false, fmt.Errorf("insert job: %w", err)
		}
		return true, nil

	case err != nil:
		return false, err

	default:
		_, err := s.tx.ExecContext(ctx, `
UPDATE jobs SET
  title = ?, location = ?, location_type = ?, employment_type = ?,
  job_url = ?, apply_url = ?, description = ?, requirements = ?,
  posted_at = ?, last_seen_at = ?, raw_payload = ?, updated_at = ?
WHERE id = ?;`,
			j.Title, j.Location, j.LocationType, j.EmploymentType,
			j.JobURL, j.ApplyURL, j.DescriptionText, j.RequirementsText,
			postedAt, now, string(j.RawPayload), now,
			existingID,
		)
		if err != nil {
			return false, fmt.Errorf("update job: %w", err)
		}
		return false, nil
	}
}

func (s *txJobStore) CloseJobs(ctx context.Context, employerID int64, externalIDs []string) (int, error) {
	closed := 0
	now := time.Now().UTC().Format(time.RFC3339)

	for _, id := range externalIDs {
		res, err := s.tx.ExecContext(ctx, `
UPDATE jobs SET status = 'CLOSED', updated_at = ?
WHERE employer_id = ? AND external_id = ? AND status = 'ACTIVE';`,
			now, employerID, id)
		if err != nil {
			return closed, fmt.Errorf("close job %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			closed++
		}
	}
	return closed, nil
}

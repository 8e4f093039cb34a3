package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"jobradar-engine/internal/domain"
)

const jobColumns = `
id, employer_id, platform, external_id, title, location, location_type,
employment_type, job_url, apply_url, description, requirements,
posted_at, first_seen_at, last_seen_at, status, raw_payload, created_at, updated_at`

// ListJobs returns every job row for one employer, any status, newest first.
func ListJobs(ctx context.Context, db *sql.DB, employerID int64) ([]domain.Job, error) {
	rows, err := db.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE employer_id = ?
ORDER BY last_seen_at DESC, external_id;`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetJob fetches one job by its identity key. Returns sql.ErrNoRows when absent.
func GetJob(ctx context.Context, db *sql.DB, employerID int64, platform domain.Platform, externalID string) (domain.Job, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE employer_id = ? AND platform = ? AND external_id = ?
LIMIT 1;`, employerID, platform, externalID)
	return scanJob(row)
}

// CountByStatus returns how many of an employer's jobs carry status.
func CountByStatus(ctx context.Context, db *sql.DB, employerID int64, status domain.JobStatus) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM jobs WHERE employer_id = ? AND status = ?;`, employerID, status).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (domain.Job, error) {
	var (
		j          domain.Job
		platform   string
		locType    string
		empType    string
		status     string
		postedAt   sql.NullString
		firstSeen  string
		lastSeen   string
		rawPayload string
		createdAt  string
		updatedAt  string
	)
	if err := r.Scan(
		&j.ID, &j.EmployerID, &platform, &j.ExternalID, &j.Title, &j.Location, &locType,
		&empType, &j.JobURL, &j.ApplyURL, &j.DescriptionText, &j.RequirementsText,
		&postedAt, &firstSeen, &lastSeen, &status, &rawPayload, &createdAt, &updatedAt,
	); err != nil {
		return domain.Job{}, err
	}

	j.Platform = domain.Platform(platform)
	j.LocationType = domain.LocationType(locType)
	j.EmploymentType = domain.EmploymentType(empType)
	j.Status = domain.JobStatus(status)
	j.RawPayload = json.RawMessage(rawPayload)

	if postedAt.Valid {
		if t, err := time.Parse(time.RFC3339, postedAt.String); err == nil {
			j.PostedAt = &t
		}
	}
	j.FirstSeenAt, _ = time.Parse(time.RFC3339, firstSeen)
	j.LastSeenAt, _ = time.Parse(time.RFC3339, lastSeen)
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return j, nil
}

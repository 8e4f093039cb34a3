package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/reconcile"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func seedOne(t *testing.T, db *DB) domain.Employer {
	t.Helper()
	ctx := context.Background()
	added, err := SeedEmployers(ctx, db.Pool, []domain.Employer{
		{Name: "Acme", Platform: domain.PlatformGreenhouse, BoardURL: "https://boards.greenhouse.io/acme"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, added)

	emps, err := ListEmployers(ctx, db.Pool)
	require.NoError(t, err)
	require.Len(t, emps, 1)
	return emps[0]
}

func testJob(emp domain.Employer, externalID, title string) *domain.Job {
	return &domain.Job{
		EmployerID:     emp.ID,
		Platform:       emp.Platform,
		ExternalID:     externalID,
		Title:          title,
		LocationType:   domain.LocationUnknown,
		EmploymentType: domain.EmploymentFullTime,
		RawPayload:     []byte(`{"id":1}`),
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestSeedEmployers_SkipsExistingAndBlank(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	batch := []domain.Employer{
		{Name: "Acme", Platform: domain.PlatformLever, BoardURL: "https://jobs.lever.co/acme"},
		{Name: "  ", Platform: domain.PlatformLever},
	}
	added, err := SeedEmployers(ctx, db.Pool, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = SeedEmployers(ctx, db.Pool, batch)
	require.NoError(t, err)
	assert.Zero(t, added)

	emps, err := ListEmployers(ctx, db.Pool)
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, domain.PlatformLever, emps[0].Platform)
}

func TestReconcileRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	emp := seedOne(t, db)

	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var out reconcile.Outcome
	err := db.InTx(ctx, func(s reconcile.Store) error {
		var err error
		out, err = reconcile.Apply(ctx, s, emp,
			[]*domain.Job{testJob(emp, "1", "Engineer"), testJob(emp, "2", "Intern")}, true, t0)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, reconcile.Outcome{Inserted: 2}, out)

	// Second crawl: "1" survives with a new title, "2" disappeared.
	t1 := t0.Add(6 * time.Hour)
	err = db.InTx(ctx, func(s reconcile.Store) error {
		var err error
		out, err = reconcile.Apply(ctx, s, emp,
			[]*domain.Job{testJob(emp, "1", "Senior Engineer")}, true, t1)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, reconcile.Outcome{Updated: 1, Closed: 1}, out)

	kept, err := GetJob(ctx, db.Pool, emp.ID, emp.Platform, "1")
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", kept.Title)
	assert.Equal(t, domain.StatusActive, kept.Status)
	assert.Equal(t, t0, kept.FirstSeenAt)
	assert.Equal(t, t1, kept.LastSeenAt)

	gone, err := GetJob(ctx, db.Pool, emp.ID, emp.Platform, "2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, gone.Status)

	active, err := CountByStatus(ctx, db.Pool, emp.ID, domain.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestReconcile_PartialCrawlKeepsMissingActive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	emp := seedOne(t, db)
	now := time.Now().UTC().Truncate(time.Second)

	err := db.InTx(ctx, func(s reconcile.Store) error {
		_, err := reconcile.Apply(ctx, s, emp, []*domain.Job{testJob(emp, "1", "Engineer")}, true, now)
		return err
	})
	require.NoError(t, err)

	err = db.InTx(ctx, func(s reconcile.Store) error {
		_, err := reconcile.Apply(ctx, s, emp, nil, false, now.Add(time.Hour))
		return err
	})
	require.NoError(t, err)

	j, err := GetJob(ctx, db.Pool, emp.ID, emp.Platform, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, j.Status)
}

func TestReconcile_ClosedJobNotReopened(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	emp := seedOne(t, db)
	now := time.Now().UTC().Truncate(time.Second)

	err := db.InTx(ctx, func(s reconcile.Store) error {
		_, err := reconcile.Apply(ctx, s, emp, []*domain.Job{testJob(emp, "1", "Engineer")}, true, now)
		return err
	})
	require.NoError(t, err)

	err = db.InTx(ctx, func(s reconcile.Store) error {
		_, err := reconcile.Apply(ctx, s, emp, nil, true, now.Add(time.Hour))
		return err
	})
	require.NoError(t, err)

	// The externalId resurfaces; fields update but status stays CLOSED.
	err = db.InTx(ctx, func(s reconcile.Store) error {
		_, err := reconcile.Apply(ctx, s, emp, []*domain.Job{testJob(emp, "1", "Engineer II")}, true, now.Add(2*time.Hour))
		return err
	})
	require.NoError(t, err)

	j, err := GetJob(ctx, db.Pool, emp.ID, emp.Platform, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, j.Status)
	assert.Equal(t, "Engineer II", j.Title)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	emp := seedOne(t, db)

	err := db.InTx(ctx, func(s reconcile.Store) error {
		if _, err := s.UpsertJob(ctx, testJob(emp, "1", "Engineer")); err != nil {
			return err
		}
		return context.Canceled
	})
	require.Error(t, err)

	_, err = GetJob(ctx, db.Pool, emp.ID, emp.Platform, "1")
	require.Error(t, err)
}

func TestListJobs_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	emp := seedOne(t, db)

	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	err := db.InTx(ctx, func(s reconcile.Store) error {
		_, err := reconcile.Apply(ctx, s, emp, []*domain.Job{testJob(emp, "old", "Old")}, true, t0)
		return err
	})
	require.NoError(t, err)
	err = db.InTx(ctx, func(s reconcile.Store) error {
		_, err := reconcile.Apply(ctx, s, emp, []*domain.Job{
			testJob(emp, "old", "Old"), testJob(emp, "new", "New"),
		}, true, t0.Add(time.Hour))
		return err
	})
	require.NoError(t, err)

	jobs, err := ListJobs(ctx, db.Pool, emp.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	// Same last_seen_at, external_id breaks the tie.
	assert.Equal(t, "new", jobs[0].ExternalID)
}

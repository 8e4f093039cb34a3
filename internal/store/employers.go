package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"jobradar-engine/internal/domain"
)

// ListEmployers returns every registered employer. The crawler never writes
// this table outside of SeedEmployers; it belongs to the import workflow.
func ListEmployers(ctx context.Context, db *sql.DB) ([]domain.Employer, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, name, platform, board_url FROM employers ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Employer
	for rows.Next() {
		var e domain.Employer
		var platform string
		if err := rows.Scan(&e.ID, &e.Name, &platform, &e.BoardURL); err != nil {
			return nil, err
		}
		p, err := domain.ParsePlatform(platform)
		if err != nil {
			return nil, fmt.Errorf("employer %q: %w", e.Name, err)
		}
		e.Platform = p
		out = append(out, e)
	}
	return out, rows.Err()
}

// SeedEmployers imports employer tuples, skipping names already present.
// Display name is the natural key (unique index enforces it).
func SeedEmployers(ctx context.Context, db *sql.DB, employers []domain.Employer) (added int, err error) {
	for _, e := range employers {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO employers (name, platform, board_url)
VALUES (?, ?, ?);`, name, string(e.Platform), strings.TrimSpace(e.BoardURL))
		if err != nil {
			return added, fmt.Errorf("seed employer %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

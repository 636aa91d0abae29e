package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/jobboard/internal/database"
)

// StatsRepository runs the aggregate counts behind the admin dashboard.
type StatsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return n, nil
}

func (r *StatsRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *StatsRepository) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role)
}

func (r *StatsRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since)
}

func (r *StatsRepository) CountJobs(ctx context.Context, activeOnly bool) (int64, error) {
	if activeOnly {
		return r.count(ctx, `SELECT COUNT(*) FROM jobs WHERE is_active = TRUE AND published = TRUE`)
	}
	return r.count(ctx, `SELECT COUNT(*) FROM jobs`)
}

func (r *StatsRepository) CountApplicationsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM applications WHERE applied_at >= $1`, since)
}

// CountApplicationsByStatus groups by the lower-cased stored status, so legacy
// spellings land next to their canonical form.
func (r *StatsRepository) CountApplicationsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT LOWER(status), COUNT(*) FROM applications GROUP BY LOWER(status)`)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan application count: %w", err)
		}
		counts[strings.TrimSpace(status)] += n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

func (r *StatsRepository) CountReportsByStatus(ctx context.Context, status string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM reported_jobs WHERE status = $1`, status)
}

func (r *StatsRepository) CountFeedbackByStatus(ctx context.Context, status string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM feedback WHERE status = $1`, status)
}

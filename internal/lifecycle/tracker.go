// Package lifecycle groups applications into display buckets.
//
// A job that has been archived freezes every application filed against it:
// regardless of the stored status, the application is shown as archived.
package lifecycle

import (
	"log/slog"

	"github.com/BradenHooton/jobboard/internal/models"
)

// Buckets maps a bucket name to its applications in input order.
type Buckets map[string][]*models.Application

// Order returns the fixed display order of the known buckets.
func Order() []string {
	order := make([]string, 0, len(models.ApplicationStatuses))
	for _, status := range models.ApplicationStatuses {
		order = append(order, string(status))
	}
	return order
}

// EffectiveBucket is archived when the job is inactive, else the application's own status.
// Unknown stored statuses come back lower-cased with ok=false.
func EffectiveBucket(app *models.Application, job *models.Job) (string, bool) {
	if job != nil && !job.IsActive {
		return string(models.StatusArchived), true
	}
	status, ok := models.ParseApplicationStatus(string(app.Status))
	return string(status), ok
}

// GroupByStatus places every application whose job is known into exactly one bucket.
// Applications referencing a missing job are skipped and logged.
func GroupByStatus(applications []*models.Application, jobs []*models.Job, logger *slog.Logger) Buckets {
	jobsByID := make(map[string]*models.Job, len(jobs))
	for _, job := range jobs {
		if job != nil {
			jobsByID[job.ID] = job
		}
	}

	buckets := make(Buckets, len(models.ApplicationStatuses))
	for _, name := range Order() {
		buckets[name] = make([]*models.Application, 0)
	}

	for _, app := range applications {
		if app == nil {
			continue
		}

		job, found := jobsByID[app.JobID]
		if !found {
			if logger != nil {
				logger.Warn("application references unknown job",
					slog.String("application_id", app.ID),
					slog.String("job_id", app.JobID))
			}
			continue
		}

		bucket, known := EffectiveBucket(app, job)
		if !known && logger != nil {
			logger.Warn("application has unrecognized status",
				slog.String("application_id", app.ID),
				slog.String("status", bucket))
		}
		buckets[bucket] = append(buckets[bucket], app)
	}

	return buckets
}

// Counts returns the number of applications per bucket.
func (b Buckets) Counts() map[string]int {
	counts := make(map[string]int, len(b))
	for name, apps := range b {
		counts[name] = len(apps)
	}
	return counts
}

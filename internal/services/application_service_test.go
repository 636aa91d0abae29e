package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplicationService(apps *MockApplicationRepository, jobs *MockJobRepository, users *MockUserRepository, notifier *MockNotifier) *ApplicationService {
	return NewApplicationService(apps, jobs, users, nil, notifier, time.UTC, newTestLogger())
}

func usersReturning(user *models.User) *MockUserRepository {
	return &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
}

func jobsReturning(job *models.Job) *MockJobRepository {
	return &MockJobRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Job, error) {
			if id != job.ID {
				return nil, models.ErrNotFound
			}
			return job, nil
		},
	}
}

func TestApplicationService_Apply_UsesServerClockAndLocalWindow(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	user := NewTestUser("user-1", "a@example.com", "alice")
	user.Timezone = "America/New_York"

	// 23:30 on Jan 15 in New York
	now := time.Date(2024, 1, 16, 4, 30, 0, 0, time.UTC)

	var gotStart, gotEnd time.Time
	var gotLimit int
	apps := &MockApplicationRepository{
		CreateWithinQuotaFunc: func(ctx context.Context, app *models.Application, start, end time.Time, limit int) (*models.Application, error) {
			gotStart, gotEnd, gotLimit = start, end, limit
			app.ID = "app-1"
			return app, nil
		},
	}

	svc := newTestApplicationService(apps, jobsReturning(NewTestJob("job-1", true)), usersReturning(user), &MockNotifier{})
	svc.now = fixedClock(now)

	created, err := svc.Apply(context.Background(), "user-1", ApplyInput{JobID: "job-1", CoverLetter: "  Hello  "}, nil)

	require.NoError(t, err)
	assert.Equal(t, "app-1", created.ID)
	assert.Equal(t, models.StatusApplied, created.Status)
	assert.True(t, created.AppliedAt.Equal(now))
	require.NotNil(t, created.CoverLetter)
	assert.Equal(t, "Hello", *created.CoverLetter)

	assert.True(t, gotStart.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, ny)))
	assert.True(t, gotEnd.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, ny)))
	assert.Equal(t, models.DailyApplicationLimit, gotLimit)
}

func TestApplicationService_Apply_FallsBackToCallerZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	var gotStart time.Time
	apps := &MockApplicationRepository{
		CreateWithinQuotaFunc: func(ctx context.Context, app *models.Application, start, end time.Time, limit int) (*models.Application, error) {
			gotStart = start
			return app, nil
		},
	}

	svc := newTestApplicationService(apps, jobsReturning(NewTestJob("job-1", true)), usersReturning(NewTestUser("user-1", "a@example.com", "alice")), &MockNotifier{})
	svc.now = fixedClock(now)

	_, err = svc.Apply(context.Background(), "user-1", ApplyInput{JobID: "job-1"}, tokyo)

	require.NoError(t, err)
	assert.True(t, gotStart.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, tokyo)))
}

func TestApplicationService_Apply_QuotaExceeded(t *testing.T) {
	apps := &MockApplicationRepository{
		CreateWithinQuotaFunc: func(ctx context.Context, app *models.Application, start, end time.Time, limit int) (*models.Application, error) {
			return nil, models.ErrQuotaExceeded
		},
	}

	svc := newTestApplicationService(apps, jobsReturning(NewTestJob("job-1", true)), usersReturning(NewTestUser("user-1", "a@example.com", "alice")), &MockNotifier{})
	// 22:15 UTC, so the window closes in 1h45m
	svc.now = fixedClock(time.Date(2024, 1, 15, 22, 15, 0, 0, time.UTC))

	result, err := svc.Apply(context.Background(), "user-1", ApplyInput{JobID: "job-1"}, nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)

	var qe *models.QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, models.DailyApplicationLimit, qe.Limit)
	assert.True(t, qe.ResetAt.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 105*time.Minute, qe.ResetIn)
}

func TestApplicationService_Apply_Rejections(t *testing.T) {
	closed := NewTestJob("job-closed", false)
	unpublished := NewTestJob("job-draft", true)
	unpublished.Published = false

	jobs := &MockJobRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Job, error) {
			switch id {
			case "job-closed":
				return closed, nil
			case "job-draft":
				return unpublished, nil
			case "job-1":
				return NewTestJob("job-1", true), nil
			}
			return nil, models.ErrNotFound
		},
	}
	apps := &MockApplicationRepository{
		CreateWithinQuotaFunc: func(ctx context.Context, app *models.Application, start, end time.Time, limit int) (*models.Application, error) {
			return nil, models.ErrConflict
		},
	}

	tests := []struct {
		name      string
		input     ApplyInput
		wantErr   error
		wantField string
	}{
		{name: "missing job id", input: ApplyInput{}, wantField: "jobId"},
		{name: "non-initial status", input: ApplyInput{JobID: "job-1", Status: "interviewing"}, wantField: "status"},
		{name: "unknown status", input: ApplyInput{JobID: "job-1", Status: "pending"}, wantField: "status"},
		{name: "job not found", input: ApplyInput{JobID: "missing"}, wantErr: models.ErrNotFound},
		{name: "archived job", input: ApplyInput{JobID: "job-closed"}, wantErr: models.ErrJobClosed},
		{name: "unpublished job", input: ApplyInput{JobID: "job-draft"}, wantErr: models.ErrJobClosed},
		{name: "duplicate application", input: ApplyInput{JobID: "job-1", Status: "Applied"}, wantErr: models.ErrConflict},
	}

	svc := newTestApplicationService(apps, jobs, usersReturning(NewTestUser("user-1", "a@example.com", "alice")), &MockNotifier{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), "user-1", tt.input, nil)
			require.Error(t, err)

			if tt.wantField != "" {
				var ve *models.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantField, ve.Field)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApplicationService_Apply_ValidatesApplicationData(t *testing.T) {
	checker, err := NewApplicationDataValidator()
	require.NoError(t, err)

	called := false
	apps := &MockApplicationRepository{
		CreateWithinQuotaFunc: func(ctx context.Context, app *models.Application, start, end time.Time, limit int) (*models.Application, error) {
			called = true
			return app, nil
		},
	}

	svc := NewApplicationService(apps, jobsReturning(NewTestJob("job-1", true)),
		usersReturning(NewTestUser("user-1", "a@example.com", "alice")), checker, &MockNotifier{}, time.UTC, newTestLogger())

	_, err = svc.Apply(context.Background(), "user-1", ApplyInput{
		JobID:           "job-1",
		ApplicationData: map[string]interface{}{"yearsOfExperience": "lots"},
	}, nil)

	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "applicationData.yearsOfExperience", ve.Field)
	assert.False(t, called)
}

func TestApplicationService_Withdraw(t *testing.T) {
	appliedAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	withdrawnAt := appliedAt.Add(time.Hour)

	t.Run("owner withdraws", func(t *testing.T) {
		apps := &MockApplicationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.Application, error) {
				return NewTestApplication(id, "user-1", "job-1", models.StatusInterviewing, appliedAt), nil
			},
			WithdrawFunc: func(ctx context.Context, id string, at time.Time) (*models.Application, error) {
				app := NewTestApplication(id, "user-1", "job-1", models.StatusArchived, appliedAt)
				app.WithdrawnAt = &at
				return app, nil
			},
		}
		svc := newTestApplicationService(apps, &MockJobRepository{}, &MockUserRepository{}, &MockNotifier{})
		svc.now = fixedClock(withdrawnAt)

		app, err := svc.Withdraw(context.Background(), "user-1", "app-1")

		require.NoError(t, err)
		assert.Equal(t, models.StatusArchived, app.Status)
		require.NotNil(t, app.WithdrawnAt)
		assert.True(t, app.WithdrawnAt.Equal(withdrawnAt))
	})

	t.Run("other user's application is not found", func(t *testing.T) {
		apps := &MockApplicationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.Application, error) {
				return NewTestApplication(id, "user-2", "job-1", models.StatusApplied, appliedAt), nil
			},
			WithdrawFunc: func(ctx context.Context, id string, at time.Time) (*models.Application, error) {
				t.Fatal("withdraw must not be called")
				return nil, nil
			},
		}
		svc := newTestApplicationService(apps, &MockJobRepository{}, &MockUserRepository{}, &MockNotifier{})

		_, err := svc.Withdraw(context.Background(), "user-1", "app-1")

		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("already withdrawn is a no-op", func(t *testing.T) {
		existing := NewTestApplication("app-1", "user-1", "job-1", models.StatusArchived, appliedAt)
		existing.WithdrawnAt = &withdrawnAt

		apps := &MockApplicationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.Application, error) {
				return existing, nil
			},
			WithdrawFunc: func(ctx context.Context, id string, at time.Time) (*models.Application, error) {
				t.Fatal("withdraw must not be called")
				return nil, nil
			},
		}
		svc := newTestApplicationService(apps, &MockJobRepository{}, &MockUserRepository{}, &MockNotifier{})

		app, err := svc.Withdraw(context.Background(), "user-1", "app-1")

		require.NoError(t, err)
		assert.Same(t, existing, app)
	})
}

func TestApplicationService_UpdateStatus_TransitionTable(t *testing.T) {
	tests := []struct {
		stored  models.ApplicationStatus
		target  string
		allowed bool
	}{
		{models.StatusApplied, "interviewing", true},
		{models.StatusApplied, "rejected", true},
		{models.StatusApplied, "archived", true},
		{models.StatusApplied, "accepted", false},
		{models.StatusInterviewing, "accepted", true},
		{models.StatusInterviewing, "rejected", true},
		{models.StatusInterviewing, "applied", false},
		{models.StatusAccepted, "archived", true},
		{models.StatusAccepted, "interviewing", false},
		{models.StatusRejected, "archived", true},
		{models.StatusRejected, "accepted", false},
		{models.StatusArchived, "applied", false},
		{"Interviewing", "accepted", true},
		{"on_hold", "archived", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.stored)+"->"+tt.target, func(t *testing.T) {
			var gotNotify *models.Notification
			apps := &MockApplicationRepository{
				GetByIDFunc: func(ctx context.Context, id string) (*models.Application, error) {
					return NewTestApplication(id, "user-1", "job-1", tt.stored, time.Now()), nil
				},
				UpdateStatusFunc: func(ctx context.Context, id string, from, to models.ApplicationStatus, notify *models.Notification) (*models.Application, error) {
					gotNotify = notify
					return NewTestApplication(id, "user-1", "job-1", to, time.Now()), nil
				},
			}
			notifier := &MockNotifier{}
			svc := newTestApplicationService(apps, &MockJobRepository{}, &MockUserRepository{}, notifier)

			app, err := svc.UpdateStatus(context.Background(), "admin-1", "app-1", tt.target)

			if !tt.allowed {
				assert.ErrorIs(t, err, models.ErrInvalidTransition)
				assert.Nil(t, gotNotify)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.ApplicationStatus(tt.target), app.Status)
			require.NotNil(t, gotNotify)
			assert.Equal(t, "user-1", gotNotify.UserID)
			assert.Equal(t, models.NotificationApplicationStatus, gotNotify.Type)
			assert.Equal(t, tt.target, gotNotify.Data["status"])
			assert.Contains(t, notifier.Evicted, "user-1")
		})
	}
}

func TestApplicationService_UpdateStatus_UnknownTarget(t *testing.T) {
	svc := newTestApplicationService(&MockApplicationRepository{}, &MockJobRepository{}, &MockUserRepository{}, &MockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "admin-1", "app-1", "hired")

	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "status", ve.Field)
}

func TestApplicationService_UpdateStatus_LostRace(t *testing.T) {
	apps := &MockApplicationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Application, error) {
			return NewTestApplication(id, "user-1", "job-1", models.StatusApplied, time.Now()), nil
		},
		UpdateStatusFunc: func(ctx context.Context, id string, from, to models.ApplicationStatus, notify *models.Notification) (*models.Application, error) {
			return nil, models.ErrConflict
		},
	}
	svc := newTestApplicationService(apps, &MockJobRepository{}, &MockUserRepository{}, &MockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "admin-1", "app-1", "interviewing")

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestApplicationService_Grouped_ArchivedJobOverridesStatus(t *testing.T) {
	now := time.Now()
	apps := &MockApplicationRepository{
		ListByUserFunc: func(ctx context.Context, userID string) ([]*models.Application, error) {
			return []*models.Application{
				NewTestApplication("a1", userID, "job-archived", models.StatusInterviewing, now),
				NewTestApplication("a2", userID, "job-open", models.StatusApplied, now),
				NewTestApplication("a3", userID, "job-open", models.StatusApplied, now),
				NewTestApplication("a4", userID, "job-gone", models.StatusApplied, now),
			}, nil
		},
	}

	var requested []string
	jobs := &MockJobRepository{
		GetByIDsFunc: func(ctx context.Context, ids []string) ([]*models.Job, error) {
			requested = ids
			return []*models.Job{NewTestJob("job-archived", false), NewTestJob("job-open", true)}, nil
		},
	}

	svc := newTestApplicationService(apps, jobs, &MockUserRepository{}, &MockNotifier{})

	buckets, byID, err := svc.Grouped(context.Background(), "user-1")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"job-archived", "job-open", "job-gone"}, requested)
	assert.Len(t, byID, 2)

	require.Len(t, buckets["archived"], 1)
	assert.Equal(t, "a1", buckets["archived"][0].ID)
	assert.Len(t, buckets["applied"], 2)
	assert.Empty(t, buckets["interviewing"])
	assert.Empty(t, buckets["accepted"])
	assert.Empty(t, buckets["rejected"])
}

func TestApplicationService_Apply_MalformedJobIDIsNotFound(t *testing.T) {
	jobs := &MockJobRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Job, error) {
			// What the repository returns when Postgres rejects the id as a uuid
			return nil, database.MapPostgresError(&pgconn.PgError{Code: "22P02"})
		},
	}
	svc := newTestApplicationService(&MockApplicationRepository{}, jobs, usersReturning(NewTestUser("user-1", "a@example.com", "alice")), &MockNotifier{})

	result, err := svc.Apply(context.Background(), "user-1", ApplyInput{JobID: "42"}, nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

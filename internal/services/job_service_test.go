package services

import (
	"context"
	"errors"
	"testing"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJobInput() CreateJobInput {
	return CreateJobInput{
		Title:        "Platform Engineer",
		Company:      "Acme",
		Location:     "Berlin",
		Description:  "Run the platform",
		Requirements: []string{"Go", "Postgres"},
		Type:         models.JobTypeFullTime,
	}
}

func TestJobService_Create(t *testing.T) {
	var stored *models.Job
	repo := &MockJobRepository{
		CreateFunc: func(ctx context.Context, job *models.Job) (*models.Job, error) {
			job.ID = "job-1"
			stored = job
			return job, nil
		},
	}
	svc := NewJobService(repo, newTestLogger())

	job, err := svc.Create(context.Background(), "admin-1", validJobInput())

	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.True(t, stored.IsActive)
	assert.True(t, stored.Published)
	assert.Nil(t, stored.Benefits)
}

func TestJobService_Create_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateJobInput)
		wantField string
	}{
		{name: "missing title", mutate: func(in *CreateJobInput) { in.Title = "   " }, wantField: "title"},
		{name: "unknown type", mutate: func(in *CreateJobInput) { in.Type = "gig" }, wantField: "type"},
		{name: "empty requirement", mutate: func(in *CreateJobInput) { in.Requirements = []string{"Go", ""} }, wantField: "requirements[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validJobInput()
			tt.mutate(&in)
			svc := NewJobService(&MockJobRepository{}, newTestLogger())

			_, err := svc.Create(context.Background(), "admin-1", in)

			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestJobService_Get_HidesUnpublished(t *testing.T) {
	draft := NewTestJob("job-1", true)
	draft.Published = false
	svc := NewJobService(jobsReturning(draft), newTestLogger())

	_, err := svc.Get(context.Background(), "job-1", false)
	assert.ErrorIs(t, err, models.ErrNotFound)

	job, err := svc.Get(context.Background(), "job-1", true)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
}

func TestJobService_Get_ArchivedStillVisible(t *testing.T) {
	svc := NewJobService(jobsReturning(NewTestJob("job-1", false)), newTestLogger())

	job, err := svc.Get(context.Background(), "job-1", false)

	require.NoError(t, err)
	assert.False(t, job.AcceptsApplications())
}

func TestJobService_ArchiveRestore(t *testing.T) {
	var calls []bool
	repo := &MockJobRepository{
		SetActiveFunc: func(ctx context.Context, id string, active bool) (*models.Job, error) {
			calls = append(calls, active)
			if id != "job-1" {
				return nil, models.ErrNotFound
			}
			return NewTestJob(id, active), nil
		},
	}
	svc := NewJobService(repo, newTestLogger())
	ctx := context.Background()

	job, err := svc.Archive(ctx, "admin-1", "job-1")
	require.NoError(t, err)
	assert.False(t, job.IsActive)

	job, err = svc.Restore(ctx, "admin-1", "job-1")
	require.NoError(t, err)
	assert.True(t, job.IsActive)

	_, err = svc.Archive(ctx, "admin-1", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, []bool{false, true, false}, calls)
}

func TestJobService_List_PassesFilter(t *testing.T) {
	var got models.JobFilter
	repo := &MockJobRepository{
		ListFunc: func(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
			got = filter
			return []*models.Job{NewTestJob("job-1", true)}, nil
		},
	}
	svc := NewJobService(repo, newTestLogger())

	jobs, err := svc.List(context.Background(), models.JobFilter{Query: "go", Limit: 10})

	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, "go", got.Query)
	assert.False(t, got.IncludeHidden)
}

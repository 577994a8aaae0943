package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/models"
	"github.com/foodbridge/pickup-api/internal/repository"
	"github.com/foodbridge/pickup-api/pkg/jobs"
)

type manifestRepoStub struct {
	jobs map[string]*models.ManifestJob
}

func newManifestRepoStub() *manifestRepoStub {
	return &manifestRepoStub{jobs: map[string]*models.ManifestJob{}}
}

func (r *manifestRepoStub) Create(ctx context.Context, job *models.ManifestJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *manifestRepoStub) GetByID(ctx context.Context, id string) (*models.ManifestJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (r *manifestRepoStub) Update(ctx context.Context, id string, params repository.UpdateManifestJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.FilePath != nil {
		job.FilePath = params.FilePath
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.StartedAt != nil {
		job.StartedAt = params.StartedAt
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *manifestRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ManifestJob, error) {
	var queued []models.ManifestJob
	for _, job := range r.jobs {
		if job.Status == models.ManifestStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *manifestRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ManifestJob, error) {
	return nil, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newManifestServiceForTest(t *testing.T) (*ManifestService, *manifestRepoStub, *queueStub, *ManifestExporter) {
	t.Helper()
	repo := newManifestRepoStub()
	queue := &queueStub{}
	exporter, _ := newManifestExporterForTest(t)
	locations := locationFinderStub{location: &models.PickupLocation{ID: "loc-1", Name: "North Depot"}}
	svc := NewManifestService(repo, locations, queue, exporter, nil, zap.NewNop(), ManifestServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
		MaxRetries:      3,
	})
	return svc, repo, queue, exporter
}

func TestManifestServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newManifestServiceForTest(t)
	resp, err := svc.CreateJob(context.Background(), dto.CreateManifestRequest{
		LocationID: "loc-1",
		Date:       "2025-05-05",
		Format:     models.ManifestFormatCSV,
	}, "staff-1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, models.ManifestStatusQueued, resp.Status)
	assert.Contains(t, repo.jobs, resp.ID)
	assert.Equal(t, "staff-1", repo.jobs[resp.ID].CreatedBy)
}

func TestManifestServiceCreateJobRejectsFormat(t *testing.T) {
	svc, _, _, _ := newManifestServiceForTest(t)
	_, err := svc.CreateJob(context.Background(), dto.CreateManifestRequest{
		LocationID: "loc-1",
		Date:       "2025-05-05",
		Format:     "xlsx",
	}, "staff-1")
	require.Error(t, err)
}

func TestManifestServiceCreateJobUnknownLocation(t *testing.T) {
	repo := newManifestRepoStub()
	queue := &queueStub{}
	exporter, _ := newManifestExporterForTest(t)
	svc := NewManifestService(repo, locationFinderStub{err: sql.ErrNoRows}, queue, exporter, nil, zap.NewNop(), ManifestServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.CreateManifestRequest{
		LocationID: "missing",
		Date:       "2025-05-05",
		Format:     models.ManifestFormatCSV,
	}, "staff-1")
	require.Error(t, err)
	require.Empty(t, queue.jobs)
}

func TestManifestServiceGetStatus(t *testing.T) {
	svc, repo, _, _ := newManifestServiceForTest(t)
	errMsg := "renderer crashed"
	repo.jobs["job-1"] = &models.ManifestJob{
		ID:           "job-1",
		LocationID:   "loc-1",
		Format:       models.ManifestFormatCSV,
		Status:       models.ManifestStatusFailed,
		Progress:     100,
		ErrorMessage: &errMsg,
	}
	resp, err := svc.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ManifestStatusFailed, resp.Status)
	assert.Equal(t, 100, resp.Progress)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errMsg, *resp.Error)
}

func TestManifestServiceResolveDownload(t *testing.T) {
	svc, repo, _, exporter := newManifestServiceForTest(t)
	job := &models.ManifestJob{
		ID:           "job-download",
		LocationID:   "loc-1",
		ManifestDate: time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		Format:       models.ManifestFormatCSV,
		Status:       models.ManifestStatusFinished,
		Progress:     100,
	}
	repo.jobs[job.ID] = job
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL

	download, err := svc.ResolveDownload(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(result.RelativePath), download.Filename)
	download.File.Close()
}

func TestManifestServiceResolveDownloadNotReady(t *testing.T) {
	svc, repo, _, exporter := newManifestServiceForTest(t)
	job := &models.ManifestJob{
		ID:           "job-pending",
		LocationID:   "loc-1",
		ManifestDate: time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		Format:       models.ManifestFormatCSV,
		Status:       models.ManifestStatusProcessing,
	}
	repo.jobs[job.ID] = job
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL

	_, err = svc.ResolveDownload(context.Background(), result.Token)
	require.Error(t, err)
}

type manifestGeneratorStub struct {
	result *ManifestExportResult
	err    error
}

func (g manifestGeneratorStub) Generate(ctx context.Context, job *models.ManifestJob) (*ManifestExportResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func TestManifestWorkerHandleSuccess(t *testing.T) {
	repo := &manifestRepoStub{
		jobs: map[string]*models.ManifestJob{
			"job-1": {
				ID:         "job-1",
				LocationID: "loc-1",
				Format:     models.ManifestFormatCSV,
				Status:     models.ManifestStatusQueued,
			},
		},
	}
	generator := manifestGeneratorStub{result: &ManifestExportResult{
		RelativePath: "manifest_loc-1.csv",
		URL:          "/api/v1/manifests/download?token=tok",
	}}
	worker := NewManifestWorker(repo, generator, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.NoError(t, err)
	require.Equal(t, models.ManifestStatusFinished, repo.jobs["job-1"].Status)
	require.Equal(t, 100, repo.jobs["job-1"].Progress)
	require.NotNil(t, repo.jobs["job-1"].ResultURL)
	assert.Equal(t, "/api/v1/manifests/download?token=tok", *repo.jobs["job-1"].ResultURL)
	assert.NotNil(t, repo.jobs["job-1"].StartedAt)
}

func TestManifestWorkerHandleFailureMarksFailed(t *testing.T) {
	repo := &manifestRepoStub{
		jobs: map[string]*models.ManifestJob{
			"job-1": {
				ID:         "job-1",
				LocationID: "loc-1",
				Format:     models.ManifestFormatCSV,
				Status:     models.ManifestStatusQueued,
			},
		},
	}
	worker := NewManifestWorker(repo, manifestGeneratorStub{err: errors.New("boom")}, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	require.Equal(t, models.ManifestStatusFailed, repo.jobs["job-1"].Status)
}

func TestManifestWorkerHandleFailureRequeues(t *testing.T) {
	repo := &manifestRepoStub{
		jobs: map[string]*models.ManifestJob{
			"job-1": {
				ID:         "job-1",
				LocationID: "loc-1",
				Format:     models.ManifestFormatCSV,
				Status:     models.ManifestStatusProcessing,
			},
		},
	}
	worker := NewManifestWorker(repo, manifestGeneratorStub{err: errors.New("boom")}, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 0})
	require.Error(t, err)
	require.Equal(t, models.ManifestStatusQueued, repo.jobs["job-1"].Status)
	require.Equal(t, 0, repo.jobs["job-1"].Progress)
}

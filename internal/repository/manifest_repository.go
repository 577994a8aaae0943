package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodbridge/pickup-api/internal/models"
)

// ManifestRepository persists manifest job metadata.
type ManifestRepository struct {
	db *sqlx.DB
}

// NewManifestRepository constructs the repository.
func NewManifestRepository(db *sqlx.DB) *ManifestRepository {
	return &ManifestRepository{db: db}
}

// Create inserts a new manifest job row with generated defaults.
func (r *ManifestRepository) Create(ctx context.Context, job *models.ManifestJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ManifestStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO manifest_jobs (id, location_id, manifest_date, format, status, progress, file_path, result_url, error_message, created_by, created_at, started_at, finished_at)
VALUES (:id, :location_id, :manifest_date, :format, :status, :progress, :file_path, :result_url, :error_message, :created_by, :created_at, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create manifest job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ManifestRepository) GetByID(ctx context.Context, id string) (*models.ManifestJob, error) {
	const query = `SELECT id, location_id, manifest_date, format, status, progress, file_path, result_url, error_message, created_by, created_at, started_at, finished_at
FROM manifest_jobs WHERE id = $1`
	var job models.ManifestJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get manifest job: %w", err)
	}
	return &job, nil
}

// UpdateManifestJobParams defines the mutable fields.
type UpdateManifestJobParams struct {
	Status       *models.ManifestStatus
	Progress     *int
	FilePath     *string
	ResultURL    *string
	ErrorMessage *string
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ManifestRepository) Update(ctx context.Context, id string, params UpdateManifestJobParams) error {
	set := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.Progress != nil {
		set = append(set, fmt.Sprintf("progress = $%d", argPos))
		args = append(args, *params.Progress)
		argPos++
	}
	if params.FilePath != nil {
		set = append(set, fmt.Sprintf("file_path = $%d", argPos))
		args = append(args, *params.FilePath)
		argPos++
	}
	if params.ResultURL != nil {
		set = append(set, fmt.Sprintf("result_url = $%d", argPos))
		args = append(args, *params.ResultURL)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.StartedAt != nil {
		set = append(set, fmt.Sprintf("started_at = $%d", argPos))
		args = append(args, *params.StartedAt)
		argPos++
	}
	if params.FinishedAt != nil {
		set = append(set, fmt.Sprintf("finished_at = $%d", argPos))
		args = append(args, *params.FinishedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE manifest_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update manifest job: %w", err)
	}
	return nil
}

// ListQueued fetches queued jobs (used for cold start recovery).
func (r *ManifestRepository) ListQueued(ctx context.Context, limit int) ([]models.ManifestJob, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, location_id, manifest_date, format, status, progress, file_path, result_url, error_message, created_by, created_at, started_at, finished_at
FROM manifest_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1`
	var jobs []models.ManifestJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued manifest jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs prior to cutoff for cleanup.
func (r *ManifestRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ManifestJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, location_id, manifest_date, format, status, progress, file_path, result_url, error_message, created_by, created_at, started_at, finished_at
FROM manifest_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`
	var jobs []models.ManifestJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished manifest jobs: %w", err)
	}
	return jobs, nil
}

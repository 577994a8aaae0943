package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodbridge/pickup-api/internal/models"
)

// HouseholdRepository handles persistence of households.
type HouseholdRepository struct {
	db *sqlx.DB
}

// NewHouseholdRepository constructs the repository.
func NewHouseholdRepository(db *sqlx.DB) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// FindByID loads a household by id.
func (r *HouseholdRepository) FindByID(ctx context.Context, id string) (*models.Household, error) {
	const query = `SELECT id, reference_code, name, phone, outside_hours_parcels, created_at FROM households WHERE id = $1`
	var household models.Household
	if err := r.db.GetContext(ctx, &household, query, id); err != nil {
		return nil, err
	}
	return &household, nil
}

// FindByReference loads a household by its human-facing reference code.
func (r *HouseholdRepository) FindByReference(ctx context.Context, code string) (*models.Household, error) {
	const query = `SELECT id, reference_code, name, phone, outside_hours_parcels, created_at FROM households WHERE reference_code = $1`
	var household models.Household
	if err := r.db.GetContext(ctx, &household, query, code); err != nil {
		return nil, err
	}
	return &household, nil
}

// Create stores a new household.
func (r *HouseholdRepository) Create(ctx context.Context, household *models.Household) error {
	if household.ID == "" {
		household.ID = uuid.NewString()
	}
	if household.CreatedAt.IsZero() {
		household.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO households (id, reference_code, name, phone, outside_hours_parcels, created_at)
        VALUES (:id, :reference_code, :name, :phone, :outside_hours_parcels, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, household); err != nil {
		return fmt.Errorf("create household: %w", err)
	}
	return nil
}

// UpdateOutsideHoursCount stores the recomputed outside-hours aggregate.
func (r *HouseholdRepository) UpdateOutsideHoursCount(ctx context.Context, id string, count int) error {
	const query = `UPDATE households SET outside_hours_parcels = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, count); err != nil {
		return fmt.Errorf("update outside hours count: %w", err)
	}
	return nil
}

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

// LocationRepository handles persistence of pickup locations.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository constructs the repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// List returns pickup locations filtered by the provided criteria.
func (r *LocationRepository) List(ctx context.Context, filter models.LocationFilter) ([]models.PickupLocation, int, error) {
	base := "FROM pickup_locations WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, address, max_parcels_per_day, slot_duration_minutes, active, created_at, updated_at %s ORDER BY name ASC LIMIT %d OFFSET %d`, base, size, offset)
	var locations []models.PickupLocation
	if err := r.db.SelectContext(ctx, &locations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list pickup locations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count pickup locations: %w", err)
	}

	return locations, total, nil
}

// FindByID loads a pickup location by id.
func (r *LocationRepository) FindByID(ctx context.Context, id string) (*models.PickupLocation, error) {
	const query = `SELECT id, name, address, max_parcels_per_day, slot_duration_minutes, active, created_at, updated_at FROM pickup_locations WHERE id = $1`
	var location models.PickupLocation
	if err := r.db.GetContext(ctx, &location, query, id); err != nil {
		return nil, err
	}
	return &location, nil
}

// SlotDuration returns the configured minimum slot duration for a location.
func (r *LocationRepository) SlotDuration(ctx context.Context, id string) (int, error) {
	const query = `SELECT slot_duration_minutes FROM pickup_locations WHERE id = $1`
	var minutes int
	if err := r.db.GetContext(ctx, &minutes, query, id); err != nil {
		return 0, err
	}
	return minutes, nil
}

// Create stores a new pickup location.
func (r *LocationRepository) Create(ctx context.Context, location *models.PickupLocation) error {
	if location.ID == "" {
		location.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if location.CreatedAt.IsZero() {
		location.CreatedAt = now
	}
	location.UpdatedAt = now

	const query = `INSERT INTO pickup_locations (id, name, address, max_parcels_per_day, slot_duration_minutes, active, created_at, updated_at)
        VALUES (:id, :name, :address, :max_parcels_per_day, :slot_duration_minutes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("create pickup location: %w", err)
	}
	return nil
}

// Update modifies a pickup location record.
func (r *LocationRepository) Update(ctx context.Context, location *models.PickupLocation) error {
	location.UpdatedAt = time.Now().UTC()
	const query = `UPDATE pickup_locations SET name = :name, address = :address, max_parcels_per_day = :max_parcels_per_day, slot_duration_minutes = :slot_duration_minutes, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("update pickup location: %w", err)
	}
	return nil
}

// Deactivate marks a location inactive so it stops appearing in lookups while
// historic parcels keep referencing it.
func (r *LocationRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE pickup_locations SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate pickup location: %w", err)
	}
	return nil
}

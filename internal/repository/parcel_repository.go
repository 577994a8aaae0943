package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodbridge/pickup-api/internal/models"
)

// ParcelRepository handles persistence of parcels. Inserts are idempotent:
// the parcels table carries a unique constraint over (household_id,
// location_id, pickup_earliest, pickup_latest), so re-submitting the same
// pickup window can never create a duplicate parcel.
type ParcelRepository struct {
	db *sqlx.DB
}

// NewParcelRepository constructs the repository.
func NewParcelRepository(db *sqlx.DB) *ParcelRepository {
	return &ParcelRepository{db: db}
}

type dateCount struct {
	PickupDate time.Time `db:"pickup_date"`
	Count      int       `db:"count"`
}

// CapacityCounts returns the persisted parcel count per pickup date for one
// location within [from, to], keyed by ISO date.
func (r *ParcelRepository) CapacityCounts(ctx context.Context, locationID string, from, to time.Time) (map[string]int, error) {
	const query = `SELECT pickup_date, COUNT(*) AS count FROM parcels WHERE location_id = $1 AND pickup_date BETWEEN $2 AND $3 GROUP BY pickup_date`
	var rows []dateCount
	if err := r.db.SelectContext(ctx, &rows, query, locationID, from, to); err != nil {
		return nil, fmt.Errorf("count parcels per date: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.PickupDate.Format("2006-01-02")] = row.Count
	}
	return counts, nil
}

// CountForDate returns the persisted parcel count for one location and date,
// usable inside a transaction for the authoritative submit-time check.
func (r *ParcelRepository) CountForDate(ctx context.Context, q sqlx.QueryerContext, locationID string, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM parcels WHERE location_id = $1 AND pickup_date = $2`
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, locationID, date); err != nil {
		return 0, fmt.Errorf("count parcels for date: %w", err)
	}
	return count, nil
}

// ListByHouseholdAndLocation returns the household's parcels at one location
// ordered by pickup date. These seed a new draft so existing bookings are
// reconciled instead of duplicated.
func (r *ParcelRepository) ListByHouseholdAndLocation(ctx context.Context, householdID, locationID string) ([]models.Parcel, error) {
	const query = `SELECT id, enrollment_id, household_id, location_id, pickup_date, pickup_earliest, pickup_latest, created_at FROM parcels WHERE household_id = $1 AND location_id = $2 ORDER BY pickup_date ASC`
	var parcels []models.Parcel
	if err := r.db.SelectContext(ctx, &parcels, query, householdID, locationID); err != nil {
		return nil, fmt.Errorf("list household parcels: %w", err)
	}
	return parcels, nil
}

// ListByHousehold returns every parcel of a household across locations.
func (r *ParcelRepository) ListByHousehold(ctx context.Context, householdID string) ([]models.Parcel, error) {
	const query = `SELECT id, enrollment_id, household_id, location_id, pickup_date, pickup_earliest, pickup_latest, created_at FROM parcels WHERE household_id = $1 ORDER BY pickup_date ASC`
	var parcels []models.Parcel
	if err := r.db.SelectContext(ctx, &parcels, query, householdID); err != nil {
		return nil, fmt.Errorf("list household parcels: %w", err)
	}
	return parcels, nil
}

// ListByEnrollment returns the parcels created by one enrollment.
func (r *ParcelRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Parcel, error) {
	const query = `SELECT id, enrollment_id, household_id, location_id, pickup_date, pickup_earliest, pickup_latest, created_at FROM parcels WHERE enrollment_id = $1 ORDER BY pickup_date ASC`
	var parcels []models.Parcel
	if err := r.db.SelectContext(ctx, &parcels, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment parcels: %w", err)
	}
	return parcels, nil
}

// ManifestRows returns the pickup list for one location and date ordered by
// earliest time, joined with household identity for the printed manifest.
func (r *ParcelRepository) ManifestRows(ctx context.Context, locationID string, date time.Time) ([]models.ManifestRow, error) {
	const query = `SELECT h.reference_code AS household_code, h.name AS household_name,
        to_char(p.pickup_earliest, 'HH24:MI') AS earliest, to_char(p.pickup_latest, 'HH24:MI') AS latest
        FROM parcels p
        JOIN households h ON h.id = p.household_id
        WHERE p.location_id = $1 AND p.pickup_date = $2
        ORDER BY p.pickup_earliest ASC, h.reference_code ASC`
	var rows []models.ManifestRow
	if err := r.db.SelectContext(ctx, &rows, query, locationID, date); err != nil {
		return nil, fmt.Errorf("list manifest rows: %w", err)
	}
	return rows, nil
}

// InsertTx inserts a parcel inside an existing transaction. It reports true
// when a new row was created and false when the unique pickup-window
// constraint matched an existing parcel, whose id is loaded into the model.
func (r *ParcelRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, parcel *models.Parcel) (bool, error) {
	if parcel.ID == "" {
		parcel.ID = uuid.NewString()
	}
	if parcel.CreatedAt.IsZero() {
		parcel.CreatedAt = time.Now().UTC()
	}

	const insert = `INSERT INTO parcels (id, enrollment_id, household_id, location_id, pickup_date, pickup_earliest, pickup_latest, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (household_id, location_id, pickup_earliest, pickup_latest) DO NOTHING
        RETURNING id`
	var id string
	err := tx.GetContext(ctx, &id, insert,
		parcel.ID, parcel.EnrollmentID, parcel.HouseholdID, parcel.LocationID,
		parcel.PickupDate, parcel.PickupEarliest, parcel.PickupLatest, parcel.CreatedAt,
	)
	if err == nil {
		parcel.ID = id
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("insert parcel: %w", err)
	}

	// The window already exists for this household and location; reuse it.
	const find = `SELECT id FROM parcels WHERE household_id = $1 AND location_id = $2 AND pickup_earliest = $3 AND pickup_latest = $4`
	if err := tx.GetContext(ctx, &id, find, parcel.HouseholdID, parcel.LocationID, parcel.PickupEarliest, parcel.PickupLatest); err != nil {
		return false, fmt.Errorf("load conflicting parcel: %w", err)
	}
	parcel.ID = id
	return false, nil
}

// DeleteByIDsTx removes parcels by id inside an existing transaction. Used
// when a re-submission drops previously booked dates.
func (r *ParcelRepository) DeleteByIDsTx(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM parcels WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("build delete parcels query: %w", err)
	}
	query = tx.Rebind(query)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete parcels: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodbridge/pickup-api/internal/models"
)

// ScheduleRepository handles persistence of opening schedules and their
// per-weekday specs.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByLocation returns every opening schedule of a location, days attached,
// ordered by validity start.
func (r *ScheduleRepository) ListByLocation(ctx context.Context, locationID string) ([]models.OpeningSchedule, error) {
	const query = `SELECT id, location_id, name, start_date, end_date, created_at, updated_at FROM opening_schedules WHERE location_id = $1 ORDER BY start_date ASC`
	var schedules []models.OpeningSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, locationID); err != nil {
		return nil, fmt.Errorf("list opening schedules: %w", err)
	}
	if err := r.attachDays(ctx, schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// ListCovering returns the schedules whose validity range overlaps [from, to].
func (r *ScheduleRepository) ListCovering(ctx context.Context, locationID string, from, to time.Time) ([]models.OpeningSchedule, error) {
	const query = `SELECT id, location_id, name, start_date, end_date, created_at, updated_at FROM opening_schedules WHERE location_id = $1 AND end_date >= $2 AND start_date <= $3 ORDER BY start_date ASC`
	var schedules []models.OpeningSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, locationID, from, to); err != nil {
		return nil, fmt.Errorf("list covering schedules: %w", err)
	}
	if err := r.attachDays(ctx, schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindByID loads one opening schedule with its days.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.OpeningSchedule, error) {
	const query = `SELECT id, location_id, name, start_date, end_date, created_at, updated_at FROM opening_schedules WHERE id = $1`
	var schedule models.OpeningSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	schedules := []models.OpeningSchedule{schedule}
	if err := r.attachDays(ctx, schedules); err != nil {
		return nil, err
	}
	return &schedules[0], nil
}

// Create stores a schedule and its day specs in one transaction.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.OpeningSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertSchedule = `INSERT INTO opening_schedules (id, location_id, name, start_date, end_date, created_at, updated_at)
        VALUES (:id, :location_id, :name, :start_date, :end_date, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertSchedule, schedule); err != nil {
		return fmt.Errorf("create opening schedule: %w", err)
	}

	const insertDay = `INSERT INTO opening_schedule_days (schedule_id, weekday, is_open, opens_at, closes_at)
        VALUES (:schedule_id, :weekday, :is_open, :opens_at, :closes_at)`
	for weekday, spec := range schedule.Days {
		spec.ScheduleID = schedule.ID
		spec.Weekday = weekday
		if _, err = tx.NamedExecContext(ctx, insertDay, &spec); err != nil {
			return fmt.Errorf("create schedule day: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule and its day specs.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM opening_schedule_days WHERE schedule_id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule days: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM opening_schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete opening schedule: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete schedule: %w", err)
	}
	return nil
}

// attachDays loads the day specs for the given schedules and fills their Days
// maps in place.
func (r *ScheduleRepository) attachDays(ctx context.Context, schedules []models.OpeningSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	ids := make([]string, len(schedules))
	for i, s := range schedules {
		ids[i] = s.ID
	}

	query, args, err := sqlx.In(`SELECT schedule_id, weekday, is_open, opens_at, closes_at FROM opening_schedule_days WHERE schedule_id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("build schedule days query: %w", err)
	}
	query = r.db.Rebind(query)

	var specs []models.DaySpec
	if err := r.db.SelectContext(ctx, &specs, query, args...); err != nil {
		return fmt.Errorf("list schedule days: %w", err)
	}

	bySchedule := make(map[string]map[time.Weekday]models.DaySpec, len(schedules))
	for _, spec := range specs {
		days, ok := bySchedule[spec.ScheduleID]
		if !ok {
			days = make(map[time.Weekday]models.DaySpec)
			bySchedule[spec.ScheduleID] = days
		}
		days[spec.Weekday] = spec
	}
	for i := range schedules {
		schedules[i].Days = bySchedule[schedules[i].ID]
	}
	return nil
}

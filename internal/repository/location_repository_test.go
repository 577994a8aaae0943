package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/pickup-api/internal/models"
)

func newLocationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLocationRepositoryList(t *testing.T) {
	db, mock, cleanup := newLocationRepoMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	max := 5
	rows := sqlmock.NewRows([]string{"id", "name", "address", "max_parcels_per_day", "slot_duration_minutes", "active", "created_at", "updated_at"}).
		AddRow("loc-1", "North Depot", "Main Street 1", max, 30, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, address, max_parcels_per_day, slot_duration_minutes, active, created_at, updated_at FROM pickup_locations WHERE 1=1 AND (name ILIKE $1 OR address ILIKE $1) AND active = $2 ORDER BY name ASC LIMIT 50 OFFSET 0")).
		WithArgs("%north%", true).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pickup_locations WHERE 1=1 AND (name ILIKE $1 OR address ILIKE $1) AND active = $2")).
		WithArgs("%north%", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active := true
	locations, total, err := repo.List(context.Background(), models.LocationFilter{Search: "north", Active: &active})
	require.NoError(t, err)
	assert.Len(t, locations, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "North Depot", locations[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRepositorySlotDuration(t *testing.T) {
	db, mock, cleanup := newLocationRepoMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT slot_duration_minutes FROM pickup_locations WHERE id = $1")).
		WithArgs("loc-1").
		WillReturnRows(sqlmock.NewRows([]string{"slot_duration_minutes"}).AddRow(15))

	minutes, err := repo.SlotDuration(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, 15, minutes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newLocationRepoMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	mock.ExpectExec("INSERT INTO pickup_locations").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	location := &models.PickupLocation{Name: "North Depot", Address: "Main Street 1", SlotDurationMinutes: 30, Active: true}
	require.NoError(t, repo.Create(context.Background(), location))
	assert.NotEmpty(t, location.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newLocationRepoMock(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pickup_locations SET active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("loc-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "loc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

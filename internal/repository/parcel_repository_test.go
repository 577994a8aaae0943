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

func newParcelRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestParcelRepositoryCapacityCounts(t *testing.T) {
	db, mock, cleanup := newParcelRepoMock(t)
	defer cleanup()
	repo := NewParcelRepository(db)

	from := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"pickup_date", "count"}).
		AddRow(time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC), 5).
		AddRow(time.Date(2025, time.May, 6, 0, 0, 0, 0, time.UTC), 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pickup_date, COUNT(*) AS count FROM parcels WHERE location_id = $1 AND pickup_date BETWEEN $2 AND $3 GROUP BY pickup_date")).
		WithArgs("loc-1", from, to).
		WillReturnRows(rows)

	counts, err := repo.CapacityCounts(context.Background(), "loc-1", from, to)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2025-05-05": 5, "2025-05-06": 2}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepositoryInsertTxCreates(t *testing.T) {
	db, mock, cleanup := newParcelRepoMock(t)
	defer cleanup()
	repo := NewParcelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO parcels").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("parcel-1"))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	parcel := &models.Parcel{
		EnrollmentID:   "enr-1",
		HouseholdID:    "hh-1",
		LocationID:     "loc-1",
		PickupDate:     time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
		PickupEarliest: time.Date(2025, time.May, 5, 9, 0, 0, 0, time.UTC),
		PickupLatest:   time.Date(2025, time.May, 5, 9, 30, 0, 0, time.UTC),
	}
	created, err := repo.InsertTx(context.Background(), tx, parcel)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "parcel-1", parcel.ID)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepositoryInsertTxReusesExistingWindow(t *testing.T) {
	db, mock, cleanup := newParcelRepoMock(t)
	defer cleanup()
	repo := NewParcelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO parcels").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM parcels WHERE household_id = $1 AND location_id = $2 AND pickup_earliest = $3 AND pickup_latest = $4")).
		WithArgs("hh-1", "loc-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-1"))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	parcel := &models.Parcel{
		EnrollmentID:   "enr-2",
		HouseholdID:    "hh-1",
		LocationID:     "loc-1",
		PickupDate:     time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
		PickupEarliest: time.Date(2025, time.May, 5, 9, 0, 0, 0, time.UTC),
		PickupLatest:   time.Date(2025, time.May, 5, 9, 30, 0, 0, time.UTC),
	}
	created, err := repo.InsertTx(context.Background(), tx, parcel)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "existing-1", parcel.ID)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepositoryCountForDate(t *testing.T) {
	db, mock, cleanup := newParcelRepoMock(t)
	defer cleanup()
	repo := NewParcelRepository(db)

	date := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM parcels WHERE location_id = $1 AND pickup_date = $2")).
		WithArgs("loc-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountForDate(context.Background(), db, "loc-1", date)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepositoryManifestRows(t *testing.T) {
	db, mock, cleanup := newParcelRepoMock(t)
	defer cleanup()
	repo := NewParcelRepository(db)

	date := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"household_code", "household_name", "earliest", "latest"}).
		AddRow("HH-0001", "Jansen", "09:00", "09:30").
		AddRow("HH-0002", "De Vries", "09:30", "10:00")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT h.reference_code AS household_code, h.name AS household_name")).
		WithArgs("loc-1", date).
		WillReturnRows(rows)

	manifest, err := repo.ManifestRows(context.Background(), "loc-1", date)
	require.NoError(t, err)
	require.Len(t, manifest, 2)
	assert.Equal(t, "HH-0001", manifest[0].HouseholdCode)
	assert.Equal(t, "09:00", manifest[0].Earliest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParcelRepositoryDeleteByIDsTx(t *testing.T) {
	db, mock, cleanup := newParcelRepoMock(t)
	defer cleanup()
	repo := NewParcelRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM parcels WHERE id IN (?, ?)")).
		WithArgs("parcel-1", "parcel-2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByIDsTx(context.Background(), tx, []string{"parcel-1", "parcel-2"}))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	require.NoError(t, repo.DeleteByIDsTx(context.Background(), nil, nil))
}

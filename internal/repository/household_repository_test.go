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

func newHouseholdRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestHouseholdRepositoryFindByReference(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	rows := sqlmock.NewRows([]string{"id", "reference_code", "name", "phone", "outside_hours_parcels", "created_at"}).
		AddRow("hh-1", "HH-0001", "Jansen", "0612345678", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, reference_code, name, phone, outside_hours_parcels, created_at FROM households WHERE reference_code = $1")).
		WithArgs("HH-0001").
		WillReturnRows(rows)

	household, err := repo.FindByReference(context.Background(), "HH-0001")
	require.NoError(t, err)
	assert.Equal(t, "hh-1", household.ID)
	assert.Equal(t, 2, household.OutsideHoursParcels)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHouseholdRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	mock.ExpectExec("INSERT INTO households").
		WillReturnResult(sqlmock.NewResult(1, 1))

	household := &models.Household{ReferenceCode: "HH-0002", Name: "De Vries"}
	require.NoError(t, repo.Create(context.Background(), household))
	assert.NotEmpty(t, household.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHouseholdRepositoryUpdateOutsideHoursCount(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE households SET outside_hours_parcels = $2 WHERE id = $1")).
		WithArgs("hh-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateOutsideHoursCount(context.Background(), "hh-1", 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

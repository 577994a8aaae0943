package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/models"
)

type locationDirectoryMock struct {
	locations   []models.PickupLocation
	total       int
	listErr     error
	location    *models.PickupLocation
	findErr     error
	schedules   []models.OpeningSchedule
	capacity    models.CapacitySnapshot
	capacityErr error
	duration    int
	durationErr error
	created     *models.PickupLocation
	createErr   error
	updated     *models.PickupLocation
	updateErr   error
	deactErr    error
	schedule    *models.OpeningSchedule
	schedErr    error
	deleteErr   error
	lastQuery   dto.LocationQuery
	lastFrom    time.Time
	lastTo      time.Time
}

func (m *locationDirectoryMock) List(ctx context.Context, query dto.LocationQuery) ([]models.PickupLocation, int, error) {
	m.lastQuery = query
	return m.locations, m.total, m.listErr
}

func (m *locationDirectoryMock) Find(ctx context.Context, id string) (*models.PickupLocation, error) {
	return m.location, m.findErr
}

func (m *locationDirectoryMock) ListSchedules(ctx context.Context, locationID string) ([]models.OpeningSchedule, error) {
	return m.schedules, nil
}

func (m *locationDirectoryMock) Capacity(ctx context.Context, locationID string, from, to time.Time) (models.CapacitySnapshot, error) {
	m.lastFrom, m.lastTo = from, to
	return m.capacity, m.capacityErr
}

func (m *locationDirectoryMock) SlotDuration(ctx context.Context, locationID string) (int, error) {
	return m.duration, m.durationErr
}

func (m *locationDirectoryMock) CreateLocation(ctx context.Context, req dto.CreateLocationRequest) (*models.PickupLocation, error) {
	return m.created, m.createErr
}

func (m *locationDirectoryMock) UpdateLocation(ctx context.Context, id string, req dto.UpdateLocationRequest) (*models.PickupLocation, error) {
	return m.updated, m.updateErr
}

func (m *locationDirectoryMock) DeactivateLocation(ctx context.Context, id string) error {
	return m.deactErr
}

func (m *locationDirectoryMock) CreateSchedule(ctx context.Context, locationID string, req dto.CreateScheduleRequest) (*models.OpeningSchedule, error) {
	return m.schedule, m.schedErr
}

func (m *locationDirectoryMock) DeleteSchedule(ctx context.Context, id string) error {
	return m.deleteErr
}

func TestLocationHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &locationDirectoryMock{
		locations: []models.PickupLocation{{ID: "loc-1", Name: "Noord"}},
		total:     1,
	}
	handler := NewLocationHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/locations?search=noord&active=true&page=2&limit=10", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "noord", mockSvc.lastQuery.Search)
	require.NotNil(t, mockSvc.lastQuery.Active)
	require.True(t, *mockSvc.lastQuery.Active)
	require.Equal(t, 2, mockSvc.lastQuery.Page)
	require.Equal(t, 10, mockSvc.lastQuery.PageSize)
}

func TestLocationHandlerCapacityValidatesRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLocationHandler(&locationDirectoryMock{})

	c, w := newGinContext(http.MethodGet, "/locations/loc-1/capacity?start_date=bad&end_date=2026-09-30", nil)
	c.Params = gin.Params{{Key: "id", Value: "loc-1"}}
	handler.Capacity(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/locations/loc-1/capacity?start_date=2026-09-30&end_date=2026-09-01", nil)
	c.Params = gin.Params{{Key: "id", Value: "loc-1"}}
	handler.Capacity(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationHandlerCapacity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	maxPerDay := 20
	mockSvc := &locationDirectoryMock{
		capacity: models.CapacitySnapshot{
			LocationID: "loc-1",
			MaxPerDay:  &maxPerDay,
			DateCounts: map[string]int{"2026-09-07": 12},
		},
	}
	handler := NewLocationHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/locations/loc-1/capacity?start_date=2026-09-01&end_date=2026-09-30", nil)
	c.Params = gin.Params{{Key: "id", Value: "loc-1"}}

	handler.Capacity(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.CapacityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 12, envelope.Data.DateCounts["2026-09-07"])
	require.Equal(t, "2026-09-01", envelope.Data.StartDate)
}

func TestLocationHandlerSlotDuration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &locationDirectoryMock{duration: 20}
	handler := NewLocationHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/locations/loc-1/slot-duration", nil)
	c.Params = gin.Params{{Key: "id", Value: "loc-1"}}

	handler.SlotDuration(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.SlotDurationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 20, envelope.Data.SlotDurationMinutes)
}

func TestLocationHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &locationDirectoryMock{
		created: &models.PickupLocation{ID: "loc-9", Name: "West"},
	}
	handler := NewLocationHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateLocationRequest{Name: "West", Address: "Dok 1", SlotDurationMinutes: 15})
	c, w := newGinContext(http.MethodPost, "/locations", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestLocationHandlerDeactivate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLocationHandler(&locationDirectoryMock{})

	c, w := newGinContext(http.MethodDelete, "/locations/loc-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "loc-1"}}

	handler.Deactivate(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestLocationHandlerCreateSchedule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &locationDirectoryMock{
		schedule: &models.OpeningSchedule{ID: "sched-1", LocationID: "loc-1"},
	}
	handler := NewLocationHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateScheduleRequest{
		Name:      "Autumn",
		StartDate: "2026-09-01",
		EndDate:   "2026-12-20",
		Days: []dto.DaySpecInput{
			{Weekday: 1, IsOpen: true, OpensAt: "10:00", ClosesAt: "16:00"},
		},
	})
	c, w := newGinContext(http.MethodPost, "/locations/loc-1/schedules", payload)
	c.Params = gin.Params{{Key: "id", Value: "loc-1"}}

	handler.CreateSchedule(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

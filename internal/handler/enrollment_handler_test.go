package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/middleware"
	"github.com/foodbridge/pickup-api/internal/models"
	appErrors "github.com/foodbridge/pickup-api/pkg/errors"
)

type enrollmentFlowMock struct {
	draft        *dto.DraftResponse
	draftErr     error
	calendar     *dto.CalendarResponse
	calendarErr  error
	slots        *dto.SlotsResponse
	slotsErr     error
	window       *dto.CommonWindowResponse
	windowErr    error
	submit       *dto.SubmitResponse
	submitErr    error
	list         []models.EnrollmentDetail
	listTotal    int
	listErr      error
	detail       *models.EnrollmentDetail
	parcels      []models.Parcel
	detailErr    error
	lastActor    string
	lastDate     string
	lastDraftID  string
	lastSubmitBy string
}

func (m *enrollmentFlowMock) CreateDraft(ctx context.Context, req dto.CreateDraftRequest, createdBy string) (*dto.DraftResponse, error) {
	m.lastActor = createdBy
	return m.draft, m.draftErr
}

func (m *enrollmentFlowMock) GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	m.lastDraftID = id
	return m.draft, m.draftErr
}

func (m *enrollmentFlowMock) ChangeLocation(ctx context.Context, id string, req dto.ChangeLocationRequest) (*dto.DraftResponse, error) {
	return m.draft, m.draftErr
}

func (m *enrollmentFlowMock) Calendar(ctx context.Context, id, month string) (*dto.CalendarResponse, error) {
	return m.calendar, m.calendarErr
}

func (m *enrollmentFlowMock) Slots(ctx context.Context, id, date string) (*dto.SlotsResponse, error) {
	m.lastDate = date
	return m.slots, m.slotsErr
}

func (m *enrollmentFlowMock) SelectDate(ctx context.Context, id string, req dto.SelectDateRequest) (*dto.DraftResponse, error) {
	m.lastDate = req.Date
	return m.draft, m.draftErr
}

func (m *enrollmentFlowMock) DeselectDate(ctx context.Context, id, date string) (*dto.DraftResponse, error) {
	m.lastDate = date
	return m.draft, m.draftErr
}

func (m *enrollmentFlowMock) SetParcelTime(ctx context.Context, id, date string, req dto.SetTimeRequest) (*dto.DraftResponse, error) {
	m.lastDate = date
	return m.draft, m.draftErr
}

func (m *enrollmentFlowMock) BulkTime(ctx context.Context, id string, req dto.BulkTimeRequest) (*dto.DraftResponse, error) {
	return m.draft, m.draftErr
}

func (m *enrollmentFlowMock) CommonWindow(ctx context.Context, id string) (*dto.CommonWindowResponse, error) {
	return m.window, m.windowErr
}

func (m *enrollmentFlowMock) Submit(ctx context.Context, id, submittedBy string) (*dto.SubmitResponse, error) {
	m.lastSubmitBy = submittedBy
	return m.submit, m.submitErr
}

func (m *enrollmentFlowMock) List(ctx context.Context, query dto.EnrollmentQuery) ([]models.EnrollmentDetail, int, error) {
	return m.list, m.listTotal, m.listErr
}

func (m *enrollmentFlowMock) Get(ctx context.Context, id string) (*models.EnrollmentDetail, []models.Parcel, error) {
	return m.detail, m.parcels, m.detailErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func sampleDraft() *dto.DraftResponse {
	return &dto.DraftResponse{
		ID:            "draft-1",
		HouseholdID:   "hh-1",
		LocationID:    "loc-1",
		SlotMinutes:   15,
		SelectedDates: []string{"2026-09-07"},
		Parcels:       []dto.ParcelView{{Date: "2026-09-07", Earliest: "10:00", Latest: "10:15"}},
		UpdatedAt:     time.Now(),
	}
}

func TestEnrollmentHandlerCreateDraft(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{draft: sampleDraft()}
	handler := NewEnrollmentHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateDraftRequest{HouseholdID: "hh-1", LocationID: "loc-1"})
	c, w := newGinContext(http.MethodPost, "/enrollments/drafts", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})

	handler.CreateDraft(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "staff-1", mockSvc.lastActor)
}

func TestEnrollmentHandlerCreateDraftInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&enrollmentFlowMock{})

	c, w := newGinContext(http.MethodPost, "/enrollments/drafts", []byte("{not json"))
	handler.CreateDraft(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerGetDraftExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{draftErr: appErrors.ErrDraftExpired}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/draft-9", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-9"}}

	handler.GetDraft(c)
	require.Equal(t, http.StatusGone, w.Code)
	require.Equal(t, "draft-9", mockSvc.lastDraftID)
}

func TestEnrollmentHandlerCalendarRequiresMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&enrollmentFlowMock{})

	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/draft-1/calendar", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}

	handler.Calendar(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerCalendar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{
		calendar: &dto.CalendarResponse{
			Month: "2026-09",
			Days:  []dto.CalendarDay{{Date: "2026-09-07", Status: "open", Selectable: true}},
		},
	}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/draft-1/calendar?month=2026-09", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}

	handler.Calendar(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.CalendarResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "2026-09", envelope.Data.Month)
	require.Len(t, envelope.Data.Days, 1)
}

func TestEnrollmentHandlerSlots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{
		slots: &dto.SlotsResponse{Date: "2026-09-07", Slots: []string{"10:00", "10:15"}},
	}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/draft-1/dates/2026-09-07/slots", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}, {Key: "date", Value: "2026-09-07"}}

	handler.Slots(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-09-07", mockSvc.lastDate)
}

func TestEnrollmentHandlerSelectDateNotice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	draft := sampleDraft()
	draft.Notices = []dto.NoticeView{{Message: "date no longer available", ExpiresAt: time.Now().Add(15 * time.Second)}}
	mockSvc := &enrollmentFlowMock{draft: draft}
	handler := NewEnrollmentHandler(mockSvc)

	payload, _ := json.Marshal(dto.SelectDateRequest{Date: "2026-09-07"})
	c, w := newGinContext(http.MethodPost, "/enrollments/drafts/draft-1/dates", payload)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}

	handler.SelectDate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.DraftResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Notices, 1)
}

func TestEnrollmentHandlerDeselectDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{draft: sampleDraft()}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/enrollments/drafts/draft-1/dates/2026-09-07", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}, {Key: "date", Value: "2026-09-07"}}

	handler.DeselectDate(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-09-07", mockSvc.lastDate)
}

func TestEnrollmentHandlerBulkTimeRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{
		draftErr: appErrors.Clone(appErrors.ErrBulkTimeRejected, "time 21:00 falls outside opening hours on 07 Sep 2026"),
	}
	handler := NewEnrollmentHandler(mockSvc)

	payload, _ := json.Marshal(dto.BulkTimeRequest{Time: "21:00"})
	c, w := newGinContext(http.MethodPut, "/enrollments/drafts/draft-1/parcels/time", payload)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}

	handler.BulkTime(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "BULK_TIME_REJECTED", envelope.Error.Code)
}

func TestEnrollmentHandlerCommonWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{
		window: &dto.CommonWindowResponse{Available: true, Open: "10:00", Close: "16:00", LatestStart: "15:45"},
	}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/enrollments/drafts/draft-1/parcels/common-window", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}

	handler.CommonWindow(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollmentHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{
		submit: &dto.SubmitResponse{
			EnrollmentID: "enr-1",
			Created:      []dto.ParcelView{{ID: "p-1", Date: "2026-09-07", Earliest: "10:00", Latest: "10:15"}},
			Reused:       []dto.ParcelView{},
		},
	}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/enrollments/drafts/draft-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})

	handler.Submit(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "staff-1", mockSvc.lastSubmitBy)
}

func TestEnrollmentHandlerSubmitCapacityConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{submitErr: appErrors.ErrCapacityFull}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/enrollments/drafts/draft-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "draft-1"}}

	handler.Submit(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestEnrollmentHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{
		list: []models.EnrollmentDetail{{
			Enrollment:    models.Enrollment{ID: "enr-1", HouseholdID: "hh-1", LocationID: "loc-1", Status: models.EnrollmentStatusSubmitted},
			HouseholdName: "Jansen",
			LocationName:  "Noord",
		}},
		listTotal: 1,
	}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/enrollments?page=1&limit=20", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	require.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestEnrollmentHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollmentFlowMock{
		detail: &models.EnrollmentDetail{
			Enrollment: models.Enrollment{ID: "enr-1", HouseholdID: "hh-1", LocationID: "loc-1"},
		},
		parcels: []models.Parcel{{ID: "p-1"}},
	}
	handler := NewEnrollmentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/enrollments/enr-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
}

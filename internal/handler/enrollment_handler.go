package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/models"
	appErrors "github.com/foodbridge/pickup-api/pkg/errors"
	"github.com/foodbridge/pickup-api/pkg/response"
)

type enrollmentFlow interface {
	CreateDraft(ctx context.Context, req dto.CreateDraftRequest, createdBy string) (*dto.DraftResponse, error)
	GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error)
	ChangeLocation(ctx context.Context, id string, req dto.ChangeLocationRequest) (*dto.DraftResponse, error)
	Calendar(ctx context.Context, id, month string) (*dto.CalendarResponse, error)
	Slots(ctx context.Context, id, date string) (*dto.SlotsResponse, error)
	SelectDate(ctx context.Context, id string, req dto.SelectDateRequest) (*dto.DraftResponse, error)
	DeselectDate(ctx context.Context, id, date string) (*dto.DraftResponse, error)
	SetParcelTime(ctx context.Context, id, date string, req dto.SetTimeRequest) (*dto.DraftResponse, error)
	BulkTime(ctx context.Context, id string, req dto.BulkTimeRequest) (*dto.DraftResponse, error)
	CommonWindow(ctx context.Context, id string) (*dto.CommonWindowResponse, error)
	Submit(ctx context.Context, id, submittedBy string) (*dto.SubmitResponse, error)
	List(ctx context.Context, query dto.EnrollmentQuery) ([]models.EnrollmentDetail, int, error)
	Get(ctx context.Context, id string) (*models.EnrollmentDetail, []models.Parcel, error)
}

// EnrollmentHandler exposes the pickup enrollment flow: draft lifecycle, the
// date-picker feeds, time edits and the final submission.
type EnrollmentHandler struct {
	enrollments enrollmentFlow
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentFlow) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// CreateDraft godoc
// @Summary Start an enrollment draft
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.CreateDraftRequest true "Draft payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments/drafts [post]
func (h *EnrollmentHandler) CreateDraft(c *gin.Context) {
	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	draft, err := h.enrollments.CreateDraft(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// GetDraft godoc
// @Summary Get draft state
// @Tags Enrollments
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id} [get]
func (h *EnrollmentHandler) GetDraft(c *gin.Context) {
	draft, err := h.enrollments.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// ChangeLocation godoc
// @Summary Re-target a draft at another pickup location
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.ChangeLocationRequest true "Location payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/location [put]
func (h *EnrollmentHandler) ChangeLocation(c *gin.Context) {
	var req dto.ChangeLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	draft, err := h.enrollments.ChangeLocation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Calendar godoc
// @Summary Date-picker feed for one month
// @Tags Enrollments
// @Produce json
// @Param id path string true "Draft ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/calendar [get]
func (h *EnrollmentHandler) Calendar(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month required"))
		return
	}
	calendar, err := h.enrollments.Calendar(c.Request.Context(), c.Param("id"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendar, nil)
}

// Slots godoc
// @Summary Valid pickup start times for one date
// @Tags Enrollments
// @Produce json
// @Param id path string true "Draft ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/dates/{date}/slots [get]
func (h *EnrollmentHandler) Slots(c *gin.Context) {
	slots, err := h.enrollments.Slots(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// SelectDate godoc
// @Summary Add a pickup date to the draft
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.SelectDateRequest true "Date payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/dates [post]
func (h *EnrollmentHandler) SelectDate(c *gin.Context) {
	var req dto.SelectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	draft, err := h.enrollments.SelectDate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// DeselectDate godoc
// @Summary Remove a pickup date from the draft
// @Tags Enrollments
// @Produce json
// @Param id path string true "Draft ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/dates/{date} [delete]
func (h *EnrollmentHandler) DeselectDate(c *gin.Context) {
	draft, err := h.enrollments.DeselectDate(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// SetParcelTime godoc
// @Summary Change one parcel's pickup time
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body dto.SetTimeRequest true "Time payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/parcels/{date}/time [put]
func (h *EnrollmentHandler) SetParcelTime(c *gin.Context) {
	var req dto.SetTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	draft, err := h.enrollments.SetParcelTime(c.Request.Context(), c.Param("id"), c.Param("date"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// BulkTime godoc
// @Summary Apply one pickup time to every upcoming date
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.BulkTimeRequest true "Time payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/bulk-time [post]
func (h *EnrollmentHandler) BulkTime(c *gin.Context) {
	var req dto.BulkTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	draft, err := h.enrollments.BulkTime(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// CommonWindow godoc
// @Summary Shared opening window across the draft's upcoming dates
// @Tags Enrollments
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/bulk-time/window [get]
func (h *EnrollmentHandler) CommonWindow(c *gin.Context) {
	window, err := h.enrollments.CommonWindow(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Submit godoc
// @Summary Submit the draft and persist its parcels
// @Tags Enrollments
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drafts/{id}/submit [post]
func (h *EnrollmentHandler) Submit(c *gin.Context) {
	result, err := h.enrollments.Submit(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List submitted enrollments
// @Tags Enrollments
// @Produce json
// @Param householdId query string false "Filter by household"
// @Param locationId query string false "Filter by location"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	query := dto.EnrollmentQuery{
		HouseholdID: c.Query("householdId"),
		LocationID:  c.Query("locationId"),
		Status:      models.EnrollmentStatus(strings.ToUpper(c.Query("status"))),
		SortBy:      c.Query("sort"),
		SortOrder:   c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = size
	}

	list, total, err := h.enrollments.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one enrollment with its parcels
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	detail, parcels, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enrollment": detail, "parcels": parcels}, nil)
}

// actorID resolves the acting staff member from the JWT claims.
func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/models"
	appErrors "github.com/foodbridge/pickup-api/pkg/errors"
	"github.com/foodbridge/pickup-api/pkg/response"
)

type locationDirectory interface {
	List(ctx context.Context, query dto.LocationQuery) ([]models.PickupLocation, int, error)
	Find(ctx context.Context, id string) (*models.PickupLocation, error)
	ListSchedules(ctx context.Context, locationID string) ([]models.OpeningSchedule, error)
	Capacity(ctx context.Context, locationID string, from, to time.Time) (models.CapacitySnapshot, error)
	SlotDuration(ctx context.Context, locationID string) (int, error)
	CreateLocation(ctx context.Context, req dto.CreateLocationRequest) (*models.PickupLocation, error)
	UpdateLocation(ctx context.Context, id string, req dto.UpdateLocationRequest) (*models.PickupLocation, error)
	DeactivateLocation(ctx context.Context, id string) error
	CreateSchedule(ctx context.Context, locationID string, req dto.CreateScheduleRequest) (*models.OpeningSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// LocationHandler exposes pickup location lookups and staff administration.
type LocationHandler struct {
	locations locationDirectory
}

// NewLocationHandler constructs LocationHandler.
func NewLocationHandler(locations locationDirectory) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// List godoc
// @Summary List pickup locations
// @Tags Locations
// @Produce json
// @Param search query string false "Name search"
// @Param active query boolean false "Filter by active"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	query := dto.LocationQuery{Search: c.Query("search")}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			query.Active = &active
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		query.PageSize = size
	}

	locations, total, err := h.locations.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, locations, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one pickup location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} response.Envelope
// @Router /locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	location, err := h.locations.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// Schedules godoc
// @Summary List opening schedules of a location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} response.Envelope
// @Router /locations/{id}/schedules [get]
func (h *LocationHandler) Schedules(c *gin.Context) {
	schedules, err := h.locations.ListSchedules(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Capacity godoc
// @Summary Booked parcel counts per date
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Param start_date query string true "Range start (YYYY-MM-DD)"
// @Param end_date query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /locations/{id}/capacity [get]
func (h *LocationHandler) Capacity(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date"))
		return
	}

	snapshot, err := h.locations.Capacity(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CapacityResponse{
		LocationID: snapshot.LocationID,
		MaxPerDay:  snapshot.MaxPerDay,
		StartDate:  from.Format("2006-01-02"),
		EndDate:    to.Format("2006-01-02"),
		DateCounts: snapshot.DateCounts,
	}, nil)
}

// SlotDuration godoc
// @Summary Minimum pickup slot length of a location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} response.Envelope
// @Router /locations/{id}/slot-duration [get]
func (h *LocationHandler) SlotDuration(c *gin.Context) {
	id := c.Param("id")
	minutes, err := h.locations.SlotDuration(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SlotDurationResponse{
		LocationID:          id,
		SlotDurationMinutes: minutes,
	}, nil)
}

// Create godoc
// @Summary Register a pickup location
// @Tags Locations
// @Accept json
// @Produce json
// @Param payload body dto.CreateLocationRequest true "Location payload"
// @Success 201 {object} response.Envelope
// @Router /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	location, err := h.locations.CreateLocation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, location)
}

// Update godoc
// @Summary Update a pickup location
// @Tags Locations
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param payload body dto.UpdateLocationRequest true "Location payload"
// @Success 200 {object} response.Envelope
// @Router /locations/{id} [put]
func (h *LocationHandler) Update(c *gin.Context) {
	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	location, err := h.locations.UpdateLocation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// Deactivate godoc
// @Summary Deactivate a pickup location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 204 {object} nil
// @Router /locations/{id} [delete]
func (h *LocationHandler) Deactivate(c *gin.Context) {
	if err := h.locations.DeactivateLocation(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateSchedule godoc
// @Summary Add an opening schedule to a location
// @Tags Locations
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param payload body dto.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /locations/{id}/schedules [post]
func (h *LocationHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	schedule, err := h.locations.CreateSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// DeleteSchedule godoc
// @Summary Remove an opening schedule
// @Tags Locations
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204 {object} nil
// @Router /schedules/{id} [delete]
func (h *LocationHandler) DeleteSchedule(c *gin.Context) {
	if err := h.locations.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/models"
	"github.com/foodbridge/pickup-api/internal/scheduling"
	appErrors "github.com/foodbridge/pickup-api/pkg/errors"
)

type locationRepository interface {
	List(ctx context.Context, filter models.LocationFilter) ([]models.PickupLocation, int, error)
	FindByID(ctx context.Context, id string) (*models.PickupLocation, error)
	SlotDuration(ctx context.Context, id string) (int, error)
	Create(ctx context.Context, location *models.PickupLocation) error
	Update(ctx context.Context, location *models.PickupLocation) error
	Deactivate(ctx context.Context, id string) error
}

type scheduleStore interface {
	ListByLocation(ctx context.Context, locationID string) ([]models.OpeningSchedule, error)
	ListCovering(ctx context.Context, locationID string, from, to time.Time) ([]models.OpeningSchedule, error)
	FindByID(ctx context.Context, id string) (*models.OpeningSchedule, error)
	Create(ctx context.Context, schedule *models.OpeningSchedule) error
	Delete(ctx context.Context, id string) error
}

type parcelCounter interface {
	CapacityCounts(ctx context.Context, locationID string, from, to time.Time) (map[string]int, error)
}

// LocationServiceConfig tunes lookup behaviour.
type LocationServiceConfig struct {
	CacheTTL           time.Duration
	DefaultSlotMinutes int
}

// LocationService serves pickup location lookups and staff administration.
// Lookup reads degrade to safe defaults on storage failure so the enrollment
// flow stays usable: empty location list, no schedules, unlimited capacity and
// the configured fallback slot duration. Degradations are logged, not returned.
type LocationService struct {
	locations locationRepository
	schedules scheduleStore
	parcels   parcelCounter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       LocationServiceConfig
}

// NewLocationService constructs the service.
func NewLocationService(locations locationRepository, schedules scheduleStore, parcels parcelCounter, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg LocationServiceConfig) *LocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultSlotMinutes <= 0 {
		cfg.DefaultSlotMinutes = 15
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	svc := &LocationService{
		locations: locations,
		schedules: schedules,
		parcels:   parcels,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
	registerClockValidator(svc.validator)
	return svc
}

// registerClockValidator adds the "clock" tag validating "HH:MM" strings. A
// trailing seconds component is tolerated, matching the scheduling engine.
func registerClockValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := scheduling.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
}

type locationListPayload struct {
	Items []models.PickupLocation `json:"items"`
	Total int                     `json:"total"`
}

// List returns pickup locations for the picker. Results are cached; a storage
// failure degrades to an empty list.
func (s *LocationService) List(ctx context.Context, query dto.LocationQuery) ([]models.PickupLocation, int, error) {
	filter := models.LocationFilter{
		Search:   query.Search,
		Active:   query.Active,
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	cacheKey := s.listCacheKey(filter)
	var cached locationListPayload
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached.Items, cached.Total, nil
		}
	}

	locations, total, err := s.locations.List(ctx, filter)
	if err != nil {
		s.logger.Warn("location list degraded to empty", zap.Error(err))
		return []models.PickupLocation{}, 0, nil
	}
	if locations == nil {
		locations = []models.PickupLocation{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, locationListPayload{Items: locations, Total: total}, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache location list", zap.Error(err))
		}
	}
	return locations, total, nil
}

// Find loads one pickup location.
func (s *LocationService) Find(ctx context.Context, id string) (*models.PickupLocation, error) {
	location, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pickup location not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pickup location")
	}
	return location, nil
}

// ListSchedules returns every opening schedule of a location. Storage failure
// degrades to no schedules, which the engine treats as closed.
func (s *LocationService) ListSchedules(ctx context.Context, locationID string) ([]models.OpeningSchedule, error) {
	schedules, err := s.schedules.ListByLocation(ctx, locationID)
	if err != nil {
		s.logger.Warn("schedule list degraded to closed", zap.String("location_id", locationID), zap.Error(err))
		return []models.OpeningSchedule{}, nil
	}
	if schedules == nil {
		schedules = []models.OpeningSchedule{}
	}
	return schedules, nil
}

// Schedules returns the schedules overlapping [from, to], degraded to none on
// failure.
func (s *LocationService) Schedules(ctx context.Context, locationID string, from, to time.Time) ([]models.OpeningSchedule, error) {
	schedules, err := s.schedules.ListCovering(ctx, locationID, from, to)
	if err != nil {
		s.logger.Warn("schedule snapshot degraded to closed", zap.String("location_id", locationID), zap.Error(err))
		return []models.OpeningSchedule{}, nil
	}
	return schedules, nil
}

// Capacity builds the booked-count snapshot for [from, to]. Count failures
// degrade to an empty ledger and a missing location cap degrades to unlimited.
func (s *LocationService) Capacity(ctx context.Context, locationID string, from, to time.Time) (models.CapacitySnapshot, error) {
	snapshot := models.CapacitySnapshot{
		LocationID: locationID,
		StartDate:  from,
		EndDate:    to,
		DateCounts: map[string]int{},
	}

	location, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		s.logger.Warn("capacity cap degraded to unlimited", zap.String("location_id", locationID), zap.Error(err))
	} else {
		snapshot.MaxPerDay = location.MaxParcelsPerDay
	}

	counts, err := s.parcels.CapacityCounts(ctx, locationID, from, to)
	if err != nil {
		s.logger.Warn("capacity counts degraded to empty", zap.String("location_id", locationID), zap.Error(err))
		return snapshot, nil
	}
	if counts != nil {
		snapshot.DateCounts = counts
	}
	return snapshot, nil
}

// SlotDuration returns the location's minimum slot length, degraded to the
// configured default on failure.
func (s *LocationService) SlotDuration(ctx context.Context, locationID string) (int, error) {
	minutes, err := s.locations.SlotDuration(ctx, locationID)
	if err != nil || minutes <= 0 {
		if err != nil {
			s.logger.Warn("slot duration degraded to default",
				zap.String("location_id", locationID),
				zap.Int("default_minutes", s.cfg.DefaultSlotMinutes),
				zap.Error(err))
		}
		return s.cfg.DefaultSlotMinutes, nil
	}
	return minutes, nil
}

// CreateLocation registers a new pickup location.
func (s *LocationService) CreateLocation(ctx context.Context, req dto.CreateLocationRequest) (*models.PickupLocation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	location := &models.PickupLocation{
		Name:                req.Name,
		Address:             req.Address,
		MaxParcelsPerDay:    req.MaxParcelsPerDay,
		SlotDurationMinutes: req.SlotDurationMinutes,
		Active:              true,
	}
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create pickup location")
	}
	s.invalidateLookups(ctx)
	return location, nil
}

// UpdateLocation modifies an existing pickup location.
func (s *LocationService) UpdateLocation(ctx context.Context, id string, req dto.UpdateLocationRequest) (*models.PickupLocation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	location, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	location.Name = req.Name
	location.Address = req.Address
	location.MaxParcelsPerDay = req.MaxParcelsPerDay
	location.SlotDurationMinutes = req.SlotDurationMinutes
	location.Active = req.Active
	if err := s.locations.Update(ctx, location); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update pickup location")
	}
	s.invalidateLookups(ctx)
	return location, nil
}

// DeactivateLocation hides a location from lookups without deleting history.
func (s *LocationService) DeactivateLocation(ctx context.Context, id string) error {
	if _, err := s.Find(ctx, id); err != nil {
		return err
	}
	if err := s.locations.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate pickup location")
	}
	s.invalidateLookups(ctx)
	return nil
}

// CreateSchedule attaches an opening schedule to a location.
func (s *LocationService) CreateSchedule(ctx context.Context, locationID string, req dto.CreateScheduleRequest) (*models.OpeningSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if _, err := s.Find(ctx, locationID); err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not precede startDate")
	}

	days := make(map[time.Weekday]models.DaySpec, len(req.Days))
	for _, day := range req.Days {
		weekday := time.Weekday(day.Weekday)
		if _, exists := days[weekday]; exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate weekday %d", day.Weekday))
		}
		if day.IsOpen {
			opens, err := scheduling.ParseTimeOfDay(day.OpensAt)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekday %d: invalid opensAt", day.Weekday))
			}
			closes, err := scheduling.ParseTimeOfDay(day.ClosesAt)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekday %d: invalid closesAt", day.Weekday))
			}
			if closes <= opens {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekday %d: closesAt must be after opensAt", day.Weekday))
			}
		}
		days[weekday] = models.DaySpec{
			Weekday:  weekday,
			IsOpen:   day.IsOpen,
			OpensAt:  day.OpensAt,
			ClosesAt: day.ClosesAt,
		}
	}

	schedule := &models.OpeningSchedule{
		LocationID: locationID,
		Name:       req.Name,
		StartDate:  startDate,
		EndDate:    endDate,
		Days:       days,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create opening schedule")
	}
	s.invalidateLookups(ctx)
	return schedule, nil
}

// DeleteSchedule removes an opening schedule.
func (s *LocationService) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := s.schedules.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "opening schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load opening schedule")
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete opening schedule")
	}
	s.invalidateLookups(ctx)
	return nil
}

func (s *LocationService) listCacheKey(filter models.LocationFilter) string {
	active := "any"
	if filter.Active != nil {
		active = fmt.Sprintf("%t", *filter.Active)
	}
	return fmt.Sprintf("locations:list:%s:%s:%d:%d", filter.Search, active, filter.Page, filter.PageSize)
}

func (s *LocationService) invalidateLookups(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "locations:*"); err != nil {
		s.logger.Warn("invalidate location cache", zap.Error(err))
	}
}

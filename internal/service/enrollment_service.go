package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/models"
	"github.com/foodbridge/pickup-api/internal/scheduling"
	appErrors "github.com/foodbridge/pickup-api/pkg/errors"
	"github.com/foodbridge/pickup-api/pkg/jobs"
)

// lookupProvider serves the four reads a draft snapshots. Implementations
// degrade failures to safe defaults (empty list, closed schedule, unlimited
// capacity, fallback duration) rather than returning errors.
type lookupProvider interface {
	Find(ctx context.Context, id string) (*models.PickupLocation, error)
	Schedules(ctx context.Context, locationID string, from, to time.Time) ([]models.OpeningSchedule, error)
	Capacity(ctx context.Context, locationID string, from, to time.Time) (models.CapacitySnapshot, error)
	SlotDuration(ctx context.Context, locationID string) (int, error)
}

type householdStore interface {
	FindByID(ctx context.Context, id string) (*models.Household, error)
	UpdateOutsideHoursCount(ctx context.Context, id string, count int) error
}

type enrollmentStore interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.Enrollment) error
}

type parcelStore interface {
	ListByHouseholdAndLocation(ctx context.Context, householdID, locationID string) ([]models.Parcel, error)
	ListByHousehold(ctx context.Context, householdID string) ([]models.Parcel, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Parcel, error)
	CountForDate(ctx context.Context, q sqlx.QueryerContext, locationID string, date time.Time) (int, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, parcel *models.Parcel) (bool, error)
	DeleteByIDsTx(ctx context.Context, tx *sqlx.Tx, ids []string) error
}

type dbRunner interface {
	sqlx.QueryerContext
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// PostCommitJobType tags the best-effort work that runs after an enrollment
// commits: the outside-hours recount and the pickup confirmation.
const PostCommitJobType = "enrollment.post_commit"

type postCommitTask struct {
	EnrollmentID string
	HouseholdID  string
	LocationID   string
}

// EnrollmentServiceConfig governs draft behaviour.
type EnrollmentServiceConfig struct {
	DraftTTL      time.Duration
	NoticeTTL     time.Duration
	HorizonMonths int
}

// EnrollmentService runs the pickup enrollment flow: drafts holding a
// household's date selection, the scheduling-engine evaluations behind the
// date picker, and the transactional submission that persists parcels.
type EnrollmentService struct {
	lookups     lookupProvider
	households  householdStore
	enrollments enrollmentStore
	parcels     parcelStore
	db          dbRunner
	queue       jobDispatcher
	notifier    Notifier
	clock       scheduling.Clock
	validator   *validator.Validate
	logger      *zap.Logger
	drafts      *draftStore
	cfg         EnrollmentServiceConfig
}

// NewEnrollmentService wires the enrollment flow's dependencies.
func NewEnrollmentService(
	lookups lookupProvider,
	households householdStore,
	enrollments enrollmentStore,
	parcels parcelStore,
	db dbRunner,
	queue jobDispatcher,
	notifier Notifier,
	clock scheduling.Clock,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg EnrollmentServiceConfig,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = scheduling.NewSystemClock(time.UTC)
	}
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = 30 * time.Minute
	}
	if cfg.NoticeTTL <= 0 {
		cfg.NoticeTTL = 30 * time.Second
	}
	if cfg.HorizonMonths <= 0 {
		cfg.HorizonMonths = 1
	}
	svc := &EnrollmentService{
		lookups:     lookups,
		households:  households,
		enrollments: enrollments,
		parcels:     parcels,
		db:          db,
		queue:       queue,
		notifier:    notifier,
		clock:       clock,
		validator:   validate,
		logger:      logger,
		drafts:      newDraftStore(cfg.DraftTTL),
		cfg:         cfg,
	}
	registerClockValidator(svc.validator)
	return svc
}

// CreateDraft opens a draft for a household at a location and snapshots the
// schedules, booked counts, slot duration and already-persisted parcels the
// engine evaluates against. Existing parcels inside the snapshot window seed
// the selection so a revisit can edit earlier bookings.
func (s *EnrollmentService) CreateDraft(ctx context.Context, req dto.CreateDraftRequest, createdBy string) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft payload")
	}
	if _, err := s.households.FindByID(ctx, req.HouseholdID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "household not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load household")
	}
	if _, err := s.lookups.Find(ctx, req.LocationID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	draft := models.EnrollmentDraft{
		ID:          uuid.NewString(),
		HouseholdID: req.HouseholdID,
		LocationID:  req.LocationID,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.applySnapshot(&draft, s.fetchSnapshot(ctx, req.HouseholdID, req.LocationID))
	s.drafts.Save(draft)

	s.logger.Info("enrollment draft created",
		zap.String("draft_id", draft.ID),
		zap.String("household_id", draft.HouseholdID),
		zap.String("location_id", draft.LocationID))
	return s.draftResponse(draft), nil
}

// GetDraft returns the current draft state.
func (s *EnrollmentService) GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	draft, ok := s.drafts.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment draft not found or expired")
	}
	return s.draftResponse(draft), nil
}

// ChangeLocation points the draft at another location and refreshes every
// snapshot. The selection resets to the new location's persisted parcels. The
// refresh runs outside the draft lock; a result whose location was superseded
// by a concurrent change in the meantime is discarded.
func (s *EnrollmentService) ChangeLocation(ctx context.Context, id string, req dto.ChangeLocationRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	draft, ok := s.drafts.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment draft not found or expired")
	}
	if draft.LocationID == req.LocationID {
		return s.draftResponse(draft), nil
	}
	if _, err := s.lookups.Find(ctx, req.LocationID); err != nil {
		return nil, err
	}

	if _, err := s.drafts.Mutate(id, func(d *models.EnrollmentDraft) error {
		d.LocationID = req.LocationID
		d.SelectedDates = nil
		d.Parcels = nil
		d.SeededParcels = nil
		return nil
	}); err != nil {
		return nil, err
	}

	snap := s.fetchSnapshot(ctx, draft.HouseholdID, req.LocationID)

	updated, err := s.drafts.Mutate(id, func(d *models.EnrollmentDraft) error {
		if d.LocationID != snap.locationID {
			s.logger.Info("stale location snapshot discarded",
				zap.String("draft_id", id),
				zap.String("fetched_for", snap.locationID),
				zap.String("current", d.LocationID))
			return nil
		}
		s.applySnapshot(d, snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.draftResponse(updated), nil
}

// Calendar classifies every day of a month for the date picker. The month
// must fall inside the draft's snapshot window.
func (s *EnrollmentService) Calendar(ctx context.Context, id, month string) (*dto.CalendarResponse, error) {
	draft, ok := s.drafts.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment draft not found or expired")
	}

	loc := s.clock.Location()
	start, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be formatted YYYY-MM")
	}

	from, to := draft.Capacity.StartDate, draft.Capacity.EndDate
	if from.IsZero() || to.IsZero() {
		from, to = s.snapshotRange()
	}
	firstMonth := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, loc)
	if start.Before(firstMonth) || start.After(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("month must fall between %s and %s", firstMonth.Format("2006-01"), to.Format("2006-01")))
	}

	policy := s.policy(&draft)
	days := make([]dto.CalendarDay, 0, 31)
	for day := start; day.Month() == start.Month(); day = day.AddDate(0, 0, 1) {
		status := policy.Evaluate(day, draft.SelectedDates)
		days = append(days, dto.CalendarDay{
			Date:       scheduling.DateKey(day, loc),
			Status:     string(status),
			Selectable: status.Selectable(),
		})
	}
	return &dto.CalendarResponse{Month: month, Days: days}, nil
}

// Slots lists the valid pickup start times of one date. Slots already in the
// past are dropped when the date is today.
func (s *EnrollmentService) Slots(ctx context.Context, id, dateStr string) (*dto.SlotsResponse, error) {
	draft, ok := s.drafts.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment draft not found or expired")
	}
	date, err := s.parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	loc := s.clock.Location()
	resp := &dto.SlotsResponse{Date: scheduling.DateKey(date, loc), Slots: []string{}}
	window, open := s.index(&draft).OpeningWindowFor(date)
	if !open {
		return resp, nil
	}
	for _, slot := range scheduling.FilterPastSlots(scheduling.EnumerateSlots(window, draft.SlotMinutes), date, s.clock) {
		resp.Slots = append(resp.Slots, slot.String())
	}
	return resp, nil
}

// SelectDate adds a pickup date to the draft. The capacity snapshot can be
// stale, so the add is re-checked against a live booking count; when the day
// filled up in the meantime the add is reverted and a transient notice is
// attached instead of an error.
func (s *EnrollmentService) SelectDate(ctx context.Context, id string, req dto.SelectDateRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date payload")
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	loc := s.clock.Location()
	updated, err := s.drafts.Mutate(id, func(d *models.EnrollmentDraft) error {
		s.pruneNotices(d)

		status := s.policy(d).Evaluate(date, d.SelectedDates)
		if status == scheduling.DaySelected {
			return nil
		}
		if !status.Selectable() {
			return appErrors.Clone(appErrors.ErrDateNotSelectable,
				fmt.Sprintf("date %s is not selectable: %s", scheduling.DateKey(date, loc), status))
		}

		selected := append(append([]time.Time(nil), d.SelectedDates...), scheduling.CivilDate(date, loc))

		if d.Capacity.MaxPerDay != nil {
			key := scheduling.DateKey(date, loc)
			count, countErr := s.parcels.CountForDate(ctx, s.db, d.LocationID, date)
			if countErr != nil {
				s.logger.Warn("live capacity check unavailable", zap.String("date", key), zap.Error(countErr))
			} else {
				if d.Capacity.DateCounts == nil {
					d.Capacity.DateCounts = make(map[string]int)
				}
				d.Capacity.DateCounts[key] = count
				if count >= *d.Capacity.MaxPerDay {
					d.Notices = append(d.Notices, models.DraftNotice{
						Message:   fmt.Sprintf("%s is fully booked; the date was removed again", date.Format("02 Jan 2006")),
						ExpiresAt: s.clock.Now().Add(s.cfg.NoticeTTL),
					})
					return nil
				}
			}
		}

		parcels, _ := s.reducer(d).Reconcile(selected, d.Parcels)
		d.SelectedDates = selected
		d.Parcels = parcels
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.draftResponse(updated), nil
}

// DeselectDate removes a pickup date and its parcel. Removing a date that is
// not selected is a no-op.
func (s *EnrollmentService) DeselectDate(ctx context.Context, id, dateStr string) (*dto.DraftResponse, error) {
	date, err := s.parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	loc := s.clock.Location()
	updated, err := s.drafts.Mutate(id, func(d *models.EnrollmentDraft) error {
		s.pruneNotices(d)

		selected := make([]time.Time, 0, len(d.SelectedDates))
		removed := false
		for _, sel := range d.SelectedDates {
			if !removed && scheduling.SameCivilDate(sel, date, loc) {
				removed = true
				continue
			}
			selected = append(selected, sel)
		}
		if !removed {
			return nil
		}
		parcels, _ := s.reducer(d).Reconcile(selected, d.Parcels)
		d.SelectedDates = selected
		d.Parcels = parcels
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.draftResponse(updated), nil
}

// SetParcelTime changes one parcel's start time. The raw chosen time must lie
// inside the date's opening window with room for a full slot; the stored
// start snaps down to the slot grid. Times of elapsed dates are frozen.
func (s *EnrollmentService) SetParcelTime(ctx context.Context, id, dateStr string, req dto.SetTimeRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time payload")
	}
	date, err := s.parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	chosen, err := scheduling.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be formatted HH:MM")
	}

	loc := s.clock.Location()
	updated, err := s.drafts.Mutate(id, func(d *models.EnrollmentDraft) error {
		s.pruneNotices(d)

		day := scheduling.CivilDate(date, loc)
		idx := -1
		for i, p := range d.Parcels {
			if scheduling.SameCivilDate(p.PickupDate, day, loc) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no parcel on %s", scheduling.DateKey(day, loc)))
		}
		if day.Before(scheduling.Today(s.clock)) {
			return appErrors.Clone(appErrors.ErrValidation, "pickup time of an elapsed date can no longer change")
		}

		window, open := s.index(d).OpeningWindowFor(day)
		if !open {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s has no opening hours in the current schedule", scheduling.DateKey(day, loc)))
		}
		if chosen < window.Open || chosen > window.LastStart(d.SlotMinutes) {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("time must lie between %s and %s", window.Open, window.LastStart(d.SlotMinutes)))
		}

		start := chosen.QuantizeDown(scheduling.SlotGrid)
		parcels := append([]models.Parcel(nil), d.Parcels...)
		parcels[idx].PickupEarliest = start.At(day, loc)
		parcels[idx].PickupLatest = start.AddMinutes(d.SlotMinutes).At(day, loc)
		d.Parcels = parcels
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.draftResponse(updated), nil
}

// BulkTime applies one start time to every upcoming parcel, all or nothing.
// A rejection lists every offending date and leaves the draft untouched.
func (s *EnrollmentService) BulkTime(ctx context.Context, id string, req dto.BulkTimeRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time payload")
	}
	chosen, err := scheduling.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be formatted HH:MM")
	}

	loc := s.clock.Location()
	updated, err := s.drafts.Mutate(id, func(d *models.EnrollmentDraft) error {
		s.pruneNotices(d)

		parcels, applyErr := scheduling.NewBulkTimeReconciler(s.index(d), s.clock, d.SlotMinutes).Apply(d.Parcels, chosen)
		if applyErr != nil {
			var bulkErr *scheduling.BulkTimeError
			if errors.As(applyErr, &bulkErr) {
				dates := make([]string, len(bulkErr.Dates))
				for i, invalid := range bulkErr.Dates {
					dates[i] = scheduling.DateKey(invalid, loc)
				}
				return appErrors.Clone(appErrors.ErrBulkTimeRejected, bulkErr.Error()).
					WithDetails(map[string][]string{"dates": dates})
			}
			return appErrors.Wrap(applyErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply bulk time")
		}
		d.Parcels = parcels
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.draftResponse(updated), nil
}

// CommonWindow intersects the opening windows of the draft's upcoming pickup
// dates; a bulk time edit can succeed exactly for starts inside it.
func (s *EnrollmentService) CommonWindow(ctx context.Context, id string) (*dto.CommonWindowResponse, error) {
	draft, ok := s.drafts.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment draft not found or expired")
	}

	loc := s.clock.Location()
	today := scheduling.Today(s.clock)
	upcoming := make([]time.Time, 0, len(draft.Parcels))
	for _, p := range draft.Parcels {
		day := scheduling.CivilDate(p.PickupDate, loc)
		if !day.Before(today) {
			upcoming = append(upcoming, day)
		}
	}
	if len(upcoming) == 0 {
		return &dto.CommonWindowResponse{Available: false}, nil
	}

	window, ok := s.index(&draft).CommonWindowFor(upcoming)
	if !ok || window.LastStart(draft.SlotMinutes) < window.Open {
		return &dto.CommonWindowResponse{Available: false}, nil
	}
	return &dto.CommonWindowResponse{
		Available:   true,
		Open:        window.Open.String(),
		Close:       window.Close.String(),
		LatestStart: window.LastStart(draft.SlotMinutes).String(),
	}, nil
}

// Submit persists the draft in one transaction: superseded parcel rows are
// deleted, an enrollment row is created, and every draft parcel is inserted
// under the unique pickup-window constraint so a duplicate submission reuses
// the existing rows instead of double-booking. Capacity is re-verified inside
// the transaction; any violation rolls the whole submission back with
// per-field errors. On success the draft is discarded and the post-commit
// work is enqueued.
func (s *EnrollmentService) Submit(ctx context.Context, id, submittedBy string) (*dto.SubmitResponse, error) {
	if s.db == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	var (
		enrollmentID string
		created      []models.Parcel
		reused       []models.Parcel
		task         postCommitTask
	)

	if _, err := s.drafts.Mutate(id, func(d *models.EnrollmentDraft) (err error) {
		if len(d.Parcels) == 0 && len(d.SeededParcels) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "draft has no pickup dates selected")
		}
		if violations := s.validateParcels(d); len(violations) > 0 {
			return appErrors.Validation(violations...)
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin enrollment transaction")
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()

		// Dropped and re-timed bookings go first so their unique pickup
		// windows are free for the inserts below.
		if err = s.parcels.DeleteByIDsTx(ctx, tx, s.seededDrops(d)); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear superseded parcels")
		}

		enrollment := &models.Enrollment{
			HouseholdID: d.HouseholdID,
			LocationID:  d.LocationID,
			SubmittedBy: submittedBy,
		}
		if err = s.enrollments.CreateTx(ctx, tx, enrollment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
		}

		var violations []appErrors.FieldViolation
		for i := range d.Parcels {
			parcel := d.Parcels[i]
			parcel.ID = ""
			parcel.EnrollmentID = enrollment.ID
			wasCreated, insertErr := s.parcels.InsertTx(ctx, tx, &parcel)
			if insertErr != nil {
				err = appErrors.Wrap(insertErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist parcel")
				return err
			}
			if !wasCreated {
				reused = append(reused, parcel)
				continue
			}
			if d.Capacity.MaxPerDay != nil {
				count, countErr := s.parcels.CountForDate(ctx, tx, d.LocationID, parcel.PickupDate)
				if countErr != nil {
					err = appErrors.Wrap(countErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify capacity")
					return err
				}
				if count > *d.Capacity.MaxPerDay {
					violations = append(violations, appErrors.FieldViolation{
						Field:   fmt.Sprintf("parcels[%d].date", i),
						Message: fmt.Sprintf("no capacity left on %s", scheduling.DateKey(parcel.PickupDate, s.clock.Location())),
					})
					continue
				}
			}
			created = append(created, parcel)
		}
		if len(violations) > 0 {
			err = appErrors.Validation(violations...)
			return err
		}

		if err = tx.Commit(); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit enrollment")
		}

		enrollmentID = enrollment.ID
		task = postCommitTask{
			EnrollmentID: enrollment.ID,
			HouseholdID:  d.HouseholdID,
			LocationID:   d.LocationID,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.drafts.Delete(id)

	if s.queue != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: PostCommitJobType, Payload: task}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("post-commit job not enqueued", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		}
	}

	s.logger.Info("enrollment submitted",
		zap.String("enrollment_id", enrollmentID),
		zap.String("household_id", task.HouseholdID),
		zap.Int("created", len(created)),
		zap.Int("reused", len(reused)))
	return &dto.SubmitResponse{
		EnrollmentID: enrollmentID,
		Created:      s.parcelViews(created),
		Reused:       s.parcelViews(reused),
	}, nil
}

// List returns submitted enrollments.
func (s *EnrollmentService) List(ctx context.Context, query dto.EnrollmentQuery) ([]models.EnrollmentDetail, int, error) {
	filter := models.EnrollmentFilter{
		HouseholdID: query.HouseholdID,
		LocationID:  query.LocationID,
		Status:      query.Status,
		Page:        query.Page,
		PageSize:    query.PageSize,
		SortBy:      query.SortBy,
		SortOrder:   query.SortOrder,
	}
	list, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return list, total, nil
}

// Get loads one enrollment with its parcels.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, []models.Parcel, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	parcels, err := s.parcels.ListByEnrollment(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment parcels")
	}
	return detail, parcels, nil
}

// HandlePostCommit runs the best-effort work after a submission: recount the
// household's outside-hours parcels and send the pickup confirmation. The
// recount failing never blocks the confirmation.
func (s *EnrollmentService) HandlePostCommit(ctx context.Context, job jobs.Job) error {
	task, ok := job.Payload.(postCommitTask)
	if !ok {
		return fmt.Errorf("unexpected post-commit payload type %T", job.Payload)
	}

	if err := s.recountOutsideHours(ctx, task.HouseholdID); err != nil {
		s.logger.Warn("outside-hours recount failed",
			zap.String("household_id", task.HouseholdID), zap.Error(err))
	}

	if s.notifier == nil {
		return nil
	}
	household, err := s.households.FindByID(ctx, task.HouseholdID)
	if err != nil {
		return fmt.Errorf("load household: %w", err)
	}
	parcels, err := s.parcels.ListByEnrollment(ctx, task.EnrollmentID)
	if err != nil {
		return fmt.Errorf("load enrollment parcels: %w", err)
	}
	if len(parcels) == 0 {
		return nil
	}
	if err := s.notifier.SendPickupConfirmation(ctx, *household, parcels); err != nil {
		return fmt.Errorf("send pickup confirmation: %w", err)
	}
	return nil
}

// recountOutsideHours recomputes how many of the household's parcels fall
// outside their location's opening window and stores the aggregate.
func (s *EnrollmentService) recountOutsideHours(ctx context.Context, householdID string) error {
	parcels, err := s.parcels.ListByHousehold(ctx, householdID)
	if err != nil {
		return fmt.Errorf("list household parcels: %w", err)
	}

	loc := s.clock.Location()
	byLocation := make(map[string][]models.Parcel)
	for _, p := range parcels {
		byLocation[p.LocationID] = append(byLocation[p.LocationID], p)
	}

	outside := 0
	for locationID, group := range byLocation {
		from, to := group[0].PickupDate, group[0].PickupDate
		for _, p := range group[1:] {
			if p.PickupDate.Before(from) {
				from = p.PickupDate
			}
			if p.PickupDate.After(to) {
				to = p.PickupDate
			}
		}
		schedules, err := s.lookups.Schedules(ctx, locationID, from, to)
		if err != nil {
			return fmt.Errorf("load schedules for %s: %w", locationID, err)
		}
		index := scheduling.NewScheduleIndex(schedules, loc)
		for _, p := range group {
			day := scheduling.CivilDate(p.PickupDate, loc)
			window, open := index.OpeningWindowFor(day)
			if !open {
				outside++
				continue
			}
			earliest := scheduling.TimeOfDayFrom(p.PickupEarliest, loc)
			latest := scheduling.TimeOfDayFrom(p.PickupLatest, loc)
			if earliest < window.Open || latest > window.Close {
				outside++
			}
		}
	}

	if err := s.households.UpdateOutsideHoursCount(ctx, householdID, outside); err != nil {
		return fmt.Errorf("update outside-hours count: %w", err)
	}
	return nil
}

type draftSnapshot struct {
	locationID  string
	schedules   []models.OpeningSchedule
	capacity    models.CapacitySnapshot
	slotMinutes int
	seeded      []models.Parcel
}

// fetchSnapshot gathers the draft's working set. Lookup failures already
// degrade inside the provider; a failing parcel-history read degrades to an
// empty seed here, which the idempotent insert at submission absorbs.
func (s *EnrollmentService) fetchSnapshot(ctx context.Context, householdID, locationID string) draftSnapshot {
	from, to := s.snapshotRange()
	snap := draftSnapshot{locationID: locationID}

	var err error
	if snap.schedules, err = s.lookups.Schedules(ctx, locationID, from, to); err != nil {
		snap.schedules = nil
	}
	if snap.capacity, err = s.lookups.Capacity(ctx, locationID, from, to); err != nil {
		snap.capacity = models.CapacitySnapshot{LocationID: locationID, StartDate: from, EndDate: to}
	}
	if snap.slotMinutes, err = s.lookups.SlotDuration(ctx, locationID); err != nil || snap.slotMinutes <= 0 {
		snap.slotMinutes = 15
	}

	history, err := s.parcels.ListByHouseholdAndLocation(ctx, householdID, locationID)
	if err != nil {
		s.logger.Warn("parcel history degraded to empty",
			zap.String("household_id", householdID),
			zap.String("location_id", locationID),
			zap.Error(err))
		return snap
	}
	loc := s.clock.Location()
	for _, p := range history {
		day := scheduling.CivilDate(p.PickupDate, loc)
		if day.Before(from) || day.After(to) {
			continue
		}
		snap.seeded = append(snap.seeded, p)
	}
	return snap
}

// applySnapshot installs a snapshot and re-seeds the selection from the
// household's persisted parcels.
func (s *EnrollmentService) applySnapshot(draft *models.EnrollmentDraft, snap draftSnapshot) {
	loc := s.clock.Location()
	draft.LocationID = snap.locationID
	draft.Schedules = snap.schedules
	draft.Capacity = snap.capacity
	draft.SlotMinutes = snap.slotMinutes
	draft.SeededParcels = snap.seeded

	selected := make([]time.Time, 0, len(snap.seeded))
	for _, p := range snap.seeded {
		selected = append(selected, scheduling.CivilDate(p.PickupDate, loc))
	}
	draft.SelectedDates = selected
	draft.Parcels, _ = s.reducer(draft).Reconcile(selected, snap.seeded)
}

// snapshotRange spans from the start of the current month to the end of the
// month HorizonMonths ahead, in the pickup region's timezone.
func (s *EnrollmentService) snapshotRange() (time.Time, time.Time) {
	loc := s.clock.Location()
	now := s.clock.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, s.cfg.HorizonMonths+1, 0).AddDate(0, 0, -1)
	return from, to
}

// validateParcels re-checks every unsaved or edited parcel against the
// current schedule snapshot before the transaction starts. Untouched
// persisted parcels keep their historical times.
func (s *EnrollmentService) validateParcels(d *models.EnrollmentDraft) []appErrors.FieldViolation {
	loc := s.clock.Location()
	index := s.index(d)

	var violations []appErrors.FieldViolation
	for i, p := range d.Parcels {
		day := scheduling.CivilDate(p.PickupDate, loc)
		key := scheduling.DateKey(day, loc)
		earliest := scheduling.TimeOfDayFrom(p.PickupEarliest, loc)
		latest := scheduling.TimeOfDayFrom(p.PickupLatest, loc)

		if int(latest-earliest) != d.SlotMinutes {
			violations = append(violations, appErrors.FieldViolation{
				Field:   fmt.Sprintf("parcels[%d].time", i),
				Message: fmt.Sprintf("pickup window on %s must span %d minutes", key, d.SlotMinutes),
			})
			continue
		}
		if s.seededUnchanged(d, p) {
			continue
		}

		window, open := index.OpeningWindowFor(day)
		if !open {
			violations = append(violations, appErrors.FieldViolation{
				Field:   fmt.Sprintf("parcels[%d].date", i),
				Message: fmt.Sprintf("no opening hours on %s", key),
			})
			continue
		}
		if earliest < window.Open || earliest > window.LastStart(d.SlotMinutes) {
			violations = append(violations, appErrors.FieldViolation{
				Field:   fmt.Sprintf("parcels[%d].time", i),
				Message: fmt.Sprintf("time %s falls outside opening hours on %s", earliest, key),
			})
		}
	}
	return violations
}

// seededDrops lists persisted parcel rows the submission must delete: seeded
// bookings that were deselected or whose pickup window changed.
func (s *EnrollmentService) seededDrops(d *models.EnrollmentDraft) []string {
	loc := s.clock.Location()
	kept := make(map[string]models.Parcel, len(d.Parcels))
	for _, p := range d.Parcels {
		if p.Persisted() {
			kept[p.ID] = p
		}
	}

	var drops []string
	for _, seeded := range d.SeededParcels {
		p, ok := kept[seeded.ID]
		if ok && scheduling.SameCivilDate(p.PickupDate, seeded.PickupDate, loc) &&
			p.PickupEarliest.Equal(seeded.PickupEarliest) && p.PickupLatest.Equal(seeded.PickupLatest) {
			continue
		}
		drops = append(drops, seeded.ID)
	}
	return drops
}

func (s *EnrollmentService) seededUnchanged(d *models.EnrollmentDraft, p models.Parcel) bool {
	if !p.Persisted() {
		return false
	}
	loc := s.clock.Location()
	for _, seeded := range d.SeededParcels {
		if seeded.ID == p.ID {
			return scheduling.SameCivilDate(p.PickupDate, seeded.PickupDate, loc) &&
				p.PickupEarliest.Equal(seeded.PickupEarliest) && p.PickupLatest.Equal(seeded.PickupLatest)
		}
	}
	return false
}

func (s *EnrollmentService) index(draft *models.EnrollmentDraft) *scheduling.ScheduleIndex {
	return scheduling.NewScheduleIndex(draft.Schedules, s.clock.Location())
}

func (s *EnrollmentService) policy(draft *models.EnrollmentDraft) *scheduling.DateSelectionPolicy {
	ledger := scheduling.NewCapacityLedger(draft.Capacity, s.clock.Location())
	return scheduling.NewDateSelectionPolicy(s.index(draft), ledger, s.clock)
}

func (s *EnrollmentService) reducer(draft *models.EnrollmentDraft) *scheduling.ParcelStateReducer {
	return scheduling.NewParcelStateReducer(s.index(draft), s.clock, draft.SlotMinutes, draft.HouseholdID, draft.LocationID)
}

func (s *EnrollmentService) parseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", value, s.clock.Location())
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	return date, nil
}

// pruneNotices drops expired notices. Runs inside the draft lock.
func (s *EnrollmentService) pruneNotices(d *models.EnrollmentDraft) {
	if len(d.Notices) == 0 {
		return
	}
	now := s.clock.Now()
	kept := make([]models.DraftNotice, 0, len(d.Notices))
	for _, n := range d.Notices {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		d.Notices = nil
		return
	}
	d.Notices = kept
}

func (s *EnrollmentService) draftResponse(draft models.EnrollmentDraft) *dto.DraftResponse {
	loc := s.clock.Location()
	dates := make([]string, 0, len(draft.SelectedDates))
	for _, d := range draft.SelectedDates {
		dates = append(dates, scheduling.DateKey(d, loc))
	}
	sort.Strings(dates)

	now := s.clock.Now()
	var notices []dto.NoticeView
	for _, n := range draft.Notices {
		if n.ExpiresAt.After(now) {
			notices = append(notices, dto.NoticeView{Message: n.Message, ExpiresAt: n.ExpiresAt})
		}
	}

	return &dto.DraftResponse{
		ID:            draft.ID,
		HouseholdID:   draft.HouseholdID,
		LocationID:    draft.LocationID,
		SlotMinutes:   draft.SlotMinutes,
		SelectedDates: dates,
		Parcels:       s.parcelViews(draft.Parcels),
		Notices:       notices,
		UpdatedAt:     draft.UpdatedAt,
	}
}

func (s *EnrollmentService) parcelViews(parcels []models.Parcel) []dto.ParcelView {
	loc := s.clock.Location()
	views := make([]dto.ParcelView, 0, len(parcels))
	for _, p := range parcels {
		views = append(views, dto.ParcelView{
			ID:       p.ID,
			Date:     scheduling.DateKey(p.PickupDate, loc),
			Earliest: scheduling.TimeOfDayFrom(p.PickupEarliest, loc).String(),
			Latest:   scheduling.TimeOfDayFrom(p.PickupLatest, loc).String(),
		})
	}
	return views
}

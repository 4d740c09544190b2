package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"villaops/internal/jobs/catalog"
	jobserrors "villaops/internal/jobs/errors"
	"villaops/internal/jobs/repository"
	"villaops/internal/jobs/scoring"
	"villaops/internal/jobs/timing"
	"villaops/internal/jobs/validator"
	propertyrepo "villaops/internal/properties/repository"
	staffrepo "villaops/internal/staff/repository"
	"villaops/pkg/config"
	apperrors "villaops/pkg/errors"
	"villaops/pkg/metrics"
	"villaops/pkg/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// taskNamespace seeds the UUIDv5 task ids.
var taskNamespace = uuid.MustParse("8f6b1c2e-4d3a-5e7f-9a0b-1c2d3e4f5a6b")

// TaskID is stable per (booking, template), so every attempt writes the same ids.
func TaskID(bookingID, templateID string) string {
	return uuid.NewSHA1(taskNamespace, []byte(bookingID+"/"+templateID)).String()
}

type EventPublisher interface {
	PublishJobsCreated(ctx context.Context, event model.JobsCreatedEvent) error
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// invalidateStaff drops cached workloads after a write that changes them.
// Directories without a cache are left alone.
func invalidateStaff(ctx context.Context, dir staffrepo.Directory, cfg *config.Config, args ...any) {
	inv, ok := dir.(invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		cfg.Log.Warn("Failed to invalidate staff cache", append(args, "error", err)...)
	}
}

type Result struct {
	BookingID  string        `json:"booking_id"`
	TaskIDs    []string      `json:"task_ids"`
	Tasks      []*model.Task `json:"tasks"`
	Unassigned int           `json:"unassigned"`
	Fallbacks  int           `json:"fallbacks"`
}

type Materializer interface {
	Materialize(ctx context.Context, bookingID string) (*Result, error)
}

type materializer struct {
	store      repository.Store
	staff      staffrepo.Directory
	properties propertyrepo.Lookup
	catalog    *catalog.Catalog
	scorer     *scoring.Scorer
	validator  *validator.JobValidator
	publisher  EventPublisher
	cfg        *config.Config
	now        func() time.Time
}

// NewMaterializer wires the job materializer. publisher may be nil.
func NewMaterializer(
	store repository.Store,
	staff staffrepo.Directory,
	properties propertyrepo.Lookup,
	catalog *catalog.Catalog,
	scorer *scoring.Scorer,
	validator *validator.JobValidator,
	publisher EventPublisher,
	cfg *config.Config,
) Materializer {
	return &materializer{
		store:      store,
		staff:      staff,
		properties: properties,
		catalog:    catalog,
		scorer:     scorer,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Materialize expands the catalog into tasks for one booking and commits them
// together with the jobs_created flag. Precondition errors are returned
// for bookings that should not (or no longer) spawn jobs; every other error
// is retryable and leaves the flag false.
func (s *materializer) Materialize(ctx context.Context, bookingID string) (*Result, error) {
	started := time.Now()

	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		metrics.ObserveMaterialization(metrics.OutcomeFailed, started)
		return nil, translateStoreError(err, "Booking", bookingID)
	}

	if err := s.checkPreconditions(booking); err != nil {
		metrics.ObserveMaterialization(metrics.OutcomePrecondition, started)
		s.cfg.Log.Debug("Booking does not qualify for jobs",
			"booking_id", bookingID,
			"status", booking.Status,
			"jobs_created", booking.JobsCreated,
		)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.MaterializeTimeout)
	defer cancel()

	result, err := s.build(ctx, booking)
	if err != nil {
		return nil, s.fail(ctx, booking, started, err)
	}

	err = s.store.CommitJobs(ctx, booking.ID, result.Tasks, s.now().UTC())
	if errors.Is(err, jobserrors.ErrAlreadyMaterialized) {
		// Lost the race to a concurrent attempt; ids are deterministic so the
		// winner committed the same set.
		metrics.ObserveMaterialization(metrics.OutcomePrecondition, started)
		s.cfg.Log.Info("Jobs committed by a concurrent attempt", "booking_id", booking.ID)
		return nil, alreadyMaterialized(booking.ID, result.TaskIDs)
	}
	if errors.Is(err, jobserrors.ErrNotMaterializable) {
		metrics.ObserveMaterialization(metrics.OutcomePrecondition, started)
		s.cfg.Log.Info("Booking status changed during materialization, nothing committed", "booking_id", booking.ID)
		return nil, apperrors.Precondition("Booking status no longer spawns jobs").
			WithDetails(map[string]any{"booking_id": booking.ID})
	}
	if err != nil {
		return nil, s.fail(ctx, booking, started, err)
	}

	for _, t := range result.Tasks {
		metrics.IncTaskCreated(t.Category)
		if t.AssignedStaffID == "" {
			metrics.IncUnassigned()
		} else {
			metrics.ObserveConfidence(t.AssignmentConfidence)
		}
	}
	metrics.ObserveMaterialization(metrics.OutcomeCreated, started)

	invalidateStaff(ctx, s.staff, s.cfg, "booking_id", booking.ID)

	s.publish(ctx, booking, result)

	s.cfg.Log.Info("Jobs created for booking",
		"booking_id", booking.ID,
		"tasks", len(result.Tasks),
		"unassigned", result.Unassigned,
		"fallbacks", result.Fallbacks,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}

func (s *materializer) checkPreconditions(b *model.Booking) error {
	if b.JobsCreated {
		return alreadyMaterialized(b.ID, b.CreatedJobIDs)
	}
	if !b.Materializable() {
		return apperrors.Precondition(fmt.Sprintf("Booking status %q does not spawn jobs", b.Status)).
			WithDetails(map[string]any{"booking_id": b.ID, "status": b.Status})
	}
	if err := s.validator.ValidateBooking(b); err != nil {
		return apperrors.Precondition("Booking has an invalid stay").
			WithDetails(map[string]any{"booking_id": b.ID, "error": err.Error()})
	}
	return nil
}

func alreadyMaterialized(bookingID string, ids []string) *apperrors.AppError {
	return apperrors.Precondition("Jobs already created for booking").
		WithDetails(map[string]any{"booking_id": bookingID, "created_job_ids": ids})
}

// build resolves and staffs every applicable template. Any template failure
// fails the whole booking.
func (s *materializer) build(ctx context.Context, b *model.Booking) (*Result, error) {
	stayDays, err := timing.StayDurationDays(b.CheckIn, b.CheckOut)
	if err != nil {
		return nil, err
	}

	var (
		property   *model.Property
		candidates []model.StaffCandidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.properties.GetProperty(gctx, b.PropertyID)
		if err != nil {
			return apperrors.Dependency("property lookup", err)
		}
		property = p
		return nil
	})
	g.Go(func() error {
		c, err := s.staff.ListActiveStaff(gctx)
		if err != nil {
			return apperrors.Dependency("staff directory", err)
		}
		candidates = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	result := &Result{BookingID: b.ID, Tasks: []*model.Task{}, TaskIDs: []string{}}

	for _, tmpl := range s.catalog.Templates() {
		slot, ok, err := timing.Resolve(tmpl, b.CheckIn, b.CheckOut, stayDays)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", tmpl.ID, err)
		}
		if !ok {
			continue
		}

		task := newTask(b, property, tmpl, slot, now)

		best, err := s.scorer.Best(scoring.RequestFor(tmpl, property.Coordinates), candidates)
		switch {
		case errors.Is(err, scoring.ErrNoEligibleStaff):
			task.Status = model.TaskPending
			task.AssignmentFallback = true
			task.AssignmentReasons = []string{"no eligible staff"}
			result.Unassigned++
			s.cfg.Log.Warn("No eligible staff for task",
				"booking_id", b.ID,
				"template_id", tmpl.ID,
				"candidates", len(candidates),
			)
		case err != nil:
			return nil, fmt.Errorf("template %s: %w", tmpl.ID, err)
		default:
			assign(task, best)
			if task.AssignmentFallback {
				result.Fallbacks++
			}
			bumpWorkload(candidates, best.StaffID)
		}

		result.Tasks = append(result.Tasks, task)
		result.TaskIDs = append(result.TaskIDs, task.ID)
	}

	return result, nil
}

func newTask(b *model.Booking, p *model.Property, tmpl model.TaskTemplate, slot timing.Slot, now time.Time) *model.Task {
	return &model.Task{
		ID:                       TaskID(b.ID, tmpl.ID),
		BookingID:                b.ID,
		PropertyID:               b.PropertyID,
		TemplateID:               tmpl.ID,
		Title:                    tmpl.Title,
		Category:                 tmpl.Category,
		Priority:                 tmpl.Priority,
		ScheduledAt:              slot.ScheduledAt,
		Deadline:                 slot.Deadline,
		EstimatedDurationMinutes: tmpl.EstimatedDurationMinutes,
		RequiredSkills:           tmpl.RequiredSkills,
		RequiredSupplies:         tmpl.RequiredSupplies,
		Instructions:             tmpl.Instructions,
		PropertyName:             p.Name,
		PropertyAddress:          p.Address,
		AccessInstructions:       p.AccessInstructions,
		GuestName:                b.GuestName,
		CheckIn:                  b.CheckIn.UTC(),
		CheckOut:                 b.CheckOut.UTC(),
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// assign applies a scorer decision. A pick without every required skill is
// kept but flagged as a fallback.
func assign(task *model.Task, best model.AssignmentScore) {
	task.Status = model.TaskAssigned
	task.AssignedStaffID = best.StaffID
	task.AssignedStaffName = best.StaffName
	task.AssignmentConfidence = best.Confidence
	task.AssignmentFallback = !best.SkillMatch
	task.AssignmentReasons = best.Reasons
}

// bumpWorkload counts a pick against the candidate for the rest of the batch.
func bumpWorkload(candidates []model.StaffCandidate, staffID string) {
	for i := range candidates {
		if candidates[i].ID == staffID {
			candidates[i].WorkloadToday++
			return
		}
	}
}

func (s *materializer) fail(ctx context.Context, b *model.Booking, started time.Time, cause error) error {
	metrics.ObserveMaterialization(metrics.OutcomeFailed, started)

	appErr := classify(cause)

	// The attempt context may already be expired.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()
	if err := s.store.RecordJobError(recordCtx, b.ID, cause.Error()); err != nil {
		s.cfg.Log.Error("Failed to record job creation error", "booking_id", b.ID, "error", err)
	}

	s.cfg.Log.Error("Failed to create jobs for booking",
		"booking_id", b.ID,
		"error", cause,
		"retryable", appErr.Retryable,
	)
	return appErr
}

// classify maps an attempt failure onto the retryable taxonomy.
func classify(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		t := apperrors.Timeout("Job materialization timed out")
		t.Err = err
		return t
	}
	if errors.Is(err, timing.ErrInvalidStay) {
		return apperrors.Precondition("Booking has an invalid stay")
	}
	e := apperrors.Wrap(err, apperrors.CodeDependency, "Job materialization failed", http.StatusServiceUnavailable)
	e.Retryable = true
	return e
}

func (s *materializer) publish(ctx context.Context, b *model.Booking, r *Result) {
	if s.publisher == nil {
		return
	}
	event := model.JobsCreatedEvent{
		EventID:    uuid.NewString(),
		Type:       model.EventJobsCreated,
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		TaskIDs:    r.TaskIDs,
		Unassigned: r.Unassigned,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishJobsCreated(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish jobs created event", "booking_id", b.ID, "error", err)
	}
}

func translateStoreError(err error, resource, id string) error {
	switch {
	case errors.Is(err, jobserrors.ErrBookingNotFound), errors.Is(err, jobserrors.ErrTaskNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, jobserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", resource))
	case errors.Is(err, context.DeadlineExceeded):
		t := apperrors.Timeout(fmt.Sprintf("%s lookup timed out", resource))
		t.Err = err
		return t
	default:
		return apperrors.Dependency("job store", err)
	}
}

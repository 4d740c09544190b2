package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"villaops/internal/jobs/catalog"
	jobserrors "villaops/internal/jobs/errors"
	"villaops/internal/jobs/repository"
	"villaops/internal/jobs/scoring"
	"villaops/internal/jobs/validator"
	propertyrepo "villaops/internal/properties/repository"
	staffrepo "villaops/internal/staff/repository"
	"villaops/pkg/config"
	apperrors "villaops/pkg/errors"
	"villaops/pkg/model"
)

// transitions lists the allowed forward moves; cancellation is handled apart.
var transitions = map[string][]string{
	model.TaskPending:    {model.TaskAssigned},
	model.TaskAssigned:   {model.TaskInProgress},
	model.TaskInProgress: {model.TaskCompleted},
}

type TaskService interface {
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Task, error)
	Reassign(ctx context.Context, taskID string) (*model.Task, error)
	UpdateStatus(ctx context.Context, taskID string, update *model.TaskStatusUpdate) (*model.Task, error)
	DeleteBookingJobs(ctx context.Context, bookingID string) (int64, error)
	Templates() []model.TaskTemplate
}

type taskService struct {
	store      repository.Store
	staff      staffrepo.Directory
	properties propertyrepo.Lookup
	catalog    *catalog.Catalog
	scorer     *scoring.Scorer
	validator  *validator.JobValidator
	cfg        *config.Config
	now        func() time.Time
}

func NewTaskService(
	store repository.Store,
	staff staffrepo.Directory,
	properties propertyrepo.Lookup,
	catalog *catalog.Catalog,
	scorer *scoring.Scorer,
	validator *validator.JobValidator,
	cfg *config.Config,
) TaskService {
	return &taskService{
		store:      store,
		staff:      staff,
		properties: properties,
		catalog:    catalog,
		scorer:     scorer,
		validator:  validator,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *taskService) Templates() []model.TaskTemplate {
	return s.catalog.Templates()
}

func (s *taskService) ListByBooking(ctx context.Context, bookingID string) ([]*model.Task, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	tasks, err := s.store.FindTasksByBooking(ctx, bookingID)
	if err != nil {
		s.cfg.Log.Error("Failed to list booking tasks", "booking_id", bookingID, "error", err)
		return nil, translateStoreError(err, "Booking", bookingID)
	}
	return tasks, nil
}

// Reassign moves a task to the best eligible staff member other than its
// current assignee.
func (s *taskService) Reassign(ctx context.Context, taskID string) (*model.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Terminal() {
		return nil, apperrors.Precondition(fmt.Sprintf("Task is %s and cannot be reassigned", task.Status)).
			WithDetails(map[string]any{"task_id": task.ID, "status": task.Status})
	}

	property, err := s.properties.GetProperty(ctx, task.PropertyID)
	if err != nil {
		return nil, apperrors.Dependency("property lookup", err)
	}
	candidates, err := s.staff.ListActiveStaff(ctx)
	if err != nil {
		return nil, apperrors.Dependency("staff directory", err)
	}
	candidates = slices.DeleteFunc(candidates, func(c model.StaffCandidate) bool {
		return c.ID == task.AssignedStaffID
	})

	best, err := s.scorer.Best(s.request(task, property), candidates)
	if errors.Is(err, scoring.ErrNoEligibleStaff) {
		return nil, apperrors.NoEligibleStaff("No other eligible staff for task").
			WithDetails(map[string]any{"task_id": task.ID})
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to rank staff", err)
	}

	previous := task.AssignedStaffID
	fromStatus := task.Status
	assign(task, best)
	if fromStatus == model.TaskInProgress {
		task.Status = model.TaskInProgress
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTask(ctx, task, fromStatus); err != nil {
		return nil, s.translateUpdateError(err, task.ID)
	}
	invalidateStaff(ctx, s.staff, s.cfg, "task_id", task.ID)

	s.cfg.Log.Info("Task reassigned",
		"task_id", task.ID,
		"booking_id", task.BookingID,
		"from_staff_id", previous,
		"to_staff_id", task.AssignedStaffID,
		"confidence", task.AssignmentConfidence,
	)
	return task, nil
}

func (s *taskService) request(task *model.Task, property *model.Property) scoring.Request {
	if tmpl, ok := s.catalog.Get(task.TemplateID); ok {
		return scoring.RequestFor(tmpl, property.Coordinates)
	}
	return scoring.Request{
		RequiredSkills: task.RequiredSkills,
		Location:       property.Coordinates,
	}
}

func (s *taskService) UpdateStatus(ctx context.Context, taskID string, update *model.TaskStatusUpdate) (*model.Task, error) {
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Task status update validation failed", "task_id", taskID, "error", err)
		return nil, apperrors.Validation("Invalid status update", map[string]any{"error": err.Error()})
	}

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	fromStatus := task.Status
	if err := checkTransition(task, update.Status); err != nil {
		return nil, apperrors.Precondition(err.Error()).
			WithDetails(map[string]any{"task_id": task.ID, "from": fromStatus, "to": update.Status})
	}

	now := s.now().UTC()
	task.Status = update.Status
	task.UpdatedAt = now
	switch update.Status {
	case model.TaskInProgress:
		task.StartedAt = &now
	case model.TaskCompleted:
		task.CompletedAt = &now
		task.ActualDurationMinutes = update.ActualDurationMinutes
	}
	if update.LaborCost != nil {
		task.LaborCost = *update.LaborCost
	}
	if update.SuppliesCost != nil {
		task.SuppliesCost = *update.SuppliesCost
	}

	if err := s.store.UpdateTask(ctx, task, fromStatus); err != nil {
		return nil, s.translateUpdateError(err, task.ID)
	}
	invalidateStaff(ctx, s.staff, s.cfg, "task_id", task.ID)

	s.cfg.Log.Info("Task status updated",
		"task_id", task.ID,
		"booking_id", task.BookingID,
		"from", fromStatus,
		"to", task.Status,
	)
	return task, nil
}

func checkTransition(task *model.Task, to string) error {
	if task.Terminal() {
		return fmt.Errorf("%w: task is already %s", jobserrors.ErrInvalidTransition, task.Status)
	}
	if to == model.TaskCancelled {
		return nil
	}
	if !slices.Contains(transitions[task.Status], to) {
		return fmt.Errorf("%w: %s to %s", jobserrors.ErrInvalidTransition, task.Status, to)
	}
	if to == model.TaskAssigned && task.AssignedStaffID == "" {
		return fmt.Errorf("%w: task has no assignee, reassign it first", jobserrors.ErrInvalidTransition)
	}
	return nil
}

// DeleteBookingJobs removes every task of a booking and resets its flag, so
// the next trigger materializes it again.
func (s *taskService) DeleteBookingJobs(ctx context.Context, bookingID string) (int64, error) {
	if bookingID == "" {
		return 0, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	deleted, err := s.store.DeleteBookingJobs(ctx, bookingID)
	if err != nil {
		s.cfg.Log.Error("Failed to delete booking jobs", "booking_id", bookingID, "error", err)
		return 0, translateStoreError(err, "Booking", bookingID)
	}
	invalidateStaff(ctx, s.staff, s.cfg, "booking_id", bookingID)

	s.cfg.Log.Warn("Booking jobs deleted", "booking_id", bookingID, "deleted", deleted)
	return deleted, nil
}

func (s *taskService) getTask(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Task ID cannot be empty")
	}
	task, err := s.store.FindTask(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "Task", id)
	}
	return task, nil
}

func (s *taskService) translateUpdateError(err error, id string) error {
	if errors.Is(err, jobserrors.ErrStatusConflict) {
		return apperrors.Conflict("Task was modified concurrently, reload and retry").
			WithDetails(map[string]any{"task_id": id})
	}
	s.cfg.Log.Error("Failed to update task", "task_id", id, "error", err)
	return translateStoreError(err, "Task", id)
}

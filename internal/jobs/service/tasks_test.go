package service

import (
	"context"
	"testing"

	"villaops/internal/jobs/catalog"
	staffrepo "villaops/internal/staff/repository"
	apperrors "villaops/pkg/errors"
	"villaops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materialized(t *testing.T, candidates ...model.StaffCandidate) (*fixture, *Result) {
	t.Helper()
	f := newFixture(t, candidates...)
	res, err := f.materializer().Materialize(context.Background(), "booking-1")
	require.NoError(t, err)
	return f, res
}

func TestListByBooking(t *testing.T) {
	f, res := materialized(t, staff("s-1", 0, allSkills...))

	tasks, err := f.tasks().ListByBooking(context.Background(), "booking-1")
	require.NoError(t, err)
	assert.Len(t, tasks, len(res.Tasks))

	for i := 1; i < len(tasks); i++ {
		assert.False(t, tasks[i].ScheduledAt.Before(tasks[i-1].ScheduledAt))
	}

	_, err = f.tasks().ListByBooking(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestReassign(t *testing.T) {
	ctx := context.Background()
	f, _ := materialized(t, staff("s-1", 0, allSkills...), staff("s-2", 5, allSkills...))
	svc := f.tasks()

	id := TaskID("booking-1", catalog.PreArrivalCleaning)
	before, err := f.store.FindTask(ctx, id)
	require.NoError(t, err)

	after, err := svc.Reassign(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, before.AssignedStaffID, after.AssignedStaffID)
	assert.Equal(t, model.TaskAssigned, after.Status)

	stored, err := f.store.FindTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, after.AssignedStaffID, stored.AssignedStaffID)

	// Still one task per template.
	tasks, _ := f.store.FindTasksByBooking(ctx, "booking-1")
	assert.Len(t, tasks, 7)
}

func TestReassign_PendingTaskGetsAssigned(t *testing.T) {
	ctx := context.Background()
	f, _ := materialized(t)
	f.staff = staffrepo.StaticDirectory{staff("s-9", 0, allSkills...)}

	id := TaskID("booking-1", catalog.PostCheckoutCleaning)
	task, err := f.tasks().Reassign(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskAssigned, task.Status)
	assert.Equal(t, "s-9", task.AssignedStaffID)
	assert.False(t, task.AssignmentFallback)
}

func TestReassign_NoOtherStaff(t *testing.T) {
	f, _ := materialized(t, staff("s-1", 0, allSkills...))

	_, err := f.tasks().Reassign(context.Background(), TaskID("booking-1", catalog.PreArrivalCleaning))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoEligibleStaff))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestReassign_TerminalTask(t *testing.T) {
	ctx := context.Background()
	f, _ := materialized(t, staff("s-1", 0, allSkills...), staff("s-2", 0, allSkills...))
	svc := f.tasks()
	id := TaskID("booking-1", catalog.PreArrivalCleaning)

	_, err := svc.UpdateStatus(ctx, id, &model.TaskStatusUpdate{Status: model.TaskCancelled})
	require.NoError(t, err)

	_, err = svc.Reassign(ctx, id)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePrecondition))

	_, err = svc.Reassign(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f, _ := materialized(t, staff("s-1", 0, allSkills...))
	svc := f.tasks()
	id := TaskID("booking-1", catalog.PostCheckoutCleaning)

	task, err := svc.UpdateStatus(ctx, id, &model.TaskStatusUpdate{Status: model.TaskInProgress})
	require.NoError(t, err)
	require.NotNil(t, task.StartedAt)

	labor, supplies := 45.0, 12.5
	task, err = svc.UpdateStatus(ctx, id, &model.TaskStatusUpdate{
		Status:                model.TaskCompleted,
		ActualDurationMinutes: 200,
		LaborCost:             &labor,
		SuppliesCost:          &supplies,
	})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.InDelta(t, 200, task.ActualDurationMinutes, 1e-9)
	assert.InDelta(t, 57.5, task.TotalCost(), 1e-9)

	_, err = svc.UpdateStatus(ctx, id, &model.TaskStatusUpdate{Status: model.TaskCancelled})
	assert.True(t, apperrors.HasCode(err, apperrors.CodePrecondition))
}

func TestUpdateStatus_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	f, _ := materialized(t, staff("s-1", 0, allSkills...))
	svc := f.tasks()
	id := TaskID("booking-1", catalog.PreArrivalCleaning)

	tests := []struct {
		name     string
		update   model.TaskStatusUpdate
		wantCode string
	}{
		{name: "skip in progress", update: model.TaskStatusUpdate{Status: model.TaskCompleted, ActualDurationMinutes: 10}, wantCode: apperrors.CodePrecondition},
		{name: "complete without duration", update: model.TaskStatusUpdate{Status: model.TaskCompleted}, wantCode: apperrors.CodeValidation},
		{name: "unknown status", update: model.TaskStatusUpdate{Status: "paused"}, wantCode: apperrors.CodeValidation},
		{name: "back to assigned", update: model.TaskStatusUpdate{Status: model.TaskAssigned}, wantCode: apperrors.CodePrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(ctx, id, &tt.update)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestUpdateStatus_PendingWithoutAssignee(t *testing.T) {
	f, _ := materialized(t)

	_, err := f.tasks().UpdateStatus(context.Background(), TaskID("booking-1", catalog.PreArrivalCleaning),
		&model.TaskStatusUpdate{Status: model.TaskAssigned})
	assert.True(t, apperrors.HasCode(err, apperrors.CodePrecondition))
}

func TestDeleteBookingJobs_AllowsRematerialization(t *testing.T) {
	ctx := context.Background()
	f, first := materialized(t, staff("s-1", 0, allSkills...))

	deleted, err := f.tasks().DeleteBookingJobs(ctx, "booking-1")
	require.NoError(t, err)
	assert.EqualValues(t, 7, deleted)
	assert.Zero(t, f.store.TaskCount())

	b, _ := f.store.GetBooking(ctx, "booking-1")
	assert.False(t, b.JobsCreated)

	again, err := f.materializer().Materialize(ctx, "booking-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, first.TaskIDs, again.TaskIDs)

	_, err = f.tasks().DeleteBookingJobs(ctx, "unknown")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestTaskWrites_InvalidateStaffCache(t *testing.T) {
	ctx := context.Background()
	dir := &mockDirectory{listFunc: func(ctx context.Context) ([]model.StaffCandidate, error) {
		return []model.StaffCandidate{staff("s-1", 0, allSkills...), staff("s-2", 3, allSkills...)}, nil
	}}
	f := newFixture(t)
	f.staff = dir
	_, err := f.materializer().Materialize(ctx, "booking-1")
	require.NoError(t, err)
	require.Equal(t, 1, dir.invalidateCalls)

	svc := f.tasks()
	id := TaskID("booking-1", catalog.PreArrivalCleaning)

	_, err = svc.Reassign(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, dir.invalidateCalls)

	_, err = svc.UpdateStatus(ctx, id, &model.TaskStatusUpdate{Status: model.TaskInProgress})
	require.NoError(t, err)
	assert.Equal(t, 3, dir.invalidateCalls)

	// Rejected transitions leave the cache alone.
	_, err = svc.UpdateStatus(ctx, id, &model.TaskStatusUpdate{Status: model.TaskPending})
	require.Error(t, err)
	assert.Equal(t, 3, dir.invalidateCalls)

	_, err = svc.DeleteBookingJobs(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, 4, dir.invalidateCalls)
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)
	assert.Len(t, f.tasks().Templates(), 8)
}

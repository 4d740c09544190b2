package repository

import (
	"context"
	"time"

	"villaops/pkg/model"
)

const (
	BookingsCollection = "Bookings"
	TasksCollection    = "Tasks"
)

// Store persists tasks together with the booking's jobs_created flag.
// CommitJobs and DeleteBookingJobs are all-or-nothing.
type Store interface {
	GetBooking(ctx context.Context, id string) (*model.Booking, error)

	// CommitJobs upserts tasks by id and flips jobs_created for bookingID, as
	// long as the flag is still false and the status is still materializable.
	// Otherwise it returns ErrAlreadyMaterialized or ErrNotMaterializable and
	// writes nothing.
	CommitJobs(ctx context.Context, bookingID string, tasks []*model.Task, at time.Time) error

	// RecordJobError notes a failed attempt on a booking whose flag is still false.
	RecordJobError(ctx context.Context, bookingID, message string) error

	FindTasksByBooking(ctx context.Context, bookingID string) ([]*model.Task, error)
	FindTask(ctx context.Context, id string) (*model.Task, error)

	// UpdateTask replaces task if its stored status is still fromStatus.
	UpdateTask(ctx context.Context, task *model.Task, fromStatus string) error

	// DeleteBookingJobs removes a booking's tasks and resets its flag.
	DeleteBookingJobs(ctx context.Context, bookingID string) (int64, error)

	FindCompletedTasks(ctx context.Context, from, to time.Time) ([]*model.Task, error)
}

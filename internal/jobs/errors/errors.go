package errors

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")

	ErrTaskNotFound = errors.New("task not found")

	ErrInvalidID = errors.New("invalid ID format")

	// ErrAlreadyMaterialized is returned when the jobs_created guard no longer
	// holds at commit time. Nothing from the attempt is kept.
	ErrAlreadyMaterialized = errors.New("booking jobs already created")

	// ErrNotMaterializable is returned when the booking left the approved and
	// confirmed statuses between the precondition check and the commit.
	ErrNotMaterializable = errors.New("booking status no longer spawns jobs")

	ErrStatusConflict = errors.New("task status changed concurrently")

	ErrInvalidTransition = errors.New("invalid task status transition")
)

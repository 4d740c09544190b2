package model

import (
	"slices"
	"time"
)

const (
	BookingPendingApproval = "pending_approval"
	BookingApproved        = "approved"
	BookingConfirmed       = "confirmed"
	BookingCheckedIn       = "checked_in"
	BookingCheckedOut      = "checked_out"
	BookingCompleted       = "completed"
	BookingCancelled       = "cancelled"
)

// MaterializableStatuses are the booking statuses that spawn operational jobs.
var MaterializableStatuses = []string{BookingApproved, BookingConfirmed}

type Booking struct {
	ID               string     `json:"id" bson:"_id" validate:"required"`
	Status           string     `json:"status" bson:"status" validate:"required,oneof=pending_approval approved confirmed checked_in checked_out completed cancelled"`
	PropertyID       string     `json:"property_id" bson:"property_id" validate:"required"`
	GuestName        string     `json:"guest_name" bson:"guest_name" validate:"omitempty,max=200"`
	CheckIn          time.Time  `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut         time.Time  `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	JobsCreated      bool       `json:"jobs_created" bson:"jobs_created"`
	CreatedJobIDs    []string   `json:"created_job_ids,omitempty" bson:"created_job_ids,omitempty"`
	JobCreationError string     `json:"job_creation_error,omitempty" bson:"job_creation_error,omitempty"`
	JobsCreatedAt    *time.Time `json:"jobs_created_at,omitempty" bson:"jobs_created_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Materializable reports whether the booking is in a state that should spawn jobs.
func (b *Booking) Materializable() bool {
	return slices.Contains(MaterializableStatuses, b.Status) && !b.JobsCreated
}

// BookingChange is one notification from the booking change feed. Delivery is
// at-least-once and may be out of order.
type BookingChange struct {
	ID          string    `json:"id" bson:"_id"`
	Status      string    `json:"status" bson:"status"`
	PropertyID  string    `json:"property_id" bson:"property_id"`
	CheckIn     time.Time `json:"check_in" bson:"check_in"`
	CheckOut    time.Time `json:"check_out" bson:"check_out"`
	JobsCreated bool      `json:"jobs_created" bson:"jobs_created"`
}

func (c BookingChange) Qualifies() bool {
	return c.ID != "" && slices.Contains(MaterializableStatuses, c.Status) && !c.JobsCreated
}

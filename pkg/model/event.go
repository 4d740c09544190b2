package model

import "time"

const EventJobsCreated = "booking.jobs_created"

// JobsCreatedEvent is published once per booking after its tasks commit.
type JobsCreatedEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	TaskIDs    []string  `json:"task_ids"`
	Unassigned int       `json:"unassigned"`
	OccurredAt time.Time `json:"occurred_at"`
}

package model

import "time"

const (
	TaskPending    = "pending"
	TaskAssigned   = "assigned"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// Task is one materialized job. Booking and property data are copied in so the
// mobile feed and dashboards can render it without a join.
type Task struct {
	ID         string `json:"id" bson:"_id"`
	BookingID  string `json:"booking_id" bson:"booking_id"`
	PropertyID string `json:"property_id" bson:"property_id"`
	TemplateID string `json:"template_id" bson:"template_id"`

	Title                    string    `json:"title" bson:"title"`
	Category                 string    `json:"category" bson:"category"`
	Priority                 string    `json:"priority" bson:"priority"`
	ScheduledAt              time.Time `json:"scheduled_at" bson:"scheduled_at"`
	Deadline                 time.Time `json:"deadline" bson:"deadline"`
	EstimatedDurationMinutes int       `json:"estimated_duration_minutes" bson:"estimated_duration_minutes"`
	RequiredSkills           []string  `json:"required_skills,omitempty" bson:"required_skills,omitempty"`
	RequiredSupplies         []string  `json:"required_supplies,omitempty" bson:"required_supplies,omitempty"`
	Instructions             string    `json:"instructions,omitempty" bson:"instructions,omitempty"`

	AssignedStaffID      string   `json:"assigned_staff_id,omitempty" bson:"assigned_staff_id,omitempty"`
	AssignedStaffName    string   `json:"assigned_staff_name,omitempty" bson:"assigned_staff_name,omitempty"`
	AssignmentConfidence float64  `json:"assignment_confidence" bson:"assignment_confidence"`
	AssignmentFallback   bool     `json:"assignment_fallback" bson:"assignment_fallback"`
	AssignmentReasons    []string `json:"assignment_reasons,omitempty" bson:"assignment_reasons,omitempty"`

	Status                string  `json:"status" bson:"status"`
	ActualDurationMinutes float64 `json:"actual_duration_minutes,omitempty" bson:"actual_duration_minutes,omitempty"`
	LaborCost             float64 `json:"labor_cost,omitempty" bson:"labor_cost,omitempty"`
	SuppliesCost          float64 `json:"supplies_cost,omitempty" bson:"supplies_cost,omitempty"`

	PropertyName       string    `json:"property_name,omitempty" bson:"property_name,omitempty"`
	PropertyAddress    string    `json:"property_address,omitempty" bson:"property_address,omitempty"`
	AccessInstructions string    `json:"access_instructions,omitempty" bson:"access_instructions,omitempty"`
	GuestName          string    `json:"guest_name,omitempty" bson:"guest_name,omitempty"`
	CheckIn            time.Time `json:"check_in" bson:"check_in"`
	CheckOut           time.Time `json:"check_out" bson:"check_out"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

func (t *Task) TotalCost() float64 {
	return t.LaborCost + t.SuppliesCost
}

func (t *Task) Terminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskCancelled
}

type TaskStatusUpdate struct {
	Status                string   `json:"status" validate:"required,oneof=assigned in_progress completed cancelled"`
	ActualDurationMinutes float64  `json:"actual_duration_minutes,omitempty" validate:"required_if=Status completed,gte=0"`
	LaborCost             *float64 `json:"labor_cost,omitempty" validate:"omitempty,gte=0"`
	SuppliesCost          *float64 `json:"supplies_cost,omitempty" validate:"omitempty,gte=0"`
}

package model

const (
	CategoryCleaning    = "cleaning"
	CategoryInspection  = "inspection"
	CategoryCheckinPrep = "checkin_prep"
	CategoryMaintenance = "maintenance"
	CategoryCheckout    = "checkout"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	TimingBeforeCheckIn  = "before_check_in"
	TimingBeforeCheckOut = "before_check_out"
	TimingAfterCheckOut  = "after_check_out"
	TimingAtStayMidpoint = "at_stay_midpoint"
)

// TimingRule anchors a template to the stay. Hours is ignored for the midpoint
// rule; MinStayDays only guards the midpoint rule.
type TimingRule struct {
	Kind        string  `json:"kind" yaml:"kind" validate:"required,oneof=before_check_in before_check_out after_check_out at_stay_midpoint"`
	Hours       float64 `json:"hours,omitempty" yaml:"hours" validate:"gte=0"`
	MinStayDays int     `json:"min_stay_days,omitempty" yaml:"min_stay_days" validate:"gte=0"`
}

type TaskTemplate struct {
	ID                       string     `json:"id" yaml:"id" validate:"required,min=2,max=64"`
	Title                    string     `json:"title" yaml:"title" validate:"required,max=200"`
	Category                 string     `json:"category" yaml:"category" validate:"required,oneof=cleaning inspection checkin_prep maintenance checkout"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes" yaml:"estimated_duration_minutes" validate:"required,min=1,max=1440"`
	Priority                 string     `json:"priority" yaml:"priority" validate:"required,oneof=low medium high urgent"`
	RequiredSkills           []string   `json:"required_skills" yaml:"required_skills"`
	RequiredSupplies         []string   `json:"required_supplies" yaml:"required_supplies"`
	Timing                   TimingRule `json:"timing" yaml:"timing"`
	Instructions             string     `json:"instructions" yaml:"instructions"`
	// Specialized templates cannot be done without the listed skills (AC repair, pool chemistry).
	Specialized bool `json:"specialized" yaml:"specialized"`
}

// TimeCritical marks templates whose assignee should be close by.
func (t TaskTemplate) TimeCritical() bool {
	return t.Specialized && (t.Priority == PriorityHigh || t.Priority == PriorityUrgent)
}

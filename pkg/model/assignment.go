package model

// AssignmentScore is the scorer's verdict for one candidate. Only the chosen
// confidence and reasons survive on the task.
type AssignmentScore struct {
	StaffID           string   `json:"staff_id"`
	StaffName         string   `json:"staff_name"`
	ProximityScore    float64  `json:"proximity_score"`
	WorkloadScore     float64  `json:"workload_score"`
	SkillScore        float64  `json:"skill_score"`
	ExperienceScore   float64  `json:"experience_score"`
	AvailabilityScore float64  `json:"availability_score"`
	Score             float64  `json:"score"`
	Confidence        float64  `json:"confidence"`
	DistanceKm        float64  `json:"distance_km"`
	Workload          int      `json:"workload"`
	SkillMatch        bool     `json:"skill_match"`
	InRadius          bool     `json:"in_radius"`
	Assignable        bool     `json:"assignable"`
	Reasons           []string `json:"reasons"`
}

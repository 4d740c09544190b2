package model

// GeoPoint is a WGS84 coordinate. The zero value means "unknown".
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

func (p GeoPoint) Known() bool {
	return p.Lat != 0 || p.Lng != 0
}

// StaffCandidate is the read model the scheduler gets from the staff directory.
type StaffCandidate struct {
	ID             string   `json:"id" bson:"_id"`
	Name           string   `json:"name" bson:"name"`
	Location       GeoPoint `json:"location" bson:"location"`
	Skills         []string `json:"skills" bson:"skills"`
	Available      bool     `json:"available" bson:"available"`
	WorkloadToday  int      `json:"workload_today" bson:"workload_today"`
	Utilization    float64  `json:"utilization" bson:"utilization"`
	Rating         float64  `json:"rating" bson:"rating"`
	CompletedTasks int      `json:"completed_tasks" bson:"completed_tasks"`
}

type Property struct {
	ID                 string   `json:"id" bson:"_id"`
	Name               string   `json:"name" bson:"name"`
	Address            string   `json:"address" bson:"address"`
	Coordinates        GeoPoint `json:"coordinates" bson:"coordinates"`
	AccessInstructions string   `json:"access_instructions" bson:"access_instructions"`
}

// StaffMember is the stored staff directory document. Workload is not stored;
// it is counted from today's tasks.
type StaffMember struct {
	ID             string   `json:"id" bson:"_id"`
	Name           string   `json:"name" bson:"name"`
	Active         bool     `json:"active" bson:"active"`
	Available      bool     `json:"available" bson:"available"`
	Location       GeoPoint `json:"location" bson:"location"`
	Skills         []string `json:"skills" bson:"skills"`
	Rating         float64  `json:"rating" bson:"rating"`
	CompletedTasks int      `json:"completed_tasks" bson:"completed_tasks"`
	DailyCapacity  int      `json:"daily_capacity" bson:"daily_capacity"`
}

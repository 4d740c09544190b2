package repository

import (
	"context"
	"fmt"
	"time"

	"villaops/pkg/config"
	"villaops/pkg/model"
	"villaops/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName      = "Staff"
	tasksCollectionName = "Tasks"
)

// Directory lists the staff the scheduler may assign. Unavailable staff are
// included so rankings can show them.
type Directory interface {
	ListActiveStaff(ctx context.Context) ([]model.StaffCandidate, error)
}

type mongoDirectory struct {
	cfg   *config.Config
	staff *mongo.Collection
	tasks *mongo.Collection
	now   func() time.Time
}

func NewMongoDirectory(cfg *config.Config) Directory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDirectory{
		cfg:   cfg,
		staff: db.Collection(CollectionName),
		tasks: db.Collection(tasksCollectionName),
		now:   time.Now,
	}
}

func (r *mongoDirectory) ListActiveStaff(ctx context.Context) ([]model.StaffCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.staff.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find staff: %w", err)
	}
	defer cursor.Close(ctx)

	var members []model.StaffMember
	if err = cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode staff: %w", err)
	}
	if len(members) == 0 {
		return []model.StaffCandidate{}, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	workload, err := r.workloadToday(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.StaffCandidate, len(members))
	for i, m := range members {
		candidates[i] = toCandidate(m, workload[m.ID])
	}
	return candidates, nil
}

// workloadToday counts open tasks scheduled in the current UTC day per staff id.
func (r *mongoDirectory) workloadToday(ctx context.Context, ids []string) (map[string]int, error) {
	start := r.now().UTC().Truncate(24 * time.Hour)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"assigned_staff_id": bson.M{"$in": ids},
			"status":            bson.M{"$in": bson.A{model.TaskPending, model.TaskAssigned, model.TaskInProgress}},
			"scheduled_at":      bson.M{"$gte": start, "$lt": start.Add(24 * time.Hour)},
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$assigned_staff_id", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workload: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		StaffID string `bson:"_id"`
		Count   int    `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode workload: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.StaffID] = row.Count
	}
	return out, nil
}

func toCandidate(m model.StaffMember, workload int) model.StaffCandidate {
	var utilization float64
	if m.DailyCapacity > 0 {
		utilization = float64(workload) / float64(m.DailyCapacity)
	}
	return model.StaffCandidate{
		ID:             m.ID,
		Name:           m.Name,
		Location:       m.Location,
		Skills:         sanitizer.SanitizeSkills(m.Skills),
		Available:      m.Available,
		WorkloadToday:  workload,
		Utilization:    utilization,
		Rating:         m.Rating,
		CompletedTasks: m.CompletedTasks,
	}
}

// StaticDirectory serves a fixed candidate list.
type StaticDirectory []model.StaffCandidate

func (d StaticDirectory) ListActiveStaff(ctx context.Context) ([]model.StaffCandidate, error) {
	out := make([]model.StaffCandidate, len(d))
	copy(out, d)
	return out, nil
}

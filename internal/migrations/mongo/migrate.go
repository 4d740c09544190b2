package mongo

import (
	"context"
	"fmt"

	"villaops/internal/jobs/repository"
	"villaops/internal/migrations/mongo/validators"
	propertyrepo "villaops/internal/properties/repository"
	staffrepo "villaops/internal/staff/repository"
	"villaops/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// TaskIdentityIndex makes (booking, template) the natural key of a task,
	// so a retried materialization cannot insert a second copy.
	TaskIdentityIndex = "booking_template_unique"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "jobs_created", Value: 1},
		}},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "check_in", Value: 1}}},
	}

	TasksIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "booking_id", Value: 1},
				{Key: "template_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName(TaskIdentityIndex),
		},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "completed_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "assigned_staff_id", Value: 1},
			{Key: "scheduled_at", Value: 1},
		}},
	}

	StaffIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "_id", Value: 1}}},
	}

	PropertiesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
)

type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists everything the scheduler needs, in creation order.
func Collections() []Collection {
	return []Collection{
		{Name: repository.BookingsCollection, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: repository.TasksCollection, Indexes: TasksIndexes, Validator: validators.TaskValidator},
		{Name: staffrepo.CollectionName, Indexes: StaffIndexes, Validator: validators.StaffValidator},
		{Name: propertyrepo.CollectionName, Indexes: PropertiesIndexes, Validator: validators.PropertyValidator},
	}
}

// RunMigration creates missing collections, refreshes validators and ensures
// indexes. Safe to rerun.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}

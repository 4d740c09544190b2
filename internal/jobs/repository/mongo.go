package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	jobserrors "villaops/internal/jobs/errors"
	"villaops/pkg/config"
	mongotx "villaops/pkg/db/mongo"
	"villaops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	cfg       *config.Config
	bookings  *mongo.Collection
	tasks     *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoStore(cfg *config.Config) Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStore{
		cfg:       cfg,
		bookings:  db.Collection(BookingsCollection),
		tasks:     db.Collection(TasksCollection),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo, cfg.WriteTimeout),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext cannot be wrapped without losing the session, so it is
// returned unchanged with a no-op cancel.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// bookingFilter matches bookings stored under either an ObjectID or a plain
// string key, since the booking system owns the ids.
func bookingFilter(id string) (bson.M, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty booking id", jobserrors.ErrInvalidID)
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}, nil
	}
	return bson.M{"_id": id}, nil
}

func (r *mongoStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter, err := bookingFilter(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.bookings.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, jobserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoStore) CommitJobs(ctx context.Context, bookingID string, tasks []*model.Task, at time.Time) error {
	filter, err := bookingFilter(bookingID)
	if err != nil {
		return err
	}

	ids := make([]string, len(tasks))
	writes := make([]mongo.WriteModel, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		writes[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": t.ID}).
			SetReplacement(t).
			SetUpsert(true)
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Claiming the flag first makes concurrent commits conflict on the
		// booking document; the loser retries and fails the guard.
		guarded := bson.M{"$and": bson.A{filter, bson.M{
			"jobs_created": bson.M{"$ne": true},
			"status":       bson.M{"$in": model.MaterializableStatuses},
		}}}
		update := bson.M{
			"$set": bson.M{
				"jobs_created":    true,
				"created_job_ids": ids,
				"jobs_created_at": at,
				"updated_at":      at,
			},
			"$unset": bson.M{"job_creation_error": ""},
		}

		res, err := r.bookings.UpdateOne(sessCtx, guarded, update)
		if err != nil {
			return fmt.Errorf("failed to flag booking: %w", err)
		}
		if res.MatchedCount == 0 {
			return r.guardFailure(sessCtx, filter)
		}

		if len(writes) == 0 {
			return nil
		}
		if _, err := r.tasks.BulkWrite(sessCtx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
			return fmt.Errorf("failed to upsert tasks: %w", err)
		}
		return nil
	})
}

// guardFailure explains why the CommitJobs guard matched nothing.
func (r *mongoStore) guardFailure(ctx context.Context, filter bson.M) error {
	var current struct {
		Status      string `bson:"status"`
		JobsCreated bool   `bson:"jobs_created"`
	}
	opts := options.FindOne().SetProjection(bson.M{"status": 1, "jobs_created": 1})
	err := r.bookings.FindOne(ctx, filter, opts).Decode(&current)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return jobserrors.ErrBookingNotFound
	case err != nil:
		return fmt.Errorf("failed to check booking: %w", err)
	case current.JobsCreated:
		return jobserrors.ErrAlreadyMaterialized
	default:
		return jobserrors.ErrNotMaterializable
	}
}

func (r *mongoStore) RecordJobError(ctx context.Context, bookingID, message string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter, err := bookingFilter(bookingID)
	if err != nil {
		return err
	}
	filter = bson.M{"$and": bson.A{filter, bson.M{"jobs_created": bson.M{"$ne": true}}}}

	update := bson.M{"$set": bson.M{
		"job_creation_error": message,
		"updated_at":         time.Now().UTC(),
	}}
	if _, err := r.bookings.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to record job creation error: %w", err)
	}
	return nil
}

func (r *mongoStore) FindTasksByBooking(ctx context.Context, bookingID string) ([]*model.Task, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.tasks.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*model.Task{}
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	return tasks, nil
}

func (r *mongoStore) FindTask(ctx context.Context, id string) (*model.Task, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var task model.Task
	err := r.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, jobserrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return &task, nil
}

func (r *mongoStore) UpdateTask(ctx context.Context, task *model.Task, fromStatus string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.tasks.ReplaceOne(ctx, bson.M{"_id": task.ID, "status": fromStatus}, task)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.tasks.CountDocuments(ctx, bson.M{"_id": task.ID})
		if err != nil {
			return fmt.Errorf("failed to check task: %w", err)
		}
		if n == 0 {
			return jobserrors.ErrTaskNotFound
		}
		return jobserrors.ErrStatusConflict
	}

	return nil
}

func (r *mongoStore) DeleteBookingJobs(ctx context.Context, bookingID string) (int64, error) {
	filter, err := bookingFilter(bookingID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var deleted int64
	err = r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		res, err := r.tasks.DeleteMany(sessCtx, bson.M{"booking_id": bookingID})
		if err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		deleted = res.DeletedCount

		upd, err := r.bookings.UpdateOne(sessCtx, filter, bson.M{
			"$set":   bson.M{"jobs_created": false, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"created_job_ids": "", "jobs_created_at": "", "job_creation_error": ""},
		})
		if err != nil {
			return fmt.Errorf("failed to reset booking: %w", err)
		}
		if upd.MatchedCount == 0 && deleted == 0 {
			return jobserrors.ErrBookingNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (r *mongoStore) FindCompletedTasks(ctx context.Context, from, to time.Time) ([]*model.Task, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":       model.TaskCompleted,
		"completed_at": bson.M{"$gte": from, "$lt": to},
	}

	cursor, err := r.tasks.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "completed_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find completed tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*model.Task{}
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	return tasks, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	jobserrors "villaops/internal/jobs/errors"
	"villaops/pkg/client"
	"villaops/pkg/config"
	"villaops/pkg/logger"
	"villaops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Transactions need a replica set, e.g.
// TEST_MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0
const mongoURIEnv = "TEST_MONGO_URI"

type mongoHarness struct {
	store Store
	db    *mongo.Database
}

func newMongoHarness(t *testing.T) *mongoHarness {
	t.Helper()

	uri := os.Getenv(mongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set", mongoURIEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, c.Ping(ctx, nil))

	dbName := fmt.Sprintf("villaops_test_%d", time.Now().UnixNano())
	db := c.Database(dbName)
	// Collections cannot be created implicitly inside a transaction on older servers.
	require.NoError(t, db.CreateCollection(ctx, BookingsCollection))
	require.NoError(t, db.CreateCollection(ctx, TasksCollection))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		if err := c.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})

	cfg := &config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: c},
	}
	return &mongoHarness{store: NewMongoStore(cfg), db: db}
}

func (h *mongoHarness) insertBooking(t *testing.T, id, status string) {
	t.Helper()
	_, err := h.db.Collection(BookingsCollection).InsertOne(context.Background(), &model.Booking{
		ID:         id,
		Status:     status,
		PropertyID: "p-1",
		CheckIn:    now.Add(48 * time.Hour),
		CheckOut:   now.Add(120 * time.Hour),
	})
	require.NoError(t, err)
}

func (h *mongoHarness) taskCount(t *testing.T, bookingID string) int64 {
	t.Helper()
	n, err := h.db.Collection(TasksCollection).CountDocuments(context.Background(), bson.M{"booking_id": bookingID})
	require.NoError(t, err)
	return n
}

func TestMongoStore_ConcurrentCommitHasOneWinner(t *testing.T) {
	h := newMongoHarness(t)
	h.insertBooking(t, "b-1", model.BookingApproved)

	const workers = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, workers)
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			batch := tasks("b-1", "t1", "t2", "t3")
			errs[i] = h.store.CommitJobs(context.Background(), "b-1", batch, now)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, jobserrors.ErrAlreadyMaterialized):
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.EqualValues(t, 3, h.taskCount(t, "b-1"))

	b, err := h.store.GetBooking(context.Background(), "b-1")
	require.NoError(t, err)
	assert.True(t, b.JobsCreated)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, b.CreatedJobIDs)
}

func TestMongoStore_DeleteThenRecommit(t *testing.T) {
	ctx := context.Background()
	h := newMongoHarness(t)
	h.insertBooking(t, "b-1", model.BookingConfirmed)

	require.NoError(t, h.store.CommitJobs(ctx, "b-1", tasks("b-1", "t1", "t2"), now))

	deleted, err := h.store.DeleteBookingJobs(ctx, "b-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	assert.Zero(t, h.taskCount(t, "b-1"))

	b, err := h.store.GetBooking(ctx, "b-1")
	require.NoError(t, err)
	assert.False(t, b.JobsCreated)
	assert.Empty(t, b.CreatedJobIDs)

	require.NoError(t, h.store.CommitJobs(ctx, "b-1", tasks("b-1", "t1", "t2"), now))
	assert.EqualValues(t, 2, h.taskCount(t, "b-1"))

	err = h.store.CommitJobs(ctx, "b-1", tasks("b-1", "t1", "t2"), now)
	assert.ErrorIs(t, err, jobserrors.ErrAlreadyMaterialized)
}

func TestMongoStore_CommitRejectsStatusChange(t *testing.T) {
	ctx := context.Background()
	h := newMongoHarness(t)
	h.insertBooking(t, "b-1", model.BookingCancelled)

	err := h.store.CommitJobs(ctx, "b-1", tasks("b-1", "t1"), now)
	assert.ErrorIs(t, err, jobserrors.ErrNotMaterializable)
	assert.Zero(t, h.taskCount(t, "b-1"))

	err = h.store.CommitJobs(ctx, "missing", tasks("missing", "t1"), now)
	assert.ErrorIs(t, err, jobserrors.ErrBookingNotFound)
}

package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"villaops/internal/jobs/repository"
	"villaops/pkg/config"
	apperrors "villaops/pkg/errors"
	"villaops/pkg/logger"
	"villaops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	repository.Store
	err error
}

func (f failingStore) FindCompletedTasks(ctx context.Context, from, to time.Time) ([]*model.Task, error) {
	return nil, f.err
}

func testConfig() *config.Config {
	return &config.Config{Log: logger.Discard(), AnalyticsDefaultWindow: 7 * 24 * time.Hour}
}

func seededStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutBooking(&model.Booking{
		ID:         "b-1",
		Status:     model.BookingConfirmed,
		PropertyID: "v-1",
		CheckIn:    windowStart,
		CheckOut:   windowStart.Add(72 * time.Hour),
	})
	tasks := []*model.Task{
		completed("t-1", "s-1", "cleaning", "v-1", 120, 100, 40, windowStart.Add(time.Hour)),
		completed("t-2", "s-2", "cleaning", "v-1", 60, 60, 20, windowStart.Add(-48*time.Hour)),
	}
	require.NoError(t, store.CommitJobs(context.Background(), "b-1", tasks, windowStart))
	return store
}

func TestReport(t *testing.T) {
	svc := NewAnalyticsService(seededStore(t), testConfig())

	report, err := svc.Report(context.Background(), window)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalCompletions)
	require.Len(t, report.PerStaff, 1)
	assert.Equal(t, "s-1", report.PerStaff[0].Key)
}

func TestReport_DefaultWindow(t *testing.T) {
	svc := NewAnalyticsService(seededStore(t), testConfig()).(*analyticsService)
	svc.now = func() time.Time { return windowStart.Add(2 * time.Hour) }

	report, err := svc.Report(context.Background(), Window{})

	require.NoError(t, err)
	assert.Equal(t, windowStart.Add(2*time.Hour), report.Window.To)
	assert.Equal(t, windowStart.Add(2*time.Hour-7*24*time.Hour), report.Window.From)
	assert.Equal(t, 2, report.TotalCompletions)
}

func TestReport_InvalidWindow(t *testing.T) {
	svc := NewAnalyticsService(seededStore(t), testConfig())

	_, err := svc.Report(context.Background(), Window{From: window.To, To: window.From})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestReport_StoreFailure(t *testing.T) {
	svc := NewAnalyticsService(failingStore{err: errors.New("connection refused")}, testConfig())

	_, err := svc.Report(context.Background(), window)

	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.AsAppError(err).StatusCode())
	assert.True(t, apperrors.IsRetryable(err))
}

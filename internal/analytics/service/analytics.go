package service

import (
	"context"
	"errors"
	"time"

	"villaops/internal/jobs/repository"
	"villaops/pkg/config"
	apperrors "villaops/pkg/errors"
)

type AnalyticsService interface {
	Report(ctx context.Context, w Window) (*Report, error)
}

type analyticsService struct {
	store repository.Store
	cfg   *config.Config
	now   func() time.Time
}

func NewAnalyticsService(store repository.Store, cfg *config.Config) AnalyticsService {
	return &analyticsService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Report aggregates completions in w. A zero To means now and a zero From
// means AnalyticsDefaultWindow before To.
func (s *analyticsService) Report(ctx context.Context, w Window) (*Report, error) {
	w = s.normalize(w)
	if !w.From.Before(w.To) {
		return nil, apperrors.InvalidInput("Analytics window 'from' must be before 'to'")
	}

	tasks, err := s.store.FindCompletedTasks(ctx, w.From, w.To)
	if err != nil {
		s.cfg.Log.Error("Failed to load completed tasks",
			"from", w.From,
			"to", w.To,
			"error", err,
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("Loading completed tasks timed out")
		}
		return nil, apperrors.Dependency("task store", err)
	}

	report := Aggregate(tasks, w)
	return &report, nil
}

func (s *analyticsService) normalize(w Window) Window {
	if w.To.IsZero() {
		w.To = s.now()
	}
	if w.From.IsZero() {
		window := s.cfg.AnalyticsDefaultWindow
		if window <= 0 {
			window = config.DefaultAnalyticsDefaultWindow
		}
		w.From = w.To.Add(-window)
	}
	w.From, w.To = w.From.UTC(), w.To.UTC()
	return w
}

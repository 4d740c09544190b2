package watcher

import (
	"context"
	"errors"
	"sync"

	"villaops/internal/jobs/service"
	"villaops/pkg/config"
	apperrors "villaops/pkg/errors"
	"villaops/pkg/metrics"
	"villaops/pkg/model"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateUnseen State = iota
	StateInFlight
	StateMaterialized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInFlight:
		return "in_flight"
	case StateMaterialized:
		return "materialized"
	case StateFailed:
		return "failed"
	default:
		return "unseen"
	}
}

const (
	resultIgnored      = "ignored"
	resultCreated      = "created"
	resultMaterialized = "already_materialized"
	resultSkipped      = "skipped"
	resultFailed       = "failed"
)

// Ack blocks until a dispatched change has settled and returns the
// materialization error, if any.
type Ack func() error

// Handler dispatches one booking change. Sources call it synchronously; when
// every worker is busy the call blocks, which throttles the feed. A source
// that records progress durably waits on the Ack before doing so.
type Handler func(ctx context.Context, change model.BookingChange) Ack

func settled() error { return nil }

// Source delivers booking changes until ctx is cancelled or the feed fails.
type Source interface {
	Name() string
	Run(ctx context.Context, handle Handler) error
}

// Watcher turns qualifying booking changes into materializations. It also
// implements service.Materializer so manual re-triggers share its
// deduplication and state tracking.
type Watcher struct {
	source       Source
	materializer service.Materializer
	cfg          *config.Config

	flights singleflight.Group

	mu     sync.RWMutex
	states map[string]State
}

// New builds a watcher. source may be nil when only manual triggers are wanted.
func New(source Source, materializer service.Materializer, cfg *config.Config) *Watcher {
	return &Watcher{
		source:       source,
		materializer: materializer,
		cfg:          cfg,
		states:       make(map[string]State),
	}
}

// Run consumes the source until ctx is cancelled. In-flight materializations
// are allowed to finish before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	if w.source == nil {
		<-ctx.Done()
		return nil
	}

	limit := w.cfg.WatcherConcurrency
	if limit <= 0 {
		limit = config.DefaultWatcherConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)

	name := w.source.Name()
	w.cfg.Log.Info("Booking watcher started", "source", name, "concurrency", limit)

	// Eligibility comes from the change itself, never from the state map.
	// The store guard rejects repeats.
	err := w.source.Run(ctx, func(ctx context.Context, change model.BookingChange) Ack {
		if !change.Qualifies() {
			metrics.IncWatcherEvent(name, resultIgnored)
			return settled
		}

		done := make(chan error, 1)
		g.Go(func() error {
			_, err := w.Materialize(ctx, change.ID)
			metrics.IncWatcherEvent(name, outcome(err))
			done <- err
			return nil
		})

		return func() error {
			return <-done
		}
	})

	_ = g.Wait()
	w.cfg.Log.Info("Booking watcher stopped", "source", name)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Materialize runs one materialization for bookingID. Concurrent calls for
// the same booking share a single attempt. The attempt ignores cancellation
// of the caller that started it, so joined callers are not failed by it and
// shutdown lets it finish; the materializer applies its own deadline.
func (w *Watcher) Materialize(ctx context.Context, bookingID string) (*service.Result, error) {
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := w.flights.Do(bookingID, func() (any, error) {
		w.setState(bookingID, StateInFlight)
		result, err := w.materializer.Materialize(flightCtx, bookingID)
		w.settle(bookingID, err)
		return result, err
	})
	if shared {
		w.cfg.Log.Debug("Joined in-flight materialization", "booking_id", bookingID)
	}

	result, _ := v.(*service.Result)
	return result, err
}

func (w *Watcher) State(bookingID string) State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.states[bookingID]
}

func (w *Watcher) setState(bookingID string, s State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s == StateUnseen {
		delete(w.states, bookingID)
		return
	}
	w.states[bookingID] = s
}

func (w *Watcher) settle(bookingID string, err error) {
	switch {
	case err == nil, isAlreadyMaterialized(err):
		w.setState(bookingID, StateMaterialized)
	case apperrors.HasCode(err, apperrors.CodePrecondition), apperrors.HasCode(err, apperrors.CodeNotFound):
		// A later change may make the booking eligible.
		w.setState(bookingID, StateUnseen)
	default:
		w.setState(bookingID, StateFailed)
		w.cfg.Log.Error("Job materialization failed",
			"booking_id", bookingID,
			"retryable", apperrors.IsRetryable(err),
			"error", err,
		)
	}
}

func isAlreadyMaterialized(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodePrecondition {
		return false
	}
	_, ok := appErr.Details["created_job_ids"]
	return ok
}

func outcome(err error) string {
	switch {
	case err == nil:
		return resultCreated
	case isAlreadyMaterialized(err):
		return resultMaterialized
	case apperrors.HasCode(err, apperrors.CodePrecondition), apperrors.HasCode(err, apperrors.CodeNotFound):
		return resultSkipped
	default:
		return resultFailed
	}
}

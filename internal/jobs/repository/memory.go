package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	jobserrors "villaops/internal/jobs/errors"
	"villaops/pkg/model"
)

// MemoryStore is a Store for tests and local runs. All methods are
// serialized by one mutex, which stands in for the Mongo transaction.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	tasks    map[string]*model.Task

	// BeforeFlag runs after the tasks of a commit are written and before the
	// flag is set. A non-nil error aborts the commit with the tasks left in
	// place, which is what a crash between the two writes looks like on a
	// store without transactions.
	BeforeFlag func(bookingID string) error

	commits int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: map[string]*model.Booking{},
		tasks:    map[string]*model.Task{},
	}
}

func (m *MemoryStore) PutBooking(b *model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = cloneBooking(b)
}

// Commits counts successful CommitJobs calls.
func (m *MemoryStore) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// TaskCount returns the number of stored tasks across all bookings.
func (m *MemoryStore) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *MemoryStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, jobserrors.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (m *MemoryStore) CommitJobs(ctx context.Context, bookingID string, tasks []*model.Task, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[bookingID]
	if !ok {
		return jobserrors.ErrBookingNotFound
	}
	if b.JobsCreated {
		return jobserrors.ErrAlreadyMaterialized
	}
	if !slices.Contains(model.MaterializableStatuses, b.Status) {
		return jobserrors.ErrNotMaterializable
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		m.tasks[t.ID] = cloneTask(t)
	}

	if m.BeforeFlag != nil {
		if err := m.BeforeFlag(bookingID); err != nil {
			return err
		}
	}

	b.JobsCreated = true
	b.CreatedJobIDs = ids
	b.JobCreationError = ""
	createdAt := at
	b.JobsCreatedAt = &createdAt
	b.UpdatedAt = at
	m.commits++

	return nil
}

func (m *MemoryStore) RecordJobError(ctx context.Context, bookingID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.bookings[bookingID]; ok && !b.JobsCreated {
		b.JobCreationError = message
		b.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MemoryStore) FindTasksByBooking(ctx context.Context, bookingID string) ([]*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*model.Task{}
	for _, t := range m.tasks {
		if t.BookingID == bookingID {
			out = append(out, cloneTask(t))
		}
	}
	slices.SortFunc(out, func(a, b *model.Task) int {
		if c := a.ScheduledAt.Compare(b.ScheduledAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *MemoryStore) FindTask(ctx context.Context, id string) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, jobserrors.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (m *MemoryStore) UpdateTask(ctx context.Context, task *model.Task, fromStatus string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[task.ID]
	if !ok {
		return jobserrors.ErrTaskNotFound
	}
	if current.Status != fromStatus {
		return jobserrors.ErrStatusConflict
	}
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

func (m *MemoryStore) DeleteBookingJobs(ctx context.Context, bookingID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, t := range m.tasks {
		if t.BookingID == bookingID {
			delete(m.tasks, id)
			deleted++
		}
	}

	b, ok := m.bookings[bookingID]
	if !ok {
		if deleted == 0 {
			return 0, jobserrors.ErrBookingNotFound
		}
		return deleted, nil
	}
	b.JobsCreated = false
	b.CreatedJobIDs = nil
	b.JobsCreatedAt = nil
	b.JobCreationError = ""

	return deleted, nil
}

func (m *MemoryStore) FindCompletedTasks(ctx context.Context, from, to time.Time) ([]*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*model.Task{}
	for _, t := range m.tasks {
		if t.Status != model.TaskCompleted || t.CompletedAt == nil {
			continue
		}
		if t.CompletedAt.Before(from) || !t.CompletedAt.Before(to) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	slices.SortFunc(out, func(a, b *model.Task) int {
		return a.CompletedAt.Compare(*b.CompletedAt)
	})
	return out, nil
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	c.CreatedJobIDs = slices.Clone(b.CreatedJobIDs)
	if b.JobsCreatedAt != nil {
		at := *b.JobsCreatedAt
		c.JobsCreatedAt = &at
	}
	return &c
}

func cloneTask(t *model.Task) *model.Task {
	c := *t
	c.RequiredSkills = slices.Clone(t.RequiredSkills)
	c.RequiredSupplies = slices.Clone(t.RequiredSupplies)
	c.AssignmentReasons = slices.Clone(t.AssignmentReasons)
	if t.StartedAt != nil {
		at := *t.StartedAt
		c.StartedAt = &at
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

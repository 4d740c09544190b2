package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"villaops/internal/jobs/catalog"
	"villaops/internal/jobs/repository"
	"villaops/internal/jobs/scoring"
	"villaops/internal/jobs/validator"
	propertyrepo "villaops/internal/properties/repository"
	staffrepo "villaops/internal/staff/repository"
	"villaops/pkg/config"
	"villaops/pkg/logger"
	"villaops/pkg/model"

	"github.com/stretchr/testify/require"
)

var villa = model.Property{
	ID:                 "villa-1",
	Name:               "Villa Kemangi",
	Address:            "Jl. Petitenget 12, Seminyak",
	Coordinates:        model.GeoPoint{Lat: -8.6800, Lng: 115.1560},
	AccessInstructions: "Lockbox code 4471",
}

var allSkills = []string{"cleaning", "inspection", "guest_services", "maintenance", "ac_repair"}

func testConfig() *config.Config {
	return &config.Config{
		Log:                logger.Discard(),
		MaterializeTimeout: 5 * time.Second,
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

// threeNightBooking is the 2025-09-01 to 2025-09-04 stay.
func threeNightBooking(t *testing.T) *model.Booking {
	return &model.Booking{
		ID:         "booking-1",
		Status:     model.BookingConfirmed,
		PropertyID: villa.ID,
		GuestName:  "Ayu Lestari",
		CheckIn:    mustTime(t, "2025-09-01T14:00:00Z"),
		CheckOut:   mustTime(t, "2025-09-04T11:00:00Z"),
	}
}

func staff(id string, workload int, skills ...string) model.StaffCandidate {
	return model.StaffCandidate{
		ID:            id,
		Name:          "Staff " + id,
		Location:      villa.Coordinates,
		Skills:        skills,
		Available:     true,
		WorkloadToday: workload,
		Rating:        4.2,
	}
}

type mockDirectory struct {
	mu              sync.Mutex
	listFunc        func(ctx context.Context) ([]model.StaffCandidate, error)
	invalidateCalls int
}

func (m *mockDirectory) ListActiveStaff(ctx context.Context) ([]model.StaffCandidate, error) {
	return m.listFunc(ctx)
}

func (m *mockDirectory) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateCalls++
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []model.JobsCreatedEvent
	err    error
}

func (m *mockPublisher) PublishJobsCreated(ctx context.Context, event model.JobsCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

type fixture struct {
	store     *repository.MemoryStore
	staff     staffrepo.Directory
	props     propertyrepo.Lookup
	publisher *mockPublisher
	catalog   *catalog.Catalog
	cfg       *config.Config
}

func newFixture(t *testing.T, candidates ...model.StaffCandidate) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutBooking(threeNightBooking(t))
	return &fixture{
		store:     store,
		staff:     staffrepo.StaticDirectory(candidates),
		props:     propertyrepo.StaticLookup{villa.ID: villa},
		publisher: &mockPublisher{},
		catalog:   catalog.Default(),
		cfg:       testConfig(),
	}
}

func (f *fixture) materializer() Materializer {
	return NewMaterializer(
		f.store,
		f.staff,
		f.props,
		f.catalog,
		scoring.New(scoring.DefaultParams()),
		validator.New(),
		f.publisher,
		f.cfg,
	)
}

func (f *fixture) tasks() TaskService {
	return NewTaskService(
		f.store,
		f.staff,
		f.props,
		f.catalog,
		scoring.New(scoring.DefaultParams()),
		validator.New(),
		f.cfg,
	)
}

func byTemplate(tasks []*model.Task) map[string]*model.Task {
	out := make(map[string]*model.Task, len(tasks))
	for _, t := range tasks {
		out[t.TemplateID] = t
	}
	return out
}

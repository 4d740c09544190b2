package scoring

import (
	"testing"

	"villaops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var villa = model.GeoPoint{Lat: -8.6500, Lng: 115.1380}

func candidate(id string, workload int, skills ...string) model.StaffCandidate {
	return model.StaffCandidate{
		ID:            id,
		Name:          "Staff " + id,
		Location:      villa,
		Skills:        skills,
		Available:     true,
		WorkloadToday: workload,
		Rating:        4.0,
	}
}

func ids(scores []model.AssignmentScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.StaffID
	}
	return out
}

func TestRank_TieBreakIsDeterministic(t *testing.T) {
	s := New(DefaultParams())
	req := Request{RequiredSkills: []string{"cleaning"}, Location: villa}

	// Same workload and inputs: lowest id wins regardless of input order.
	candidates := []model.StaffCandidate{
		candidate("s-3", 1, "cleaning"),
		candidate("s-1", 1, "cleaning"),
		candidate("s-2", 1, "cleaning"),
	}

	for range 20 {
		best, err := s.Best(req, candidates)
		require.NoError(t, err)
		assert.Equal(t, "s-1", best.StaffID)
	}

	assert.Equal(t, []string{"s-1", "s-2", "s-3"}, ids(s.Rank(req, candidates)))
}

func TestCompare_WorkloadBreaksScoreTies(t *testing.T) {
	a := model.AssignmentScore{StaffID: "a", Score: 0.8, Workload: 3, Assignable: true}
	b := model.AssignmentScore{StaffID: "b", Score: 0.8, Workload: 1, Assignable: true}
	c := model.AssignmentScore{StaffID: "c", Score: 0.8, Workload: 1, Assignable: true}

	assert.Positive(t, compare(a, b))
	assert.Negative(t, compare(b, c))
	assert.Negative(t, compare(b, a))
}

func TestRank_LowerWorkloadPreferred(t *testing.T) {
	s := New(DefaultParams())
	req := Request{Location: villa}

	ranked := s.Rank(req, []model.StaffCandidate{candidate("a", 4), candidate("b", 0)})

	assert.Equal(t, []string{"b", "a"}, ids(ranked))
	assert.Greater(t, ranked[0].WorkloadScore, ranked[1].WorkloadScore)
}

func TestRank_UnavailableListedButNotAssignable(t *testing.T) {
	s := New(DefaultParams())

	off := candidate("a", 0, "cleaning")
	off.Available = false
	off.Rating = 5

	ranked := s.Rank(Request{Location: villa}, []model.StaffCandidate{off, candidate("b", 5)})
	require.Len(t, ranked, 2)

	assert.Equal(t, "b", ranked[0].StaffID)
	assert.Equal(t, "a", ranked[1].StaffID)
	assert.False(t, ranked[1].Assignable)
	assert.Zero(t, ranked[1].Score)
	assert.Zero(t, ranked[1].AvailabilityScore)
}

func TestBest_NoEligibleStaff(t *testing.T) {
	s := New(DefaultParams())

	_, err := s.Best(Request{}, nil)
	assert.ErrorIs(t, err, ErrNoEligibleStaff)

	off := candidate("a", 0)
	off.Available = false
	_, err = s.Best(Request{}, []model.StaffCandidate{off})
	assert.ErrorIs(t, err, ErrNoEligibleStaff)
}

func TestRank_OutOfRadiusPenalty(t *testing.T) {
	s := New(DefaultParams())
	req := Request{Location: villa, TimeCritical: true}

	near := candidate("near", 3)
	near.Location = model.GeoPoint{Lat: -8.6600, Lng: 115.1400} // ~1.1 km
	far := candidate("far", 0)
	far.Location = model.GeoPoint{Lat: -8.7500, Lng: 115.1700} // ~11.7 km

	ranked := s.Rank(req, []model.StaffCandidate{far, near})
	byID := map[string]model.AssignmentScore{}
	for _, r := range ranked {
		byID[r.StaffID] = r
	}

	assert.True(t, byID["near"].InRadius)
	assert.False(t, byID["far"].InRadius)
	unpenalized := 1 / (1 + byID["far"].DistanceKm/DefaultParams().CriticalRadiusKm)
	assert.InDelta(t, unpenalized*DefaultParams().OutOfRadiusPenalty, byID["far"].ProximityScore, 1e-3)

	// With nobody in radius the far candidate is not penalized.
	alone := s.Rank(req, []model.StaffCandidate{far})
	assert.InDelta(t, unpenalized, alone[0].ProximityScore, 1e-3)
}

func TestRank_UnknownLocationIsNeutral(t *testing.T) {
	s := New(DefaultParams())

	c := candidate("a", 0)
	c.Location = model.GeoPoint{}

	ranked := s.Rank(Request{Location: villa}, []model.StaffCandidate{c})
	assert.InDelta(t, 0.5, ranked[0].ProximityScore, 1e-9)

	ranked = s.Rank(Request{}, []model.StaffCandidate{candidate("b", 0)})
	assert.InDelta(t, 0.5, ranked[0].ProximityScore, 1e-9)
}

func TestRank_SkillMatch(t *testing.T) {
	s := New(DefaultParams())
	req := Request{RequiredSkills: []string{"ac_repair"}, Specialized: true, TimeCritical: true, Location: villa}

	tech := candidate("tech", 4, "ac_repair")
	cleaner := candidate("cleaner", 0, "cleaning")

	ranked := s.Rank(req, []model.StaffCandidate{cleaner, tech})
	require.Equal(t, "tech", ranked[0].StaffID)
	assert.True(t, ranked[0].SkillMatch)
	assert.Equal(t, ranked[0].Score, ranked[0].Confidence)

	// Lacking specialized skills costs both score and confidence.
	assert.False(t, ranked[1].SkillMatch)
	assert.Contains(t, ranked[1].Reasons, "missing specialized skills")
	assert.Less(t, ranked[1].Confidence, ranked[1].Score)
}

func TestRank_PartialSkillsScaleConfidence(t *testing.T) {
	s := New(DefaultParams())
	req := Request{RequiredSkills: []string{"maintenance", "cleaning"}, Location: villa}

	ranked := s.Rank(req, []model.StaffCandidate{candidate("a", 0, "cleaning")})

	assert.InDelta(t, 0.5, ranked[0].SkillScore, 1e-9)
	assert.InDelta(t, ranked[0].Score*0.75, ranked[0].Confidence, 1e-6)
}

func TestRank_Experience(t *testing.T) {
	s := New(DefaultParams())

	veteran := candidate("a", 0)
	veteran.Rating = 5
	novice := candidate("b", 0)
	novice.Rating = 2

	ranked := s.Rank(Request{Location: villa}, []model.StaffCandidate{novice, veteran})

	assert.Equal(t, "a", ranked[0].StaffID)
	assert.InDelta(t, 1.0, ranked[0].ExperienceScore, 1e-9)
	assert.Zero(t, ranked[1].ExperienceScore)
}

func TestRank_ScoresInUnitRange(t *testing.T) {
	p := DefaultParams()
	p.SpecializedSkillPenalty = 1
	s := New(p)

	c := candidate("a", 100)
	c.Utilization = 3
	c.Rating = 0

	ranked := s.Rank(Request{RequiredSkills: []string{"pool"}, Specialized: true}, []model.StaffCandidate{c})
	assert.GreaterOrEqual(t, ranked[0].Score, 0.0)
	assert.LessOrEqual(t, ranked[0].Score, 1.0)
	assert.True(t, ranked[0].Assignable)
}

func TestDistanceKm(t *testing.T) {
	// Seminyak to Ubud, roughly 23 km.
	d := distanceKm(model.GeoPoint{Lat: -8.6913, Lng: 115.1682}, model.GeoPoint{Lat: -8.5069, Lng: 115.2625})
	assert.InDelta(t, 22.9, d, 1.5)
	assert.Zero(t, distanceKm(villa, villa))
}

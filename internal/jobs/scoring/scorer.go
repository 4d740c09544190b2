package scoring

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"villaops/pkg/config"
	"villaops/pkg/model"
)

var ErrNoEligibleStaff = errors.New("no eligible staff")

const maxRating = 5.0

// Weights are relative; they are normalized by their sum.
type Weights struct {
	Proximity    float64
	Workload     float64
	Skill        float64
	Experience   float64
	Availability float64
}

func (w Weights) sum() float64 {
	return w.Proximity + w.Workload + w.Skill + w.Experience + w.Availability
}

type Params struct {
	Weights
	CriticalRadiusKm        float64
	DefaultRadiusKm         float64
	OutOfRadiusPenalty      float64
	SpecializedSkillPenalty float64
	BaselineRating          float64
}

func DefaultParams() Params {
	return Params{
		Weights: Weights{
			Proximity:    config.DefaultScoringWeightProximity,
			Workload:     config.DefaultScoringWeightWorkload,
			Skill:        config.DefaultScoringWeightSkill,
			Experience:   config.DefaultScoringWeightExperience,
			Availability: config.DefaultScoringWeightAvailability,
		},
		CriticalRadiusKm:        config.DefaultScoringCriticalRadiusKm,
		DefaultRadiusKm:         config.DefaultScoringDefaultRadiusKm,
		OutOfRadiusPenalty:      config.DefaultScoringOutOfRadiusPenalty,
		SpecializedSkillPenalty: config.DefaultScoringSkillPenalty,
		BaselineRating:          config.DefaultScoringBaselineRating,
	}
}

// ParamsFromConfig reads the tunables validated by config.Validate.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Weights: Weights{
			Proximity:    cfg.ScoringWeightProximity,
			Workload:     cfg.ScoringWeightWorkload,
			Skill:        cfg.ScoringWeightSkill,
			Experience:   cfg.ScoringWeightExperience,
			Availability: cfg.ScoringWeightAvailability,
		},
		CriticalRadiusKm:        cfg.ScoringCriticalRadiusKm,
		DefaultRadiusKm:         cfg.ScoringDefaultRadiusKm,
		OutOfRadiusPenalty:      cfg.ScoringOutOfRadiusPenalty,
		SpecializedSkillPenalty: cfg.ScoringSkillPenalty,
		BaselineRating:          cfg.ScoringBaselineRating,
	}
}

// Request describes the task being staffed.
type Request struct {
	RequiredSkills []string
	Specialized    bool
	TimeCritical   bool
	Location       model.GeoPoint
}

func RequestFor(tmpl model.TaskTemplate, location model.GeoPoint) Request {
	return Request{
		RequiredSkills: tmpl.RequiredSkills,
		Specialized:    tmpl.Specialized,
		TimeCritical:   tmpl.TimeCritical(),
		Location:       location,
	}
}

// Scorer is pure and safe for concurrent use.
type Scorer struct {
	params Params
}

func New(params Params) *Scorer {
	return &Scorer{params: params}
}

func (s *Scorer) Params() Params {
	return s.params
}

// Rank scores every candidate and orders them best first. Unavailable staff
// are listed last with a zero score. Ties go to the lower workload, then the
// lower staff id.
func (s *Scorer) Rank(req Request, candidates []model.StaffCandidate) []model.AssignmentScore {
	radius := s.params.DefaultRadiusKm
	if req.TimeCritical {
		radius = s.params.CriticalRadiusKm
	}

	distances := make([]float64, len(candidates))
	anyInRadius := false
	for i, c := range candidates {
		distances[i] = -1
		if !req.Location.Known() || !c.Location.Known() {
			continue
		}
		distances[i] = distanceKm(req.Location, c.Location)
		if c.Available && distances[i] <= radius {
			anyInRadius = true
		}
	}

	scores := make([]model.AssignmentScore, 0, len(candidates))
	for i, c := range candidates {
		scores = append(scores, s.score(req, c, distances[i], radius, anyInRadius))
	}

	slices.SortStableFunc(scores, compare)
	return scores
}

// Best returns the top assignable candidate.
func (s *Scorer) Best(req Request, candidates []model.StaffCandidate) (model.AssignmentScore, error) {
	ranked := s.Rank(req, candidates)
	if len(ranked) == 0 || !ranked[0].Assignable {
		return model.AssignmentScore{}, ErrNoEligibleStaff
	}
	return ranked[0], nil
}

func compare(a, b model.AssignmentScore) int {
	if a.Assignable != b.Assignable {
		if a.Assignable {
			return -1
		}
		return 1
	}
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	if a.Workload != b.Workload {
		return a.Workload - b.Workload
	}
	return strings.Compare(a.StaffID, b.StaffID)
}

func (s *Scorer) score(req Request, c model.StaffCandidate, distance, radius float64, anyInRadius bool) model.AssignmentScore {
	res := model.AssignmentScore{
		StaffID:    c.ID,
		StaffName:  c.Name,
		Workload:   c.WorkloadToday,
		DistanceKm: round(math.Max(distance, 0)),
	}

	if !c.Available {
		res.Reasons = []string{"not available"}
		return res
	}
	res.AvailabilityScore = 1
	res.Assignable = true

	var reasons []string

	switch {
	case distance < 0:
		res.ProximityScore = 0.5
		reasons = append(reasons, "location unknown")
	default:
		res.ProximityScore = 1 / (1 + distance/radius)
		res.InRadius = distance <= radius
		if res.InRadius {
			reasons = append(reasons, fmt.Sprintf("%.1f km away, within %.0f km", distance, radius))
		} else {
			if anyInRadius {
				res.ProximityScore *= s.params.OutOfRadiusPenalty
			}
			reasons = append(reasons, fmt.Sprintf("%.1f km away, outside %.0f km", distance, radius))
		}
	}

	utilization := clamp(c.Utilization)
	res.WorkloadScore = 0.5/(1+float64(max(c.WorkloadToday, 0))) + 0.5*(1-utilization)
	reasons = append(reasons, fmt.Sprintf("%d tasks today", c.WorkloadToday))

	matched := matchedSkills(req.RequiredSkills, c.Skills)
	if len(req.RequiredSkills) == 0 {
		res.SkillScore = 1
	} else {
		res.SkillScore = float64(matched) / float64(len(req.RequiredSkills))
		reasons = append(reasons, fmt.Sprintf("skills %d/%d", matched, len(req.RequiredSkills)))
	}
	res.SkillMatch = res.SkillScore == 1

	if span := maxRating - s.params.BaselineRating; span > 0 {
		res.ExperienceScore = clamp((c.Rating - s.params.BaselineRating) / span)
	}
	if c.Rating > s.params.BaselineRating {
		reasons = append(reasons, fmt.Sprintf("rating %.1f", c.Rating))
	}

	w := s.params.Weights
	composite := w.Proximity*res.ProximityScore +
		w.Workload*res.WorkloadScore +
		w.Skill*res.SkillScore +
		w.Experience*res.ExperienceScore +
		w.Availability*res.AvailabilityScore
	if total := w.sum(); total > 0 {
		composite /= total
	}

	if req.Specialized && len(req.RequiredSkills) > 0 && matched == 0 {
		composite -= s.params.SpecializedSkillPenalty
		reasons = append(reasons, "missing specialized skills")
	}

	res.Score = round(clamp(composite))
	res.Confidence = res.Score
	if !res.SkillMatch {
		res.Confidence = round(res.Score * (0.5 + 0.5*res.SkillScore))
	}
	res.Reasons = reasons

	return res
}

func matchedSkills(required, have []string) int {
	n := 0
	for _, r := range required {
		if slices.Contains(have, r) {
			n++
		}
	}
	return n
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// round keeps scores stable across platforms so ties compare equal.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

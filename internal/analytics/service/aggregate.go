package service

import (
	"cmp"
	"math"
	"slices"
	"time"

	"villaops/pkg/model"
)

// Window is the half-open interval [From, To) of completion times.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

type Breakdown struct {
	Key                    string  `json:"key"`
	Name                   string  `json:"name,omitempty"`
	Completions            int     `json:"completions"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	AverageEfficiency      float64 `json:"average_efficiency"`
	TotalCost              float64 `json:"total_cost"`
}

type StaffPerformance struct {
	Breakdown
	AverageConfidence   float64 `json:"average_confidence"`
	FallbackAssignments int     `json:"fallback_assignments"`
}

type Report struct {
	Window                 Window             `json:"window"`
	TotalCompletions       int                `json:"total_completions"`
	AverageDurationMinutes float64            `json:"average_duration_minutes"`
	AverageEfficiency      float64            `json:"average_efficiency"`
	TotalCost              float64            `json:"total_cost"`
	PerStaff               []StaffPerformance `json:"per_staff"`
	PerCategory            []Breakdown        `json:"per_category"`
	PerProperty            []Breakdown        `json:"per_property"`
}

// accumulator sums one group. Duration and efficiency only count tasks with a
// positive recorded duration.
type accumulator struct {
	key, name   string
	completions int
	timed       int
	duration    float64
	efficiency  float64
	cost        float64
	confidence  float64
	fallbacks   int
}

func (a *accumulator) add(t *model.Task) {
	a.completions++
	a.cost += t.TotalCost()
	a.confidence += t.AssignmentConfidence
	if t.AssignmentFallback {
		a.fallbacks++
	}
	if t.ActualDurationMinutes > 0 {
		a.timed++
		a.duration += t.ActualDurationMinutes
		a.efficiency += Efficiency(t)
	}
}

func (a *accumulator) breakdown() Breakdown {
	return Breakdown{
		Key:                    a.key,
		Name:                   a.name,
		Completions:            a.completions,
		AverageDurationMinutes: round2(mean(a.duration, a.timed)),
		AverageEfficiency:      round2(mean(a.efficiency, a.timed)),
		TotalCost:              round2(a.cost),
	}
}

// Efficiency is estimated over actual duration in percent. Values above 100
// mean the task finished faster than estimated and are kept as is.
func Efficiency(t *model.Task) float64 {
	if t.ActualDurationMinutes <= 0 {
		return 0
	}
	return float64(t.EstimatedDurationMinutes) / t.ActualDurationMinutes * 100
}

// Aggregate summarizes the completed tasks of w. Other tasks are ignored, and
// staff without completions in the window do not appear.
func Aggregate(tasks []*model.Task, w Window) Report {
	var total accumulator
	staff := map[string]*accumulator{}
	categories := map[string]*accumulator{}
	properties := map[string]*accumulator{}

	group := func(groups map[string]*accumulator, key, name string) *accumulator {
		a, ok := groups[key]
		if !ok {
			a = &accumulator{key: key, name: name}
			groups[key] = a
		}
		return a
	}

	for _, t := range tasks {
		if t == nil || t.Status != model.TaskCompleted || t.CompletedAt == nil || !w.Contains(*t.CompletedAt) {
			continue
		}
		total.add(t)
		group(categories, t.Category, "").add(t)
		group(properties, t.PropertyID, t.PropertyName).add(t)
		if t.AssignedStaffID != "" {
			group(staff, t.AssignedStaffID, t.AssignedStaffName).add(t)
		}
	}

	report := Report{
		Window:                 w,
		TotalCompletions:       total.completions,
		AverageDurationMinutes: round2(mean(total.duration, total.timed)),
		AverageEfficiency:      round2(mean(total.efficiency, total.timed)),
		TotalCost:              round2(total.cost),
		PerStaff:               make([]StaffPerformance, 0, len(staff)),
		PerCategory:            breakdowns(categories),
		PerProperty:            breakdowns(properties),
	}

	for _, a := range staff {
		report.PerStaff = append(report.PerStaff, StaffPerformance{
			Breakdown:           a.breakdown(),
			AverageConfidence:   round2(mean(a.confidence, a.completions)),
			FallbackAssignments: a.fallbacks,
		})
	}
	slices.SortFunc(report.PerStaff, func(a, b StaffPerformance) int {
		return rank(a.Breakdown, b.Breakdown)
	})

	return report
}

func breakdowns(groups map[string]*accumulator) []Breakdown {
	out := make([]Breakdown, 0, len(groups))
	for _, a := range groups {
		out = append(out, a.breakdown())
	}
	slices.SortFunc(out, rank)
	return out
}

// rank orders by completions, then efficiency, then key.
func rank(a, b Breakdown) int {
	if c := cmp.Compare(b.Completions, a.Completions); c != 0 {
		return c
	}
	if c := cmp.Compare(b.AverageEfficiency, a.AverageEfficiency); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

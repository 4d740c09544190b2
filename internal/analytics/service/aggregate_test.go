package service

import (
	"testing"
	"time"

	"villaops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	window      = Window{From: windowStart, To: windowStart.Add(7 * 24 * time.Hour)}
)

func completed(id, staffID, category, propertyID string, estimated int, actual, cost float64, at time.Time) *model.Task {
	return &model.Task{
		ID:                       id,
		PropertyID:               propertyID,
		PropertyName:             "Villa " + propertyID,
		Category:                 category,
		EstimatedDurationMinutes: estimated,
		AssignedStaffID:          staffID,
		AssignedStaffName:        "Staff " + staffID,
		AssignmentConfidence:     0.8,
		Status:                   model.TaskCompleted,
		ActualDurationMinutes:    actual,
		LaborCost:                cost,
		CompletedAt:              &at,
	}
}

func TestEfficiency(t *testing.T) {
	assert.InDelta(t, 100.0, Efficiency(&model.Task{EstimatedDurationMinutes: 60, ActualDurationMinutes: 60}), 1e-9)
	assert.InDelta(t, 150.0, Efficiency(&model.Task{EstimatedDurationMinutes: 90, ActualDurationMinutes: 60}), 1e-9)
	assert.InDelta(t, 50.0, Efficiency(&model.Task{EstimatedDurationMinutes: 30, ActualDurationMinutes: 60}), 1e-9)
	assert.Zero(t, Efficiency(&model.Task{EstimatedDurationMinutes: 30}))
}

func TestAggregate(t *testing.T) {
	day := windowStart.Add(24 * time.Hour)
	tasks := []*model.Task{
		completed("t-1", "s-1", "cleaning", "v-1", 120, 100, 40, day),
		completed("t-2", "s-1", "cleaning", "v-2", 60, 120, 20, day),
		completed("t-3", "s-2", "maintenance", "v-1", 90, 60, 55.5, day),
	}

	report := Aggregate(tasks, window)

	assert.Equal(t, 3, report.TotalCompletions)
	assert.InDelta(t, 93.33, report.AverageDurationMinutes, 0.01)
	// (120 + 50 + 150) / 3
	assert.InDelta(t, 106.67, report.AverageEfficiency, 0.01)
	assert.InDelta(t, 115.5, report.TotalCost, 1e-9)

	require.Len(t, report.PerStaff, 2)
	assert.Equal(t, "s-1", report.PerStaff[0].Key)
	assert.Equal(t, 2, report.PerStaff[0].Completions)
	assert.InDelta(t, 85.0, report.PerStaff[0].AverageEfficiency, 1e-9)
	assert.InDelta(t, 0.8, report.PerStaff[0].AverageConfidence, 1e-9)
	assert.Equal(t, "s-2", report.PerStaff[1].Key)
	assert.InDelta(t, 150.0, report.PerStaff[1].AverageEfficiency, 1e-9)

	require.Len(t, report.PerCategory, 2)
	assert.Equal(t, "cleaning", report.PerCategory[0].Key)
	assert.Equal(t, 2, report.PerCategory[0].Completions)

	require.Len(t, report.PerProperty, 2)
	assert.Equal(t, "v-1", report.PerProperty[0].Key)
	assert.Equal(t, "Villa v-1", report.PerProperty[0].Name)
	assert.InDelta(t, 95.5, report.PerProperty[0].TotalCost, 1e-9)
}

func TestAggregate_FiltersWindowAndStatus(t *testing.T) {
	inside := windowStart.Add(time.Hour)
	pending := completed("t-2", "s-1", "cleaning", "v-1", 60, 60, 10, inside)
	pending.Status = model.TaskInProgress
	noTimestamp := completed("t-5", "s-1", "cleaning", "v-1", 60, 60, 10, inside)
	noTimestamp.CompletedAt = nil

	tasks := []*model.Task{
		completed("t-1", "s-1", "cleaning", "v-1", 60, 60, 10, inside),
		pending,
		completed("t-3", "s-2", "cleaning", "v-1", 60, 60, 10, windowStart.Add(-time.Second)),
		completed("t-4", "s-3", "cleaning", "v-1", 60, 60, 10, window.To),
		noTimestamp,
		nil,
	}

	report := Aggregate(tasks, window)

	assert.Equal(t, 1, report.TotalCompletions)
	require.Len(t, report.PerStaff, 1)
	assert.Equal(t, "s-1", report.PerStaff[0].Key)
}

func TestAggregate_EfficiencyNotClamped(t *testing.T) {
	at := windowStart.Add(time.Hour)
	report := Aggregate([]*model.Task{completed("t-1", "s-1", "inspection", "v-1", 120, 30, 0, at)}, window)

	assert.InDelta(t, 400.0, report.AverageEfficiency, 1e-9)
}

func TestAggregate_MissingDurationExcludedFromEfficiency(t *testing.T) {
	at := windowStart.Add(time.Hour)
	report := Aggregate([]*model.Task{
		completed("t-1", "s-1", "cleaning", "v-1", 60, 60, 5, at),
		completed("t-2", "s-1", "cleaning", "v-1", 60, 0, 5, at),
	}, window)

	assert.Equal(t, 2, report.TotalCompletions)
	assert.InDelta(t, 100.0, report.AverageEfficiency, 1e-9)
	assert.InDelta(t, 60.0, report.AverageDurationMinutes, 1e-9)
	assert.InDelta(t, 10.0, report.TotalCost, 1e-9)
}

func TestAggregate_UnassignedTasksOnlyInTotals(t *testing.T) {
	at := windowStart.Add(time.Hour)
	report := Aggregate([]*model.Task{completed("t-1", "", "cleaning", "v-1", 60, 60, 5, at)}, window)

	assert.Equal(t, 1, report.TotalCompletions)
	assert.Empty(t, report.PerStaff)
	assert.Len(t, report.PerCategory, 1)
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil, window)

	assert.Zero(t, report.TotalCompletions)
	assert.Zero(t, report.AverageEfficiency)
	assert.NotNil(t, report.PerStaff)
	assert.Empty(t, report.PerStaff)
}

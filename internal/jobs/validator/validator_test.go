package validator

import (
	"testing"
	"time"

	"villaops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() model.TaskTemplate {
	return model.TaskTemplate{
		ID:                       "pre_arrival_cleaning",
		Title:                    "Pre-arrival cleaning",
		Category:                 model.CategoryCleaning,
		EstimatedDurationMinutes: 180,
		Priority:                 model.PriorityHigh,
		Timing:                   model.TimingRule{Kind: model.TimingBeforeCheckIn, Hours: 24},
	}
}

func TestValidateTemplate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(*model.TaskTemplate)
		wantErr string
	}{
		{name: "valid", mutate: func(*model.TaskTemplate) {}},
		{
			name:    "unknown timing kind",
			mutate:  func(tp *model.TaskTemplate) { tp.Timing.Kind = "whenever" },
			wantErr: "Kind must be one of",
		},
		{
			name:    "missing timing kind",
			mutate:  func(tp *model.TaskTemplate) { tp.Timing = model.TimingRule{} },
			wantErr: "Kind is required",
		},
		{
			name: "midpoint with hours",
			mutate: func(tp *model.TaskTemplate) {
				tp.Timing = model.TimingRule{Kind: model.TimingAtStayMidpoint, Hours: 3, MinStayDays: 3}
			},
			wantErr: "hours cannot be set",
		},
		{
			name:    "offset rule with stay guard",
			mutate:  func(tp *model.TaskTemplate) { tp.Timing.MinStayDays = 2 },
			wantErr: "min_stay_days only applies",
		},
		{
			name:    "zero duration",
			mutate:  func(tp *model.TaskTemplate) { tp.EstimatedDurationMinutes = 0 },
			wantErr: "EstimatedDurationMinutes is required",
		},
		{
			name:    "bad priority",
			mutate:  func(tp *model.TaskTemplate) { tp.Priority = "whenever" },
			wantErr: "Priority must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(&tmpl)
			err := v.ValidateTemplate(&tmpl)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateBooking(t *testing.T) {
	v := New()
	checkIn := time.Date(2025, 9, 1, 14, 0, 0, 0, time.UTC)

	booking := &model.Booking{
		ID:         "b-1",
		Status:     model.BookingApproved,
		PropertyID: "p-1",
		CheckIn:    checkIn,
		CheckOut:   checkIn.Add(72 * time.Hour),
	}
	assert.NoError(t, v.ValidateBooking(booking))

	booking.CheckOut = checkIn
	err := v.ValidateBooking(booking)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CheckOut")
}

func TestValidateStatusUpdate(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateStatusUpdate(&model.TaskStatusUpdate{Status: model.TaskInProgress}))
	assert.NoError(t, v.ValidateStatusUpdate(&model.TaskStatusUpdate{Status: model.TaskCompleted, ActualDurationMinutes: 50}))

	err := v.ValidateStatusUpdate(&model.TaskStatusUpdate{Status: model.TaskCompleted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ActualDurationMinutes")

	err = v.ValidateStatusUpdate(&model.TaskStatusUpdate{Status: model.TaskPending})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status must be one of")
}

package timing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"villaops/pkg/model"
)

var ErrInvalidStay = errors.New("check-out must be after check-in")

// Slot is the computed schedule of one task.
type Slot struct {
	ScheduledAt time.Time
	Deadline    time.Time
}

// StayDurationDays rounds the stay up to whole days, so a 69 hour stay counts as 3.
func StayDurationDays(checkIn, checkOut time.Time) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, ErrInvalidStay
	}
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24)), nil
}

// Resolve maps a template's timing rule onto a stay. ok is false when the
// rule does not fire for this stay (midpoint tasks on short stays).
func Resolve(tmpl model.TaskTemplate, checkIn, checkOut time.Time, stayDays int) (Slot, bool, error) {
	if !checkOut.After(checkIn) {
		return Slot{}, false, ErrInvalidStay
	}

	rule := tmpl.Timing
	offset := hours(rule.Hours)

	var at time.Time
	switch rule.Kind {
	case model.TimingBeforeCheckIn:
		at = checkIn.Add(-offset)
	case model.TimingBeforeCheckOut:
		at = checkOut.Add(-offset)
	case model.TimingAfterCheckOut:
		at = checkOut.Add(offset)
	case model.TimingAtStayMidpoint:
		// Inclusive boundary: a 3 day minimum excludes exactly-3-day stays.
		if stayDays <= rule.MinStayDays {
			return Slot{}, false, nil
		}
		at = checkIn.Add(checkOut.Sub(checkIn) / 2)
	default:
		return Slot{}, false, fmt.Errorf("template %q: unknown timing rule %q", tmpl.ID, rule.Kind)
	}

	at = at.UTC()
	return Slot{
		ScheduledAt: at,
		Deadline:    at.Add(time.Duration(tmpl.EstimatedDurationMinutes) * time.Minute),
	}, true, nil
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

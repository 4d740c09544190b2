package validator

import (
	"errors"
	"fmt"
	"strings"

	"villaops/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// JobValidator checks bookings, templates and task updates at the edges of
// the scheduling core.
type JobValidator struct {
	validate *validator.Validate
}

func New() *JobValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(timingRuleStructLevel, model.TimingRule{})
	return &JobValidator{validate: v}
}

// timingRuleStructLevel keeps each rule unambiguous: offset rules carry hours
// only, the midpoint rule carries the stay guard only.
func timingRuleStructLevel(sl validator.StructLevel) {
	rule := sl.Current().Interface().(model.TimingRule)
	switch rule.Kind {
	case model.TimingAtStayMidpoint:
		if rule.Hours != 0 {
			sl.ReportError(rule.Hours, "Hours", "hours", "midpoint_hours", "")
		}
	default:
		if rule.MinStayDays != 0 {
			sl.ReportError(rule.MinStayDays, "MinStayDays", "min_stay_days", "offset_min_stay", "")
		}
	}
}

func (v *JobValidator) ValidateTemplate(t *model.TaskTemplate) error {
	return v.structErr(v.validate.Struct(t))
}

// ValidateBooking checks the fields materialization depends on.
func (v *JobValidator) ValidateBooking(b *model.Booking) error {
	if err := v.structErr(v.validate.Struct(b)); err != nil {
		return err
	}
	if !b.CheckOut.After(b.CheckIn) {
		return ValidationErrors{{Field: "CheckOut", Message: "check_out must be after check_in"}}
	}
	return nil
}

func (v *JobValidator) ValidateStatusUpdate(u *model.TaskStatusUpdate) error {
	if err := v.structErr(v.validate.Struct(u)); err != nil {
		return err
	}
	if u.Status == model.TaskCompleted && u.ActualDurationMinutes <= 0 {
		return ValidationErrors{{Field: "ActualDurationMinutes", Message: "actual_duration_minutes must be positive when completing a task"}}
	}
	return nil
}

func (v *JobValidator) structErr(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translateValidationErrors(validationErrs)
	}
	return err
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required", "required_if":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min", "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "midpoint_hours":
			message = "hours cannot be set on an at_stay_midpoint rule"
		case "offset_min_stay":
			message = "min_stay_days only applies to at_stay_midpoint rules"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

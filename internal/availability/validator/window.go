package validator

import (
	"time"

	"vintrek/pkg/logger"
	"vintrek/pkg/model"
	"vintrek/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// MaxWindowDays bounds a single availability window.
const MaxWindowDays = 731

type WindowValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewWindowValidator(log *logger.Logger) *WindowValidator {
	return &WindowValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *WindowValidator) Validate(w *model.AvailabilityWindow) error {
	if err := validation.Struct(v.validate, w); err != nil {
		return err
	}
	return v.validateBusinessRules(w)
}

// ValidateStruct applies the tag rules to any request type.
func (v *WindowValidator) ValidateStruct(s any) error {
	return validation.Struct(v.validate, s)
}

func (v *WindowValidator) validateBusinessRules(w *model.AvailabilityWindow) error {
	var errs validation.ValidationErrors

	if !isMidnightUTC(w.StartDate) {
		errs = append(errs, validation.ValidationError{Field: "start_date", Message: "start_date must be a calendar day"})
	}
	if !isMidnightUTC(w.EndDate) {
		errs = append(errs, validation.ValidationError{Field: "end_date", Message: "end_date must be a calendar day"})
	}
	if w.EndDate.Sub(w.StartDate) > MaxWindowDays*24*time.Hour {
		errs = append(errs, validation.ValidationError{Field: "end_date", Message: "window cannot span more than two years"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func isMidnightUTC(t time.Time) bool {
	return t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour))
}

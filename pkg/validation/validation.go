package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/logger"
	"vintrek/pkg/model"

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
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AppError converts the collected field errors into a VALIDATION_ERROR.
func (v ValidationErrors) AppError(message string) *apperrors.AppError {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return apperrors.Validation(message, map[string]any{"fields": fields})
}

// New returns a validator with the domain rules registered and field names
// reported by their json tag.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"resource_kind": validateResourceKind,
		"date_order":    validateDateOrder,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validation", "tag", tag, "error", err)
		}
	}

	return v
}

func validateResourceKind(fl validator.FieldLevel) bool {
	switch k := fl.Field().Interface().(type) {
	case model.ResourceKind:
		return k.Valid()
	case string:
		return model.ResourceKind(k).Valid()
	}
	return false
}

// validateDateOrder requires the field to be strictly after the sibling
// time field named by the param.
func validateDateOrder(fl validator.FieldLevel) bool {
	end, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	sibling := fl.Parent().FieldByName(fl.Param())
	if !sibling.IsValid() {
		return false
	}
	start, ok := sibling.Interface().(time.Time)
	if !ok {
		return false
	}
	return end.After(start)
}

// Struct validates s and returns ValidationErrors on rule failures.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +94771234567)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "resource_kind":
			message = fmt.Sprintf("%s must be campsite or rental_item", err.Field())
		case "date_order":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		out = append(out, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return out
}

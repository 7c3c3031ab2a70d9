package validator

import (
	"fmt"

	"vintrek/pkg/logger"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"
	"vintrek/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

// Validate checks the tag rules and then the pricing invariants: every line
// subtotal is rate*quantity*days and the total is their sum plus the base
// fee total.
func (v *BookingValidator) Validate(b *model.Booking) error {
	if err := validation.Struct(v.validate, b); err != nil {
		return err
	}

	var errs validation.ValidationErrors

	if b.Resource.Kind != model.KindCampsite {
		errs = append(errs, validation.ValidationError{Field: "resource", Message: "a booking must be for a campsite"})
	}

	days := pricing.NumberOfDays(b.StartDate, b.EndDate)
	var sum pricing.Money
	for i, li := range b.LineItems {
		field := fmt.Sprintf("line_items[%d]", i)
		if li.Resource.Kind != model.KindRentalItem {
			errs = append(errs, validation.ValidationError{Field: field, Message: "line items must be rental items"})
		}
		if li.Days != days {
			errs = append(errs, validation.ValidationError{Field: field, Message: fmt.Sprintf("line is priced for %d days, booking spans %d", li.Days, days)})
		}
		want, err := li.UnitRate.Mul(int64(li.Quantity) * int64(li.Days))
		if err != nil || want != li.Subtotal {
			errs = append(errs, validation.ValidationError{Field: field, Message: "subtotal does not match rate, quantity and days"})
		}
		sum += li.Subtotal
	}

	if sum+b.BaseFeeTotal != b.TotalPrice {
		errs = append(errs, validation.ValidationError{
			Field:   "total_price",
			Message: fmt.Sprintf("total %s does not match line items plus base fee (%s)", b.TotalPrice, sum+b.BaseFeeTotal),
		})
	}
	if b.Status == model.BookingConfirmed && b.TransactionID == "" {
		errs = append(errs, validation.ValidationError{Field: "transaction_id", Message: "a confirmed booking needs a transaction id"})
	}

	if len(errs) > 0 {
		v.logger.Debug("Booking business rules failed", "errors", errs.Error())
		return errs
	}
	return nil
}

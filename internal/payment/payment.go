// Package payment charges a booking total through a pluggable gateway.
package payment

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"vintrek/pkg/config"
	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/logger"
	"vintrek/pkg/pricing"
)

type Method string

const (
	MethodCard   Method = "card"
	MethodPayPal Method = "paypal"
	MethodBank   Method = "bank_transfer"
)

func (m Method) Valid() bool {
	return m == MethodCard || m == MethodPayPal || m == MethodBank
}

var (
	ErrDeclined    = errors.New("payment declined")
	ErrUnavailable = errors.New("payment provider unavailable")
)

// Details carries the method specific fields. Only the ones relevant to the
// chosen method are read.
type Details struct {
	CardNumber      string `json:"card_number,omitempty"`
	Expiry          string `json:"expiry,omitempty"`
	CVV             string `json:"cvv,omitempty"`
	HolderName      string `json:"holder_name,omitempty"`
	PayPalEmail     string `json:"paypal_email,omitempty"`
	AccountNumber   string `json:"account_number,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

type ChargeRequest struct {
	Amount         pricing.Money
	Currency       string
	Method         Method
	Details        Details
	IdempotencyKey string
	Reference      string
}

type Receipt struct {
	TransactionID string        `json:"transaction_id"`
	Method        Method        `json:"method"`
	Amount        pricing.Money `json:"amount"`
	Currency      string        `json:"currency"`
	ChargedAt     time.Time     `json:"charged_at"`
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Receipt, error)
}

// NewGateway builds the gateway named by cfg.PaymentProvider.
func NewGateway(cfg *config.Config, log *logger.Logger) Gateway {
	if cfg.PaymentProvider == config.PaymentProviderStripe {
		return NewStripe(cfg.StripeSecretKey, nil, log)
	}
	return NewSimulated(cfg.PaymentLatency, cfg.PaymentFailureRate, log)
}

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateRequest checks the amount and the fields required by the method.
func ValidateRequest(req ChargeRequest) error {
	details := map[string]any{}

	if req.Amount <= 0 {
		details["amount"] = "amount must be positive"
	}
	if !req.Method.Valid() {
		details["method"] = "method must be one of card, paypal, bank_transfer"
	}

	d := req.Details
	switch req.Method {
	case MethodCard:
		if d.PaymentMethodID != "" {
			break
		}
		if digits := digitsOnly(d.CardNumber); len(digits) < 13 || len(digits) > 19 {
			details["card_number"] = "card number must have 13 to 19 digits"
		}
		if !expiryPattern.MatchString(strings.TrimSpace(d.Expiry)) {
			details["expiry"] = "expiry must be MM/YY"
		}
		if !cvvPattern.MatchString(strings.TrimSpace(d.CVV)) {
			details["cvv"] = "cvv must have 3 or 4 digits"
		}
		if strings.TrimSpace(d.HolderName) == "" {
			details["holder_name"] = "card holder name is required"
		}
	case MethodPayPal:
		if !emailPattern.MatchString(strings.TrimSpace(d.PayPalEmail)) {
			details["paypal_email"] = "a valid PayPal email is required"
		}
	case MethodBank:
		if len(digitsOnly(d.AccountNumber)) < 6 {
			details["account_number"] = "account number must have at least 6 digits"
		}
	}

	if len(details) > 0 {
		return apperrors.Validation("Payment details are invalid", details)
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return ""
		}
	}
	return b.String()
}

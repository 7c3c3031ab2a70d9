package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vintrek/pkg/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe charges cards through PaymentIntents confirmed on creation. The
// card must already be tokenized into a payment method id.
type Stripe struct {
	api *client.API
	log *logger.Logger
}

// NewStripe builds a gateway for key. backends may be nil to use the
// default Stripe endpoints.
func NewStripe(key string, backends *stripe.Backends, log *logger.Logger) *Stripe {
	return &Stripe{
		api: client.New(key, backends),
		log: log,
	}
}

func (s *Stripe) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if req.Method != MethodCard || req.Details.PaymentMethodID == "" {
		return nil, fmt.Errorf("%w: stripe accepts card payment methods only", ErrDeclined)
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(int64(req.Amount)),
		Currency:           stripe.String(req.Currency),
		PaymentMethod:      stripe.String(req.Details.PaymentMethodID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if req.Reference != "" {
		params.AddMetadata("reference", req.Reference)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			s.log.Warn("Stripe declined payment", "reference", req.Reference, "code", stripeErr.Code, "decline_code", stripeErr.DeclineCode)
			return nil, fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
		}
		s.log.Error("Stripe request failed", "reference", req.Reference, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		s.log.Warn("Stripe payment not captured", "payment_intent", pi.ID, "status", pi.Status)
		return nil, fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, pi.ID, pi.Status)
	}

	s.log.Info("Stripe payment captured", "payment_intent", pi.ID, "reference", req.Reference)
	return &Receipt{
		TransactionID: pi.ID,
		Method:        MethodCard,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ChargedAt:     time.Unix(pi.Created, 0).UTC(),
	}, nil
}

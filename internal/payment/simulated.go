package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"vintrek/pkg/logger"

	"github.com/google/uuid"
)

var transactionPrefixes = map[Method]string{
	MethodCard:   "TXN_",
	MethodPayPal: "PP_",
	MethodBank:   "BT_",
}

// Simulated approves charges after an artificial delay. Card payments take
// the full latency, PayPal three quarters of it and bank transfers half.
// A retried idempotency key returns the original receipt.
type Simulated struct {
	latency     time.Duration
	failureRate float64
	log         *logger.Logger

	roll func() float64
	now  func() time.Time

	mu       sync.Mutex
	receipts map[string]*Receipt
}

func NewSimulated(latency time.Duration, failureRate float64, log *logger.Logger) *Simulated {
	return &Simulated{
		latency:     latency,
		failureRate: failureRate,
		log:         log,
		roll:        rand.Float64,
		now:         time.Now,
		receipts:    make(map[string]*Receipt),
	}
}

func (s *Simulated) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		s.mu.Lock()
		prev, ok := s.receipts[req.IdempotencyKey]
		s.mu.Unlock()
		if ok {
			return prev, nil
		}
	}

	if err := s.wait(ctx, req.Method); err != nil {
		return nil, err
	}

	if s.failureRate > 0 && s.roll() < s.failureRate {
		s.log.Warn("Simulated payment declined", "method", req.Method, "reference", req.Reference)
		return nil, fmt.Errorf("%w: simulated decline", ErrDeclined)
	}

	receipt := &Receipt{
		TransactionID: transactionPrefixes[req.Method] + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]),
		Method:        req.Method,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ChargedAt:     s.now().UTC(),
	}

	if req.IdempotencyKey != "" {
		s.mu.Lock()
		if prev, ok := s.receipts[req.IdempotencyKey]; ok {
			receipt = prev
		} else {
			s.receipts[req.IdempotencyKey] = receipt
		}
		s.mu.Unlock()
	}

	s.log.Info("Simulated payment captured",
		"transaction_id", receipt.TransactionID,
		"method", receipt.Method,
		"amount", receipt.Amount.String(),
		"reference", req.Reference,
	)
	return receipt, nil
}

func (s *Simulated) wait(ctx context.Context, method Method) error {
	d := s.latency
	switch method {
	case MethodPayPal:
		d = d * 3 / 4
	case MethodBank:
		d /= 2
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	case <-timer.C:
		return nil
	}
}

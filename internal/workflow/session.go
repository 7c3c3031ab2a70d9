// Package workflow models one customer's booking session as a state machine.
//
// Transitions are pure: they inspect and modify a Session value and never
// perform I/O. The engine in workflow/service makes the backend calls and
// persists the result.
package workflow

import (
	"fmt"
	"slices"
	"time"

	"vintrek/internal/advisory"
	"vintrek/internal/cart"
	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"
)

type State string

const (
	StateBooking         State = "Booking"
	StateWeatherAdvisory State = "WeatherAdvisory"
	StateCheckout        State = "Checkout"
	StateConfirmation    State = "Confirmation"
)

var validTransitions = map[State][]State{
	StateBooking:         {StateWeatherAdvisory},
	StateWeatherAdvisory: {StateCheckout, StateBooking},
	StateCheckout:        {StateConfirmation, StateWeatherAdvisory},
	StateConfirmation:    {StateBooking},
}

// CanTransition reports whether the machine allows from -> to.
func CanTransition(from, to State) bool {
	return slices.Contains(validTransitions[from], to)
}

// Error kinds recorded on a session.
const (
	KindValidation            = "ValidationError"
	KindInvalidQuantity       = "InvalidQuantity"
	KindResourceNotFound      = "ResourceNotFound"
	KindResolutionUnavailable = "ResolutionUnavailable"
	KindSubmissionFailed      = "SubmissionFailed"
	KindConflict              = "Conflict"
	KindInternal              = "Internal"
)

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Payment is a captured charge. Once set, a retried checkout reuses it.
type Payment struct {
	TransactionID string        `json:"transaction_id"`
	Method        string        `json:"method"`
	Amount        pricing.Money `json:"amount"`
	ChargedAt     time.Time     `json:"charged_at"`
}

// Campsite is the part of the chosen campsite the workflow needs.
type Campsite struct {
	Ref         model.ResourceRef `json:"ref"`
	Name        string            `json:"name"`
	Capacity    int               `json:"capacity"`
	DailyFee    pricing.Money     `json:"daily_fee"`
	Coordinates model.Coordinates `json:"coordinates"`
}

func CampsiteFrom(res *model.Resource) *Campsite {
	c := &Campsite{Ref: res.Ref(), Name: res.Name, DailyFee: res.DailyRate()}
	if res.Campsite != nil {
		c.Capacity = res.Campsite.Capacity
		c.Coordinates = res.Campsite.Coordinates
	}
	return c
}

type Session struct {
	ID         string             `json:"id"`
	Generation int                `json:"generation"`
	State      State              `json:"state"`
	Draft      model.BookingDraft `json:"draft"`
	Campsite   *Campsite          `json:"campsite,omitempty"`
	Cart       cart.Cart          `json:"cart"`
	Quote      *pricing.Quote     `json:"quote,omitempty"`
	Advisory   *advisory.Advisory `json:"advisory,omitempty"`
	AdvanceAt  *time.Time         `json:"advance_at,omitempty"`
	IsBusy     bool               `json:"is_busy"`
	Error      *Error             `json:"error,omitempty"`
	Payment    *Payment           `json:"payment,omitempty"`
	Attempts   int                `json:"payment_attempts"`
	BookingID  string             `json:"booking_id,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// New starts a session in Booking for the day range [today, today+1).
func New(id string, today, now time.Time) *Session {
	s := &Session{
		ID:        id,
		State:     StateBooking,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.resetDraft(today)
	return s
}

func (s *Session) resetDraft(today time.Time) {
	contact := s.Draft.Contact
	s.Draft = model.BookingDraft{
		StartDate: today,
		EndDate:   today.AddDate(0, 0, 1),
		PartySize: 1,
		Contact:   contact,
	}
}

// BookingKey identifies the booking this session generation may create.
// Every NewBooking starts a new generation and so a new booking.
func (s *Session) BookingKey() string {
	return fmt.Sprintf("%s:%d", s.ID, s.Generation)
}

// PaymentKey identifies the current charge attempt.
func (s *Session) PaymentKey() string {
	return fmt.Sprintf("%s:%d", s.BookingKey(), s.Attempts)
}

// Resources lists the campsite and every cart item.
func (s *Session) Resources() []model.ResourceRef {
	refs := make([]model.ResourceRef, 0, len(s.Cart.Lines)+1)
	if s.Campsite != nil {
		refs = append(refs, s.Campsite.Ref)
	}
	return append(refs, s.Cart.Refs()...)
}

// Reprice recomputes the quote from the cart, the dates and the campsite fee.
func (s *Session) Reprice() error {
	return s.SetCart(s.Cart)
}

// SetCart replaces the cart and its quote together. On error neither changes.
func (s *Session) SetCart(c cart.Cart) error {
	var fee pricing.Money
	if s.Campsite != nil {
		fee = s.Campsite.DailyFee
	}
	q, err := c.Total(pricing.NumberOfDays(s.Draft.StartDate, s.Draft.EndDate), fee)
	if err != nil {
		return err
	}
	s.Cart = c
	s.Quote = &q
	return nil
}

// RequireState fails with Conflict unless the session is in one of states.
func (s *Session) RequireState(states ...State) error {
	if slices.Contains(states, s.State) {
		return nil
	}
	return apperrors.Conflict(fmt.Sprintf("not allowed while the session is in %s", s.State)).WithDetails(map[string]any{
		"state":   string(s.State),
		"allowed": states,
	})
}

func (s *Session) transition(to State) error {
	if !CanTransition(s.State, to) {
		return apperrors.Conflict(fmt.Sprintf("cannot move from %s to %s", s.State, to)).WithDetails(map[string]any{
			"from": string(s.State),
			"to":   string(to),
		})
	}
	s.State = to
	return nil
}

// CheckSubmission runs the entry guards of WeatherAdvisory that need no
// backend: required fields, date order, party size and accepted terms.
func (s *Session) CheckSubmission() error {
	if err := s.RequireState(StateBooking); err != nil {
		return err
	}

	fields := map[string]any{}
	d := s.Draft
	if s.Campsite == nil {
		fields["campsite"] = "a campsite is required"
	}
	switch {
	case d.StartDate.IsZero():
		fields["start_date"] = "start date is required"
	case d.EndDate.IsZero():
		fields["end_date"] = "end date is required"
	case !d.StartDate.Before(d.EndDate):
		fields["end_date"] = "end date must be after start date"
	}
	if d.PartySize < 1 {
		fields["party_size"] = "party size must be at least 1"
	} else if s.Campsite != nil && s.Campsite.Capacity > 0 && d.PartySize > s.Campsite.Capacity {
		fields["party_size"] = fmt.Sprintf("campsite holds at most %d people", s.Campsite.Capacity)
	}
	if !d.TermsAccepted {
		fields["terms_accepted"] = "terms and conditions must be accepted"
	}

	if len(fields) > 0 {
		return apperrors.Validation("Booking is not ready to submit", map[string]any{"fields": fields})
	}
	return nil
}

// EnterAdvisory moves Booking -> WeatherAdvisory. Without alerts the session
// advances to Checkout by itself once delay has passed; with alerts it waits
// for Acknowledge.
func (s *Session) EnterAdvisory(adv *advisory.Advisory, now time.Time, delay time.Duration) error {
	if err := s.transition(StateWeatherAdvisory); err != nil {
		return err
	}
	s.Advisory = adv
	s.arm(now, delay)
	return nil
}

func (s *Session) arm(now time.Time, delay time.Duration) {
	s.AdvanceAt = nil
	if !s.Advisory.HasAlerts() {
		at := now.Add(delay)
		s.AdvanceAt = &at
	}
}

func (s *Session) Acknowledge() error {
	if err := s.transition(StateCheckout); err != nil {
		return err
	}
	s.AdvanceAt = nil
	return nil
}

// Tick applies a due auto-advance. It reports whether the state changed.
func (s *Session) Tick(now time.Time) bool {
	if s.State != StateWeatherAdvisory || s.AdvanceAt == nil || now.Before(*s.AdvanceAt) {
		return false
	}
	s.State = StateCheckout
	s.AdvanceAt = nil
	return true
}

// Back steps one state towards Booking. Leaving WeatherAdvisory discards the
// advisory; returning to it from Checkout re-arms the auto-advance. A session
// holding a captured payment without a booking stays in Checkout.
func (s *Session) Back(now time.Time, delay time.Duration) error {
	if s.State == StateCheckout && s.HoldsUnbookedPayment() {
		return apperrors.Conflict("payment was already captured, retry payment to finish the booking").
			WithDetails(map[string]any{"transaction_id": s.Payment.TransactionID})
	}
	switch s.State {
	case StateWeatherAdvisory:
		if err := s.transition(StateBooking); err != nil {
			return err
		}
		s.Advisory = nil
		s.AdvanceAt = nil
	case StateCheckout:
		if err := s.transition(StateWeatherAdvisory); err != nil {
			return err
		}
		s.arm(now, delay)
	default:
		return s.RequireState(StateWeatherAdvisory, StateCheckout)
	}
	return nil
}

// HoldsUnbookedPayment reports a captured charge whose booking was not stored.
func (s *Session) HoldsUnbookedPayment() bool {
	return s.Payment != nil && s.BookingID == ""
}

// RecordPayment remembers a captured charge for this generation.
func (s *Session) RecordPayment(p Payment) {
	s.Payment = &p
}

// CompletePayment moves Checkout -> Confirmation for the stored booking.
func (s *Session) CompletePayment(bookingID string) error {
	if s.Payment == nil {
		return apperrors.Conflict("no captured payment for this session")
	}
	if err := s.transition(StateConfirmation); err != nil {
		return err
	}
	s.BookingID = bookingID
	s.Cart.Clear()
	return nil
}

// Reset starts a new booking from Confirmation. The contact is kept.
func (s *Session) Reset(today time.Time) error {
	if err := s.transition(StateBooking); err != nil {
		return err
	}
	s.Generation++
	s.resetDraft(today)
	s.Campsite = nil
	s.Cart.Clear()
	s.Quote = nil
	s.Advisory = nil
	s.AdvanceAt = nil
	s.Error = nil
	s.Payment = nil
	s.Attempts = 0
	s.BookingID = ""
	return s.Reprice()
}

// Fail records err on the session for the client to display.
func (s *Session) Fail(err error) {
	appErr := apperrors.AsAppError(err)
	s.Error = &Error{Kind: errorKind(appErr.Code), Message: appErr.Message}
}

func errorKind(code string) string {
	switch code {
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return KindValidation
	case apperrors.CodeInvalidQuantity:
		return KindInvalidQuantity
	case apperrors.CodeNotFound:
		return KindResourceNotFound
	case apperrors.CodeResolutionUnavailable, apperrors.CodeTimeout:
		return KindResolutionUnavailable
	case apperrors.CodeSubmissionFailed:
		return KindSubmissionFailed
	case apperrors.CodeConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

package workflow

import (
	"testing"
	"time"

	"vintrek/internal/advisory"
	"vintrek/internal/cart"
	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"
)

var (
	today = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	now   = time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC)
)

func readySession() *Session {
	s := New("sess-1", today, now)
	s.Campsite = &Campsite{Ref: model.NewCampsiteRef("campsite-A"), Name: "Riverside", Capacity: 4, DailyFee: pricing.FromMajor(10)}
	s.Draft.EndDate = today.AddDate(0, 0, 3)
	s.Draft.PartySize = 2
	s.Draft.TermsAccepted = true
	return s
}

func stormy() *advisory.Advisory {
	return &advisory.Advisory{Alerts: []advisory.Alert{{Title: "Heavy Rain Warning"}}}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateBooking, StateWeatherAdvisory, true},
		{StateBooking, StateCheckout, false},
		{StateBooking, StateConfirmation, false},
		{StateWeatherAdvisory, StateCheckout, true},
		{StateWeatherAdvisory, StateBooking, true},
		{StateWeatherAdvisory, StateConfirmation, false},
		{StateCheckout, StateConfirmation, true},
		{StateCheckout, StateWeatherAdvisory, true},
		{StateCheckout, StateBooking, false},
		{StateConfirmation, StateBooking, true},
		{StateConfirmation, StateCheckout, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New("sess-1", today, now)

	if s.State != StateBooking {
		t.Errorf("state = %s", s.State)
	}
	if !s.Draft.StartDate.Equal(today) || !s.Draft.EndDate.Equal(today.AddDate(0, 0, 1)) {
		t.Errorf("dates = %s..%s", s.Draft.StartDate, s.Draft.EndDate)
	}
	if s.Draft.PartySize != 1 {
		t.Errorf("party size = %d", s.Draft.PartySize)
	}
	if s.BookingKey() != "sess-1:0" || s.PaymentKey() != "sess-1:0:0" {
		t.Errorf("keys = %s %s", s.BookingKey(), s.PaymentKey())
	}
}

func TestCheckSubmission_Guards(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(s *Session)
		wantField string
	}{
		{"ready", func(s *Session) {}, ""},
		{"terms not accepted", func(s *Session) { s.Draft.TermsAccepted = false }, "terms_accepted"},
		{"no campsite", func(s *Session) { s.Campsite = nil }, "campsite"},
		{"end before start", func(s *Session) { s.Draft.EndDate = s.Draft.StartDate.AddDate(0, 0, -1) }, "end_date"},
		{"same day", func(s *Session) { s.Draft.EndDate = s.Draft.StartDate }, "end_date"},
		{"missing start", func(s *Session) { s.Draft.StartDate = time.Time{} }, "start_date"},
		{"empty party", func(s *Session) { s.Draft.PartySize = 0 }, "party_size"},
		{"over capacity", func(s *Session) { s.Draft.PartySize = 5 }, "party_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := readySession()
			tt.mutate(s)

			err := s.CheckSubmission()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeValidation {
				t.Fatalf("code = %s, want validation", appErr.Code)
			}
			fields, _ := appErr.Details["fields"].(map[string]any)
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want %s", fields, tt.wantField)
			}
			if s.State != StateBooking {
				t.Errorf("state = %s, guard failure must not transition", s.State)
			}
		})
	}
}

func TestCheckSubmission_WrongState(t *testing.T) {
	s := readySession()
	s.State = StateCheckout

	if err := s.CheckSubmission(); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestAdvisory_AutoAdvanceWithoutAlerts(t *testing.T) {
	s := readySession()
	if err := s.EnterAdvisory(&advisory.Advisory{}, now, 5*time.Second); err != nil {
		t.Fatalf("EnterAdvisory: %v", err)
	}
	if s.AdvanceAt == nil || !s.AdvanceAt.Equal(now.Add(5*time.Second)) {
		t.Fatalf("advance_at = %v", s.AdvanceAt)
	}

	if s.Tick(now.Add(4 * time.Second)) {
		t.Error("advanced before the delay")
	}
	if !s.Tick(now.Add(5 * time.Second)) {
		t.Fatal("did not advance after the delay")
	}
	if s.State != StateCheckout || s.AdvanceAt != nil {
		t.Errorf("state = %s, advance_at = %v", s.State, s.AdvanceAt)
	}
}

func TestAdvisory_AlertsHoldUntilAcknowledged(t *testing.T) {
	s := readySession()
	if err := s.EnterAdvisory(stormy(), now, 5*time.Second); err != nil {
		t.Fatalf("EnterAdvisory: %v", err)
	}

	if s.Tick(now.Add(24 * time.Hour)) {
		t.Fatal("a flagged advisory must never auto-advance")
	}
	if err := s.Acknowledge(); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if s.State != StateCheckout {
		t.Errorf("state = %s", s.State)
	}
}

func TestAdvisory_FailedLookupCountsAsNoAlert(t *testing.T) {
	s := readySession()
	if err := s.EnterAdvisory(nil, now, time.Second); err != nil {
		t.Fatalf("EnterAdvisory: %v", err)
	}
	if s.AdvanceAt == nil {
		t.Error("nil advisory must arm the auto-advance")
	}
}

func TestBack(t *testing.T) {
	s := readySession()
	_ = s.EnterAdvisory(stormy(), now, time.Second)
	_ = s.Acknowledge()

	if err := s.Back(now, time.Second); err != nil {
		t.Fatalf("Back from Checkout: %v", err)
	}
	if s.State != StateWeatherAdvisory || s.Advisory == nil || s.AdvanceAt != nil {
		t.Errorf("after back: state = %s advisory = %v advance_at = %v", s.State, s.Advisory, s.AdvanceAt)
	}

	if err := s.Back(now, time.Second); err != nil {
		t.Fatalf("Back from WeatherAdvisory: %v", err)
	}
	if s.State != StateBooking || s.Advisory != nil {
		t.Errorf("after back: state = %s advisory = %v", s.State, s.Advisory)
	}

	if err := s.Back(now, time.Second); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("Back from Booking: err = %v, want conflict", err)
	}
}

func TestBack_FromCheckoutRearmsAutoAdvance(t *testing.T) {
	s := readySession()
	_ = s.EnterAdvisory(&advisory.Advisory{}, now, time.Second)
	s.Tick(now.Add(time.Second))

	later := now.Add(time.Minute)
	if err := s.Back(later, time.Second); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if s.AdvanceAt == nil || !s.AdvanceAt.Equal(later.Add(time.Second)) {
		t.Errorf("advance_at = %v", s.AdvanceAt)
	}
}

func TestBack_HeldPaymentKeepsCheckout(t *testing.T) {
	s := readySession()
	_ = s.EnterAdvisory(&advisory.Advisory{}, now, 0)
	_ = s.Acknowledge()
	s.RecordPayment(Payment{TransactionID: "TXN_1", Method: "card", Amount: pricing.FromMajor(30)})

	if !s.HoldsUnbookedPayment() {
		t.Fatal("a captured payment without a booking must be held")
	}
	if err := s.Back(now, time.Second); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("Back: err = %v, want conflict", err)
	}
	if s.State != StateCheckout || s.Payment == nil {
		t.Errorf("state = %s payment = %v", s.State, s.Payment)
	}
}

func TestNoConfirmationWithoutPayment(t *testing.T) {
	s := readySession()
	if err := s.CompletePayment("b-1"); err == nil {
		t.Fatal("Booking -> Confirmation must be rejected")
	}

	_ = s.EnterAdvisory(&advisory.Advisory{}, now, 0)
	_ = s.Acknowledge()
	if err := s.CompletePayment("b-1"); err == nil {
		t.Fatal("confirmation without a captured payment must be rejected")
	}

	s.RecordPayment(Payment{TransactionID: "TXN_1", Method: "card"})
	if err := s.CompletePayment("b-1"); err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if s.State != StateConfirmation || s.BookingID != "b-1" {
		t.Errorf("state = %s booking = %s", s.State, s.BookingID)
	}
}

func TestReset(t *testing.T) {
	s := readySession()
	s.Draft.Contact = &model.Contact{Name: "Nimal"}
	_ = s.Cart.Add(cart.Line{Resource: model.NewRentalItemRef("tent-2p"), UnitRate: pricing.FromMajor(25)}, 2)
	_ = s.EnterAdvisory(&advisory.Advisory{}, now, 0)
	_ = s.Acknowledge()
	s.RecordPayment(Payment{TransactionID: "TXN_1"})
	s.Attempts = 1
	_ = s.CompletePayment("b-1")

	next := today.AddDate(0, 0, 1)
	if err := s.Reset(next); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if s.State != StateBooking || !s.Cart.IsEmpty() || s.Payment != nil || s.BookingID != "" || s.Campsite != nil {
		t.Errorf("session not reset: %+v", s)
	}
	if !s.Draft.StartDate.Equal(next) || !s.Draft.EndDate.Equal(next.AddDate(0, 0, 1)) || s.Draft.PartySize != 1 {
		t.Errorf("draft = %+v", s.Draft)
	}
	if s.Draft.Contact == nil || s.Draft.Contact.Name != "Nimal" {
		t.Error("contact should survive a reset")
	}
	if s.BookingKey() != "sess-1:1" {
		t.Errorf("booking key = %s, a new generation needs a new key", s.BookingKey())
	}
}

func TestReprice_CampsiteWithTents(t *testing.T) {
	s := readySession()
	if err := s.Cart.Add(cart.Line{Resource: model.NewRentalItemRef("tent-2p"), Name: "Tent", UnitRate: pricing.FromMajor(25)}, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := s.Reprice(); err != nil {
		t.Fatalf("Reprice: %v", err)
	}
	if s.Quote.GrandTotal.String() != "180.00" {
		t.Errorf("grand total = %s, want 180.00", s.Quote.GrandTotal)
	}
}

func TestFail_RecordsKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apperrors.Validation("bad", nil), KindValidation},
		{apperrors.InvalidQuantity(0), KindInvalidQuantity},
		{apperrors.ResourceNotFound("campsite", "x"), KindResourceNotFound},
		{apperrors.ResolutionUnavailable("down", nil), KindResolutionUnavailable},
		{apperrors.SubmissionFailed("declined", nil), KindSubmissionFailed},
		{apperrors.Conflict("busy"), KindConflict},
	}

	for _, tt := range tests {
		s := New("sess-1", today, now)
		s.Fail(tt.err)
		if s.Error == nil || s.Error.Kind != tt.want {
			t.Errorf("Fail(%v) kind = %+v, want %s", tt.err, s.Error, tt.want)
		}
	}
}

func TestDraftUpdate_Apply(t *testing.T) {
	d := model.BookingDraft{PartySize: 1, TrailID: "knuckles"}
	party := 3
	terms := true
	(&DraftUpdate{PartySize: &party, TermsAccepted: &terms}).Apply(&d)

	if d.PartySize != 3 || !d.TermsAccepted || d.TrailID != "knuckles" {
		t.Errorf("draft = %+v", d)
	}
}

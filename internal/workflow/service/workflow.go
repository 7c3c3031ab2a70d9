package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"vintrek/internal/advisory"
	availabilityservice "vintrek/internal/availability/service"
	"vintrek/internal/cart"
	"vintrek/internal/payment"
	"vintrek/internal/workflow"
	"vintrek/internal/workflow/store"
	"vintrek/pkg/config"
	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/locale"
	"vintrek/pkg/model"
	"vintrek/pkg/sanitizer"
	"vintrek/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Availability interface {
	CheckAll(ctx context.Context, refs []model.ResourceRef, start, end time.Time) (*availabilityservice.BatchResult, error)
}

type Directory interface {
	GetResource(ctx context.Context, ref model.ResourceRef) (*model.Resource, error)
}

type Bookings interface {
	CreateBooking(ctx context.Context, b *model.Booking) (*model.Booking, error)
}

// WorkflowService drives booking sessions through
// Booking -> WeatherAdvisory -> Checkout -> Confirmation.
//
// Every mutating operation holds the session's busy lock for its duration.
// A request arriving while the lock is held fails with Conflict.
type WorkflowService interface {
	Open(ctx context.Context, upd *workflow.DraftUpdate) (*workflow.Session, error)
	Get(ctx context.Context, id string) (*workflow.Session, error)
	Abandon(ctx context.Context, id string) error

	UpdateDraft(ctx context.Context, id string, upd *workflow.DraftUpdate) (*workflow.Session, error)
	AddItem(ctx context.Context, id string, ref model.ResourceRef, quantity int) (*workflow.Session, error)
	RemoveItem(ctx context.Context, id string, ref model.ResourceRef) (*workflow.Session, error)
	SetQuantity(ctx context.Context, id string, ref model.ResourceRef, quantity int) (*workflow.Session, error)
	ClearCart(ctx context.Context, id string) (*workflow.Session, error)

	Submit(ctx context.Context, id string) (*workflow.Session, error)
	Acknowledge(ctx context.Context, id string) (*workflow.Session, error)
	Back(ctx context.Context, id string) (*workflow.Session, error)
	Pay(ctx context.Context, id string, method payment.Method, details payment.Details) (*workflow.Session, error)
	NewBooking(ctx context.Context, id string) (*workflow.Session, error)
}

type workflowService struct {
	store        store.SessionStore
	availability Availability
	directory    Directory
	advisories   advisory.Service
	gateway      payment.Gateway
	bookings     Bookings
	validate     *validator.Validate
	cfg          *config.Config

	now   func() time.Time
	newID func() string
}

func NewWorkflowService(
	store store.SessionStore,
	availability Availability,
	directory Directory,
	advisories advisory.Service,
	gateway payment.Gateway,
	bookings Bookings,
	cfg *config.Config,
) WorkflowService {
	return &workflowService{
		store:        store,
		availability: availability,
		directory:    directory,
		advisories:   advisories,
		gateway:      gateway,
		bookings:     bookings,
		validate:     validation.New(cfg.Log),
		cfg:          cfg,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (s *workflowService) Open(ctx context.Context, upd *workflow.DraftUpdate) (*workflow.Session, error) {
	now := s.now()
	sess := workflow.New(s.newID(), s.today(upd, now), now)

	if err := s.applyDraft(ctx, sess, upd); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, s.storeError(ctx, "Open", sess.ID, err)
	}

	s.cfg.Log.WithContext(ctx).Info("Booking session opened",
		"session_id", sess.ID,
		"start_date", sess.Draft.StartDate.Format(time.DateOnly),
		"end_date", sess.Draft.EndDate.Format(time.DateOnly),
	)
	return sess, nil
}

func (s *workflowService) Get(ctx context.Context, id string) (*workflow.Session, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	busy, err := s.store.IsLocked(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "Get", id, err)
	}
	sess.IsBusy = busy
	return sess, nil
}

func (s *workflowService) Abandon(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}
	release, err := s.store.Lock(ctx, id)
	if err != nil {
		return s.storeError(ctx, "Abandon", id, err)
	}
	defer release()

	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(ctx, "Abandon", id, err)
	}
	s.cfg.Log.WithContext(ctx).Info("Booking session abandoned", "session_id", id)
	return nil
}

func (s *workflowService) UpdateDraft(ctx context.Context, id string, upd *workflow.DraftUpdate) (*workflow.Session, error) {
	return s.mutate(ctx, id, "UpdateDraft", func(ctx context.Context, sess *workflow.Session) error {
		if err := sess.RequireState(workflow.StateBooking); err != nil {
			return err
		}
		return s.applyDraft(ctx, sess, upd)
	})
}

func (s *workflowService) AddItem(ctx context.Context, id string, ref model.ResourceRef, quantity int) (*workflow.Session, error) {
	return s.mutate(ctx, id, "AddItem", func(ctx context.Context, sess *workflow.Session) error {
		if err := sess.RequireState(workflow.StateBooking); err != nil {
			return err
		}
		if quantity < 1 {
			return apperrors.InvalidQuantity(quantity)
		}
		if err := ref.Validate(); err != nil {
			return err
		}
		if ref.Kind != model.KindRentalItem {
			return apperrors.Validation("only rental items can be added to the cart", map[string]any{"resource": ref.String()})
		}

		res, err := s.resolve(ctx, ref)
		if err != nil {
			return err
		}
		if !res.Active || (res.RentalItem != nil && res.RentalItem.StockStatus == model.OutOfStock) {
			return apperrors.Conflict(res.Name + " is not available for rent").WithDetails(map[string]any{"resource": ref.String()})
		}

		next := cloneCart(sess.Cart)
		line := cart.Line{Resource: ref, Name: res.Name, UnitRate: res.DailyRate()}
		if err := next.Add(line, quantity); err != nil {
			return err
		}
		return sess.SetCart(next)
	})
}

func (s *workflowService) RemoveItem(ctx context.Context, id string, ref model.ResourceRef) (*workflow.Session, error) {
	return s.mutate(ctx, id, "RemoveItem", func(ctx context.Context, sess *workflow.Session) error {
		if err := sess.RequireState(workflow.StateBooking); err != nil {
			return err
		}
		next := cloneCart(sess.Cart)
		if !next.Remove(ref) {
			return apperrors.NotFoundWithID("Cart line", ref.String())
		}
		return sess.SetCart(next)
	})
}

func (s *workflowService) SetQuantity(ctx context.Context, id string, ref model.ResourceRef, quantity int) (*workflow.Session, error) {
	return s.mutate(ctx, id, "SetQuantity", func(ctx context.Context, sess *workflow.Session) error {
		if err := sess.RequireState(workflow.StateBooking); err != nil {
			return err
		}
		next := cloneCart(sess.Cart)
		if err := next.SetQuantity(ref, quantity); err != nil {
			return err
		}
		return sess.SetCart(next)
	})
}

func (s *workflowService) ClearCart(ctx context.Context, id string) (*workflow.Session, error) {
	return s.mutate(ctx, id, "ClearCart", func(ctx context.Context, sess *workflow.Session) error {
		if err := sess.RequireState(workflow.StateBooking); err != nil {
			return err
		}
		return sess.SetCart(cart.Cart{})
	})
}

// Submit checks the guards, the availability of every resource and the
// weather, then enters WeatherAdvisory. Any failure leaves the session in
// Booking.
func (s *workflowService) Submit(ctx context.Context, id string) (*workflow.Session, error) {
	return s.mutate(ctx, id, "Submit", func(ctx context.Context, sess *workflow.Session) error {
		var adv *advisory.Advisory
		return runSteps(ctx, "submit",
			newStep("guards", func(ctx context.Context) error {
				return sess.CheckSubmission()
			}),
			newStep("availability", func(ctx context.Context) error {
				return s.checkAvailability(ctx, sess)
			}),
			newStep("advisory", func(ctx context.Context) error {
				adv = s.lookupAdvisory(ctx, sess)
				return nil
			}),
			newStep("transition", func(ctx context.Context) error {
				return sess.EnterAdvisory(adv, s.now(), s.cfg.AdvisoryAutoAdvanceDelay)
			}),
		)
	})
}

// Acknowledge accepts the advisory. A session that already auto-advanced is
// left in Checkout.
func (s *workflowService) Acknowledge(ctx context.Context, id string) (*workflow.Session, error) {
	return s.mutate(ctx, id, "Acknowledge", func(ctx context.Context, sess *workflow.Session) error {
		if sess.State == workflow.StateCheckout {
			return nil
		}
		return sess.Acknowledge()
	})
}

func (s *workflowService) Back(ctx context.Context, id string) (*workflow.Session, error) {
	return s.mutate(ctx, id, "Back", func(ctx context.Context, sess *workflow.Session) error {
		return sess.Back(s.now(), s.cfg.AdvisoryAutoAdvanceDelay)
	})
}

// Pay charges the quoted total and stores the booking. A captured charge is
// kept on the session, so retrying after a failed booking write never
// charges twice.
func (s *workflowService) Pay(ctx context.Context, id string, method payment.Method, details payment.Details) (*workflow.Session, error) {
	return s.mutate(ctx, id, "Pay", func(ctx context.Context, sess *workflow.Session) error {
		var booking *model.Booking
		return runSteps(ctx, "pay",
			newStep("state", func(ctx context.Context) error {
				return sess.RequireState(workflow.StateCheckout)
			}),
			newStep("quote", func(ctx context.Context) error {
				return sess.Reprice()
			}),
			newStep("charge", func(ctx context.Context) error {
				return s.charge(ctx, sess, method, details)
			}),
			newStep("booking", func(ctx context.Context) error {
				var err error
				booking, err = s.createBooking(ctx, sess)
				return err
			}),
			newStep("confirm", func(ctx context.Context) error {
				return sess.CompletePayment(booking.ID)
			}),
		)
	})
}

func (s *workflowService) NewBooking(ctx context.Context, id string) (*workflow.Session, error) {
	return s.mutate(ctx, id, "NewBooking", func(ctx context.Context, sess *workflow.Session) error {
		return sess.Reset(s.today(&workflow.DraftUpdate{Contact: sess.Draft.Contact}, s.now()))
	})
}

// --- Helpers ---

// mutate runs fn on the locked session and saves the outcome. A failure is
// recorded on the session and saved too, so on error fn may only leave the
// changes that must survive it, such as a captured payment.
func (s *workflowService) mutate(ctx context.Context, id, op string, fn func(ctx context.Context, sess *workflow.Session) error) (*workflow.Session, error) {
	log := s.cfg.Log.WithContext(ctx)

	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}
	release, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, op, id, err)
	}
	defer release()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	opErr := fn(ctx, sess)
	if opErr != nil {
		sess.Fail(opErr)
	} else {
		sess.Error = nil
	}
	sess.UpdatedAt = s.now()

	if err := s.store.Save(ctx, sess); err != nil {
		log.Error("Failed to save session", "session_id", id, "operation", op, "error", err)
		if opErr == nil {
			return nil, s.storeError(ctx, op, id, err)
		}
	}

	if opErr != nil {
		log.Info("Workflow operation failed",
			"session_id", id,
			"operation", op,
			"state", sess.State,
			"error", opErr,
		)
		return nil, opErr
	}

	log.Debug("Workflow operation applied", "session_id", id, "operation", op, "state", sess.State)
	return sess, nil
}

// load reads a session and applies a due auto-advance to the copy it
// returns. Only mutate persists the advance, under the busy lock.
func (s *workflowService) load(ctx context.Context, id string) (*workflow.Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "load", id, err)
	}

	if sess.Tick(s.now()) {
		s.cfg.Log.WithContext(ctx).Debug("Session advanced to checkout", "session_id", id)
	}
	return sess, nil
}

func (s *workflowService) storeError(ctx context.Context, op, id string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFoundWithID("Session", id)
	case errors.Is(err, store.ErrBusy):
		return apperrors.Conflict("Session is busy with another request").WithDetails(map[string]any{"session_id": id})
	}
	s.cfg.Log.WithContext(ctx).Error("Session store failure", "session_id", id, "operation", op, "error", err)
	return apperrors.Unavailable("Session store")
}

// today resolves "today" in the contact's timezone, or the configured one.
func (s *workflowService) today(upd *workflow.DraftUpdate, now time.Time) time.Time {
	loc := s.cfg.Location()
	if upd != nil && upd.Contact != nil {
		loc = locale.LocationFor(upd.Contact.Phone, loc)
	}
	return locale.Today(now, loc)
}

// applyDraft validates upd against a copy of the draft and commits the draft,
// the campsite and the new quote together.
func (s *workflowService) applyDraft(ctx context.Context, sess *workflow.Session, upd *workflow.DraftUpdate) error {
	draft := sess.Draft
	campsite := sess.Campsite

	upd.Apply(&draft)
	draft.StartDate = availabilityservice.Day(draft.StartDate)
	draft.EndDate = availabilityservice.Day(draft.EndDate)
	if err := sanitizeDraft(&draft); err != nil {
		return err
	}
	if err := validation.Struct(s.validate, &draft); err != nil {
		var fieldErrs validation.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fieldErrs.AppError("Booking details are invalid")
		}
		return apperrors.Validation("Booking details are invalid", map[string]any{"error": err.Error()})
	}

	if upd != nil && upd.Campsite != nil {
		ref := *upd.Campsite
		if err := ref.Validate(); err != nil {
			return err
		}
		if ref.Kind != model.KindCampsite {
			return apperrors.Validation("the base resource must be a campsite", map[string]any{"resource": ref.String()})
		}
		res, err := s.resolve(ctx, ref)
		if err != nil {
			return err
		}
		if !res.Active {
			return apperrors.Validation(res.Name+" is not accepting bookings", map[string]any{"resource": ref.String()})
		}
		campsite = workflow.CampsiteFrom(res)
		draft.Campsite = &ref
	}

	prevDraft, prevCampsite := sess.Draft, sess.Campsite
	sess.Draft, sess.Campsite = draft, campsite
	if err := sess.Reprice(); err != nil {
		sess.Draft, sess.Campsite = prevDraft, prevCampsite
		return err
	}
	return nil
}

func sanitizeDraft(d *model.BookingDraft) error {
	d.TrailID = sanitizer.TrimAndNormalize(d.TrailID)
	d.SpecialRequests = sanitizer.NormalizeText(d.SpecialRequests, 1000)
	if d.Contact == nil {
		return nil
	}

	c := *d.Contact
	c.Name = sanitizer.NormalizeName(c.Name)
	c.Email = sanitizer.NormalizeEmail(c.Email)
	if raw := c.Phone; raw != "" {
		c.Phone = sanitizer.NormalizePhone(raw)
		if c.Phone == "" {
			return apperrors.Validation("Booking details are invalid", map[string]any{
				"fields": map[string]any{"contact.phone": "phone number is not valid"},
			})
		}
	}
	d.Contact = &c
	return nil
}

func (s *workflowService) resolve(ctx context.Context, ref model.ResourceRef) (*model.Resource, error) {
	res, err := s.directory.GetResource(ctx, ref)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.ResolutionUnavailable("Resource directory is unavailable", err)
	}
	return res, nil
}

// checkAvailability fails the submission unless every resource is free.
func (s *workflowService) checkAvailability(ctx context.Context, sess *workflow.Session) error {
	batch, err := s.availability.CheckAll(ctx, sess.Resources(), sess.Draft.StartDate, sess.Draft.EndDate)
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.ResolutionUnavailable("Could not confirm availability", err)
	}
	if batch.AllAvailable {
		return nil
	}

	unavailable := batch.Unavailable()
	details := make([]map[string]any, 0, len(unavailable))
	for _, r := range unavailable {
		details = append(details, map[string]any{
			"resource": r.Resource.String(),
			"name":     r.Name,
			"reason":   r.Reason,
		})
	}
	return apperrors.Validation("Some selections are not available for these dates", map[string]any{
		"unavailable": details,
	})
}

// lookupAdvisory never fails: an unavailable advisory counts as "no alerts".
func (s *workflowService) lookupAdvisory(ctx context.Context, sess *workflow.Session) *advisory.Advisory {
	coords := advisory.DefaultCoordinates
	if sess.Campsite != nil && (sess.Campsite.Coordinates.Lat != 0 || sess.Campsite.Coordinates.Lng != 0) {
		coords = sess.Campsite.Coordinates
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	adv, err := s.advisories.GetAdvisory(ctx, coords, sess.Draft.StartDate, sess.Draft.EndDate)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Weather advisory unavailable, continuing without alerts",
			"session_id", sess.ID,
			"error", err,
		)
		return nil
	}
	return adv
}

// charge captures the quoted total once per session generation. A held
// charge is reused only for the same total. A decline moves to a new attempt
// key; an unknown outcome keeps the key so a retry is answered from the
// gateway's idempotency record.
func (s *workflowService) charge(ctx context.Context, sess *workflow.Session, method payment.Method, details payment.Details) error {
	log := s.cfg.Log.WithContext(ctx)

	if sess.Payment != nil {
		if sess.Payment.Amount != sess.Quote.GrandTotal {
			log.Error("Captured payment does not cover the quote",
				"session_id", sess.ID,
				"transaction_id", sess.Payment.TransactionID,
				"charged", sess.Payment.Amount.String(),
				"total", sess.Quote.GrandTotal.String(),
			)
			return apperrors.SubmissionFailed("Captured payment does not match the booking total", nil).WithDetails(map[string]any{
				"transaction_id": sess.Payment.TransactionID,
				"charged":        sess.Payment.Amount.String(),
				"total":          sess.Quote.GrandTotal.String(),
			})
		}
		log.Info("Reusing captured payment", "session_id", sess.ID, "transaction_id", sess.Payment.TransactionID)
		return nil
	}

	req := payment.ChargeRequest{
		Amount:         sess.Quote.GrandTotal,
		Currency:       s.cfg.Currency,
		Method:         method,
		Details:        details,
		IdempotencyKey: sess.PaymentKey(),
		Reference:      sess.BookingKey(),
	}
	if err := payment.ValidateRequest(req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	receipt, err := s.gateway.Charge(ctx, req)
	switch {
	case err == nil:
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, payment.ErrDeclined):
		sess.Attempts++
		return apperrors.SubmissionFailed("Payment was declined. Please check your details and try again.", err)
	default:
		log.Error("Payment failed", "session_id", sess.ID, "method", method, "error", err)
		return apperrors.SubmissionFailed("Payment could not be processed. Please try again.", err)
	}

	sess.RecordPayment(workflow.Payment{
		TransactionID: receipt.TransactionID,
		Method:        string(receipt.Method),
		Amount:        receipt.Amount,
		ChargedAt:     receipt.ChargedAt,
	})
	log.Info("Payment captured",
		"session_id", sess.ID,
		"transaction_id", receipt.TransactionID,
		"amount", receipt.Amount.String(),
	)
	return nil
}

func (s *workflowService) createBooking(ctx context.Context, sess *workflow.Session) (*model.Booking, error) {
	if sess.Campsite == nil || sess.Quote == nil {
		return nil, apperrors.Validation("a campsite is required", nil)
	}

	q := sess.Quote
	b := &model.Booking{
		IdempotencyKey:  sess.BookingKey(),
		TrailID:         sess.Draft.TrailID,
		Resource:        sess.Campsite.Ref,
		StartDate:       sess.Draft.StartDate,
		EndDate:         sess.Draft.EndDate,
		PartySize:       sess.Draft.PartySize,
		LineItems:       make([]model.BookingLineItem, 0, len(sess.Cart.Lines)),
		BaseFeeTotal:    q.BaseFeeTotal,
		TotalPrice:      q.GrandTotal,
		Currency:        s.cfg.Currency,
		Status:          model.BookingConfirmed,
		TransactionID:   sess.Payment.TransactionID,
		PaymentMethod:   sess.Payment.Method,
		Contact:         sess.Draft.Contact,
		SpecialRequests: sess.Draft.SpecialRequests,
	}
	for i, line := range sess.Cart.Lines {
		ql := q.Lines[i]
		b.LineItems = append(b.LineItems, model.BookingLineItem{
			Resource: line.Resource,
			Name:     line.Name,
			UnitRate: ql.UnitRate,
			Quantity: ql.Quantity,
			Days:     ql.Days,
			Subtotal: ql.Subtotal,
		})
	}

	created, err := s.bookings.CreateBooking(ctx, b)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			appErr := apperrors.AsAppError(err)
			return nil, apperrors.SubmissionFailed(appErr.Message, err).WithDetails(appErr.Details)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.SubmissionFailed("Failed to create booking", err)
	}

	s.cfg.Log.WithContext(ctx).Info("Booking confirmed",
		"session_id", sess.ID,
		"booking_id", created.ID,
		"total_price", created.TotalPrice.String(),
	)
	return created, nil
}

func cloneCart(c cart.Cart) cart.Cart {
	return cart.Cart{Lines: slices.Clone(c.Lines)}
}

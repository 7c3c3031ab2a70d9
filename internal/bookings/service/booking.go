package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	bookingserrors "vintrek/internal/bookings/errors"
	"vintrek/internal/bookings/events"
	"vintrek/internal/bookings/repository"
	"vintrek/internal/bookings/validator"
	"vintrek/pkg/config"
	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/model"
	"vintrek/pkg/sanitizer"
	"vintrek/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// WindowStore is the part of the availability store a booking writes to.
type WindowStore interface {
	QueryWindows(ctx context.Context, ref model.ResourceRef, start, end time.Time) ([]*model.AvailabilityWindow, error)
	Create(ctx context.Context, w *model.AvailabilityWindow) error
}

type BookingService interface {
	// CreateBooking stores b at most once per idempotency key. A repeated key
	// returns the booking created first.
	CreateBooking(ctx context.Context, b *model.Booking) (*model.Booking, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	windows   WindowStore
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	windows WindowStore,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		windows:   windows,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	log := s.cfg.Log.WithContext(ctx)

	s.applyDefaults(b)
	s.sanitize(b)
	if err := s.validate(b); err != nil {
		return nil, err
	}

	if existing, err := s.findReplay(ctx, b.IdempotencyKey); err != nil || existing != nil {
		return existing, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	lockIDs, err := s.acquireLocks(ctx, b)
	if err != nil {
		return nil, err
	}
	defer s.releaseLocks(lockIDs, b.IdempotencyKey)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflicts(sessCtx, b); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, b); err != nil {
			return err
		}
		for _, ref := range b.Resources() {
			hold := &model.AvailabilityWindow{
				Resource:  ref,
				StartDate: b.StartDate,
				EndDate:   b.EndDate,
				Status:    model.WindowUnavailable,
				Notes:     "Booked",
				BookingID: b.ID,
			}
			if err := s.windows.Create(sessCtx, hold); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrDuplicateIdempotencyKey) {
			// lost a race with the same key; the winner's booking is the answer
			return s.findReplay(context.WithoutCancel(ctx), b.IdempotencyKey)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		log.Error("Failed to create booking", "idempotency_key", b.IdempotencyKey, "error", err)
		return nil, apperrors.SubmissionFailed("Failed to store booking", err)
	}

	log.Info("Booking created successfully",
		"id", b.ID,
		"resource", b.Resource.String(),
		"start_date", b.StartDate.Format(time.DateOnly),
		"end_date", b.EndDate.Format(time.DateOnly),
		"total_price", b.TotalPrice.String(),
	)

	if b.Status == model.BookingConfirmed {
		if err := s.publisher.BookingConfirmed(context.WithoutCancel(ctx), b); err != nil {
			log.Warn("Failed to publish booking event", "id", b.ID, "error", err)
		}
	}
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

// --- Helpers ---

func (s *bookingService) findReplay(ctx context.Context, key string) (*model.Booking, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, key)
	switch {
	case err == nil:
		s.cfg.Log.WithContext(ctx).Info("Booking replayed for idempotency key", "id", existing.ID)
		return existing, nil
	case errors.Is(err, bookingserrors.ErrNotFound):
		return nil, nil
	default:
		return nil, apperrors.SubmissionFailed("Booking store is unavailable", err)
	}
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	if b.Currency == "" {
		b.Currency = s.cfg.Currency
	}
	b.Currency = strings.ToLower(b.Currency)
	b.StartDate = day(b.StartDate)
	b.EndDate = day(b.EndDate)
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.SpecialRequests = sanitizer.NormalizeText(b.SpecialRequests, 1000)
	for i := range b.LineItems {
		b.LineItems[i].Name = sanitizer.TrimAndNormalize(b.LineItems[i].Name)
	}
}

func (s *bookingService) validate(b *model.Booking) error {
	err := s.validator.Validate(b)
	if err == nil {
		return nil
	}
	s.cfg.Log.Warn("Booking validation failed", "error", err)

	var fieldErrs validation.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs.AppError("Booking validation failed")
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

// verifyNoConflicts re-reads the windows of every booked resource inside the
// transaction. A blocking window written since the availability check wins.
func (s *bookingService) verifyNoConflicts(ctx context.Context, b *model.Booking) error {
	var conflicts []string
	for _, ref := range b.Resources() {
		windows, err := s.windows.QueryWindows(ctx, ref, b.StartDate, b.EndDate)
		if err != nil {
			return fmt.Errorf("failed to re-check availability: %w", err)
		}
		for _, w := range windows {
			if w.Blocks() && w.Overlaps(b.StartDate, b.EndDate) {
				conflicts = append(conflicts, ref.String())
				break
			}
		}
	}

	if len(conflicts) > 0 {
		return apperrors.Conflict("Some resources are no longer available for these dates").WithDetails(map[string]any{
			"resources":  conflicts,
			"start_date": b.StartDate.Format(time.DateOnly),
			"end_date":   b.EndDate.Format(time.DateOnly),
		})
	}
	return nil
}

// acquireLocks takes one advisory lock per resource, in a stable order.
// Nothing waits: a held lock fails the booking with Conflict.
func (s *bookingService) acquireLocks(ctx context.Context, b *model.Booking) ([]string, error) {
	ids := make([]string, 0, len(b.LineItems)+1)
	for _, ref := range b.Resources() {
		ids = append(ids, fmt.Sprintf("booking_lock_%s_%s", ref.Kind, ref.ID))
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	acquired := make([]string, 0, len(ids))
	for _, id := range ids {
		lock := &model.BookingLock{
			ID:        id,
			Owner:     b.IdempotencyKey,
			ExpiresAt: time.Now().UTC().Add(s.cfg.BookingLockTTL),
		}
		if err := s.lockRepo.Acquire(ctx, lock); err != nil {
			s.releaseLocks(acquired, b.IdempotencyKey)
			if errors.Is(err, bookingserrors.ErrLockHeld) {
				return nil, apperrors.Conflict("These resources are currently being booked by another request. Please try again.")
			}
			return nil, apperrors.SubmissionFailed("Failed to acquire booking lock", err)
		}
		acquired = append(acquired, id)
	}
	return acquired, nil
}

func (s *bookingService) releaseLocks(ids []string, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BackendTimeout)
	defer cancel()

	for _, id := range ids {
		if err := s.lockRepo.Release(ctx, id, owner); err != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", id, "error", err)
		}
	}
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

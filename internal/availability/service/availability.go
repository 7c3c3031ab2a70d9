package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	availabilityerrors "vintrek/internal/availability/errors"
	"vintrek/internal/availability/repository"
	"vintrek/internal/availability/validator"
	"vintrek/pkg/config"
	apperrors "vintrek/pkg/errors"
	httputil "vintrek/pkg/http"
	"vintrek/pkg/model"
	"vintrek/pkg/sanitizer"
	"vintrek/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, ref model.ResourceRef, start, end time.Time) (*Result, error)
	CheckAll(ctx context.Context, refs []model.ResourceRef, start, end time.Time) (*BatchResult, error)

	ListWindows(ctx context.Context, q repository.WindowQuery) ([]*model.AvailabilityWindow, int64, error)
	CreateWindow(ctx context.Context, w *model.AvailabilityWindow, inclusiveEnd bool) error
	UpdateWindow(ctx context.Context, id string, upd *model.WindowUpdate, inclusiveEnd bool) (*model.AvailabilityWindow, error)
	DeleteWindow(ctx context.Context, id string) error
}

type availabilityService struct {
	repo      repository.WindowRepository
	directory ResourceDirectory
	validator *validator.WindowValidator
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.WindowRepository,
	directory ResourceDirectory,
	validator *validator.WindowValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		directory: directory,
		validator: validator,
		cfg:       cfg,
	}
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeRange converts client dates to the stored half-open form. With
// inclusiveEnd the end day itself is part of the window.
func normalizeRange(start, end time.Time, inclusiveEnd bool) (time.Time, time.Time) {
	start, end = Day(start), Day(end)
	if inclusiveEnd && !end.IsZero() {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

func (s *availabilityService) ListWindows(ctx context.Context, q repository.WindowQuery) ([]*model.AvailabilityWindow, int64, error) {
	if q.Resource != nil {
		if err := q.Resource.Validate(); err != nil {
			return nil, 0, err
		}
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, 0, apperrors.InvalidInput("status must be one of Available, Unavailable, Maintenance")
	}
	q.StartDate, q.EndDate = Day(q.StartDate), Day(q.EndDate)
	q.Limit = httputil.NormalizeLimit(q.Limit)
	q.Offset = max(0, q.Offset)

	var (
		wg       sync.WaitGroup
		count    int64
		windows  []*model.AvailabilityWindow
		countErr error
		findErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		count, countErr = s.repo.Count(ctx, q)
	}()
	go func() {
		defer wg.Done()
		windows, findErr = s.repo.FindAll(ctx, q)
	}()
	wg.Wait()

	if err := errors.Join(countErr, findErr); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list availability windows", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve availability windows", err)
	}

	return windows, count, nil
}

func (s *availabilityService) CreateWindow(ctx context.Context, w *model.AvailabilityWindow, inclusiveEnd bool) error {
	w.StartDate, w.EndDate = normalizeRange(w.StartDate, w.EndDate, inclusiveEnd)
	w.Notes = sanitizer.NormalizeText(w.Notes, 500)
	w.BookingID = ""

	if err := s.validate(w); err != nil {
		return err
	}

	if _, err := s.directory.GetResource(ctx, w.Resource); err != nil {
		return err
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, w, ""); err != nil {
			return err
		}
		return s.repo.Create(sessCtx, w)
	})
	if err != nil {
		return s.mapError(ctx, "create", "", err)
	}

	s.cfg.Log.WithContext(ctx).Info("Availability window created",
		"id", w.ID,
		"resource", w.Resource.String(),
		"start_date", w.StartDate.Format(time.DateOnly),
		"end_date", w.EndDate.Format(time.DateOnly),
		"status", w.Status,
	)
	return nil
}

func (s *availabilityService) UpdateWindow(ctx context.Context, id string, upd *model.WindowUpdate, inclusiveEnd bool) (*model.AvailabilityWindow, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability window ID cannot be empty")
	}
	if upd == nil {
		return nil, apperrors.InvalidInput("Update body is required")
	}

	var updated *model.AvailabilityWindow
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		w, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return err
		}
		if w.BookingID != "" {
			return apperrors.Conflict(fmt.Sprintf("Window is held by booking %s and cannot be edited", w.BookingID))
		}

		applyUpdate(w, upd, inclusiveEnd)
		if err := s.validate(w); err != nil {
			return err
		}
		if err := s.verifyNoConflict(sessCtx, w, w.ID); err != nil {
			return err
		}
		if err := s.repo.Update(sessCtx, w); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "update", id, err)
	}

	s.cfg.Log.WithContext(ctx).Info("Availability window updated", "id", id, "status", updated.Status)
	return updated, nil
}

func applyUpdate(w *model.AvailabilityWindow, upd *model.WindowUpdate, inclusiveEnd bool) {
	if upd.StartDate != nil {
		w.StartDate = Day(*upd.StartDate)
	}
	if upd.EndDate != nil {
		_, w.EndDate = normalizeRange(time.Time{}, *upd.EndDate, inclusiveEnd)
	}
	if upd.Status != nil {
		w.Status = *upd.Status
	}
	if upd.Notes != nil {
		w.Notes = sanitizer.NormalizeText(*upd.Notes, 500)
	}
}

func (s *availabilityService) DeleteWindow(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Availability window ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		w, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return err
		}
		if w.BookingID != "" {
			return apperrors.Conflict(fmt.Sprintf("Window is held by booking %s and cannot be deleted", w.BookingID))
		}
		return s.repo.Delete(sessCtx, id)
	})
	if err != nil {
		return s.mapError(ctx, "delete", id, err)
	}

	s.cfg.Log.WithContext(ctx).Info("Availability window deleted", "id", id)
	return nil
}

func (s *availabilityService) validate(w *model.AvailabilityWindow) error {
	err := s.validator.Validate(w)
	if err == nil {
		return nil
	}
	var fieldErrs validation.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs.AppError("Availability window validation failed")
	}
	return apperrors.Validation("Availability window validation failed", map[string]any{"error": err.Error()})
}

// verifyNoConflict rejects a window that overlaps another window of the same
// resource carrying a different status. Same-status overlaps are allowed.
func (s *availabilityService) verifyNoConflict(ctx context.Context, w *model.AvailabilityWindow, selfID string) error {
	existing, err := s.repo.QueryWindows(ctx, w.Resource, w.StartDate, w.EndDate)
	if err != nil {
		return fmt.Errorf("failed to check for overlapping windows: %w", err)
	}

	for _, other := range existing {
		if other.ID == selfID || other.Status == w.Status {
			continue
		}
		if other.Overlaps(w.StartDate, w.EndDate) {
			return apperrors.Conflict("Window overlaps a window with a different status").WithDetails(map[string]any{
				"window_id":  other.ID,
				"status":     other.Status,
				"start_date": other.StartDate.Format(time.DateOnly),
				"end_date":   other.EndDate.Format(time.DateOnly),
			})
		}
	}
	return nil
}

func (s *availabilityService) mapError(ctx context.Context, op, id string, err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, availabilityerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Availability window", id)
	case errors.Is(err, availabilityerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid availability window ID format")
	}

	s.cfg.Log.WithContext(ctx).Error("Availability window operation failed",
		"operation", op,
		"id", id,
		"error", err,
	)
	return apperrors.Internal("Failed to "+op+" availability window", err)
}

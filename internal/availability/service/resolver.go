package service

import (
	"context"
	"sync"
	"time"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/model"
)

// MaxResourcesPerCheck bounds one CheckAll call.
const MaxResourcesPerCheck = 50

const (
	ReasonConflict   = "conflict"
	ReasonOutOfStock = "out_of_stock"
	ReasonInactive   = "inactive"
)

// ResourceDirectory resolves typed references to resources.
type ResourceDirectory interface {
	GetResource(ctx context.Context, ref model.ResourceRef) (*model.Resource, error)
}

type Conflict struct {
	WindowID  string             `json:"window_id,omitempty"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	Status    model.WindowStatus `json:"status"`
	BookingID string             `json:"booking_id,omitempty"`
}

type Result struct {
	Resource  model.ResourceRef `json:"resource"`
	Name      string            `json:"name,omitempty"`
	Available bool              `json:"available"`
	Reason    string            `json:"reason,omitempty"`
	Conflicts []Conflict        `json:"conflicts,omitempty"`
}

type BatchResult struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	AllAvailable bool      `json:"all_available"`
	Results      []Result  `json:"results"`
}

// Unavailable returns the results that failed, in request order.
func (b *BatchResult) Unavailable() []Result {
	var out []Result
	for _, r := range b.Results {
		if !r.Available {
			out = append(out, r)
		}
	}
	return out
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.Validation("start_date and end_date are required", nil)
	}
	if !start.Before(end) {
		return apperrors.Validation("start_date must be before end_date", map[string]any{
			"start_date": start.Format(time.DateOnly),
			"end_date":   end.Format(time.DateOnly),
		})
	}
	return nil
}

func (s *availabilityService) CheckAvailability(ctx context.Context, ref model.ResourceRef, start, end time.Time) (*Result, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	return s.resolve(ctx, ref, start, end)
}

// CheckAll resolves every resource concurrently. A single failure to resolve
// fails the whole call; availability is never assumed.
func (s *availabilityService) CheckAll(ctx context.Context, refs []model.ResourceRef, start, end time.Time) (*BatchResult, error) {
	if len(refs) == 0 {
		return nil, apperrors.Validation("at least one resource is required", nil)
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	unique := make([]model.ResourceRef, 0, len(refs))
	seen := make(map[model.ResourceRef]struct{}, len(refs))
	for _, ref := range refs {
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		unique = append(unique, ref)
	}
	if len(unique) > MaxResourcesPerCheck {
		return nil, apperrors.Validation("too many resources in one check", map[string]any{"max": MaxResourcesPerCheck})
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
	defer cancel()

	results := make([]*Result, len(unique))
	errs := make([]error, len(unique))

	var wg sync.WaitGroup
	for i, ref := range unique {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.resolve(ctx, ref, start, end)
		}()
	}
	wg.Wait()

	batch := &BatchResult{
		StartDate:    start,
		EndDate:      end,
		AllAvailable: true,
		Results:      make([]Result, 0, len(unique)),
	}
	for i := range unique {
		if errs[i] != nil {
			return nil, errs[i]
		}
		batch.Results = append(batch.Results, *results[i])
		batch.AllAvailable = batch.AllAvailable && results[i].Available
	}

	return batch, nil
}

func (s *availabilityService) resolve(ctx context.Context, ref model.ResourceRef, start, end time.Time) (*Result, error) {
	log := s.cfg.Log.WithContext(ctx)

	res, err := s.directory.GetResource(ctx, ref)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		log.Error("Resource lookup failed", "resource", ref.String(), "error", err)
		return nil, apperrors.ResolutionUnavailable("Could not resolve resource", err)
	}

	windows, err := s.repo.QueryWindows(ctx, ref, start, end)
	if err != nil {
		log.Error("Availability query failed", "resource", ref.String(), "error", err)
		return nil, apperrors.ResolutionUnavailable("Availability store is unavailable", err)
	}

	result := &Result{
		Resource:  ref,
		Name:      res.Name,
		Available: true,
	}

	for _, w := range windows {
		if !w.Overlaps(start, end) || !w.Blocks() {
			continue
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			WindowID:  w.ID,
			StartDate: w.StartDate,
			EndDate:   w.EndDate,
			Status:    w.Status,
			BookingID: w.BookingID,
		})
	}

	switch {
	case len(result.Conflicts) > 0:
		result.Available = false
		result.Reason = ReasonConflict
	case !res.Active:
		result.Available = false
		result.Reason = ReasonInactive
	case res.RentalItem != nil && res.RentalItem.StockStatus == model.OutOfStock:
		result.Available = false
		result.Reason = ReasonOutOfStock
	}

	log.Debug("Availability resolved",
		"resource", ref.String(),
		"available", result.Available,
		"reason", result.Reason,
	)

	return result, nil
}

package service

import (
	"context"
	"errors"
	"sync"

	resourceserrors "vintrek/internal/resources/errors"
	"vintrek/internal/resources/repository"
	"vintrek/pkg/config"
	apperrors "vintrek/pkg/errors"
	httputil "vintrek/pkg/http"
	"vintrek/pkg/model"
	"vintrek/pkg/sanitizer"
)

// ResourceService is the resource directory: lookups by typed reference.
type ResourceService interface {
	GetResource(ctx context.Context, ref model.ResourceRef) (*model.Resource, error)
	ListResources(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int64, error)
}

type resourceService struct {
	repo repository.ResourceRepository
	cfg  *config.Config
}

func NewResourceService(repo repository.ResourceRepository, cfg *config.Config) ResourceService {
	return &resourceService{
		repo: repo,
		cfg:  cfg,
	}
}

// GetResource resolves ref. A stored resource whose kind differs from the
// reference is reported as not found: a campsite id never stands in for a
// rental item or the other way round.
func (s *resourceService) GetResource(ctx context.Context, ref model.ResourceRef) (*model.Resource, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	res, err := s.repo.FindByID(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound(string(ref.Kind), ref.ID)
		}
		s.cfg.Log.WithContext(ctx).Error("Resource directory lookup failed",
			"resource", ref.String(),
			"error", err,
		)
		return nil, apperrors.ResolutionUnavailable("Resource directory is unavailable", err)
	}

	if res.Kind != ref.Kind {
		s.cfg.Log.WithContext(ctx).Warn("Resource kind mismatch",
			"resource", ref.String(),
			"stored_kind", res.Kind,
		)
		return nil, apperrors.ResourceNotFound(string(ref.Kind), ref.ID)
	}

	return res, nil
}

func (s *resourceService) ListResources(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int64, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, 0, apperrors.InvalidInput("kind must be campsite or rental_item")
	}
	filter.Category = sanitizer.NormalizeLabel(filter.Category)
	filter.Limit = httputil.NormalizeLimit(filter.Limit)
	filter.Offset = max(0, filter.Offset)

	var (
		wg        sync.WaitGroup
		count     int64
		resources []*model.Resource
		countErr  error
		findErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		count, countErr = s.repo.Count(ctx, filter)
	}()
	go func() {
		defer wg.Done()
		resources, findErr = s.repo.FindAll(ctx, filter)
	}()
	wg.Wait()

	if err := errors.Join(countErr, findErr); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list resources",
			"kind", filter.Kind,
			"category", filter.Category,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to retrieve resources", err)
	}

	return resources, count, nil
}

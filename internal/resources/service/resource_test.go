package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	resourceserrors "vintrek/internal/resources/errors"
	"vintrek/pkg/config"
	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/logger"
	"vintrek/pkg/model"
)

type mockResourceRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Resource, error)
	findAllFunc  func(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, error)
	countFunc    func(ctx context.Context, filter model.ResourceFilter) (int64, error)
}

func (m *mockResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, resourceserrors.ErrNotFound
}

func (m *mockResourceRepository) FindAll(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter)
	}
	return []*model.Resource{}, nil
}

func (m *mockResourceRepository) Count(ctx context.Context, filter model.ResourceFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockResourceRepository) Upsert(ctx context.Context, r *model.Resource) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:            logger.Discard(),
		BackendTimeout: time.Second,
	}
}

func TestGetResource(t *testing.T) {
	campsite := &model.Resource{ID: "campsite-A", Kind: model.KindCampsite, Name: "Campsite A"}

	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			switch id {
			case "campsite-A":
				return campsite, nil
			case "broken":
				return nil, errors.New("connection reset")
			}
			return nil, fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
		},
	}
	svc := NewResourceService(repo, testConfig())

	tests := []struct {
		name     string
		ref      model.ResourceRef
		wantCode string
	}{
		{"found", model.NewCampsiteRef("campsite-A"), ""},
		{"missing", model.NewCampsiteRef("nope"), apperrors.CodeNotFound},
		{"kind mismatch", model.NewRentalItemRef("campsite-A"), apperrors.CodeNotFound},
		{"store failure", model.NewCampsiteRef("broken"), apperrors.CodeResolutionUnavailable},
		{"invalid kind", model.ResourceRef{Kind: "tent", ID: "x"}, apperrors.CodeValidation},
		{"empty id", model.ResourceRef{Kind: model.KindCampsite}, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GetResource(context.Background(), tt.ref)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.ID != tt.ref.ID {
					t.Errorf("got %s, want %s", res.ID, tt.ref.ID)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("err = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestListResources_NormalizesFilter(t *testing.T) {
	var seen model.ResourceFilter
	repo := &mockResourceRepository{
		findAllFunc: func(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, error) {
			seen = filter
			return []*model.Resource{{ID: "tent-2p"}}, nil
		},
		countFunc: func(ctx context.Context, filter model.ResourceFilter) (int64, error) {
			return 7, nil
		},
	}
	svc := NewResourceService(repo, testConfig())

	items, total, err := svc.ListResources(context.Background(), model.ResourceFilter{
		Kind:     model.KindRentalItem,
		Category: " Sleeping Bags ",
		Limit:    1000,
		Offset:   -3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 || len(items) != 1 {
		t.Errorf("got %d items / total %d", len(items), total)
	}
	if seen.Category != "sleeping_bags" {
		t.Errorf("category = %q", seen.Category)
	}
	if seen.Limit != 100 || seen.Offset != 0 {
		t.Errorf("limit/offset = %d/%d", seen.Limit, seen.Offset)
	}
}

func TestListResources_StoreFailure(t *testing.T) {
	repo := &mockResourceRepository{
		countFunc: func(ctx context.Context, filter model.ResourceFilter) (int64, error) {
			return 0, errors.New("timeout")
		},
	}
	svc := NewResourceService(repo, testConfig())

	_, _, err := svc.ListResources(context.Background(), model.ResourceFilter{})
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("err = %v, want internal", err)
	}
}

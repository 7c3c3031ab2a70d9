package mongo

import (
	"context"
	"fmt"
	"time"

	"vintrek/pkg/logger"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"
	"vintrek/pkg/validation"
)

// ResourceWriter is the part of the resource repository the seed needs.
type ResourceWriter interface {
	Upsert(ctx context.Context, r *model.Resource) error
}

// Catalog is the starter set of campsites and rental gear.
func Catalog(now time.Time) []*model.Resource {
	campsite := func(id, name string, capacity int, fee int64, lat, lng float64) *model.Resource {
		return &model.Resource{
			ID:     id,
			Kind:   model.KindCampsite,
			Name:   name,
			Active: true,
			Campsite: &model.CampsiteDetails{
				Capacity:    capacity,
				DailyFee:    pricing.FromMajor(fee),
				Coordinates: model.Coordinates{Lat: lat, Lng: lng},
			},
			CreatedAt: now,
		}
	}
	item := func(id, name, category string, rate pricing.Money, stock model.StockStatus) *model.Resource {
		return &model.Resource{
			ID:     id,
			Kind:   model.KindRentalItem,
			Name:   name,
			Active: true,
			RentalItem: &model.RentalItemDetails{
				DailyRate:   rate,
				Category:    category,
				StockStatus: stock,
			},
			CreatedAt: now,
		}
	}

	return []*model.Resource{
		campsite("horton-plains-base", "Horton Plains Base Camp", 6, 10, 6.8019, 80.8060),
		campsite("knuckles-riverside", "Knuckles Riverside", 4, 12, 7.4500, 80.7833),
		campsite("ella-rock-ridge", "Ella Rock Ridge", 8, 15, 6.8569, 81.0463),
		item("tent-2p", "Two Person Tent", "shelter", pricing.FromMajor(25), model.InStock),
		item("tent-4p", "Four Person Tent", "shelter", pricing.FromMajor(40), model.InStock),
		item("sleeping-bag", "Sleeping Bag", "sleeping", pricing.FromMajor(8), model.InStock),
		item("camp-stove", "Camp Stove", "cooking", pricing.FromMajor(6), model.LowStock),
		item("lantern", "LED Lantern", "lighting", pricing.FromMajor(3), model.InStock),
		item("water-filter", "Water Filter", "water", 450, model.OutOfStock),
	}
}

// Seed upserts the starter catalog. Existing documents with the same ids are
// replaced.
func Seed(ctx context.Context, repo ResourceWriter, log *logger.Logger) error {
	validate := validation.New(log)
	catalog := Catalog(time.Now().UTC().Truncate(time.Millisecond))
	for _, res := range catalog {
		if err := res.CheckShape(); err != nil {
			return fmt.Errorf("invalid seed resource %s: %w", res.ID, err)
		}
		if err := validation.Struct(validate, res); err != nil {
			return fmt.Errorf("invalid seed resource %s: %w", res.ID, err)
		}
		if err := repo.Upsert(ctx, res); err != nil {
			return fmt.Errorf("failed to seed resource %s: %w", res.ID, err)
		}
	}
	log.Info("Seeded resource catalog", "count", len(catalog))
	return nil
}

package model

import (
	"fmt"
	"time"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/pricing"
)

type ResourceKind string

const (
	KindCampsite   ResourceKind = "campsite"
	KindRentalItem ResourceKind = "rental_item"
)

func (k ResourceKind) Valid() bool {
	return k == KindCampsite || k == KindRentalItem
}

// ResourceRef identifies a bookable resource. The kind is always explicit;
// it is never derived from the shape of the id.
type ResourceRef struct {
	Kind ResourceKind `json:"kind" bson:"kind" validate:"required,resource_kind"`
	ID   string       `json:"id" bson:"id" validate:"required,max=64"`
}

func NewCampsiteRef(id string) ResourceRef {
	return ResourceRef{Kind: KindCampsite, ID: id}
}

func NewRentalItemRef(id string) ResourceRef {
	return ResourceRef{Kind: KindRentalItem, ID: id}
}

// ParseResourceRef builds a reference from untrusted input.
func ParseResourceRef(kind, id string) (ResourceRef, error) {
	ref := ResourceRef{Kind: ResourceKind(kind), ID: id}
	if err := ref.Validate(); err != nil {
		return ResourceRef{}, err
	}
	return ref, nil
}

func (r ResourceRef) Validate() error {
	if !r.Kind.Valid() {
		return apperrors.Validation("invalid resource reference", map[string]any{
			"kind":   string(r.Kind),
			"reason": "kind must be campsite or rental_item",
		})
	}
	if r.ID == "" {
		return apperrors.Validation("invalid resource reference", map[string]any{
			"kind":   string(r.Kind),
			"reason": "id is required",
		})
	}
	return nil
}

func (r ResourceRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

type StockStatus string

const (
	InStock    StockStatus = "in_stock"
	LowStock   StockStatus = "low_stock"
	OutOfStock StockStatus = "out_of_stock"
)

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"min=-180,max=180"`
}

type CampsiteDetails struct {
	Capacity    int           `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	DailyFee    pricing.Money `json:"daily_fee" bson:"daily_fee" validate:"min=0"`
	Coordinates Coordinates   `json:"coordinates" bson:"coordinates"`
}

type RentalItemDetails struct {
	DailyRate   pricing.Money `json:"daily_rate" bson:"daily_rate" validate:"min=0"`
	Category    string        `json:"category" bson:"category" validate:"required,max=50"`
	StockStatus StockStatus   `json:"stock_status" bson:"stock_status" validate:"required,oneof=in_stock low_stock out_of_stock"`
}

type Resource struct {
	ID          string             `json:"id" bson:"_id" validate:"required,max=64"`
	Kind        ResourceKind       `json:"kind" bson:"kind" validate:"required,resource_kind"`
	Name        string             `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Description string             `json:"description,omitempty" bson:"description,omitempty" validate:"max=2000"`
	Active      bool               `json:"active" bson:"active"`
	Campsite    *CampsiteDetails   `json:"campsite,omitempty" bson:"campsite,omitempty"`
	RentalItem  *RentalItemDetails `json:"rental_item,omitempty" bson:"rental_item,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

func (r *Resource) Ref() ResourceRef {
	return ResourceRef{Kind: r.Kind, ID: r.ID}
}

// DailyRate is the per-day price: the campsite fee or the item rate.
func (r *Resource) DailyRate() pricing.Money {
	switch {
	case r.Kind == KindCampsite && r.Campsite != nil:
		return r.Campsite.DailyFee
	case r.Kind == KindRentalItem && r.RentalItem != nil:
		return r.RentalItem.DailyRate
	}
	return 0
}

// Coordinates returns the campsite location, if known.
func (r *Resource) Coordinates() (Coordinates, bool) {
	if r.Kind != KindCampsite || r.Campsite == nil {
		return Coordinates{}, false
	}
	c := r.Campsite.Coordinates
	return c, c.Lat != 0 || c.Lng != 0
}

// CheckShape verifies the kind-specific details match the kind.
func (r *Resource) CheckShape() error {
	switch r.Kind {
	case KindCampsite:
		if r.Campsite == nil || r.RentalItem != nil {
			return apperrors.Validation("campsite must carry campsite details only", map[string]any{"id": r.ID})
		}
	case KindRentalItem:
		if r.RentalItem == nil || r.Campsite != nil {
			return apperrors.Validation("rental item must carry rental item details only", map[string]any{"id": r.ID})
		}
	default:
		return apperrors.Validation("invalid resource kind", map[string]any{"kind": string(r.Kind)})
	}
	return nil
}

type ResourceFilter struct {
	Kind       ResourceKind
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int64
}

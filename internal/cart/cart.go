// Package cart holds the rental items attached to a booking session.
//
// The cart is a plain value stored inside the session document; every
// mutation is followed by a fresh quote so callers never observe a stale
// total.
package cart

import (
	"slices"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"
)

// MaxQuantity bounds a single line.
const MaxQuantity = 99

type Line struct {
	Resource model.ResourceRef `json:"resource" bson:"resource"`
	Name     string            `json:"name,omitempty" bson:"name,omitempty"`
	UnitRate pricing.Money     `json:"unit_rate" bson:"unit_rate"`
	Quantity int               `json:"quantity" bson:"quantity"`
}

type Cart struct {
	Lines []Line `json:"lines" bson:"lines"`
}

// Add merges line into the cart. An existing line for the same resource has
// its quantity increased and its name and rate refreshed.
func (c *Cart) Add(line Line, quantity int) error {
	if quantity < 1 {
		return apperrors.InvalidQuantity(quantity)
	}
	if err := line.Resource.Validate(); err != nil {
		return err
	}
	if line.Resource.Kind != model.KindRentalItem {
		return apperrors.Validation("only rental items can be added to the cart", map[string]any{
			"resource": line.Resource.String(),
		})
	}
	if line.UnitRate < 0 {
		return apperrors.Validation("unit rate cannot be negative", map[string]any{"resource": line.Resource.String()})
	}

	if i := c.index(line.Resource); i >= 0 {
		next := c.Lines[i].Quantity + quantity
		if next > MaxQuantity {
			return tooMany(line.Resource, next)
		}
		c.Lines[i].Quantity = next
		c.Lines[i].Name = line.Name
		c.Lines[i].UnitRate = line.UnitRate
		return nil
	}

	if quantity > MaxQuantity {
		return tooMany(line.Resource, quantity)
	}
	line.Quantity = quantity
	c.Lines = append(c.Lines, line)
	return nil
}

// Remove drops the line for ref. It reports whether a line was removed.
func (c *Cart) Remove(ref model.ResourceRef) bool {
	i := c.index(ref)
	if i < 0 {
		return false
	}
	c.Lines = slices.Delete(c.Lines, i, i+1)
	return true
}

// SetQuantity replaces the quantity of an existing line. Quantities below one
// are rejected and leave the cart untouched; use Remove to drop a line.
func (c *Cart) SetQuantity(ref model.ResourceRef, quantity int) error {
	if quantity < 1 {
		return apperrors.InvalidQuantity(quantity)
	}
	if quantity > MaxQuantity {
		return tooMany(ref, quantity)
	}
	i := c.index(ref)
	if i < 0 {
		return apperrors.NotFoundWithID("Cart line", ref.String())
	}
	c.Lines[i].Quantity = quantity
	return nil
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Refs() []model.ResourceRef {
	refs := make([]model.ResourceRef, 0, len(c.Lines))
	for _, l := range c.Lines {
		refs = append(refs, l.Resource)
	}
	return refs
}

// Total prices the cart for days, adding baseFee once per day.
func (c *Cart) Total(days int, baseFee pricing.Money) (pricing.Quote, error) {
	lines := make([]pricing.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, pricing.Line{
			Key:      l.Resource.String(),
			Name:     l.Name,
			UnitRate: l.UnitRate,
			Quantity: l.Quantity,
		})
	}
	return pricing.ComputeTotal(lines, days, baseFee)
}

func (c *Cart) index(ref model.ResourceRef) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool { return l.Resource == ref })
}

func tooMany(ref model.ResourceRef, quantity int) error {
	return apperrors.Validation("quantity exceeds the per-item limit", map[string]any{
		"resource": ref.String(),
		"quantity": quantity,
		"max":      MaxQuantity,
	})
}

package model

import "time"

type WindowStatus string

const (
	WindowAvailable   WindowStatus = "Available"
	WindowUnavailable WindowStatus = "Unavailable"
	WindowMaintenance WindowStatus = "Maintenance"
)

func (s WindowStatus) Valid() bool {
	return s == WindowAvailable || s == WindowUnavailable || s == WindowMaintenance
}

// AvailabilityWindow covers the half-open day range [StartDate, EndDate).
type AvailabilityWindow struct {
	ID        string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Resource  ResourceRef  `json:"resource" bson:"resource" validate:"required"`
	StartDate time.Time    `json:"start_date" bson:"start_date" validate:"required"`
	EndDate   time.Time    `json:"end_date" bson:"end_date" validate:"required,date_order=StartDate"`
	Status    WindowStatus `json:"status" bson:"status" validate:"required,oneof=Available Unavailable Maintenance"`
	Notes     string       `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=500"`
	BookingID string       `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// Overlaps reports whether the window intersects [start, end).
func (w *AvailabilityWindow) Overlaps(start, end time.Time) bool {
	return Overlaps(w.StartDate, w.EndDate, start, end)
}

// Blocks reports whether the window makes its resource unbookable.
func (w *AvailabilityWindow) Blocks() bool {
	return w.Status != WindowAvailable
}

// Overlaps is the half-open interval test shared by windows and bookings.
// Ranges that merely touch do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

type WindowUpdate struct {
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Status    *WindowStatus `json:"status,omitempty" validate:"omitempty,oneof=Available Unavailable Maintenance"`
	Notes     *string       `json:"notes,omitempty" validate:"omitempty,max=500"`
}

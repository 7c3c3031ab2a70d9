package model

import (
	"time"

	"vintrek/pkg/pricing"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

type Contact struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
}

// BookingDraft is the editable part of a booking request.
type BookingDraft struct {
	TrailID         string       `json:"trail_id,omitempty" bson:"trail_id,omitempty" validate:"max=64"`
	Campsite        *ResourceRef `json:"campsite,omitempty" bson:"campsite,omitempty"`
	StartDate       time.Time    `json:"start_date" bson:"start_date"`
	EndDate         time.Time    `json:"end_date" bson:"end_date"`
	PartySize       int          `json:"party_size" bson:"party_size" validate:"min=0,max=500"`
	SpecialRequests string       `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"max=1000"`
	TermsAccepted   bool         `json:"terms_accepted" bson:"terms_accepted"`
	Contact         *Contact     `json:"contact,omitempty" bson:"contact,omitempty"`
}

type BookingLineItem struct {
	Resource ResourceRef   `json:"resource" bson:"resource" validate:"required"`
	Name     string        `json:"name,omitempty" bson:"name,omitempty"`
	UnitRate pricing.Money `json:"unit_rate" bson:"unit_rate" validate:"min=0"`
	Quantity int           `json:"quantity" bson:"quantity" validate:"min=1"`
	Days     int           `json:"days" bson:"days" validate:"min=1"`
	Subtotal pricing.Money `json:"subtotal" bson:"subtotal"`
}

type Booking struct {
	ID              string            `json:"id,omitempty" bson:"_id,omitempty"`
	IdempotencyKey  string            `json:"-" bson:"idempotency_key" validate:"required,max=128"`
	TrailID         string            `json:"trail_id,omitempty" bson:"trail_id,omitempty"`
	Resource        ResourceRef       `json:"resource" bson:"resource" validate:"required"`
	StartDate       time.Time         `json:"start_date" bson:"start_date" validate:"required"`
	EndDate         time.Time         `json:"end_date" bson:"end_date" validate:"required,date_order=StartDate"`
	PartySize       int               `json:"party_size" bson:"party_size" validate:"min=1,max=500"`
	LineItems       []BookingLineItem `json:"line_items" bson:"line_items" validate:"dive"`
	BaseFeeTotal    pricing.Money     `json:"base_fee_total" bson:"base_fee_total"`
	TotalPrice      pricing.Money     `json:"total_price" bson:"total_price"`
	Currency        string            `json:"currency" bson:"currency" validate:"required,len=3"`
	Status          BookingStatus     `json:"status" bson:"status" validate:"required,oneof=Pending Confirmed Cancelled"`
	TransactionID   string            `json:"transaction_id" bson:"transaction_id"`
	PaymentMethod   string            `json:"payment_method" bson:"payment_method"`
	Contact         *Contact          `json:"contact,omitempty" bson:"contact,omitempty" validate:"omitempty"`
	SpecialRequests string            `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"max=1000"`
	CreatedAt       time.Time         `json:"created_at" bson:"created_at"`
}

// Resources lists every resource the booking occupies: the base campsite
// followed by each rented item.
func (b *Booking) Resources() []ResourceRef {
	refs := make([]ResourceRef, 0, len(b.LineItems)+1)
	refs = append(refs, b.Resource)
	for _, li := range b.LineItems {
		if li.Resource != b.Resource {
			refs = append(refs, li.Resource)
		}
	}
	return refs
}

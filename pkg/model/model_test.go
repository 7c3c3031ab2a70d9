package model

import (
	"testing"
	"time"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/pricing"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		start1, end1 string
		start2, end2 string
		want         bool
	}{
		{"contained", "2025-06-01", "2025-06-05", "2025-06-03", "2025-06-04", true},
		{"adjacent after", "2025-06-01", "2025-06-05", "2025-06-05", "2025-06-07", false},
		{"adjacent before", "2025-06-05", "2025-06-07", "2025-06-01", "2025-06-05", false},
		{"straddles start", "2025-06-03", "2025-06-08", "2025-06-01", "2025-06-04", true},
		{"identical", "2025-06-01", "2025-06-02", "2025-06-01", "2025-06-02", true},
		{"disjoint", "2025-06-01", "2025-06-02", "2025-07-01", "2025-07-02", false},
		{"empty range", "2025-06-01", "2025-06-05", "2025-06-03", "2025-06-03", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(day(tt.start1), day(tt.end1), day(tt.start2), day(tt.end2))
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// symmetric
			if back := Overlaps(day(tt.start2), day(tt.end2), day(tt.start1), day(tt.end1)); back != got {
				t.Errorf("Overlaps() is not symmetric")
			}
		})
	}
}

func TestAvailabilityWindow_Blocks(t *testing.T) {
	for status, want := range map[WindowStatus]bool{
		WindowAvailable:   false,
		WindowUnavailable: true,
		WindowMaintenance: true,
	} {
		w := AvailabilityWindow{Status: status}
		if w.Blocks() != want {
			t.Errorf("%s: Blocks() = %v, want %v", status, w.Blocks(), want)
		}
	}
}

func TestParseResourceRef(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		id      string
		wantErr bool
	}{
		{"campsite", "campsite", "cs-ella", false},
		{"rental item", "rental_item", "ri-tent", false},
		{"unknown kind", "a01", "cs-ella", true},
		{"missing kind", "", "cs-ella", true},
		{"missing id", "campsite", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseResourceRef(tt.kind, tt.id)
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.String() != tt.kind+":"+tt.id {
				t.Errorf("String() = %s", ref.String())
			}
		})
	}
}

func TestResource_ShapeAndRate(t *testing.T) {
	campsite := &Resource{
		ID:       "cs-1",
		Kind:     KindCampsite,
		Campsite: &CampsiteDetails{Capacity: 6, DailyFee: pricing.FromMajor(10), Coordinates: Coordinates{Lat: 6.87, Lng: 81.05}},
	}
	item := &Resource{
		ID:         "ri-1",
		Kind:       KindRentalItem,
		RentalItem: &RentalItemDetails{DailyRate: pricing.FromMajor(25), Category: "tent", StockStatus: InStock},
	}
	mismatched := &Resource{ID: "x", Kind: KindRentalItem, Campsite: &CampsiteDetails{Capacity: 1}}

	if err := campsite.CheckShape(); err != nil {
		t.Errorf("campsite shape: %v", err)
	}
	if err := item.CheckShape(); err != nil {
		t.Errorf("item shape: %v", err)
	}
	if err := mismatched.CheckShape(); err == nil {
		t.Errorf("expected mismatched shape to fail")
	}

	if campsite.DailyRate() != 1000 || item.DailyRate() != 2500 || mismatched.DailyRate() != 0 {
		t.Errorf("unexpected daily rates")
	}
	if _, ok := campsite.Coordinates(); !ok {
		t.Errorf("campsite should expose coordinates")
	}
	if _, ok := item.Coordinates(); ok {
		t.Errorf("rental item has no coordinates")
	}
}

func TestBooking_Resources(t *testing.T) {
	b := Booking{
		Resource: NewCampsiteRef("cs-1"),
		LineItems: []BookingLineItem{
			{Resource: NewRentalItemRef("ri-1")},
			{Resource: NewRentalItemRef("ri-2")},
		},
	}

	refs := b.Resources()
	if len(refs) != 3 || refs[0] != NewCampsiteRef("cs-1") || refs[2] != NewRentalItemRef("ri-2") {
		t.Errorf("unexpected resources: %v", refs)
	}
}

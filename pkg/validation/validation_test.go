package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/logger"
	"vintrek/pkg/model"
)

func TestStruct_WindowRules(t *testing.T) {
	v := New(logger.Discard())
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		window    model.AvailabilityWindow
		wantField string
	}{
		{
			name: "valid",
			window: model.AvailabilityWindow{
				Resource:  model.NewCampsiteRef("cs-1"),
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 3),
				Status:    model.WindowMaintenance,
			},
		},
		{
			name: "end before start",
			window: model.AvailabilityWindow{
				Resource:  model.NewCampsiteRef("cs-1"),
				StartDate: start,
				EndDate:   start.AddDate(0, 0, -1),
				Status:    model.WindowUnavailable,
			},
			wantField: "end_date",
		},
		{
			name: "unknown kind",
			window: model.AvailabilityWindow{
				Resource:  model.ResourceRef{Kind: "a01", ID: "x"},
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 1),
				Status:    model.WindowUnavailable,
			},
			wantField: "resource.kind",
		},
		{
			name: "bad status",
			window: model.AvailabilityWindow{
				Resource:  model.NewRentalItemRef("ri-1"),
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 1),
				Status:    "Booked",
			},
			wantField: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, &tt.window)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, fe := range verrs {
				if strings.HasSuffix(fe.Field, tt.wantField) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidationErrors_AppError(t *testing.T) {
	verrs := ValidationErrors{{Field: "party_size", Message: "party_size must be at least 1"}}
	appErr := verrs.AppError("Invalid booking")

	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("code = %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].(map[string]any)
	if !ok || fields["party_size"] == nil {
		t.Errorf("unexpected details: %v", appErr.Details)
	}
}

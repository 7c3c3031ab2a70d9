package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/logger"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	getBookingFunc func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	return b, nil
}

func (m *mockBookingService) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return m.getBookingFunc(ctx, id)
}

func TestGetByID(t *testing.T) {
	svc := &mockBookingService{
		getBookingFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			switch id {
			case "665f1c2e8a1b2c3d4e5f6a7b":
				return &model.Booking{ID: id, IdempotencyKey: "secret", TotalPrice: pricing.FromMajor(180), Status: model.BookingConfirmed}, nil
			case "bad":
				return nil, apperrors.InvalidInput("Invalid booking ID format")
			}
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	}
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)

	tests := []struct {
		id   string
		want int
	}{
		{"665f1c2e8a1b2c3d4e5f6a7b", http.StatusOK},
		{"bad", http.StatusBadRequest},
		{"665f1c2e8a1b2c3d4e5f6a7c", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+tt.id, nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if rec.Code != http.StatusOK {
				return
			}

			var body map[string]map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["data"]["total_price"] != "180.00" {
				t.Errorf("total_price = %v", body["data"]["total_price"])
			}
			if _, leaked := body["data"]["idempotency_key"]; leaked {
				t.Error("idempotency key must not be exposed")
			}
		})
	}
}

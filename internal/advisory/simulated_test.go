package advisory

import (
	"context"
	"errors"
	"testing"
	"time"

	"vintrek/pkg/config"
	"vintrek/pkg/model"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func newSimulated(alertRate, failureRate float64) *Simulated {
	return NewSimulated(&config.Config{
		AdvisoryAlertRate:   alertRate,
		AdvisoryFailureRate: failureRate,
	})
}

func TestGetAdvisory_Deterministic(t *testing.T) {
	s := newSimulated(0.7, 0)
	coords := model.Coordinates{Lat: 6.87, Lng: 81.05}

	first, err := s.GetAdvisory(context.Background(), coords, day("2024-06-01"), day("2024-06-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := s.GetAdvisory(context.Background(), coords, day("2024-06-01"), day("2024-06-03"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Conditions != first.Conditions || again.HasAlerts() != first.HasAlerts() {
			t.Fatalf("advisory changed between calls: %+v vs %+v", again, first)
		}
	}
}

func TestGetAdvisory_AlertRate(t *testing.T) {
	tests := []struct {
		name       string
		alertRate  float64
		wantAlerts bool
	}{
		{"always alert", 1, true},
		{"never alert", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSimulated(tt.alertRate, 0)
			start := day("2024-01-01")
			for i := range 30 {
				from := start.AddDate(0, 0, i)
				adv, err := s.GetAdvisory(context.Background(), model.Coordinates{}, from, from.AddDate(0, 0, 2))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if adv.HasAlerts() != tt.wantAlerts {
					t.Fatalf("%s: alerts = %v", from.Format(time.DateOnly), adv.Alerts)
				}
				if adv.Coordinates != DefaultCoordinates {
					t.Errorf("coordinates = %+v, want default", adv.Coordinates)
				}
				if adv.Conditions.Summary == "" {
					t.Errorf("conditions missing")
				}
			}
		})
	}
}

func TestGetAdvisory_Failure(t *testing.T) {
	s := newSimulated(0.5, 1)
	s.roll = func() float64 { return 0.2 }

	_, err := s.GetAdvisory(context.Background(), model.Coordinates{}, day("2024-06-01"), day("2024-06-02"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGetAdvisory_RespectsContext(t *testing.T) {
	s := NewSimulated(&config.Config{AdvisoryLatency: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.GetAdvisory(ctx, model.Coordinates{}, day("2024-06-01"), day("2024-06-02"))
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

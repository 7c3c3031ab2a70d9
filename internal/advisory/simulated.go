package advisory

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"vintrek/pkg/config"
	"vintrek/pkg/model"
)

type scenario struct {
	alert      *Alert
	conditions Conditions
}

var alertScenarios = []scenario{
	{
		alert: &Alert{
			Title:       "Heavy Rain Warning",
			Description: "Heavy rainfall expected in the afternoon and evening. Trails may become slippery and muddy; bring waterproof gear or consider rescheduling.",
		},
		conditions: Conditions{TemperatureC: 24, Humidity: 85, Summary: "Heavy Rain", WindSpeedKmh: 15},
	},
	{
		alert: &Alert{
			Title:       "Thunderstorm Alert",
			Description: "Severe thunderstorms with lightning expected in the late afternoon. Outdoor activities are not recommended; seek shelter if camping.",
		},
		conditions: Conditions{TemperatureC: 26, Humidity: 90, Summary: "Thunderstorm", WindSpeedKmh: 25},
	},
	{
		alert: &Alert{
			Title:       "Monsoon Warning",
			Description: "Continuous monsoon rainfall expected for 24 hours. River levels may rise; avoid camping near water and low-lying areas.",
		},
		conditions: Conditions{TemperatureC: 23, Humidity: 95, Summary: "Monsoon Rain", WindSpeedKmh: 20},
	},
	{
		alert: &Alert{
			Title:       "Flash Flood Risk",
			Description: "Heavy rain may cause flash flooding in mountainous areas. Avoid valleys and stream beds and monitor updates closely.",
		},
		conditions: Conditions{TemperatureC: 25, Humidity: 88, Summary: "Heavy Rain", WindSpeedKmh: 18},
	},
}

var clearScenarios = []scenario{
	{conditions: Conditions{TemperatureC: 28, Humidity: 65, Summary: "Partly Cloudy", WindSpeedKmh: 8}},
	{conditions: Conditions{TemperatureC: 30, Humidity: 60, Summary: "Clear Sky", WindSpeedKmh: 5}},
}

// Simulated produces canned advisories. The outcome is a pure function of the
// coordinates and dates, so repeated lookups for the same trip agree.
type Simulated struct {
	latency     time.Duration
	alertRate   float64
	failureRate float64

	// roll draws the value compared against failureRate.
	roll func() float64
}

func NewSimulated(cfg *config.Config) *Simulated {
	return &Simulated{
		latency:     cfg.AdvisoryLatency,
		alertRate:   cfg.AdvisoryAlertRate,
		failureRate: cfg.AdvisoryFailureRate,
		roll:        rand.Float64,
	}
}

func (s *Simulated) GetAdvisory(ctx context.Context, coords model.Coordinates, start, end time.Time) (*Advisory, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	if s.failureRate > 0 && s.roll() < s.failureRate {
		return nil, fmt.Errorf("%w: simulated outage", ErrUnavailable)
	}

	if coords == (model.Coordinates{}) {
		coords = DefaultCoordinates
	}

	rng := rand.New(rand.NewPCG(seed(coords, start, end)))
	var sc scenario
	if rng.Float64() < s.alertRate {
		sc = alertScenarios[rng.IntN(len(alertScenarios))]
	} else {
		sc = clearScenarios[rng.IntN(len(clearScenarios))]
	}

	adv := &Advisory{
		Coordinates: coords,
		StartDate:   start,
		EndDate:     end,
		Alerts:      []Alert{},
		Conditions:  sc.conditions,
	}
	if sc.alert != nil {
		adv.Alerts = append(adv.Alerts, *sc.alert)
	}
	return adv, nil
}

func seed(coords model.Coordinates, start, end time.Time) (uint64, uint64) {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []uint64{
		math.Float64bits(coords.Lat),
		math.Float64bits(coords.Lng),
		uint64(start.Unix()),
		uint64(end.Unix()),
	} {
		binary.BigEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	sum := h.Sum64()
	return sum, sum ^ 0x9e3779b97f4a7c15
}

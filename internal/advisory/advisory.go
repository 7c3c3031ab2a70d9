// Package advisory provides weather advisories for a campsite and date range.
//
// Advisories are supplementary: callers degrade a failed lookup to "no
// alert" instead of blocking the booking.
package advisory

import (
	"context"
	"errors"
	"time"

	"vintrek/pkg/model"
)

// DefaultCoordinates is used for campsites without a stored location.
var DefaultCoordinates = model.Coordinates{Lat: 7.2906, Lng: 80.6337}

var ErrUnavailable = errors.New("weather advisory unavailable")

type Alert struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Conditions struct {
	TemperatureC int    `json:"temperature_c"`
	Humidity     int    `json:"humidity"`
	Summary      string `json:"summary"`
	WindSpeedKmh int    `json:"wind_speed_kmh"`
}

type Advisory struct {
	Coordinates model.Coordinates `json:"coordinates"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	Alerts      []Alert           `json:"alerts"`
	Conditions  Conditions        `json:"conditions"`
}

func (a *Advisory) HasAlerts() bool {
	return a != nil && len(a.Alerts) > 0
}

type Service interface {
	GetAdvisory(ctx context.Context, coords model.Coordinates, start, end time.Time) (*Advisory, error)
}

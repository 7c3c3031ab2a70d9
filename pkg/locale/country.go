package locale

import "time"

const DefaultTimezone = "UTC"

type Country struct {
	Code            string // ISO 3166-1 alpha-2
	Name            string
	DefaultTimezone string // IANA
}

var Countries = map[string]Country{
	"LK": {Code: "LK", Name: "Sri Lanka", DefaultTimezone: "Asia/Colombo"},
	"US": {Code: "US", Name: "United States", DefaultTimezone: "America/New_York"},
	"GB": {Code: "GB", Name: "United Kingdom", DefaultTimezone: "Europe/London"},
	"IL": {Code: "IL", Name: "Israel", DefaultTimezone: "Asia/Jerusalem"},
}

// Today returns midnight UTC of the calendar day that now falls on in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

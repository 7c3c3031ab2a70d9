package locale

import (
	"time"

	"vintrek/pkg/sanitizer"
)

func InferCountryFromPhone(phone string) *Country {
	region := sanitizer.PhoneRegion(sanitizer.NormalizePhone(phone))
	if country, ok := Countries[region]; ok {
		return &country
	}
	return nil
}

func InferTimezoneFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

// LocationFor resolves the booking timezone: the contact phone's country when
// known, otherwise fallback.
func LocationFor(phone string, fallback *time.Location) *time.Location {
	if country := InferCountryFromPhone(phone); country != nil {
		if loc, err := time.LoadLocation(country.DefaultTimezone); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}

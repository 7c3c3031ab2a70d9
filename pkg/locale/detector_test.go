package locale

import (
	"testing"
	"time"
)

func TestInferCountryFromPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantCode string
		wantNil  bool
	}{
		{name: "Sri Lanka phone", phone: "+94771234567", wantCode: "LK"},
		{name: "Sri Lanka national", phone: "0771234567", wantCode: "LK"},
		{name: "Israel phone", phone: "+972541234567", wantCode: "IL"},
		{name: "US phone", phone: "+12024561111", wantCode: "US"},
		{name: "unsupported country", phone: "+33612345678", wantNil: true},
		{name: "empty phone", phone: "", wantNil: true},
		{name: "invalid phone", phone: "not-a-phone", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferCountryFromPhone(tt.phone)
			if tt.wantNil {
				if got != nil {
					t.Errorf("InferCountryFromPhone(%q) = %v, want nil", tt.phone, got.Code)
				}
				return
			}
			if got == nil || got.Code != tt.wantCode {
				t.Errorf("InferCountryFromPhone(%q) = %v, want %s", tt.phone, got, tt.wantCode)
			}
		})
	}
}

func TestInferTimezoneFromPhone(t *testing.T) {
	if got := InferTimezoneFromPhone("+94771234567"); got != "Asia/Colombo" {
		t.Errorf("got %q", got)
	}
	if got := InferTimezoneFromPhone(""); got != DefaultTimezone {
		t.Errorf("got %q", got)
	}
}

func TestLocationForFallsBack(t *testing.T) {
	fallback := time.FixedZone("X", 3600)
	if got := LocationFor("", fallback); got != fallback {
		t.Errorf("got %v, want fallback", got)
	}
	if got := LocationFor("", nil); got != time.UTC {
		t.Errorf("got %v, want UTC", got)
	}
}

func TestToday(t *testing.T) {
	colombo := time.FixedZone("Colombo", 5*3600+1800)
	// 20:00 UTC on Jan 1 is already Jan 2 in Colombo.
	now := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)

	got := Today(now, colombo)
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Today = %v, want %v", got, want)
	}
	if got := Today(now, nil); !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Today(nil) = %v", got)
	}
}

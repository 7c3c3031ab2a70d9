package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "vintrek/pkg/errors"
)

// Money is an amount in minor currency units (cents).
type Money int64

const minorUnits = 100

func FromMajor(major int64) Money {
	return Money(major * minorUnits)
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/minorUnits, v%minorUnits)
}

// ParseMoney accepts "25", "25.5" and "25.00" with an optional leading minus.
// Any other sign, and more than two decimals, is rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperrors.InvalidInput("empty amount")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if !digits(whole) || (hasFrac && (!digits(frac) || len(frac) > 2)) {
		return 0, apperrors.InvalidInput("invalid amount: " + strconv.Quote(s))
	}
	if len(frac) == 1 {
		frac += "0"
	}
	if frac == "" {
		frac = "00"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid amount: " + strconv.Quote(s))
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid amount: " + strconv.Quote(s))
	}
	if w > (math.MaxInt64-f)/minorUnits {
		return 0, apperrors.InvalidInput("amount out of range")
	}

	v := w*minorUnits + f
	if neg {
		v = -v
	}
	return Money(v), nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// bare numbers are accepted as major units
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("money must be a string or number: %w", err)
		}
		s = n.String()
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Mul multiplies by a non-negative factor and reports overflow.
func (m Money) Mul(factor int64) (Money, error) {
	if factor < 0 {
		return 0, apperrors.Validation("negative multiplier", map[string]any{"factor": factor})
	}
	if factor != 0 && int64(m) > math.MaxInt64/factor {
		return 0, apperrors.Validation("amount overflow", map[string]any{"amount": m.String(), "factor": factor})
	}
	return Money(int64(m) * factor), nil
}

func (m Money) Add(o Money) (Money, error) {
	if o > 0 && m > Money(math.MaxInt64)-o {
		return 0, apperrors.Validation("amount overflow", nil)
	}
	return m + o, nil
}

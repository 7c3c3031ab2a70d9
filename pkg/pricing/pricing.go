package pricing

import (
	"math"
	"time"

	apperrors "vintrek/pkg/errors"
)

const day = 24 * time.Hour

// NumberOfDays is the billable length of [start, end): whole days rounded up,
// never less than one.
func NumberOfDays(start, end time.Time) int {
	diff := end.Sub(start)
	if diff <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(float64(diff)/float64(day))))
}

type Line struct {
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	UnitRate Money  `json:"unit_rate"`
	Quantity int    `json:"quantity"`
}

type QuoteLine struct {
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	UnitRate Money  `json:"unit_rate"`
	Quantity int    `json:"quantity"`
	Days     int    `json:"days"`
	Subtotal Money  `json:"subtotal"`
}

type Quote struct {
	Days         int         `json:"days"`
	Lines        []QuoteLine `json:"lines"`
	ItemsTotal   Money       `json:"items_total"`
	BaseFee      Money       `json:"base_fee"`
	BaseFeeTotal Money       `json:"base_fee_total"`
	GrandTotal   Money       `json:"grand_total"`
}

// ComputeTotal prices every line as rate*quantity*days and adds the base
// fee once per day.
func ComputeTotal(lines []Line, days int, baseFee Money) (Quote, error) {
	if days < 1 {
		return Quote{}, apperrors.Validation("days must be at least 1", map[string]any{"days": days})
	}
	if baseFee < 0 {
		return Quote{}, apperrors.Validation("base fee cannot be negative", map[string]any{"base_fee": baseFee.String()})
	}

	q := Quote{
		Days:    days,
		Lines:   make([]QuoteLine, 0, len(lines)),
		BaseFee: baseFee,
	}

	for _, l := range lines {
		if l.Quantity < 1 {
			return Quote{}, apperrors.InvalidQuantity(l.Quantity)
		}
		if l.UnitRate < 0 {
			return Quote{}, apperrors.Validation("unit rate cannot be negative", map[string]any{"key": l.Key})
		}

		subtotal, err := l.UnitRate.Mul(int64(l.Quantity))
		if err != nil {
			return Quote{}, err
		}
		if subtotal, err = subtotal.Mul(int64(days)); err != nil {
			return Quote{}, err
		}
		if q.ItemsTotal, err = q.ItemsTotal.Add(subtotal); err != nil {
			return Quote{}, err
		}

		q.Lines = append(q.Lines, QuoteLine{
			Key:      l.Key,
			Name:     l.Name,
			UnitRate: l.UnitRate,
			Quantity: l.Quantity,
			Days:     days,
			Subtotal: subtotal,
		})
	}

	var err error
	if q.BaseFeeTotal, err = baseFee.Mul(int64(days)); err != nil {
		return Quote{}, err
	}
	if q.GrandTotal, err = q.ItemsTotal.Add(q.BaseFeeTotal); err != nil {
		return Quote{}, err
	}
	return q, nil
}

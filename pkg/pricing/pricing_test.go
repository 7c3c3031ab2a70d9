package pricing

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	apperrors "vintrek/pkg/errors"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestNumberOfDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"three nights", date("2025-06-01"), date("2025-06-04"), 3},
		{"single night", date("2025-06-01"), date("2025-06-02"), 1},
		{"same day", date("2025-06-01"), date("2025-06-01"), 1},
		{"partial day rounds up", date("2025-06-01"), date("2025-06-02").Add(3 * time.Hour), 2},
		{"reversed range", date("2025-06-05"), date("2025-06-01"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumberOfDays(tt.start, tt.end); got != tt.want {
				t.Errorf("NumberOfDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeTotal_CampsiteWithTents(t *testing.T) {
	lines := []Line{{Key: "rental_item:tent", UnitRate: FromMajor(25), Quantity: 2}}

	q, err := ComputeTotal(lines, 3, FromMajor(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.Lines[0].Subtotal != FromMajor(150) {
		t.Errorf("line subtotal = %s, want 150.00", q.Lines[0].Subtotal)
	}
	if q.BaseFeeTotal != FromMajor(30) {
		t.Errorf("base fee total = %s, want 30.00", q.BaseFeeTotal)
	}
	if q.GrandTotal.String() != "180.00" {
		t.Errorf("grand total = %s, want 180.00", q.GrandTotal)
	}
}

func TestComputeTotal_SubtotalLinearInQuantity(t *testing.T) {
	rate := Money(1999)
	for qty := 1; qty <= 10; qty++ {
		q, err := ComputeTotal([]Line{{Key: "k", UnitRate: rate, Quantity: qty}}, 4, 0)
		if err != nil {
			t.Fatalf("qty %d: unexpected error: %v", qty, err)
		}
		want := Money(int64(rate) * int64(qty) * 4)
		if q.Lines[0].Subtotal != want {
			t.Errorf("qty %d: subtotal = %s, want %s", qty, q.Lines[0].Subtotal, want)
		}
	}
}

func TestComputeTotal_Errors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		days     int
		baseFee  Money
		wantCode string
	}{
		{"zero days", nil, 0, 0, apperrors.CodeValidation},
		{"zero quantity", []Line{{Key: "k", UnitRate: 100, Quantity: 0}}, 1, 0, apperrors.CodeInvalidQuantity},
		{"negative rate", []Line{{Key: "k", UnitRate: -1, Quantity: 1}}, 1, 0, apperrors.CodeValidation},
		{"negative base fee", nil, 1, -100, apperrors.CodeValidation},
		{"overflow", []Line{{Key: "k", UnitRate: Money(math.MaxInt64 / 2), Quantity: 3}}, 1, 0, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotal(tt.lines, tt.days, tt.baseFee)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestComputeTotal_EmptyCartChargesBaseFeeOnly(t *testing.T) {
	q, err := ComputeTotal(nil, 2, FromMajor(12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.GrandTotal != FromMajor(24) || len(q.Lines) != 0 {
		t.Errorf("unexpected quote: %+v", q)
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{"25", 2500, false},
		{"25.5", 2550, false},
		{"25.00", 2500, false},
		{"0.07", 7, false},
		{"-1.50", -150, false},
		{"25.", 0, true},
		{".5", 0, true},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"--5", 0, true},
		{"+3", 0, true},
		{"-+3", 0, true},
		{"1.-5", 0, true},
		{"1.+5", 0, true},
		{"1 000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMoney(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMoney(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMoney_SignInsideAmount(t *testing.T) {
	for _, in := range []string{"--5", "1.-5"} {
		_, err := ParseMoney(in)
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Fatalf("ParseMoney(%q) err = %v, want INVALID_INPUT", in, err)
		}
		if !strings.Contains(err.Error(), "invalid amount") {
			t.Errorf("ParseMoney(%q) err = %v, want an invalid amount error", in, err)
		}
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: 18000})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"total":"180.00"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"12.30","b":7}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.A != 1230 || in.B != 700 {
		t.Errorf("unexpected values: %+v", in)
	}
}

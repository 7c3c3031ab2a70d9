package cart

import (
	"testing"

	apperrors "vintrek/pkg/errors"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"
)

var (
	tent  = model.NewRentalItemRef("tent-2p")
	stove = model.NewRentalItemRef("stove")
)

func TestAdd_MergesByResource(t *testing.T) {
	var c Cart

	if err := c.Add(Line{Resource: tent, Name: "Tent", UnitRate: pricing.FromMajor(25)}, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(Line{Resource: tent, Name: "Tent", UnitRate: pricing.FromMajor(25)}, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(Line{Resource: stove, Name: "Stove", UnitRate: pricing.FromMajor(5)}, 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(c.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(c.Lines))
	}
	if c.Lines[0].Resource != tent || c.Lines[0].Quantity != 2 {
		t.Errorf("tent line = %+v", c.Lines[0])
	}
	if c.Lines[1].Quantity != 3 {
		t.Errorf("stove line = %+v", c.Lines[1])
	}
}

func TestAdd_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		line     Line
		qty      int
		wantCode string
	}{
		{"zero quantity", Line{Resource: tent}, 0, apperrors.CodeInvalidQuantity},
		{"campsite", Line{Resource: model.NewCampsiteRef("cs-1")}, 1, apperrors.CodeValidation},
		{"missing id", Line{Resource: model.ResourceRef{Kind: model.KindRentalItem}}, 1, apperrors.CodeValidation},
		{"negative rate", Line{Resource: tent, UnitRate: -1}, 1, apperrors.CodeValidation},
		{"over limit", Line{Resource: tent}, MaxQuantity + 1, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			err := c.Add(tt.line, tt.qty)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("err = %v, want %s", err, tt.wantCode)
			}
			if !c.IsEmpty() {
				t.Errorf("cart changed on error: %+v", c.Lines)
			}
		})
	}
}

func TestSetQuantity(t *testing.T) {
	c := Cart{Lines: []Line{{Resource: tent, UnitRate: pricing.FromMajor(25), Quantity: 2}}}

	for _, qty := range []int{0, -3} {
		if err := c.SetQuantity(tent, qty); !apperrors.HasCode(err, apperrors.CodeInvalidQuantity) {
			t.Errorf("qty %d: err = %v", qty, err)
		}
		if c.Lines[0].Quantity != 2 {
			t.Errorf("qty %d changed the line to %d", qty, c.Lines[0].Quantity)
		}
	}

	if err := c.SetQuantity(stove, 1); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown line: err = %v", err)
	}

	if err := c.SetQuantity(tent, 4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c.Lines[0].Quantity != 4 {
		t.Errorf("quantity = %d", c.Lines[0].Quantity)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := Cart{Lines: []Line{
		{Resource: tent, Quantity: 1},
		{Resource: stove, Quantity: 1},
	}}

	if !c.Remove(tent) {
		t.Error("expected tent to be removed")
	}
	if c.Remove(tent) {
		t.Error("second remove should report false")
	}
	if refs := c.Refs(); len(refs) != 1 || refs[0] != stove {
		t.Errorf("refs = %v", refs)
	}

	c.Clear()
	if !c.IsEmpty() {
		t.Error("cart not empty after Clear")
	}
}

func TestTotal(t *testing.T) {
	var c Cart
	if err := c.Add(Line{Resource: tent, Name: "Tent", UnitRate: pricing.FromMajor(25)}, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	q, err := c.Total(3, pricing.FromMajor(10))
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if q.GrandTotal.String() != "180.00" {
		t.Errorf("grand total = %s, want 180.00", q.GrandTotal)
	}
	if q.Lines[0].Key != tent.String() || q.Lines[0].Subtotal.String() != "150.00" {
		t.Errorf("line = %+v", q.Lines[0])
	}

	// subtotal grows linearly with quantity
	for qty := 1; qty <= 5; qty++ {
		if err := c.SetQuantity(tent, qty); err != nil {
			t.Fatalf("set: %v", err)
		}
		q, err := c.Total(3, 0)
		if err != nil {
			t.Fatalf("total: %v", err)
		}
		if want := pricing.FromMajor(int64(25 * 3 * qty)); q.GrandTotal != want {
			t.Errorf("qty %d: total = %s, want %s", qty, q.GrandTotal, want)
		}
	}
}

func TestTotal_EmptyCartStillChargesBaseFee(t *testing.T) {
	var c Cart
	q, err := c.Total(2, pricing.FromMajor(10))
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if q.GrandTotal.String() != "20.00" || len(q.Lines) != 0 {
		t.Errorf("quote = %+v", q)
	}
}

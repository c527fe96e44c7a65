package service

import (
	"testing"

	"orderdesk/backend/internal/domain"
)

func TestComputeTotals(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: "a", QuantityOrdered: 2, UnitPriceCents: 1000},
		{ProductID: "b", QuantityOrdered: 1, UnitPriceCents: 500},
	}

	subtotal, tax, total := ComputeTotals(items, 8)
	if subtotal != 2500 || tax != 200 || total != 2700 {
		t.Fatalf("expected 2500/200/2700, got %d/%d/%d", subtotal, tax, total)
	}
	if items[0].LineTotalCents != 2000 || items[1].LineTotalCents != 500 {
		t.Fatalf("unexpected line totals: %d, %d", items[0].LineTotalCents, items[1].LineTotalCents)
	}
}

func TestComputeTotalsZeroRate(t *testing.T) {
	items := []domain.LineItem{{ProductID: "a", QuantityOrdered: 3, UnitPriceCents: 333}}

	subtotal, tax, total := ComputeTotals(items, 0)
	if subtotal != 999 || tax != 0 || total != 999 {
		t.Fatalf("expected 999/0/999, got %d/%d/%d", subtotal, tax, total)
	}
}

func TestComputeTotalsRoundsHalfCentUp(t *testing.T) {
	// 1250 * 8.6% = 107.5, must round away from zero to 108.
	items := []domain.LineItem{{ProductID: "a", QuantityOrdered: 1, UnitPriceCents: 1250}}

	_, tax, total := ComputeTotals(items, 8.6)
	if tax != 108 {
		t.Fatalf("expected tax 108, got %d", tax)
	}
	if total != 1358 {
		t.Fatalf("expected total 1358, got %d", total)
	}
}

func TestComputeTotalsExcludesBackorderedQuantity(t *testing.T) {
	// Backordered units belong to the split document, only the ordered
	// quantity is billed here.
	items := []domain.LineItem{{ProductID: "a", QuantityOrdered: 4, QuantityBackordered: 6, UnitPriceCents: 100}}

	subtotal, _, _ := ComputeTotals(items, 0)
	if subtotal != 400 {
		t.Fatalf("expected subtotal 400, got %d", subtotal)
	}
}

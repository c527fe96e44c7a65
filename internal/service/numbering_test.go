package service

import "testing"

func TestNextNumberFromEmpty(t *testing.T) {
	if got := NextNumber(nil, NumberPrefixInvoice); got != "INV-00001" {
		t.Fatalf("expected INV-00001, got %q", got)
	}
}

func TestNextNumberIncrementsHighest(t *testing.T) {
	existing := []string{"INV-00001", "INV-00007", "INV-00003"}
	if got := NextNumber(existing, NumberPrefixInvoice); got != "INV-00008" {
		t.Fatalf("expected INV-00008, got %q", got)
	}
}

func TestNextNumberIgnoresForeignAndMalformed(t *testing.T) {
	existing := []string{"PO-00042", "INV-abc", "INV-", "DRAFT-1", "INV-00002"}
	if got := NextNumber(existing, NumberPrefixInvoice); got != "INV-00003" {
		t.Fatalf("expected INV-00003, got %q", got)
	}
}

func TestNextNumberGrowsPastPadding(t *testing.T) {
	if got := NextNumber([]string{"PO-99999"}, NumberPrefixPurchaseOrder); got != "PO-100000" {
		t.Fatalf("expected PO-100000, got %q", got)
	}
}

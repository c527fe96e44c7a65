package service

import (
	"github.com/shopspring/decimal"

	"orderdesk/backend/internal/domain"
)

// Payments within one cent of the total settle the document. The
// original paper process tolerated a cent of drift between a check
// and the printed total, so the engine does too.
const paymentToleranceCents = 1

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals fills in LineTotalCents on every item and returns
// subtotal, tax and total in cents. Only the ordered quantity counts
// toward a line total; backordered and received quantities are
// bookkeeping, not billing. Tax is computed in decimal arithmetic and
// rounded half away from zero to a whole cent.
func ComputeTotals(items []domain.LineItem, taxRatePercent float64) (int64, int64, int64) {
	var subtotal int64
	for i := range items {
		items[i].LineTotalCents = items[i].QuantityOrdered * items[i].UnitPriceCents
		subtotal += items[i].LineTotalCents
	}

	var tax int64
	if taxRatePercent != 0 && subtotal != 0 {
		tax = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromFloat(taxRatePercent)).
			Div(oneHundred).
			Round(0).
			IntPart()
	}

	return subtotal, tax, subtotal + tax
}

func paymentsTotal(payments []domain.Payment) int64 {
	var sum int64
	for _, p := range payments {
		sum += p.AmountCents
	}
	return sum
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

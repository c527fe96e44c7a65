package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderdesk/backend/internal/domain"
	"orderdesk/backend/internal/store"
)

func mustCreateInvoice(t *testing.T, svc *Service, req domain.InvoiceCreateRequest) domain.InvoiceCreateResponse {
	t.Helper()
	resp, err := svc.CreateInvoice(staffCtx(), req)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return resp
}

func productStock(t *testing.T, svc *Service, id string) int64 {
	t.Helper()
	product, err := svc.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProduct(%s): %v", id, err)
	}
	return product.Stock
}

func TestCreateInvoiceComputesTotalsAndDecrementsStock(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		IssueDate:      "2026-08-20",
		DueDate:        "2999-01-01",
		Items: []domain.OrderLineRequest{
			{ProductID: "prod-flour-25", QuantityOrdered: 2, UnitPriceCents: int64Ptr(1000)},
			{ProductID: "prod-oil-10", QuantityOrdered: 1, UnitPriceCents: int64Ptr(500)},
		},
	})

	inv := resp.Invoice
	if inv.SubtotalCents != 2500 || inv.TaxCents != 200 || inv.TotalCents != 2700 {
		t.Fatalf("expected 2500/200/2700, got %d/%d/%d", inv.SubtotalCents, inv.TaxCents, inv.TotalCents)
	}
	if inv.Number != "INV-00001" {
		t.Fatalf("expected INV-00001, got %q", inv.Number)
	}
	if inv.Status != domain.InvoiceStatusPending {
		t.Fatalf("expected pending, got %q", inv.Status)
	}
	if inv.BalanceCents != 2700 || inv.PaidCents != 0 {
		t.Fatalf("unexpected balance %d / paid %d", inv.BalanceCents, inv.PaidCents)
	}
	if resp.Backorder != nil {
		t.Fatal("expected no backorder")
	}
	if got := productStock(t, svc, "prod-flour-25"); got != 138 {
		t.Fatalf("expected flour stock 138, got %d", got)
	}
	if got := productStock(t, svc, "prod-oil-10"); got != 59 {
		t.Fatalf("expected oil stock 59, got %d", got)
	}
}

func TestCreateInvoiceDefaultsPriceFromProduct(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-corner",
		TaxRatePercent: float64Ptr(0),
		Items:          []domain.OrderLineRequest{{ProductID: "prod-sugar-10", QuantityOrdered: 3}},
	})

	if resp.Invoice.Items[0].UnitPriceCents != 1900 {
		t.Fatalf("expected seeded unit price 1900, got %d", resp.Invoice.Items[0].UnitPriceCents)
	}
	if resp.Invoice.TotalCents != 5700 {
		t.Fatalf("expected total 5700, got %d", resp.Invoice.TotalCents)
	}
}

func TestCreateInvoiceServiceLineLeavesStockAlone(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-delivery", QuantityOrdered: 2}},
	})
	if resp.Invoice.SubtotalCents != 5000 {
		t.Fatalf("expected subtotal 5000, got %d", resp.Invoice.SubtotalCents)
	}
	if got := productStock(t, svc, "prod-delivery"); got != 0 {
		t.Fatalf("service stock must stay 0, got %d", got)
	}
}

func TestCreateInvoiceOverdueWhenDueDatePassed(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		IssueDate:      "2020-01-01",
		DueDate:        "2020-02-01",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-box-std", QuantityOrdered: 10}},
	})
	if resp.Invoice.Status != domain.InvoiceStatusOverdue {
		t.Fatalf("expected overdue, got %q", resp.Invoice.Status)
	}
}

func TestCreateInvoiceRejectsVendorCounterparty(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateInvoice(staffCtx(), domain.InvoiceCreateRequest{
		CounterpartyID: "cp-millco",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-flour-25", QuantityOrdered: 1}},
	})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestCreateInvoiceManualNumberConflict(t *testing.T) {
	svc, _ := newTestService()

	req := domain.InvoiceCreateRequest{
		Number:         "INV-77777",
		CounterpartyID: "cp-hillside",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-box-std", QuantityOrdered: 1}},
	}
	mustCreateInvoice(t, svc, req)

	if _, err := svc.CreateInvoice(staffCtx(), req); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate number, got %v", err)
	}
}

func TestCreateInvoiceSplitsBackorder(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		IssueDate:      "2026-08-20",
		DueDate:        "2999-01-01",
		TaxRatePercent: float64Ptr(0),
		Items: []domain.OrderLineRequest{
			{ProductID: "prod-flour-25", QuantityOrdered: 4, QuantityBackordered: 6, UnitPriceCents: int64Ptr(1000)},
		},
	})

	if resp.Invoice.TotalCents != 4000 {
		t.Fatalf("expected parent total 4000, got %d", resp.Invoice.TotalCents)
	}
	back := resp.Backorder
	if back == nil {
		t.Fatal("expected a backorder document")
	}
	if back.Number != "INV-00002" || resp.Invoice.Number != "INV-00001" {
		t.Fatalf("expected consecutive numbers, got %q and %q", resp.Invoice.Number, back.Number)
	}
	if back.BackorderOf != "INV-00001" {
		t.Fatalf("expected backorder_of INV-00001, got %q", back.BackorderOf)
	}
	if back.TotalCents != 6000 {
		t.Fatalf("expected backorder total 6000, got %d", back.TotalCents)
	}
	if back.Items[0].QuantityOrdered != 6 || back.Items[0].QuantityBackordered != 0 {
		t.Fatalf("backorder line should carry the deferred quantity: %+v", back.Items[0])
	}
	if back.IssueDate != "" || back.DueDate != "" {
		t.Fatalf("backorder dates must stay empty until fulfilled: %q / %q", back.IssueDate, back.DueDate)
	}
	if back.Status != domain.InvoiceStatusPending {
		t.Fatalf("expected pending backorder, got %q", back.Status)
	}

	// Only the shipped quantity moves stock. The backorder decrements
	// later, when it ships.
	if got := productStock(t, svc, "prod-flour-25"); got != 136 {
		t.Fatalf("expected flour stock 136, got %d", got)
	}

	fetched, err := svc.GetOrder(context.Background(), back.ID)
	if err != nil {
		t.Fatalf("GetOrder(backorder): %v", err)
	}
	if fetched.BackorderOf != "INV-00001" {
		t.Fatalf("persisted backorder lost linkage: %q", fetched.BackorderOf)
	}
}

func TestCreateInvoiceRejectsDuplicateProductLines(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateInvoice(staffCtx(), domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		Items: []domain.OrderLineRequest{
			{ProductID: "prod-flour-25", QuantityOrdered: 2},
			{ProductID: "prod-flour-25", QuantityOrdered: 3},
		},
	})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for duplicate product lines, got %v", err)
	}
	// The rejected create must not have moved stock.
	if got := productStock(t, svc, "prod-flour-25"); got != 140 {
		t.Fatalf("expected flour stock 140, got %d", got)
	}
}

func TestRecordPaymentLifecycle(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		DueDate:        "2999-01-01",
		Items: []domain.OrderLineRequest{
			{ProductID: "prod-flour-25", QuantityOrdered: 2, UnitPriceCents: int64Ptr(1000)},
			{ProductID: "prod-oil-10", QuantityOrdered: 1, UnitPriceCents: int64Ptr(500)},
		},
	})
	id := resp.Invoice.ID

	inv, err := svc.RecordPayment(staffCtx(), id, domain.RecordPaymentRequest{Method: "cash", AmountCents: 1500})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPartial {
		t.Fatalf("expected partial, got %q", inv.Status)
	}
	if inv.PaidCents != 1500 || inv.BalanceCents != 1200 {
		t.Fatalf("expected paid 1500 balance 1200, got %d / %d", inv.PaidCents, inv.BalanceCents)
	}

	inv, err = svc.RecordPayment(staffCtx(), id, domain.RecordPaymentRequest{Method: "transfer", AmountCents: 1200, Reference: "WIRE-9"})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %q", inv.Status)
	}
	if inv.BalanceCents != 0 || len(inv.Payments) != 2 {
		t.Fatalf("expected settled invoice with 2 payments, got balance %d, %d payments", inv.BalanceCents, len(inv.Payments))
	}
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-flour-25", QuantityOrdered: 2, UnitPriceCents: int64Ptr(1000)}},
	})

	// Total is 2160 at the default 8% rate. Two cents over the balance
	// is outside tolerance.
	_, err := svc.RecordPayment(staffCtx(), resp.Invoice.ID, domain.RecordPaymentRequest{Method: "cash", AmountCents: resp.Invoice.TotalCents + 2})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}

	_, err = svc.RecordPayment(staffCtx(), resp.Invoice.ID, domain.RecordPaymentRequest{Method: "barter", AmountCents: 100})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for unknown method, got %v", err)
	}
}

func TestRecordPaymentSettlesWithinTolerance(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		TaxRatePercent: float64Ptr(0),
		Items:          []domain.OrderLineRequest{{ProductID: "prod-flour-25", QuantityOrdered: 1, UnitPriceCents: int64Ptr(2700)}},
	})

	inv, err := svc.RecordPayment(staffCtx(), resp.Invoice.ID, domain.RecordPaymentRequest{Method: "check", AmountCents: 2699})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPaid {
		t.Fatalf("a 1 cent shortfall should settle, got %q", inv.Status)
	}
	if inv.BalanceCents != 1 {
		t.Fatalf("expected residual balance 1, got %d", inv.BalanceCents)
	}
}

func TestRecordPaymentRejectedOnceSettled(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		TaxRatePercent: float64Ptr(0),
		Items:          []domain.OrderLineRequest{{ProductID: "prod-box-std", QuantityOrdered: 1, UnitPriceCents: int64Ptr(2000)}},
	})
	id := resp.Invoice.ID

	inv, err := svc.RecordPayment(staffCtx(), id, domain.RecordPaymentRequest{Method: "cash", AmountCents: 2000})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %q", inv.Status)
	}

	// Settled invoices take no further money, not even a cent inside
	// the tolerance.
	if _, err := svc.RecordPayment(staffCtx(), id, domain.RecordPaymentRequest{Method: "cash", AmountCents: 1}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord on a paid invoice, got %v", err)
	}
}

func TestMarkInvoiceUnpaidKeepsPartialForSmallPayments(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		DueDate:        "2999-01-01",
		TaxRatePercent: float64Ptr(0),
		Items:          []domain.OrderLineRequest{{ProductID: "prod-box-std", QuantityOrdered: 1, UnitPriceCents: int64Ptr(2700)}},
	})
	id := resp.Invoice.ID

	// A single cent on the books still counts as money received.
	if _, err := svc.RecordPayment(staffCtx(), id, domain.RecordPaymentRequest{Method: "cash", AmountCents: 1}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.MarkInvoicePaid(staffCtx(), id); err != nil {
		t.Fatalf("MarkInvoicePaid: %v", err)
	}

	inv, err := svc.MarkInvoiceUnpaid(staffCtx(), id)
	if err != nil {
		t.Fatalf("MarkInvoiceUnpaid: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPartial {
		t.Fatalf("expected partial with 1 cent recorded, got %q", inv.Status)
	}
}

func TestMarkInvoicePaidAndUnpaid(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		DueDate:        "2999-01-01",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-box-std", QuantityOrdered: 5}},
	})
	id := resp.Invoice.ID

	inv, err := svc.MarkInvoicePaid(staffCtx(), id)
	if err != nil {
		t.Fatalf("MarkInvoicePaid: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPaid || len(inv.Payments) != 0 {
		t.Fatalf("force-paid invoice should keep zero payments, got %q with %d payments", inv.Status, len(inv.Payments))
	}

	inv, err = svc.MarkInvoiceUnpaid(staffCtx(), id)
	if err != nil {
		t.Fatalf("MarkInvoiceUnpaid: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPending {
		t.Fatalf("expected pending after unpaid, got %q", inv.Status)
	}

	if _, err := svc.RecordPayment(staffCtx(), id, domain.RecordPaymentRequest{Method: "cash", AmountCents: 100}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.MarkInvoicePaid(staffCtx(), id); err != nil {
		t.Fatalf("MarkInvoicePaid: %v", err)
	}
	inv, err = svc.MarkInvoiceUnpaid(staffCtx(), id)
	if err != nil {
		t.Fatalf("MarkInvoiceUnpaid: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPartial {
		t.Fatalf("expected partial once money is booked, got %q", inv.Status)
	}
}

func TestRefreshOverdueInvoices(t *testing.T) {
	svc, repo := newTestService()

	// A pending invoice whose due date has since passed; the aging job
	// has not seen it yet.
	stale := domain.Order{
		ID:             "inv-stale",
		Kind:           domain.OrderKindInvoice,
		Number:         "INV-97001",
		CounterpartyID: "cp-hillside",
		DueDate:        "2020-06-01",
		Items:          []domain.LineItem{{ProductID: "prod-box-std", QuantityOrdered: 1, UnitPriceCents: 150, LineTotalCents: 150}},
		SubtotalCents:  150,
		TotalCents:     150,
		BalanceCents:   150,
		Status:         domain.InvoiceStatusPending,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if _, _, err := repo.CreateOrder(context.Background(), stale, nil, nil); err != nil {
		t.Fatalf("seed stale invoice: %v", err)
	}

	mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-corner",
		DueDate:        "2999-01-01",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-box-std", QuantityOrdered: 1}},
	})

	moved, err := svc.RefreshOverdueInvoices(staffCtx())
	if err != nil {
		t.Fatalf("RefreshOverdueInvoices: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected 1 invoice moved, got %d", moved)
	}

	refreshed, err := svc.GetOrder(context.Background(), "inv-stale")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if refreshed.Status != domain.InvoiceStatusOverdue {
		t.Fatalf("expected overdue, got %q", refreshed.Status)
	}

	moved, err = svc.RefreshOverdueInvoices(staffCtx())
	if err != nil {
		t.Fatalf("RefreshOverdueInvoices: %v", err)
	}
	if moved != 0 {
		t.Fatalf("second pass should move nothing, got %d", moved)
	}
}

func TestDeleteOrderRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()

	resp := mustCreateInvoice(t, svc, domain.InvoiceCreateRequest{
		CounterpartyID: "cp-hillside",
		Items:          []domain.OrderLineRequest{{ProductID: "prod-box-std", QuantityOrdered: 1}},
	})

	if err := svc.DeleteOrder(staffCtx(), resp.Invoice.ID); err == nil {
		t.Fatal("expected staff delete to be rejected")
	}
	if err := svc.DeleteOrder(adminCtx(), resp.Invoice.ID); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if _, err := svc.GetOrder(context.Background(), resp.Invoice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

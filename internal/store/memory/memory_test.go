package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderdesk/backend/internal/domain"
	"orderdesk/backend/internal/store"
)

func testInvoice(id, number string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:             id,
		Kind:           domain.OrderKindInvoice,
		Number:         number,
		CounterpartyID: "cp-hillside",
		Items:          []domain.LineItem{{ProductID: "prod-flour-25", QuantityOrdered: 1, UnitPriceCents: 3200, LineTotalCents: 3200}},
		SubtotalCents:  3200,
		TotalCents:     3200,
		BalanceCents:   3200,
		Status:         domain.InvoiceStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func flourStock(t *testing.T, s *Store) int64 {
	t.Helper()
	product, err := s.GetProductByID(context.Background(), "prod-flour-25")
	if err != nil {
		t.Fatalf("GetProductByID: %v", err)
	}
	return product.Stock
}

func TestCreateOrderRejectsDuplicateNumberAtomically(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	deltas := []store.StockDelta{{ProductID: "prod-flour-25", Quantity: -1}}

	if _, _, err := s.CreateOrder(ctx, testInvoice("inv-1", "INV-00001"), nil, deltas); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got := flourStock(t, s); got != 139 {
		t.Fatalf("expected stock 139, got %d", got)
	}

	_, _, err := s.CreateOrder(ctx, testInvoice("inv-2", "INV-00001"), nil, deltas)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// The rejected create must not have touched stock or inserted the
	// order.
	if got := flourStock(t, s); got != 139 {
		t.Fatalf("rejected create moved stock to %d", got)
	}
	if _, err := s.GetOrderByID(ctx, "inv-2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateOrderBackorderNumberConflictRollsBackEverything(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, _, err := s.CreateOrder(ctx, testInvoice("inv-1", "INV-00002"), nil, nil); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	parent := testInvoice("inv-2", "INV-00003")
	backorder := testInvoice("inv-3", "INV-00002") // already taken
	_, _, err := s.CreateOrder(ctx, parent, &backorder, []store.StockDelta{{ProductID: "prod-flour-25", Quantity: -5}})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := s.GetOrderByID(ctx, "inv-2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("parent must not exist after failed pair create, got %v", err)
	}
	if got := flourStock(t, s); got != 140 {
		t.Fatalf("failed pair create moved stock to %d", got)
	}
}

func TestCreateOrderUnknownProductDelta(t *testing.T) {
	s := NewSeeded()

	_, _, err := s.CreateOrder(context.Background(), testInvoice("inv-1", "INV-00004"), nil, []store.StockDelta{{ProductID: "prod-nope", Quantity: -1}})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetOrderByID(context.Background(), "inv-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("order must not exist after failed create, got %v", err)
	}
}

func TestNumbersAreScopedByKind(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, _, err := s.CreateOrder(ctx, testInvoice("inv-1", "DOC-1"), nil, nil); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	po := testInvoice("po-1", "DOC-1")
	po.Kind = domain.OrderKindPurchaseOrder
	po.Status = domain.POStatusSent
	if _, _, err := s.CreateOrder(ctx, po, nil, nil); err != nil {
		t.Fatalf("same number on another kind should be fine: %v", err)
	}

	numbers, err := s.ListOrderNumbers(ctx, domain.OrderKindInvoice)
	if err != nil {
		t.Fatalf("ListOrderNumbers: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != "DOC-1" {
		t.Fatalf("expected [DOC-1], got %v", numbers)
	}
}

func TestGetOrderReturnsIsolatedCopy(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, _, err := s.CreateOrder(ctx, testInvoice("inv-1", "INV-00005"), nil, nil); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	first, err := s.GetOrderByID(ctx, "inv-1")
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	first.Items[0].QuantityOrdered = 999
	first.Status = "mangled"

	second, err := s.GetOrderByID(ctx, "inv-1")
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	if second.Items[0].QuantityOrdered != 1 || second.Status != domain.InvoiceStatusPending {
		t.Fatalf("stored order was mutated through a returned copy: %+v", second)
	}
}

func TestListOrdersFilterAndLimit(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, status := range []string{domain.InvoiceStatusPending, domain.InvoiceStatusPaid, domain.InvoiceStatusPending} {
		inv := testInvoice("inv-"+status+string(rune('a'+i)), "INV-1000"+string(rune('0'+i)))
		inv.Status = status
		inv.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if _, _, err := s.CreateOrder(ctx, inv, nil, nil); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}

	pending, err := s.ListOrders(ctx, domain.OrderKindInvoice, domain.InvoiceStatusPending, 0)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	// Newest first.
	if !pending[0].CreatedAt.After(pending[1].CreatedAt) {
		t.Fatalf("expected newest-first ordering, got %v then %v", pending[0].CreatedAt, pending[1].CreatedAt)
	}

	limited, err := s.ListOrders(ctx, domain.OrderKindInvoice, "", 1)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 order, got %d", len(limited))
	}
}

func TestSeededUsers(t *testing.T) {
	s := NewSeeded()

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	var admin *domain.UserAccount
	for i := range users {
		if users[i].Username == "admin" {
			admin = &users[i]
		}
	}
	if admin == nil {
		t.Fatal("expected seeded admin account")
	}
	if admin.Role != domain.RoleAdmin || !admin.Active {
		t.Fatalf("unexpected admin account: %+v", *admin)
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orderdesk/backend/internal/domain"
	"orderdesk/backend/internal/store"
	"orderdesk/backend/internal/xid"
)

var paymentMethods = map[string]bool{
	"cash":     true,
	"check":    true,
	"transfer": true,
	"card":     true,
	"other":    true,
}

// CreateInvoice builds an invoice from the request, splits off a
// backorder invoice when any line carries a backordered quantity, and
// persists both together with the stock decrement in one store
// transaction. The response carries the backorder when one was made.
func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.InvoiceCreateResponse, error) {
	req.CounterpartyID = strings.TrimSpace(req.CounterpartyID)
	if req.CounterpartyID == "" || len(req.Items) == 0 {
		return domain.InvoiceCreateResponse{}, store.ErrInvalidRecord
	}
	if req.IssueDate != "" && !validDate(req.IssueDate) {
		return domain.InvoiceCreateResponse{}, store.ErrInvalidRecord
	}
	if req.DueDate != "" && !validDate(req.DueDate) {
		return domain.InvoiceCreateResponse{}, store.ErrInvalidRecord
	}

	taxRate := s.defaultTaxRate
	if req.TaxRatePercent != nil {
		taxRate = *req.TaxRatePercent
		if taxRate < 0 || taxRate > 100 {
			return domain.InvoiceCreateResponse{}, store.ErrInvalidRecord
		}
	}

	customer, err := s.repo.GetCounterpartyByID(ctx, req.CounterpartyID)
	if err != nil {
		return domain.InvoiceCreateResponse{}, err
	}
	if customer.Kind != domain.CounterpartyCustomer {
		return domain.InvoiceCreateResponse{}, store.ErrInvalidRecord
	}

	items, err := s.buildLineItems(ctx, req.Items, false)
	if err != nil {
		return domain.InvoiceCreateResponse{}, err
	}

	var driverName string
	req.DriverID = strings.TrimSpace(req.DriverID)
	if req.DriverID != "" {
		driver, err := s.repo.GetEmployeeByID(ctx, req.DriverID)
		if err != nil {
			return domain.InvoiceCreateResponse{}, store.ErrInvalidRecord
		}
		driverName = driver.Name
	}

	now := time.Now().UTC()
	numbers, err := s.repo.ListOrderNumbers(ctx, domain.OrderKindInvoice)
	if err != nil {
		return domain.InvoiceCreateResponse{}, fmt.Errorf("list invoice numbers: %w", err)
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = NextNumber(numbers, NumberPrefixInvoice)
	}

	subtotal, tax, total := ComputeTotals(items, taxRate)
	status := domain.InvoiceStatusPending
	if dateBefore(req.DueDate, now) {
		status = domain.InvoiceStatusOverdue
	}

	invoice := domain.Order{
		ID:               xid.New("inv"),
		Kind:             domain.OrderKindInvoice,
		Number:           number,
		CounterpartyID:   customer.ID,
		CounterpartyName: customer.Name,
		IssueDate:        req.IssueDate,
		DueDate:          req.DueDate,
		Items:            items,
		SubtotalCents:    subtotal,
		TaxRatePercent:   taxRate,
		TaxCents:         tax,
		TotalCents:       total,
		BalanceCents:     total,
		Status:           status,
		Notes:            strings.TrimSpace(req.Notes),
		PONumber:         strings.TrimSpace(req.PONumber),
		DriverID:         req.DriverID,
		DriverName:       driverName,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	backorder := buildBackorder(invoice, append(numbers, number), now)

	deltas := stockDecrements(invoice.Items)
	created, createdBack, err := s.repo.CreateOrder(ctx, invoice, backorder, deltas)
	if err != nil {
		return domain.InvoiceCreateResponse{}, err
	}

	s.invalidateSummaries(ctx)
	detail := fmt.Sprintf("number=%s,total=%d", created.Number, created.TotalCents)
	if createdBack != nil {
		detail += ",backorder=" + createdBack.Number
	}
	s.logAudit(ctx, "invoice_create", "order", created.ID, detail)

	return domain.InvoiceCreateResponse{Invoice: *created, Backorder: createdBack}, nil
}

// buildBackorder splits the backordered quantities of an invoice into
// a fresh pending invoice linked back to its parent. Dates stay empty
// until the goods are actually available to ship. Returns nil when
// nothing is backordered.
func buildBackorder(parent domain.Order, issuedNumbers []string, now time.Time) *domain.Order {
	var items []domain.LineItem
	for _, item := range parent.Items {
		if item.QuantityBackordered <= 0 {
			continue
		}
		items = append(items, domain.LineItem{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductType:     item.ProductType,
			QuantityOrdered: item.QuantityBackordered,
			UnitPriceCents:  item.UnitPriceCents,
		})
	}
	if len(items) == 0 {
		return nil
	}

	subtotal, tax, total := ComputeTotals(items, parent.TaxRatePercent)
	return &domain.Order{
		ID:               xid.New("inv"),
		Kind:             domain.OrderKindInvoice,
		Number:           NextNumber(issuedNumbers, NumberPrefixInvoice),
		CounterpartyID:   parent.CounterpartyID,
		CounterpartyName: parent.CounterpartyName,
		Items:            items,
		SubtotalCents:    subtotal,
		TaxRatePercent:   parent.TaxRatePercent,
		TaxCents:         tax,
		TotalCents:       total,
		BalanceCents:     total,
		Status:           domain.InvoiceStatusPending,
		BackorderOf:      parent.Number,
		PONumber:         parent.PONumber,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// stockDecrements derives the stock movement for an invoice: each
// physical product line decrements stock by the ordered quantity.
// Backordered units have not shipped and move nothing; services have
// no stock at all. Stock is allowed to go negative, a negative count
// reads as units owed.
func stockDecrements(items []domain.LineItem) []store.StockDelta {
	var deltas []store.StockDelta
	for _, item := range items {
		if item.ProductType != domain.ProductTypeGoods || item.QuantityOrdered <= 0 {
			continue
		}
		deltas = append(deltas, store.StockDelta{ProductID: item.ProductID, Quantity: -item.QuantityOrdered})
	}
	return deltas
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (s *Service) ListInvoices(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", domain.InvoiceStatusPending, domain.InvoiceStatusOverdue, domain.InvoiceStatusPartial, domain.InvoiceStatusPaid:
	default:
		return nil, store.ErrInvalidRecord
	}
	return s.repo.ListOrders(ctx, domain.OrderKindInvoice, status, limit)
}

// RecordPayment appends a payment to an invoice and rederives its
// status. A payment may overshoot the open balance by at most the
// settlement tolerance; anything beyond that is rejected rather than
// booked as credit.
func (s *Service) RecordPayment(ctx context.Context, invoiceID string, req domain.RecordPaymentRequest) (domain.Order, error) {
	invoice, err := s.getInvoice(ctx, invoiceID)
	if err != nil {
		return domain.Order{}, err
	}
	// paid is terminal for payments; only mark-unpaid reopens it.
	if invoice.Status == domain.InvoiceStatusPaid {
		return domain.Order{}, store.ErrInvalidRecord
	}

	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	if !paymentMethods[req.Method] {
		return domain.Order{}, store.ErrInvalidRecord
	}
	if req.AmountCents <= 0 {
		return domain.Order{}, store.ErrInvalidRecord
	}

	now := time.Now().UTC()
	if req.Date == "" {
		req.Date = now.Format("2006-01-02")
	} else if !validDate(req.Date) {
		return domain.Order{}, store.ErrInvalidRecord
	}

	balance := invoice.TotalCents - paymentsTotal(invoice.Payments)
	if req.AmountCents > balance+paymentToleranceCents {
		return domain.Order{}, store.ErrInvalidRecord
	}

	invoice.Payments = append(invoice.Payments, domain.Payment{
		ID:          xid.New("pay"),
		Method:      req.Method,
		Date:        req.Date,
		AmountCents: req.AmountCents,
		Reference:   strings.TrimSpace(req.Reference),
		Notes:       strings.TrimSpace(req.Notes),
		RecordedAt:  now,
	})

	invoice.PaidCents = paymentsTotal(invoice.Payments)
	invoice.BalanceCents = invoice.TotalCents - invoice.PaidCents
	if abs64(invoice.BalanceCents) <= paymentToleranceCents {
		invoice.Status = domain.InvoiceStatusPaid
	} else {
		invoice.Status = domain.InvoiceStatusPartial
	}
	invoice.UpdatedAt = now

	saved, err := s.repo.UpdateOrder(ctx, *invoice, nil)
	if err != nil {
		return domain.Order{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "invoice_payment", "order", saved.ID, fmt.Sprintf("method=%s,amount=%d,status=%s", req.Method, req.AmountCents, saved.Status))
	return *saved, nil
}

// MarkInvoicePaid forces an invoice to paid without booking a
// payment. The recorded payments are left alone so the discrepancy
// stays visible.
func (s *Service) MarkInvoicePaid(ctx context.Context, invoiceID string) (domain.Order, error) {
	invoice, err := s.getInvoice(ctx, invoiceID)
	if err != nil {
		return domain.Order{}, err
	}

	invoice.Status = domain.InvoiceStatusPaid
	invoice.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.UpdateOrder(ctx, *invoice, nil)
	if err != nil {
		return domain.Order{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "invoice_mark_paid", "order", saved.ID, "number="+saved.Number)
	return *saved, nil
}

// MarkInvoiceUnpaid rederives the status from the recorded payments:
// partial when money has come in, otherwise pending or overdue by due
// date.
func (s *Service) MarkInvoiceUnpaid(ctx context.Context, invoiceID string) (domain.Order, error) {
	invoice, err := s.getInvoice(ctx, invoiceID)
	if err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	invoice.PaidCents = paymentsTotal(invoice.Payments)
	invoice.BalanceCents = invoice.TotalCents - invoice.PaidCents
	switch {
	case invoice.PaidCents > 0:
		invoice.Status = domain.InvoiceStatusPartial
	case dateBefore(invoice.DueDate, now):
		invoice.Status = domain.InvoiceStatusOverdue
	default:
		invoice.Status = domain.InvoiceStatusPending
	}
	invoice.UpdatedAt = now

	saved, err := s.repo.UpdateOrder(ctx, *invoice, nil)
	if err != nil {
		return domain.Order{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "invoice_mark_unpaid", "order", saved.ID, fmt.Sprintf("number=%s,status=%s", saved.Number, saved.Status))
	return *saved, nil
}

// RefreshOverdueInvoices ages every pending invoice whose due date
// has passed into overdue and reports how many it moved. Partial and
// paid invoices never age.
func (s *Service) RefreshOverdueInvoices(ctx context.Context) (int, error) {
	pending, err := s.repo.ListOrders(ctx, domain.OrderKindInvoice, domain.InvoiceStatusPending, 0)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	moved := 0
	for _, invoice := range pending {
		if !dateBefore(invoice.DueDate, now) {
			continue
		}
		invoice.Status = domain.InvoiceStatusOverdue
		invoice.UpdatedAt = now
		if _, err := s.repo.UpdateOrder(ctx, invoice, nil); err != nil {
			return moved, err
		}
		moved++
	}

	if moved > 0 {
		s.invalidateSummaries(ctx)
		s.logAudit(ctx, "invoice_overdue_refresh", "order", "", fmt.Sprintf("moved=%d", moved))
	}
	return moved, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidRecord
	}
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "order_delete", "order", id, "")
	return nil
}

func (s *Service) getInvoice(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if order.Kind != domain.OrderKindInvoice {
		return nil, store.ErrInvalidRecord
	}
	return order, nil
}

// buildLineItems resolves product references into priced line items
// with catalog snapshots. Invoices may fully backorder a line (zero
// ordered), purchase orders require a positive ordered quantity and
// may declare goods already received. A product may appear on at most
// one line: receiving and stock movement address lines by product ID,
// so duplicates would make those quantities ambiguous.
func (s *Service) buildLineItems(ctx context.Context, lines []domain.OrderLineRequest, purchase bool) ([]domain.LineItem, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" || seen[id] {
			return nil, store.ErrInvalidRecord
		}
		seen[id] = true
		ids = append(ids, id)
	}

	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(lines))
	for i, line := range lines {
		product, ok := products[ids[i]]
		if !ok {
			return nil, store.ErrInvalidRecord
		}

		if purchase {
			if line.QuantityOrdered <= 0 || line.QuantityReceived < 0 || line.QuantityReceived > line.QuantityOrdered {
				return nil, store.ErrInvalidRecord
			}
		} else {
			if line.QuantityOrdered < 0 || line.QuantityBackordered < 0 || line.QuantityOrdered+line.QuantityBackordered == 0 {
				return nil, store.ErrInvalidRecord
			}
		}

		price := product.UnitPriceCents
		if purchase {
			price = product.CostCents
		}
		if line.UnitPriceCents != nil {
			if *line.UnitPriceCents < 0 {
				return nil, store.ErrInvalidRecord
			}
			price = *line.UnitPriceCents
		}

		item := domain.LineItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductType:     product.Type,
			QuantityOrdered: line.QuantityOrdered,
			UnitPriceCents:  price,
		}
		if purchase {
			item.QuantityReceived = line.QuantityReceived
		} else {
			item.QuantityBackordered = line.QuantityBackordered
		}
		items = append(items, item)
	}
	return items, nil
}

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

// deriveReceivingStatus maps received quantities onto a purchase
// order status. A fully unreceived order is draft only when the buyer
// explicitly asked for a draft; the normal case is sent.
func deriveReceivingStatus(items []domain.LineItem, draft bool) string {
	allReceived := true
	anyReceived := false
	for _, item := range items {
		if item.QuantityReceived > 0 {
			anyReceived = true
		}
		if item.QuantityReceived < item.QuantityOrdered {
			allReceived = false
		}
	}

	switch {
	case !anyReceived:
		if draft {
			return domain.POStatusDraft
		}
		return domain.POStatusSent
	case allReceived:
		return domain.POStatusReceived
	default:
		return domain.POStatusPartiallyReceived
	}
}

func (s *Service) CreatePurchaseOrder(ctx context.Context, req domain.PurchaseOrderCreateRequest) (domain.Order, error) {
	req.CounterpartyID = strings.TrimSpace(req.CounterpartyID)
	if req.CounterpartyID == "" || len(req.Items) == 0 {
		return domain.Order{}, store.ErrInvalidRecord
	}
	if req.IssueDate != "" && !validDate(req.IssueDate) {
		return domain.Order{}, store.ErrInvalidRecord
	}
	if req.ExpectedDate != "" && !validDate(req.ExpectedDate) {
		return domain.Order{}, store.ErrInvalidRecord
	}

	taxRate := s.defaultTaxRate
	if req.TaxRatePercent != nil {
		taxRate = *req.TaxRatePercent
		if taxRate < 0 || taxRate > 100 {
			return domain.Order{}, store.ErrInvalidRecord
		}
	}

	vendor, err := s.repo.GetCounterpartyByID(ctx, req.CounterpartyID)
	if err != nil {
		return domain.Order{}, err
	}
	if vendor.Kind != domain.CounterpartyVendor {
		return domain.Order{}, store.ErrInvalidRecord
	}

	items, err := s.buildLineItems(ctx, req.Items, true)
	if err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	number := strings.TrimSpace(req.Number)
	if number == "" {
		number, err = s.nextOrderNumber(ctx, domain.OrderKindPurchaseOrder)
		if err != nil {
			return domain.Order{}, err
		}
	}

	subtotal, tax, total := ComputeTotals(items, taxRate)
	status := deriveReceivingStatus(items, req.Draft)

	po := domain.Order{
		ID:               xid.New("po"),
		Kind:             domain.OrderKindPurchaseOrder,
		Number:           number,
		CounterpartyID:   vendor.ID,
		CounterpartyName: vendor.Name,
		IssueDate:        req.IssueDate,
		ExpectedDate:     req.ExpectedDate,
		Items:            items,
		SubtotalCents:    subtotal,
		TaxRatePercent:   taxRate,
		TaxCents:         tax,
		TotalCents:       total,
		Status:           status,
		Notes:            strings.TrimSpace(req.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if status == domain.POStatusReceived {
		po.ActualDate = now.Format("2006-01-02")
		receivedAt := now
		po.ReceivedAt = &receivedAt
	}

	created, _, err := s.repo.CreateOrder(ctx, po, nil, stockIncrements(po.Items, nil))
	if err != nil {
		return domain.Order{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "purchase_order_create", "order", created.ID, fmt.Sprintf("number=%s,total=%d,status=%s", created.Number, created.TotalCents, created.Status))
	return *created, nil
}

// ReceiveItems books a delivery against a purchase order. Every line
// must refer to a product on the order and the cumulative received
// quantity may never exceed the ordered quantity; over-receipts are
// rejected outright rather than clamped.
func (s *Service) ReceiveItems(ctx context.Context, poID string, req domain.ReceiveItemsRequest) (domain.Order, error) {
	po, err := s.getPurchaseOrder(ctx, poID)
	if err != nil {
		return domain.Order{}, err
	}

	switch po.Status {
	case domain.POStatusSent, domain.POStatusPartiallyReceived:
	default:
		return domain.Order{}, store.ErrInvalidRecord
	}
	if len(req.Lines) == 0 {
		return domain.Order{}, store.ErrInvalidRecord
	}

	now := time.Now().UTC()
	if req.Date == "" {
		req.Date = now.Format("2006-01-02")
	} else if !validDate(req.Date) {
		return domain.Order{}, store.ErrInvalidRecord
	}

	lineIndex := make(map[string]int, len(po.Items))
	for i, item := range po.Items {
		lineIndex[item.ProductID] = i
	}

	event := domain.ReceivingEvent{
		ID:         xid.New("rcv"),
		Date:       req.Date,
		Notes:      strings.TrimSpace(req.Notes),
		ReceivedBy: strings.TrimSpace(req.ReceivedBy),
	}
	if event.ReceivedBy == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			event.ReceivedBy = actor.Username
		}
	}

	received := make(map[string]int64, len(req.Lines))
	for _, line := range req.Lines {
		id := strings.TrimSpace(line.ProductID)
		idx, ok := lineIndex[id]
		if !ok || line.Quantity <= 0 {
			return domain.Order{}, store.ErrInvalidRecord
		}
		item := po.Items[idx]
		if item.QuantityReceived+received[id]+line.Quantity > item.QuantityOrdered {
			return domain.Order{}, store.ErrInvalidRecord
		}
		received[id] += line.Quantity
		event.Lines = append(event.Lines, domain.ReceivedLine{
			ProductID:   id,
			ProductName: item.ProductName,
			Quantity:    line.Quantity,
		})
	}

	for id, qty := range received {
		po.Items[lineIndex[id]].QuantityReceived += qty
	}
	po.Receipts = append(po.Receipts, event)
	po.Status = deriveReceivingStatus(po.Items, false)
	po.UpdatedAt = now
	if po.Status == domain.POStatusReceived {
		po.ActualDate = req.Date
		receivedAt := now
		po.ReceivedAt = &receivedAt
		po.ReceivedBy = event.ReceivedBy
	}

	saved, err := s.repo.UpdateOrder(ctx, *po, stockIncrements(po.Items, received))
	if err != nil {
		return domain.Order{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "purchase_order_receive", "order", saved.ID, fmt.Sprintf("number=%s,lines=%d,status=%s", saved.Number, len(event.Lines), saved.Status))
	return *saved, nil
}

// SendPurchaseOrder moves a draft out the door.
func (s *Service) SendPurchaseOrder(ctx context.Context, poID string) (domain.Order, error) {
	po, err := s.getPurchaseOrder(ctx, poID)
	if err != nil {
		return domain.Order{}, err
	}
	if po.Status != domain.POStatusDraft {
		return domain.Order{}, store.ErrInvalidRecord
	}

	po.Status = domain.POStatusSent
	po.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.UpdateOrder(ctx, *po, nil)
	if err != nil {
		return domain.Order{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "purchase_order_send", "order", saved.ID, "number="+saved.Number)
	return *saved, nil
}

// CancelPurchaseOrder cancels an order that has not received any
// goods. Once a delivery is booked the order can only run to
// completion.
func (s *Service) CancelPurchaseOrder(ctx context.Context, poID string) (domain.Order, error) {
	po, err := s.getPurchaseOrder(ctx, poID)
	if err != nil {
		return domain.Order{}, err
	}

	switch po.Status {
	case domain.POStatusDraft, domain.POStatusSent:
	default:
		return domain.Order{}, store.ErrInvalidRecord
	}

	po.Status = domain.POStatusCancelled
	po.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.UpdateOrder(ctx, *po, nil)
	if err != nil {
		return domain.Order{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "purchase_order_cancel", "order", saved.ID, "number="+saved.Number)
	return *saved, nil
}

func (s *Service) ListPurchaseOrders(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", domain.POStatusDraft, domain.POStatusSent, domain.POStatusPartiallyReceived, domain.POStatusReceived, domain.POStatusCancelled:
	default:
		return nil, store.ErrInvalidRecord
	}
	return s.repo.ListOrders(ctx, domain.OrderKindPurchaseOrder, status, limit)
}

func (s *Service) getPurchaseOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if order.Kind != domain.OrderKindPurchaseOrder {
		return nil, store.ErrInvalidRecord
	}
	return order, nil
}

// stockIncrements derives the stock movement for received goods.
// When justReceived is nil the items' full received quantities count
// (purchase order created with goods already on the dock); otherwise
// only the delta from this delivery moves stock. Services never do.
func stockIncrements(items []domain.LineItem, justReceived map[string]int64) []store.StockDelta {
	var deltas []store.StockDelta
	for _, item := range items {
		if item.ProductType != domain.ProductTypeGoods {
			continue
		}
		qty := item.QuantityReceived
		if justReceived != nil {
			qty = justReceived[item.ProductID]
		}
		if qty <= 0 {
			continue
		}
		deltas = append(deltas, store.StockDelta{ProductID: item.ProductID, Quantity: qty})
	}
	return deltas
}

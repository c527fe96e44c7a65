package service

import (
	"context"
	"strings"
	"time"

	"orderdesk/backend/internal/domain"
)

const dashboardCacheKey = "orderdesk:summary:dashboard"

// InvoiceSummary aggregates the receivable side. A pending invoice
// whose due date has passed counts as overdue here even if the stored
// status has not been refreshed yet.
func (s *Service) InvoiceSummary(ctx context.Context) (domain.InvoiceSummary, error) {
	invoices, err := s.repo.ListOrders(ctx, domain.OrderKindInvoice, "", 0)
	if err != nil {
		return domain.InvoiceSummary{}, err
	}

	now := time.Now().UTC()
	month := now.Format("2006-01")

	var summary domain.InvoiceSummary
	for _, invoice := range invoices {
		balance := invoice.TotalCents - paymentsTotal(invoice.Payments)

		switch invoice.Status {
		case domain.InvoiceStatusPending, domain.InvoiceStatusOverdue, domain.InvoiceStatusPartial:
			summary.OutstandingCents += balance
			overdue := invoice.Status == domain.InvoiceStatusOverdue ||
				(invoice.Status == domain.InvoiceStatusPending && dateBefore(invoice.DueDate, now))
			if overdue {
				summary.OverdueCents += balance
				summary.OverdueCount++
			}
		}

		for _, payment := range invoice.Payments {
			if strings.HasPrefix(payment.Date, month) {
				summary.PaidThisMonthCents += payment.AmountCents
			}
		}
	}
	return summary, nil
}

// PurchaseOrderSummary aggregates open purchase commitments: the
// total value of everything sent but not yet fully received, plus
// lifetime counts of sent and completed orders.
func (s *Service) PurchaseOrderSummary(ctx context.Context) (domain.PurchaseOrderSummary, error) {
	orders, err := s.repo.ListOrders(ctx, domain.OrderKindPurchaseOrder, "", 0)
	if err != nil {
		return domain.PurchaseOrderSummary{}, err
	}

	var summary domain.PurchaseOrderSummary
	for _, po := range orders {
		switch po.Status {
		case domain.POStatusSent:
			summary.PendingCents += po.TotalCents
			summary.SentCount++
		case domain.POStatusPartiallyReceived:
			summary.PendingCents += po.TotalCents
		case domain.POStatusReceived:
			summary.ReceivedCount++
		}
	}
	return summary, nil
}

// DashboardSummary assembles the landing-page aggregates, served from
// cache when a recent copy exists. Mutating operations drop the
// cached copy, so a short TTL only bounds staleness across processes.
func (s *Service) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	if cached, ok, err := s.summaries.Get(ctx, dashboardCacheKey); err == nil && ok {
		return *cached, nil
	}

	invoiceSummary, err := s.InvoiceSummary(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	poSummary, err := s.PurchaseOrderSummary(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	bills, err := s.repo.ListBills(ctx, "", 0)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	var payable int64
	for _, bill := range bills {
		if bill.Status == domain.InvoiceStatusPaid {
			continue
		}
		payable += bill.AmountCents - paymentsTotal(bill.Payments)
	}

	products, err := s.repo.ListProducts(ctx, true)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	var lowStock []domain.LowStockProduct
	for _, product := range products {
		if product.Type != domain.ProductTypeGoods {
			continue
		}
		if product.Stock <= product.LowStockThreshold {
			lowStock = append(lowStock, domain.LowStockProduct{
				ProductID: product.ID,
				SKU:       product.SKU,
				Name:      product.Name,
				Stock:     product.Stock,
				Threshold: product.LowStockThreshold,
			})
		}
	}

	summary := domain.DashboardSummary{
		Invoices:                invoiceSummary,
		PurchaseOrders:          poSummary,
		PayableOutstandingCents: payable,
		LowStock:                lowStock,
		GeneratedAt:             time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.summaries.Set(ctx, dashboardCacheKey, &summary, s.summaryTTL); err != nil {
		s.log.Warnw("failed to cache dashboard summary", "error", err)
	}
	return summary, nil
}

func (s *Service) invalidateSummaries(ctx context.Context) {
	if err := s.summaries.Delete(ctx, dashboardCacheKey); err != nil {
		s.log.Warnw("failed to invalidate summary cache", "error", err)
	}
}

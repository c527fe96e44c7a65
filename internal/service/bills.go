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

// Bills are vendor invoices charged against us. They share the
// invoice payment machine but carry a single amount instead of line
// items; the vendor's own paperwork is the source of truth for the
// breakdown.

func (s *Service) CreateBill(ctx context.Context, req domain.BillCreateRequest) (domain.Bill, error) {
	req.Number = strings.TrimSpace(req.Number)
	req.VendorID = strings.TrimSpace(req.VendorID)
	if req.Number == "" || req.VendorID == "" || req.AmountCents <= 0 {
		return domain.Bill{}, store.ErrInvalidRecord
	}
	if req.IssueDate != "" && !validDate(req.IssueDate) {
		return domain.Bill{}, store.ErrInvalidRecord
	}
	if req.DueDate != "" && !validDate(req.DueDate) {
		return domain.Bill{}, store.ErrInvalidRecord
	}

	vendor, err := s.repo.GetCounterpartyByID(ctx, req.VendorID)
	if err != nil {
		return domain.Bill{}, err
	}
	if vendor.Kind != domain.CounterpartyVendor {
		return domain.Bill{}, store.ErrInvalidRecord
	}

	now := time.Now().UTC()
	status := domain.InvoiceStatusPending
	if dateBefore(req.DueDate, now) {
		status = domain.InvoiceStatusOverdue
	}

	bill := domain.Bill{
		ID:           xid.New("bill"),
		Number:       req.Number,
		VendorID:     vendor.ID,
		VendorName:   vendor.Name,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		AmountCents:  req.AmountCents,
		BalanceCents: req.AmountCents,
		Status:       status,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.CreateBill(ctx, bill)
	if err != nil {
		return domain.Bill{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "bill_create", "bill", created.ID, fmt.Sprintf("number=%s,amount=%d", created.Number, created.AmountCents))
	return *created, nil
}

func (s *Service) RecordBillPayment(ctx context.Context, billID string, req domain.RecordPaymentRequest) (domain.Bill, error) {
	bill, err := s.repo.GetBillByID(ctx, strings.TrimSpace(billID))
	if err != nil {
		return domain.Bill{}, err
	}
	if bill.Status == domain.InvoiceStatusPaid {
		return domain.Bill{}, store.ErrInvalidRecord
	}

	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	if !paymentMethods[req.Method] {
		return domain.Bill{}, store.ErrInvalidRecord
	}
	if req.AmountCents <= 0 {
		return domain.Bill{}, store.ErrInvalidRecord
	}

	now := time.Now().UTC()
	if req.Date == "" {
		req.Date = now.Format("2006-01-02")
	} else if !validDate(req.Date) {
		return domain.Bill{}, store.ErrInvalidRecord
	}

	balance := bill.AmountCents - paymentsTotal(bill.Payments)
	if req.AmountCents > balance+paymentToleranceCents {
		return domain.Bill{}, store.ErrInvalidRecord
	}

	bill.Payments = append(bill.Payments, domain.Payment{
		ID:          xid.New("pay"),
		Method:      req.Method,
		Date:        req.Date,
		AmountCents: req.AmountCents,
		Reference:   strings.TrimSpace(req.Reference),
		Notes:       strings.TrimSpace(req.Notes),
		RecordedAt:  now,
	})

	bill.PaidCents = paymentsTotal(bill.Payments)
	bill.BalanceCents = bill.AmountCents - bill.PaidCents
	if abs64(bill.BalanceCents) <= paymentToleranceCents {
		bill.Status = domain.InvoiceStatusPaid
	} else {
		bill.Status = domain.InvoiceStatusPartial
	}
	bill.UpdatedAt = now

	saved, err := s.repo.UpdateBill(ctx, *bill)
	if err != nil {
		return domain.Bill{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "bill_payment", "bill", saved.ID, fmt.Sprintf("method=%s,amount=%d,status=%s", req.Method, req.AmountCents, saved.Status))
	return *saved, nil
}

func (s *Service) ListBills(ctx context.Context, status string, limit int) ([]domain.Bill, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", domain.InvoiceStatusPending, domain.InvoiceStatusOverdue, domain.InvoiceStatusPartial, domain.InvoiceStatusPaid:
	default:
		return nil, store.ErrInvalidRecord
	}
	return s.repo.ListBills(ctx, status, limit)
}

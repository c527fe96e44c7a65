package store

import (
	"context"
	"errors"

	"orderdesk/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrConflict      = errors.New("conflict")
)

// StockDelta is applied to a product's stock counter as part of an
// order write. Negative quantities decrement.
type StockDelta struct {
	ProductID string
	Quantity  int64
}

type Repository interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	AdjustStock(ctx context.Context, deltas []StockDelta) error

	CreateCounterparty(ctx context.Context, cp domain.Counterparty) (*domain.Counterparty, error)
	GetCounterpartyByID(ctx context.Context, id string) (*domain.Counterparty, error)
	ListCounterparties(ctx context.Context, kind string) ([]domain.Counterparty, error)

	CreateEmployee(ctx context.Context, emp domain.Employee) (*domain.Employee, error)
	GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)

	// CreateOrder persists an order, its optional backorder companion
	// and the accompanying stock movement atomically. Partial writes
	// are never observable.
	CreateOrder(ctx context.Context, order domain.Order, backorder *domain.Order, deltas []StockDelta) (*domain.Order, *domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order, deltas []StockDelta) (*domain.Order, error)
	ListOrders(ctx context.Context, kind string, status string, limit int) ([]domain.Order, error)
	ListOrderNumbers(ctx context.Context, kind string) ([]string, error)
	DeleteOrder(ctx context.Context, id string) error

	CreateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error)
	GetBillByID(ctx context.Context, id string) (*domain.Bill, error)
	UpdateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error)
	ListBills(ctx context.Context, status string, limit int) ([]domain.Bill, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

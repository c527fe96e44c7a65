package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"orderdesk/backend/internal/domain"
	"orderdesk/backend/internal/store"
	"orderdesk/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	productsByID    map[string]domain.Product
	partiesByID     map[string]domain.Counterparty
	employeesByID   map[string]domain.Employee
	ordersByID      map[string]domain.Order
	billsByID       map[string]domain.Bill
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo
// mode. Credentials come from SEED_ADMIN_PASSWORD and
// SEED_STAFF_PASSWORD; hardcoded dev defaults apply when unset. The
// memory store is never the production backend (that is Postgres via
// DATABASE_URL), so the defaults only ever guard a demo dataset.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"staff", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func New() *Store {
	return &Store{
		productsByID:    map[string]domain.Product{},
		partiesByID:     map[string]domain.Counterparty{},
		employeesByID:   map[string]domain.Employee{},
		ordersByID:      map[string]domain.Order{},
		billsByID:       map[string]domain.Bill{},
		usersByUsername: seedUsers(),
	}
}

func NewSeeded() *Store {
	now := time.Now().UTC()

	products := []domain.Product{
		{ID: "prod-flour-25", SKU: "FLOUR-25KG", Name: "Bakers Flour 25kg", Type: domain.ProductTypeGoods, UnitPriceCents: 3200, CostCents: 2100, Stock: 140, LowStockThreshold: 20, Active: true, CreatedAt: now},
		{ID: "prod-oil-10", SKU: "OIL-10L", Name: "Canola Oil 10L", Type: domain.ProductTypeGoods, UnitPriceCents: 4800, CostCents: 3500, Stock: 60, LowStockThreshold: 10, Active: true, CreatedAt: now},
		{ID: "prod-sugar-10", SKU: "SUGAR-10KG", Name: "Cane Sugar 10kg", Type: domain.ProductTypeGoods, UnitPriceCents: 1900, CostCents: 1250, Stock: 95, LowStockThreshold: 15, Active: true, CreatedAt: now},
		{ID: "prod-yeast-01", SKU: "YEAST-500G", Name: "Dry Yeast 500g", Type: domain.ProductTypeGoods, UnitPriceCents: 1100, CostCents: 700, Stock: 8, LowStockThreshold: 10, Active: true, CreatedAt: now},
		{ID: "prod-box-std", SKU: "BOX-STD", Name: "Standard Carton", Type: domain.ProductTypeGoods, UnitPriceCents: 150, CostCents: 80, Stock: 900, LowStockThreshold: 100, Active: true, CreatedAt: now},
		{ID: "prod-delivery", SKU: "SVC-DELIVERY", Name: "Delivery Service", Type: domain.ProductTypeService, UnitPriceCents: 2500, CostCents: 0, Active: true, CreatedAt: now},
	}

	parties := []domain.Counterparty{
		{ID: "cp-hillside", Kind: domain.CounterpartyCustomer, Name: "Hillside Bakery", Email: "orders@hillsidebakery.test", Phone: "555-0101", Active: true, CreatedAt: now},
		{ID: "cp-corner", Kind: domain.CounterpartyCustomer, Name: "Corner Deli", Email: "deli@corner.test", Phone: "555-0102", Active: true, CreatedAt: now},
		{ID: "cp-millco", Kind: domain.CounterpartyVendor, Name: "MillCo Supply", Email: "sales@millco.test", Phone: "555-0201", Active: true, CreatedAt: now},
		{ID: "cp-packrite", Kind: domain.CounterpartyVendor, Name: "PackRite Ltd", Email: "sales@packrite.test", Phone: "555-0202", Active: true, CreatedAt: now},
	}

	employees := []domain.Employee{
		{ID: "emp-dana", Name: "Dana Reyes", Role: "driver", Active: true, CreatedAt: now},
		{ID: "emp-kit", Name: "Kit Alvarez", Role: "driver", Active: true, CreatedAt: now},
		{ID: "emp-mo", Name: "Mo Tran", Role: "warehouse", Active: true, CreatedAt: now},
	}

	s := New()
	for _, p := range products {
		s.productsByID[p.ID] = p
	}
	for _, cp := range parties {
		s.partiesByID[cp.ID] = cp
	}
	for _, emp := range employees {
		s.employeesByID[emp.ID] = emp
	}
	return s
}

func (s *Store) ListProducts(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if activeOnly && !p.Active {
			continue
		}
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrConflict
	}
	for _, existing := range s.productsByID {
		if existing.SKU == product.SKU {
			return nil, store.ErrConflict
		}
	}

	s.productsByID[product.ID] = product
	clone := product
	return &clone, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.productsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := product
	return &clone, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := s.productsByID[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.productsByID[product.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.productsByID[product.ID] = product
	clone := product
	return &clone, nil
}

func (s *Store) AdjustStock(_ context.Context, deltas []store.StockDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustStockLocked(deltas)
}

func (s *Store) adjustStockLocked(deltas []store.StockDelta) error {
	for _, delta := range deltas {
		if _, ok := s.productsByID[delta.ProductID]; !ok {
			return store.ErrNotFound
		}
	}
	for _, delta := range deltas {
		product := s.productsByID[delta.ProductID]
		product.Stock += delta.Quantity
		s.productsByID[delta.ProductID] = product
	}
	return nil
}

func (s *Store) CreateCounterparty(_ context.Context, cp domain.Counterparty) (*domain.Counterparty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cp.ID == "" {
		cp.ID = xid.New("cp")
	}
	if _, exists := s.partiesByID[cp.ID]; exists {
		return nil, store.ErrConflict
	}
	s.partiesByID[cp.ID] = cp
	clone := cp
	return &clone, nil
}

func (s *Store) GetCounterpartyByID(_ context.Context, id string) (*domain.Counterparty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.partiesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := cp
	return &clone, nil
}

func (s *Store) ListCounterparties(_ context.Context, kind string) ([]domain.Counterparty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parties := make([]domain.Counterparty, 0, len(s.partiesByID))
	for _, cp := range s.partiesByID {
		if kind != "" && cp.Kind != kind {
			continue
		}
		parties = append(parties, cp)
	}
	slices.SortFunc(parties, func(a, b domain.Counterparty) int {
		return strings.Compare(a.Name, b.Name)
	})
	return parties, nil
}

func (s *Store) CreateEmployee(_ context.Context, emp domain.Employee) (*domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emp.ID == "" {
		emp.ID = xid.New("emp")
	}
	if _, exists := s.employeesByID[emp.ID]; exists {
		return nil, store.ErrConflict
	}
	s.employeesByID[emp.ID] = emp
	clone := emp
	return &clone, nil
}

func (s *Store) GetEmployeeByID(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employeesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := emp
	return &clone, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]domain.Employee, 0, len(s.employeesByID))
	for _, emp := range s.employeesByID {
		employees = append(employees, emp)
	}
	slices.SortFunc(employees, func(a, b domain.Employee) int {
		return strings.Compare(a.Name, b.Name)
	})
	return employees, nil
}

// CreateOrder writes the order, its optional backorder and the stock
// movement under one lock so no reader ever sees a half-applied
// create. Document numbers are unique per kind.
func (s *Store) CreateOrder(_ context.Context, order domain.Order, backorder *domain.Order, deltas []store.StockDelta) (*domain.Order, *domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" || order.Number == "" {
		return nil, nil, store.ErrInvalidRecord
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, nil, store.ErrConflict
	}
	if s.numberTakenLocked(order.Kind, order.Number) {
		return nil, nil, store.ErrConflict
	}
	if backorder != nil {
		if backorder.ID == "" || backorder.Number == "" || backorder.Number == order.Number {
			return nil, nil, store.ErrInvalidRecord
		}
		if s.numberTakenLocked(backorder.Kind, backorder.Number) {
			return nil, nil, store.ErrConflict
		}
	}

	if err := s.adjustStockLocked(deltas); err != nil {
		return nil, nil, err
	}

	s.ordersByID[order.ID] = cloneOrder(order)
	createdParent := cloneOrder(order)

	var createdBack *domain.Order
	if backorder != nil {
		s.ordersByID[backorder.ID] = cloneOrder(*backorder)
		back := cloneOrder(*backorder)
		createdBack = &back
	}
	return &createdParent, createdBack, nil
}

func (s *Store) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := cloneOrder(order)
	return &clone, nil
}

func (s *Store) UpdateOrder(_ context.Context, order domain.Order, deltas []store.StockDelta) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.ordersByID[order.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if order.Number != existing.Number && s.numberTakenLocked(order.Kind, order.Number) {
		return nil, store.ErrConflict
	}

	if err := s.adjustStockLocked(deltas); err != nil {
		return nil, err
	}

	s.ordersByID[order.ID] = cloneOrder(order)
	clone := cloneOrder(order)
	return &clone, nil
}

func (s *Store) ListOrders(_ context.Context, kind string, status string, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		if kind != "" && order.Kind != kind {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Number, a.Number)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *Store) ListOrderNumbers(_ context.Context, kind string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := make([]string, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		if kind != "" && order.Kind != kind {
			continue
		}
		numbers = append(numbers, order.Number)
	}
	return numbers, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ordersByID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.ordersByID, id)
	return nil
}

func (s *Store) numberTakenLocked(kind string, number string) bool {
	for _, order := range s.ordersByID {
		if order.Kind == kind && order.Number == number {
			return true
		}
	}
	return false
}

func (s *Store) CreateBill(_ context.Context, bill domain.Bill) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bill.ID == "" || bill.Number == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.billsByID[bill.ID]; exists {
		return nil, store.ErrConflict
	}
	for _, existing := range s.billsByID {
		if existing.Number == bill.Number {
			return nil, store.ErrConflict
		}
	}

	s.billsByID[bill.ID] = cloneBill(bill)
	clone := cloneBill(bill)
	return &clone, nil
}

func (s *Store) GetBillByID(_ context.Context, id string) (*domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bill, ok := s.billsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := cloneBill(bill)
	return &clone, nil
}

func (s *Store) UpdateBill(_ context.Context, bill domain.Bill) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.billsByID[bill.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.billsByID[bill.ID] = cloneBill(bill)
	clone := cloneBill(bill)
	return &clone, nil
}

func (s *Store) ListBills(_ context.Context, status string, limit int) ([]domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills := make([]domain.Bill, 0, len(s.billsByID))
	for _, bill := range s.billsByID {
		if status != "" && bill.Status != status {
			continue
		}
		bills = append(bills, cloneBill(bill))
	}
	slices.SortFunc(bills, func(a, b domain.Bill) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Number, a.Number)
	})
	if limit > 0 && len(bills) > limit {
		bills = bills[:limit]
	}
	return bills, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, len(s.auditLogs))
	copy(result, s.auditLogs)
	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" {
		return store.ErrInvalidRecord
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrConflict
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cloneOrder(src domain.Order) domain.Order {
	clone := src
	clone.Items = append([]domain.LineItem(nil), src.Items...)
	clone.Payments = append([]domain.Payment(nil), src.Payments...)
	if src.Receipts != nil {
		clone.Receipts = make([]domain.ReceivingEvent, len(src.Receipts))
		for i, receipt := range src.Receipts {
			clone.Receipts[i] = receipt
			clone.Receipts[i].Lines = append([]domain.ReceivedLine(nil), receipt.Lines...)
		}
	}
	if src.ReceivedAt != nil {
		receivedAt := *src.ReceivedAt
		clone.ReceivedAt = &receivedAt
	}
	return clone
}

func cloneBill(src domain.Bill) domain.Bill {
	clone := src
	clone.Payments = append([]domain.Payment(nil), src.Payments...)
	return clone
}

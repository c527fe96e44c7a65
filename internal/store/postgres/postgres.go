package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"orderdesk/backend/internal/domain"
	"orderdesk/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const productColumns = `id, sku, name, type, unit_price_cents, cost_cents, stock, low_stock_threshold, active, created_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Type, &p.UnitPriceCents, &p.CostCents, &p.Stock, &p.LowStockThreshold, &p.Active, &p.CreatedAt)
	return p, err
}

func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	if activeOnly {
		query = `SELECT ` + productColumns + ` FROM products WHERE active = true ORDER BY name`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.SKU == "" || product.Name == "" {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, type, unit_price_cents, cost_cents, stock, low_stock_threshold, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, product.ID, product.SKU, product.Name, product.Type, product.UnitPriceCents, product.CostCents,
		product.Stock, product.LowStockThreshold, product.Active, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, unit_price_cents = $3, cost_cents = $4, stock = $5, low_stock_threshold = $6, active = $7
		WHERE id = $1
	`, product.ID, product.Name, product.UnitPriceCents, product.CostCents, product.Stock, product.LowStockThreshold, product.Active)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *Store) AdjustStock(ctx context.Context, deltas []store.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := adjustStockTx(ctx, tx, deltas); err != nil {
		return err
	}
	return tx.Commit()
}

func adjustStockTx(ctx context.Context, tx *sql.Tx, deltas []store.StockDelta) error {
	for _, delta := range deltas {
		res, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, delta.ProductID, delta.Quantity)
		if err != nil {
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}

func (s *Store) CreateCounterparty(ctx context.Context, cp domain.Counterparty) (*domain.Counterparty, error) {
	if cp.ID == "" || cp.Name == "" {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO counterparties (id, kind, name, email, phone, address, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, cp.ID, cp.Kind, cp.Name, cp.Email, cp.Phone, cp.Address, cp.Active, cp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return &cp, nil
}

func (s *Store) GetCounterpartyByID(ctx context.Context, id string) (*domain.Counterparty, error) {
	var cp domain.Counterparty
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, name, email, phone, address, active, created_at
		FROM counterparties WHERE id = $1
	`, id).Scan(&cp.ID, &cp.Kind, &cp.Name, &cp.Email, &cp.Phone, &cp.Address, &cp.Active, &cp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) ListCounterparties(ctx context.Context, kind string) ([]domain.Counterparty, error) {
	query := `SELECT id, kind, name, email, phone, address, active, created_at FROM counterparties`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, kind)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parties := make([]domain.Counterparty, 0, 32)
	for rows.Next() {
		var cp domain.Counterparty
		if err := rows.Scan(&cp.ID, &cp.Kind, &cp.Name, &cp.Email, &cp.Phone, &cp.Address, &cp.Active, &cp.CreatedAt); err != nil {
			return nil, err
		}
		parties = append(parties, cp)
	}
	return parties, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, emp domain.Employee) (*domain.Employee, error) {
	if emp.ID == "" || emp.Name == "" {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, emp.ID, emp.Name, emp.Role, emp.Active, emp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return &emp, nil
}

func (s *Store) GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error) {
	var emp domain.Employee
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, active, created_at FROM employees WHERE id = $1
	`, id).Scan(&emp.ID, &emp.Name, &emp.Role, &emp.Active, &emp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, role, active, created_at FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0, 16)
	for rows.Next() {
		var emp domain.Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Role, &emp.Active, &emp.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

const orderColumns = `id, kind, number, counterparty_id, counterparty_name, issue_date, due_date,
	expected_date, actual_date, items, subtotal_cents, tax_rate_percent, tax_cents, total_cents,
	status, notes, payments, paid_cents, balance_cents, backorder_of, po_number, driver_id,
	driver_name, receipts, received_at, received_by, created_at, updated_at`

// CreateOrder inserts the order, its optional backorder companion and
// the stock movement in one serializable transaction. A duplicate
// document number surfaces as ErrConflict via the (kind, number)
// unique index.
func (s *Store) CreateOrder(ctx context.Context, order domain.Order, backorder *domain.Order, deltas []store.StockDelta) (*domain.Order, *domain.Order, error) {
	if order.ID == "" || order.Number == "" {
		return nil, nil, store.ErrInvalidRecord
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertOrderTx(ctx, tx, order); err != nil {
		return nil, nil, err
	}
	if backorder != nil {
		if backorder.ID == "" || backorder.Number == "" {
			return nil, nil, store.ErrInvalidRecord
		}
		if err := insertOrderTx(ctx, tx, *backorder); err != nil {
			return nil, nil, err
		}
	}
	if err := adjustStockTx(ctx, tx, deltas); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &order, backorder, nil
}

func insertOrderTx(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	items, payments, receipts, err := marshalOrderDocs(order)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	`, order.ID, order.Kind, order.Number, order.CounterpartyID, order.CounterpartyName,
		order.IssueDate, order.DueDate, order.ExpectedDate, order.ActualDate, items,
		order.SubtotalCents, order.TaxRatePercent, order.TaxCents, order.TotalCents,
		order.Status, order.Notes, payments, order.PaidCents, order.BalanceCents,
		order.BackorderOf, order.PONumber, order.DriverID, order.DriverName, receipts,
		order.ReceivedAt, order.ReceivedBy, order.CreatedAt, order.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrConflict
	}
	return err
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order domain.Order, deltas []store.StockDelta) (*domain.Order, error) {
	items, payments, receipts, err := marshalOrderDocs(order)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET number = $2, issue_date = $3, due_date = $4, expected_date = $5, actual_date = $6,
			items = $7, subtotal_cents = $8, tax_rate_percent = $9, tax_cents = $10,
			total_cents = $11, status = $12, notes = $13, payments = $14, paid_cents = $15,
			balance_cents = $16, receipts = $17, received_at = $18, received_by = $19,
			updated_at = $20
		WHERE id = $1
	`, order.ID, order.Number, order.IssueDate, order.DueDate, order.ExpectedDate, order.ActualDate,
		items, order.SubtotalCents, order.TaxRatePercent, order.TaxCents, order.TotalCents,
		order.Status, order.Notes, payments, order.PaidCents, order.BalanceCents, receipts,
		order.ReceivedAt, order.ReceivedBy, order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, store.ErrNotFound
	}

	if err := adjustStockTx(ctx, tx, deltas); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, kind string, status string, limit int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	where := ""
	if kind != "" {
		args = append(args, kind)
		where = fmt.Sprintf(" WHERE kind = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		if where == "" {
			where = fmt.Sprintf(" WHERE status = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND status = $%d", len(args))
		}
	}
	query += where + ` ORDER BY created_at DESC, number DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *Store) ListOrderNumbers(ctx context.Context, kind string) ([]string, error) {
	query := `SELECT number FROM orders`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, kind)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	numbers := make([]string, 0, 128)
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, err
		}
		numbers = append(numbers, number)
	}
	return numbers, rows.Err()
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error) {
	if bill.ID == "" || bill.Number == "" {
		return nil, store.ErrInvalidRecord
	}
	payments, err := json.Marshal(paymentsOrEmpty(bill.Payments))
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bills (id, number, vendor_id, vendor_name, issue_date, due_date, amount_cents,
			payments, paid_cents, balance_cents, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, bill.ID, bill.Number, bill.VendorID, bill.VendorName, bill.IssueDate, bill.DueDate,
		bill.AmountCents, payments, bill.PaidCents, bill.BalanceCents, bill.Status, bill.Notes,
		bill.CreatedAt, bill.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return &bill, nil
}

func (s *Store) GetBillByID(ctx context.Context, id string) (*domain.Bill, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, number, vendor_id, vendor_name, issue_date, due_date, amount_cents,
			payments, paid_cents, balance_cents, status, notes, created_at, updated_at
		FROM bills WHERE id = $1
	`, id)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *Store) UpdateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error) {
	payments, err := json.Marshal(paymentsOrEmpty(bill.Payments))
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE bills
		SET issue_date = $2, due_date = $3, amount_cents = $4, payments = $5, paid_cents = $6,
			balance_cents = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1
	`, bill.ID, bill.IssueDate, bill.DueDate, bill.AmountCents, payments, bill.PaidCents,
		bill.BalanceCents, bill.Status, bill.Notes, bill.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, store.ErrNotFound
	}
	return &bill, nil
}

func (s *Store) ListBills(ctx context.Context, status string, limit int) ([]domain.Bill, error) {
	query := `
		SELECT id, number, vendor_id, vendor_name, issue_date, due_date, amount_cents,
			payments, paid_cents, balance_cents, status, notes, created_at, updated_at
		FROM bills`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := make([]domain.Bill, 0, 32)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrConflict
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username, password, role, active, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE username = $1`, username, password)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func marshalOrderDocs(order domain.Order) ([]byte, []byte, []byte, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, nil, nil, err
	}
	payments, err := json.Marshal(paymentsOrEmpty(order.Payments))
	if err != nil {
		return nil, nil, nil, err
	}
	receipts := order.Receipts
	if receipts == nil {
		receipts = []domain.ReceivingEvent{}
	}
	receiptsJSON, err := json.Marshal(receipts)
	if err != nil {
		return nil, nil, nil, err
	}
	return items, payments, receiptsJSON, nil
}

func paymentsOrEmpty(payments []domain.Payment) []domain.Payment {
	if payments == nil {
		return []domain.Payment{}
	}
	return payments
}

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var (
		order    domain.Order
		items    []byte
		payments []byte
		receipts []byte
	)
	err := row.Scan(&order.ID, &order.Kind, &order.Number, &order.CounterpartyID, &order.CounterpartyName,
		&order.IssueDate, &order.DueDate, &order.ExpectedDate, &order.ActualDate, &items,
		&order.SubtotalCents, &order.TaxRatePercent, &order.TaxCents, &order.TotalCents,
		&order.Status, &order.Notes, &payments, &order.PaidCents, &order.BalanceCents,
		&order.BackorderOf, &order.PONumber, &order.DriverID, &order.DriverName, &receipts,
		&order.ReceivedAt, &order.ReceivedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(payments, &order.Payments); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order payments: %w", err)
	}
	if err := json.Unmarshal(receipts, &order.Receipts); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order receipts: %w", err)
	}
	return order, nil
}

func scanBill(row interface{ Scan(...any) error }) (domain.Bill, error) {
	var (
		bill     domain.Bill
		payments []byte
	)
	err := row.Scan(&bill.ID, &bill.Number, &bill.VendorID, &bill.VendorName, &bill.IssueDate,
		&bill.DueDate, &bill.AmountCents, &payments, &bill.PaidCents, &bill.BalanceCents,
		&bill.Status, &bill.Notes, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return domain.Bill{}, err
	}
	if err := json.Unmarshal(payments, &bill.Payments); err != nil {
		return domain.Bill{}, fmt.Errorf("unmarshal bill payments: %w", err)
	}
	return bill, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

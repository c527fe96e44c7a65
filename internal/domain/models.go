package domain

import "time"

// Business dates (issue, due, expected, payment dates) travel as
// "YYYY-MM-DD" strings; an empty string means "not set". Timestamps
// (CreatedAt, UpdatedAt, RecordedAt) are time.Time in UTC.

type Product struct {
	ID                string    `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	CostCents         int64     `json:"cost_cents"`
	Stock             int64     `json:"stock"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
}

type ProductCreateRequest struct {
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	UnitPriceCents    int64  `json:"unit_price_cents"`
	CostCents         int64  `json:"cost_cents"`
	InitialStock      int64  `json:"initial_stock"`
	LowStockThreshold int64  `json:"low_stock_threshold"`
}

type ProductUpdateRequest struct {
	Name              *string `json:"name,omitempty"`
	UnitPriceCents    *int64  `json:"unit_price_cents,omitempty"`
	CostCents         *int64  `json:"cost_cents,omitempty"`
	LowStockThreshold *int64  `json:"low_stock_threshold,omitempty"`
	Active            *bool   `json:"active,omitempty"`
}

type Counterparty struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type CounterpartyCreateRequest struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type EmployeeCreateRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// LineItem is a single order line. Product name, type and unit price
// are snapshots taken at order time so later catalog edits never
// rewrite issued documents.
type LineItem struct {
	ProductID           string `json:"product_id"`
	ProductName         string `json:"product_name"`
	ProductType         string `json:"product_type"`
	QuantityOrdered     int64  `json:"quantity_ordered"`
	QuantityBackordered int64  `json:"quantity_backordered,omitempty"`
	QuantityReceived    int64  `json:"quantity_received,omitempty"`
	UnitPriceCents      int64  `json:"unit_price_cents"`
	LineTotalCents      int64  `json:"line_total_cents"`
}

type Payment struct {
	ID          string    `json:"id"`
	Method      string    `json:"method"`
	Date        string    `json:"date"`
	AmountCents int64     `json:"amount_cents"`
	Reference   string    `json:"reference,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type ReceivedLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type ReceivingEvent struct {
	ID         string         `json:"id"`
	Date       string         `json:"date"`
	Notes      string         `json:"notes,omitempty"`
	ReceivedBy string         `json:"received_by,omitempty"`
	Lines      []ReceivedLine `json:"lines"`
}

// Order is both document kinds. Invoices carry Payments and the
// backorder linkage; purchase orders carry Receipts and the receiving
// timestamps. CounterpartyName and DriverName are creation-time
// snapshots.
type Order struct {
	ID               string           `json:"id"`
	Kind             string           `json:"kind"`
	Number           string           `json:"number"`
	CounterpartyID   string           `json:"counterparty_id"`
	CounterpartyName string           `json:"counterparty_name"`
	IssueDate        string           `json:"issue_date,omitempty"`
	DueDate          string           `json:"due_date,omitempty"`
	ExpectedDate     string           `json:"expected_date,omitempty"`
	ActualDate       string           `json:"actual_date,omitempty"`
	Items            []LineItem       `json:"items"`
	SubtotalCents    int64            `json:"subtotal_cents"`
	TaxRatePercent   float64          `json:"tax_rate_percent"`
	TaxCents         int64            `json:"tax_cents"`
	TotalCents       int64            `json:"total_cents"`
	Status           string           `json:"status"`
	Notes            string           `json:"notes,omitempty"`
	Payments         []Payment        `json:"payments,omitempty"`
	PaidCents        int64            `json:"paid_cents"`
	BalanceCents     int64            `json:"balance_cents"`
	BackorderOf      string           `json:"backorder_of,omitempty"`
	PONumber         string           `json:"po_number,omitempty"`
	DriverID         string           `json:"driver_id,omitempty"`
	DriverName       string           `json:"driver_name,omitempty"`
	Receipts         []ReceivingEvent `json:"receipts,omitempty"`
	ReceivedAt       *time.Time       `json:"received_at,omitempty"`
	ReceivedBy       string           `json:"received_by,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type OrderLineRequest struct {
	ProductID           string `json:"product_id"`
	QuantityOrdered     int64  `json:"quantity_ordered"`
	QuantityBackordered int64  `json:"quantity_backordered,omitempty"`
	QuantityReceived    int64  `json:"quantity_received,omitempty"`
	UnitPriceCents      *int64 `json:"unit_price_cents,omitempty"`
}

type InvoiceCreateRequest struct {
	Number         string             `json:"number,omitempty"`
	CounterpartyID string             `json:"counterparty_id"`
	IssueDate      string             `json:"issue_date"`
	DueDate        string             `json:"due_date"`
	TaxRatePercent *float64           `json:"tax_rate_percent,omitempty"`
	PONumber       string             `json:"po_number,omitempty"`
	DriverID       string             `json:"driver_id,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Items          []OrderLineRequest `json:"items"`
}

type InvoiceCreateResponse struct {
	Invoice   Order  `json:"invoice"`
	Backorder *Order `json:"backorder,omitempty"`
}

type PurchaseOrderCreateRequest struct {
	Number         string             `json:"number,omitempty"`
	CounterpartyID string             `json:"counterparty_id"`
	IssueDate      string             `json:"issue_date"`
	ExpectedDate   string             `json:"expected_date"`
	TaxRatePercent *float64           `json:"tax_rate_percent,omitempty"`
	Draft          bool               `json:"draft,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Items          []OrderLineRequest `json:"items"`
}

type RecordPaymentRequest struct {
	Method      string `json:"method"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type ReceiveLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type ReceiveItemsRequest struct {
	Date       string               `json:"date"`
	Notes      string               `json:"notes,omitempty"`
	ReceivedBy string               `json:"received_by,omitempty"`
	Lines      []ReceiveLineRequest `json:"lines"`
}

type OrderResponse struct {
	Order Order `json:"order"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

type Bill struct {
	ID           string    `json:"id"`
	Number       string    `json:"number"`
	VendorID     string    `json:"vendor_id"`
	VendorName   string    `json:"vendor_name"`
	IssueDate    string    `json:"issue_date"`
	DueDate      string    `json:"due_date"`
	AmountCents  int64     `json:"amount_cents"`
	Payments     []Payment `json:"payments,omitempty"`
	PaidCents    int64     `json:"paid_cents"`
	BalanceCents int64     `json:"balance_cents"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BillCreateRequest struct {
	Number      string `json:"number"`
	VendorID    string `json:"vendor_id"`
	IssueDate   string `json:"issue_date"`
	DueDate     string `json:"due_date"`
	AmountCents int64  `json:"amount_cents"`
	Notes       string `json:"notes,omitempty"`
}

type InvoiceSummary struct {
	OutstandingCents   int64 `json:"outstanding_cents"`
	OverdueCents       int64 `json:"overdue_cents"`
	OverdueCount       int64 `json:"overdue_count"`
	PaidThisMonthCents int64 `json:"paid_this_month_cents"`
}

type PurchaseOrderSummary struct {
	PendingCents  int64 `json:"pending_cents"`
	SentCount     int64 `json:"sent_count"`
	ReceivedCount int64 `json:"received_count"`
}

type LowStockProduct struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Stock     int64  `json:"stock"`
	Threshold int64  `json:"threshold"`
}

type DashboardSummary struct {
	Invoices                InvoiceSummary       `json:"invoices"`
	PurchaseOrders          PurchaseOrderSummary `json:"purchase_orders"`
	PayableOutstandingCents int64                `json:"payable_outstanding_cents"`
	LowStock                []LowStockProduct    `json:"low_stock"`
	GeneratedAt             string               `json:"generated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type User struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	OrderKindInvoice       = "invoice"
	OrderKindPurchaseOrder = "purchase_order"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusPartial = "partial"
	InvoiceStatusPaid    = "paid"
)

const (
	POStatusDraft             = "draft"
	POStatusSent              = "sent"
	POStatusPartiallyReceived = "partially_received"
	POStatusReceived          = "received"
	POStatusCancelled         = "cancelled"
)

const (
	ProductTypeGoods   = "product"
	ProductTypeService = "service"
)

const (
	CounterpartyCustomer = "customer"
	CounterpartyVendor   = "vendor"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

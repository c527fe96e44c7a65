package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"orderdesk/backend/internal/cache"
	"orderdesk/backend/internal/domain"
	"orderdesk/backend/internal/store"
	"orderdesk/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const defaultTaxRatePercent = 8.0

type Service struct {
	repo           store.Repository
	summaries      cache.SummaryCache
	log            *zap.SugaredLogger
	defaultTaxRate float64
	summaryTTL     time.Duration
}

func New(repo store.Repository, summaries cache.SummaryCache, logger *zap.SugaredLogger, defaultTaxRate float64, summaryTTL time.Duration) *Service {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if defaultTaxRate < 0 {
		defaultTaxRate = defaultTaxRatePercent
	}
	if summaryTTL <= 0 {
		summaryTTL = 30 * time.Second
	}

	return &Service{
		repo:           repo,
		summaries:      summaries,
		log:            logger,
		defaultTaxRate: defaultTaxRate,
		summaryTTL:     summaryTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, activeOnly)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if req.Type == "" {
		req.Type = domain.ProductTypeGoods
	}

	if req.SKU == "" || req.Name == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}
	if req.Type != domain.ProductTypeGoods && req.Type != domain.ProductTypeService {
		return domain.Product{}, store.ErrInvalidRecord
	}
	if req.UnitPriceCents < 0 || req.CostCents < 0 || req.InitialStock < 0 || req.LowStockThreshold < 0 {
		return domain.Product{}, store.ErrInvalidRecord
	}

	threshold := req.LowStockThreshold
	if threshold == 0 {
		threshold = 10
	}
	stock := req.InitialStock
	if req.Type == domain.ProductTypeService {
		stock = 0
		threshold = 0
	}

	product := domain.Product{
		ID:                xid.New("prod"),
		SKU:               req.SKU,
		Name:              req.Name,
		Type:              req.Type,
		UnitPriceCents:    req.UnitPriceCents,
		CostCents:         req.CostCents,
		Stock:             stock,
		LowStockThreshold: threshold,
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("sku=%s,name=%s,price=%d", created.SKU, created.Name, created.UnitPriceCents))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidRecord
		}
		existing.Name = name
	}
	if req.UnitPriceCents != nil {
		if *req.UnitPriceCents < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		existing.UnitPriceCents = *req.UnitPriceCents
	}
	if req.CostCents != nil {
		if *req.CostCents < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		existing.CostCents = *req.CostCents
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		existing.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Active != nil {
		existing.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, *existing)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateSummaries(ctx)
	s.logAudit(ctx, "product_update", "product", saved.ID, fmt.Sprintf("active=%t,price=%d", saved.Active, saved.UnitPriceCents))
	return *saved, nil
}

func (s *Service) CreateCounterparty(ctx context.Context, req domain.CounterpartyCreateRequest) (domain.Counterparty, error) {
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" {
		return domain.Counterparty{}, store.ErrInvalidRecord
	}
	if req.Kind != domain.CounterpartyCustomer && req.Kind != domain.CounterpartyVendor {
		return domain.Counterparty{}, store.ErrInvalidRecord
	}

	cp := domain.Counterparty{
		ID:        xid.New("cp"),
		Kind:      req.Kind,
		Name:      req.Name,
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateCounterparty(ctx, cp)
	if err != nil {
		return domain.Counterparty{}, err
	}

	s.logAudit(ctx, "counterparty_create", "counterparty", created.ID, fmt.Sprintf("kind=%s,name=%s", created.Kind, created.Name))
	return *created, nil
}

func (s *Service) ListCounterparties(ctx context.Context, kind string) ([]domain.Counterparty, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != "" && kind != domain.CounterpartyCustomer && kind != domain.CounterpartyVendor {
		return nil, store.ErrInvalidRecord
	}
	return s.repo.ListCounterparties(ctx, kind)
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (domain.Employee, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Employee{}, store.ErrInvalidRecord
	}

	emp := domain.Employee{
		ID:        xid.New("emp"),
		Name:      req.Name,
		Role:      strings.TrimSpace(req.Role),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateEmployee(ctx, emp)
	if err != nil {
		return domain.Employee{}, err
	}

	s.logAudit(ctx, "employee_create", "employee", created.ID, created.Name)
	return *created, nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("admin role required")
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, limit)
}

// validDate reports whether value is a YYYY-MM-DD calendar date.
func validDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// dateBefore reports whether date (YYYY-MM-DD) falls strictly before
// the calendar day of now. Empty or malformed dates never qualify.
func dateBefore(date string, now time.Time) bool {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return parsed.Before(today)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		s.log.Warnw("failed to write audit log", "action", action, "entity", entityType+"/"+entityID, "error", err)
	}
}

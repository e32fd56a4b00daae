package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

// Service defines catalog business logic.
type Service interface {
	// ListProducts returns products matching the filter, ordered by category then name.
	ListProducts(ctx context.Context, category, search string) ([]*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, req ProductRequest) (*Product, error)
	// UpdateProduct overwrites every mutable field of an existing product.
	UpdateProduct(ctx context.Context, id string, req ProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, qty int) error
	// InvalidateCache drops cached listings after stock changed elsewhere.
	InvalidateCache(ctx context.Context)
}

type service struct {
	repo  Repository
	cache ListCache
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a catalog service. A nil cache disables caching.
func NewService(repo Repository, cache ListCache, log *zap.Logger) Service {
	if cache == nil {
		cache = NewNoopCache()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, cache: cache, log: log.Named("catalog"), now: time.Now}
}

func (s *service) ListProducts(ctx context.Context, category, search string) ([]*Product, error) {
	f := Filter{Search: strings.TrimSpace(search)}
	if strings.TrimSpace(category) != "" {
		c, ok := ParseCategory(category)
		if !ok {
			return nil, apperror.Validation("unknown category %q", category)
		}
		f.Category = c
	}

	// The generation is read before the database so a concurrent
	// invalidation makes this listing unreachable.
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("product cache unavailable, falling back to database", zap.Error(err))
		return s.repo.List(ctx, f)
	}
	if products, hit, err := s.cache.Get(ctx, gen, f); err != nil {
		s.log.Warn("product cache read failed, falling back to database", zap.Error(err))
	} else if hit {
		return products, nil
	}

	products, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, gen, f, products); err != nil {
		s.log.Warn("product cache write failed", zap.Error(err))
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	name, category, price, stock, err := validate(req)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := &Product{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	s.log.Info("product created", zap.Stringer("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*Product, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	name, category, price, stock, err := validate(req)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Category = category
	p.Price = price
	p.Stock = stock
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx)
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	s.log.Info("product deleted", zap.Stringer("product_id", uid))
	return nil
}

func (s *service) DecrementStock(ctx context.Context, id string, qty int) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.DecrementStock(ctx, uid, qty); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *service) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Error(err))
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid product id %q", id)
	}
	return uid, nil
}

func validate(req ProductRequest) (string, Category, decimal.Decimal, int, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", "", decimal.Zero, 0, apperror.Validation("name is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return "", "", decimal.Zero, 0, apperror.Validation("category is required")
	}
	category, ok := ParseCategory(req.Category)
	if !ok {
		return "", "", decimal.Zero, 0, apperror.Validation("unknown category %q", req.Category)
	}

	if req.Price == "" {
		return "", "", decimal.Zero, 0, apperror.Validation("price is required")
	}
	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		return "", "", decimal.Zero, 0, apperror.Validation("price %q is not a number", req.Price)
	}
	if price.IsNegative() {
		return "", "", decimal.Zero, 0, apperror.Validation("price must not be negative")
	}

	stock := 0
	if req.Stock != "" {
		n, err := req.Stock.Int64()
		if err != nil {
			return "", "", decimal.Zero, 0, apperror.Validation("stock %q is not a whole number", req.Stock)
		}
		if n < 0 {
			return "", "", decimal.Zero, 0, apperror.Validation("stock must not be negative")
		}
		stock = int(n)
	}
	return name, category, price.Round(2), stock, nil
}

package pos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/georgemunganga/needsport-pos/internal/modules/cart"
	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

// ErrEmptyCart is returned by Checkout when there is nothing to sell.
var ErrEmptyCart = apperror.Validation("cart is empty")

// Service defines POS business logic.
type Service interface {
	// Checkout records the session as a sale and clears it. On any error the
	// session is left untouched and nothing is persisted.
	Checkout(ctx context.Context, session *cart.Session, paymentMethod string) (*Sale, error)
	GetSale(ctx context.Context, id string) (*Sale, error)
	// ListSales returns sales newest first. from and to are dates
	// (2006-01-02) or RFC 3339 timestamps; a date-only "to" includes that day.
	ListSales(ctx context.Context, from, to string) ([]*Sale, error)
	PaymentMethods() []PaymentMethod
}

// CacheInvalidator is notified after stock levels change.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

type service struct {
	repo    Repository
	catalog CacheInvalidator
	methods PaymentMethods
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, catalog CacheInvalidator, methods PaymentMethods, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	if methods.allowed == nil {
		methods = NewPaymentMethods(nil)
	}
	return &service{repo: repo, catalog: catalog, methods: methods, log: log.Named("pos"), now: time.Now}
}

func (s *service) Checkout(ctx context.Context, session *cart.Session, paymentMethod string) (*Sale, error) {
	if session == nil || session.IsEmpty() {
		return nil, ErrEmptyCart
	}
	method, ok := s.methods.Parse(paymentMethod)
	if !ok {
		return nil, apperror.Validation("invalid payment_method %q (allowed: %s)", paymentMethod, s.allowedList())
	}

	sale := &Sale{
		ID:            uuid.New(),
		Total:         decimal.Zero,
		PaymentMethod: method,
		CreatedAt:     s.now().UTC(),
	}
	itemsCount := int64(0)
	for _, l := range session.Lines() {
		if l.ProductID == uuid.Nil {
			return nil, apperror.Validation("cart line %q has no product", l.Name)
		}
		if l.Price.IsNegative() {
			return nil, apperror.Validation("price for %q must not be negative", l.Name)
		}
		// Money columns hold cents; the stored row must add up.
		unitPrice := l.Price.Round(2)
		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		sale.Items = append(sale.Items, &SaleItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
		})
		sale.Total = sale.Total.Add(subtotal)
		itemsCount += int64(l.Quantity)
		if itemsCount > MaxQuantity {
			return nil, apperror.Validation("cart holds more than %d items", MaxQuantity)
		}
	}
	sale.ItemsCount = int(itemsCount)

	if err := s.repo.CommitSale(ctx, sale); err != nil {
		if apperror.KindOf(err) == apperror.KindPersistence {
			s.log.Error("sale commit failed", zap.Stringer("sale_id", sale.ID), zap.Error(err))
		} else {
			s.log.Info("sale rejected", zap.Stringer("sale_id", sale.ID), zap.Error(err))
		}
		return nil, err
	}

	if s.catalog != nil {
		s.catalog.InvalidateCache(ctx)
	}
	session.Clear()
	s.log.Info("sale committed",
		zap.Stringer("sale_id", sale.ID),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.Int("items_count", sale.ItemsCount))
	return sale, nil
}

func (s *service) GetSale(ctx context.Context, id string) (*Sale, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperror.Validation("invalid sale id %q", id)
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) ListSales(ctx context.Context, from, to string) ([]*Sale, error) {
	var q SalesQuery
	if from != "" {
		t, _, err := parseBound(from)
		if err != nil {
			return nil, apperror.Validation("invalid from %q", from)
		}
		q.From = &t
	}
	if to != "" {
		t, dateOnly, err := parseBound(to)
		if err != nil {
			return nil, apperror.Validation("invalid to %q", to)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		q.To = &t
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return nil, apperror.Validation("from must be before to")
	}
	return s.repo.List(ctx, q)
}

func (s *service) PaymentMethods() []PaymentMethod { return s.methods.List() }

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *service) allowedList() string {
	names := make([]string, 0, len(s.methods.ordered))
	for _, m := range s.methods.ordered {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func parseBound(v string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}

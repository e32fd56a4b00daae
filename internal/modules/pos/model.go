package pos

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/needsport-pos/internal/modules/cart"
	"github.com/georgemunganga/needsport-pos/internal/modules/catalog"
	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

// PaymentMethod represents how a sale was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCheck    PaymentMethod = "check"
)

// PaymentMethods is the set of methods the register accepts.
type PaymentMethods struct {
	allowed map[PaymentMethod]bool
	ordered []PaymentMethod
}

// NewPaymentMethods builds the accepted set from configuration. An empty
// list falls back to cash and card.
func NewPaymentMethods(names []string) PaymentMethods {
	pm := PaymentMethods{allowed: map[PaymentMethod]bool{}}
	for _, n := range names {
		m := PaymentMethod(strings.ToLower(strings.TrimSpace(n)))
		if m == "" || pm.allowed[m] {
			continue
		}
		pm.allowed[m] = true
		pm.ordered = append(pm.ordered, m)
	}
	if len(pm.ordered) == 0 {
		return NewPaymentMethods([]string{string(PaymentCash), string(PaymentCard)})
	}
	return pm
}

// Parse normalises s and reports whether it is accepted.
func (pm PaymentMethods) Parse(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	return m, pm.allowed[m]
}

func (pm PaymentMethods) List() []PaymentMethod {
	return append([]PaymentMethod(nil), pm.ordered...)
}

// Sale is a completed checkout.
type Sale struct {
	ID            uuid.UUID       `json:"id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ItemsCount    int             `json:"items_count"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []*SaleItem     `json:"items,omitempty"`
}

// SaleItem is one line of a sale, with the product name and price as they
// were at checkout.
type SaleItem struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SalesQuery bounds a sales listing by created_at. Nil bounds are open.
type SalesQuery struct {
	From *time.Time
	To   *time.Time
}

// MaxQuantity bounds quantities and item counts to what the sales tables
// can hold.
const MaxQuantity = math.MaxInt32

// CheckoutLine is a cart line as posted by the register UI.
type CheckoutLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// CheckoutRequest is the payload of the process_sale action.
type CheckoutRequest struct {
	PaymentMethod string         `json:"payment_method"`
	Items         []CheckoutLine `json:"items"`
}

// Session rebuilds the operator's cart from the posted lines.
func (r CheckoutRequest) Session() (*cart.Session, error) {
	s := cart.NewSession()
	for i, it := range r.Items {
		pid, err := uuid.Parse(strings.TrimSpace(it.ProductID))
		if err != nil {
			return nil, apperror.Validation("items[%d]: invalid product_id %q", i, it.ProductID)
		}
		if it.Quantity < 1 {
			return nil, apperror.Validation("items[%d]: quantity must be at least 1", i)
		}
		if it.Quantity > MaxQuantity {
			return nil, apperror.Validation("items[%d]: quantity must be at most %d", i, MaxQuantity)
		}
		category, ok := catalog.ParseCategory(it.Category)
		if !ok {
			category = catalog.CategoryOther
		}
		s.AddLine(cart.Line{
			ProductID: pid,
			Name:      strings.TrimSpace(it.Name),
			Category:  category,
			Price:     it.Price.Round(2),
			Quantity:  it.Quantity,
		})
	}
	return s, nil
}

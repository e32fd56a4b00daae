// Package cart holds the register's in-progress basket. A Session belongs to
// one operator and one checkout; it is never shared between goroutines.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/needsport-pos/internal/modules/catalog"
)

// Line is one product in the cart. Name, category, icon and price are
// captured when the product is first added; later catalog edits do not
// change them.
type Line struct {
	ProductID uuid.UUID        `json:"product_id"`
	Name      string           `json:"name"`
	Category  catalog.Category `json:"category"`
	Icon      string           `json:"icon"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int              `json:"quantity"`
}

// Subtotal is price × quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Session is the cart for a single checkout.
type Session struct {
	lines []*Line
	index map[uuid.UUID]*Line
}

func NewSession() *Session {
	return &Session{index: make(map[uuid.UUID]*Line)}
}

// AddItem adds one unit of p, snapshotting it on first add.
func (s *Session) AddItem(p *catalog.Product) {
	if l, ok := s.index[p.ID]; ok {
		l.Quantity++
		return
	}
	s.insert(&Line{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Icon:      p.Category.Icon(),
		Price:     p.Price,
		Quantity:  1,
	})
}

// AddLine merges an already snapshotted line. Quantities for the same
// product add up and the first snapshot is kept. Quantities below 1 count as 1.
func (s *Session) AddLine(l Line) {
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	if existing, ok := s.index[l.ProductID]; ok {
		existing.Quantity += l.Quantity
		return
	}
	if l.Icon == "" {
		l.Icon = l.Category.Icon()
	}
	s.insert(&l)
}

func (s *Session) insert(l *Line) {
	s.lines = append(s.lines, l)
	s.index[l.ProductID] = l
}

// RemoveItem drops the line for productID, if any.
func (s *Session) RemoveItem(productID uuid.UUID) {
	if _, ok := s.index[productID]; !ok {
		return
	}
	delete(s.index, productID)
	for i, l := range s.lines {
		if l.ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
}

// AdjustQuantity changes a line's quantity by delta, never going below 1.
// It reports whether the product was in the cart.
func (s *Session) AdjustQuantity(productID uuid.UUID, delta int) bool {
	l, ok := s.index[productID]
	if !ok {
		return false
	}
	l.Quantity += delta
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	return true
}

func (s *Session) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *Session) TotalItemCount() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = *l
	}
	return out
}

func (s *Session) IsEmpty() bool { return len(s.lines) == 0 }

// Clear empties the cart after a successful checkout.
func (s *Session) Clear() {
	s.lines = nil
	s.index = make(map[uuid.UUID]*Line)
}

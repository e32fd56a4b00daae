package cart

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/needsport-pos/internal/modules/catalog"
)

func product(name string, price string, category catalog.Category) *catalog.Product {
	return &catalog.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    10,
	}
}

func TestAddItemTwiceMergesLine(t *testing.T) {
	s := NewSession()
	p := product("Protein Bar", "3.50", catalog.CategorySnack)

	s.AddItem(p)
	s.AddItem(p)

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", lines[0].Quantity)
	}
	if lines[0].Icon != catalog.CategorySnack.Icon() {
		t.Errorf("expected snack icon, got %q", lines[0].Icon)
	}
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	s := NewSession()
	p := product("Whey", "40", catalog.CategorySupplement)
	s.AddItem(p)

	p.Price = decimal.NewFromInt(55)
	p.Name = "Whey Gold"
	s.AddItem(p)

	l := s.Lines()[0]
	if !l.Price.Equal(decimal.NewFromInt(40)) || l.Name != "Whey" {
		t.Errorf("expected original snapshot, got %s %s", l.Name, l.Price)
	}
	if !s.Subtotal().Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected subtotal 80, got %s", s.Subtotal())
	}
}

func TestAdjustQuantityFloorsAtOne(t *testing.T) {
	s := NewSession()
	p := product("Cola", "2", catalog.CategoryBeverage)
	s.AddItem(p)
	s.AdjustQuantity(p.ID, 2)

	if !s.AdjustQuantity(p.ID, -100) {
		t.Fatal("expected line to exist")
	}
	if q := s.Lines()[0].Quantity; q != 1 {
		t.Errorf("expected quantity 1, got %d", q)
	}
	if s.IsEmpty() {
		t.Error("floor must not remove the line")
	}
}

func TestAdjustQuantityUnknownProduct(t *testing.T) {
	s := NewSession()
	if s.AdjustQuantity(uuid.New(), 1) {
		t.Error("expected false for a product not in the cart")
	}
}

func TestRemoveItemKeepsOrder(t *testing.T) {
	s := NewSession()
	a := product("A", "1", catalog.CategorySnack)
	b := product("B", "2", catalog.CategorySnack)
	c := product("C", "3", catalog.CategorySnack)
	s.AddItem(a)
	s.AddItem(b)
	s.AddItem(c)

	s.RemoveItem(b.ID)
	s.RemoveItem(uuid.New())

	lines := s.Lines()
	if len(lines) != 2 || lines[0].ProductID != a.ID || lines[1].ProductID != c.ID {
		t.Errorf("unexpected lines after remove: %+v", lines)
	}
	s.AddItem(b)
	if got := s.Lines(); len(got) != 3 || got[2].Quantity != 1 {
		t.Errorf("re-adding a removed product should start a new line, got %+v", got)
	}
}

func TestAddLineMerges(t *testing.T) {
	s := NewSession()
	id := uuid.New()
	s.AddLine(Line{ProductID: id, Name: "Gel", Category: catalog.CategorySupplement, Price: decimal.NewFromInt(4), Quantity: 2})
	s.AddLine(Line{ProductID: id, Name: "Gel v2", Price: decimal.NewFromInt(9), Quantity: 3})
	s.AddLine(Line{ProductID: uuid.New(), Name: "Water", Price: decimal.NewFromInt(1), Quantity: 0})

	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Quantity != 5 || lines[0].Name != "Gel" || lines[0].Icon == "" {
		t.Errorf("unexpected merged line %+v", lines[0])
	}
	if lines[1].Quantity != 1 {
		t.Errorf("expected quantity clamped to 1, got %d", lines[1].Quantity)
	}
}

func TestClear(t *testing.T) {
	s := NewSession()
	p := product("Cola", "2", catalog.CategoryBeverage)
	s.AddItem(p)
	s.Clear()

	if !s.IsEmpty() || s.TotalItemCount() != 0 || !s.Subtotal().IsZero() {
		t.Error("expected empty cart after clear")
	}
	s.AddItem(p)
	if s.TotalItemCount() != 1 {
		t.Error("expected cart to be usable after clear")
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	s := NewSession()
	p := product("Cola", "2", catalog.CategoryBeverage)
	s.AddItem(p)
	s.Lines()[0].Quantity = 99
	if s.TotalItemCount() != 1 {
		t.Error("mutating the returned lines must not change the cart")
	}
}

// Random sequences of operations must keep the cart totals consistent with
// its lines.
func TestCartMathHoldsForRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalogue := []*catalog.Product{
		product("Protein Bar", "3.50", catalog.CategorySnack),
		product("Whey", "39.99", catalog.CategorySupplement),
		product("Cola", "2.10", catalog.CategoryBeverage),
		product("Towel", "12", catalog.CategoryOther),
	}

	for run := 0; run < 50; run++ {
		s := NewSession()
		for step := 0; step < 40; step++ {
			p := catalogue[rng.Intn(len(catalogue))]
			switch rng.Intn(4) {
			case 0, 1:
				s.AddItem(p)
			case 2:
				s.AdjustQuantity(p.ID, rng.Intn(7)-3)
			case 3:
				s.RemoveItem(p.ID)
			}

			wantTotal := decimal.Zero
			wantCount := 0
			for _, l := range s.Lines() {
				if l.Quantity < 1 {
					t.Fatalf("line %s has quantity %d", l.Name, l.Quantity)
				}
				wantTotal = wantTotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
				wantCount += l.Quantity
			}
			if !s.Subtotal().Equal(wantTotal) {
				t.Fatalf("subtotal %s, want %s", s.Subtotal(), wantTotal)
			}
			if s.TotalItemCount() != wantCount {
				t.Fatalf("item count %d, want %d", s.TotalItemCount(), wantCount)
			}
		}
	}
}

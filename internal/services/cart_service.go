package services

import (
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"ecofinds/internal/domain"
	applog "ecofinds/internal/log"
	"ecofinds/internal/repos"
)

var ErrEmptyCart = errors.New("cart is empty")

// cartBundle is the persisted {items, purchases} pair; both slices are
// re-saved after every change to either.
type cartBundle struct {
	Items     []domain.CartItem `json:"items"`
	Purchases []domain.Purchase `json:"purchases"`
}

// CartService holds cart line items and the purchase history. Totals are
// derived on read, never stored.
type CartService struct {
	KV *repos.KV

	mu        sync.Mutex
	items     []domain.CartItem
	purchases []domain.Purchase
}

func NewCartService(kv *repos.KV) *CartService {
	return &CartService{KV: kv}
}

// Init loads the persisted bundle once.
func (s *CartService) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b cartBundle
	if s.KV.Load(repos.KeyCart, &b) {
		s.items = b.Items
		s.purchases = b.Purchases
	}
}

func (s *CartService) persist() {
	s.KV.Save(repos.KeyCart, cartBundle{Items: s.items, Purchases: s.purchases})
}

// Add inserts the product with quantity 1, or bumps the existing line.
func (s *CartService) Add(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i].Quantity++
			s.persist()
			return
		}
	}
	s.items = append(s.items, domain.CartItem{Product: p, Quantity: 1})
	s.persist()
}

// Remove drops the line item for the given product id.
func (s *CartService) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = dropLine(s.items, productID)
	s.persist()
}

// UpdateQuantity sets the line's quantity; any line at or below zero is
// dropped. The filter runs after every update, not just decrements.
func (s *CartService) UpdateQuantity(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == productID {
			s.items[i].Quantity = qty
			break
		}
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.persist()
}

// Clear empties the line items; purchase history is untouched.
func (s *CartService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
}

// Checkout snapshots the current items into an immutable purchase, appends
// it to the history, and empties the cart.
func (s *CartService) Checkout() (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]domain.CartItem, len(s.items))
	copy(snapshot, s.items)
	p := domain.Purchase{
		ID:     ulid.Make().String(),
		Items:  snapshot,
		Total:  total(s.items),
		Date:   time.Now().UTC().Format(time.RFC3339),
		Status: "completed",
	}
	s.purchases = append(s.purchases, p)
	s.items = nil
	s.persist()
	applog.Audit(nil, "cart.checkout", map[string]any{"purchase_id": p.ID, "total": p.Total})
	return &p, nil
}

func (s *CartService) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartItem(nil), s.items...)
}

func (s *CartService) Purchases() []domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Purchase(nil), s.purchases...)
}

func (s *CartService) PurchaseByID(id string) *domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.purchases {
		if p.ID == id {
			cp := p
			return &cp
		}
	}
	return nil
}

// Total is the sum of price x quantity over current lines.
func (s *CartService) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items)
}

// ItemCount is the sum of quantities over current lines.
func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// TotalSavings sums the implied second-hand discount over all historical
// purchases, treating each stored price as 70% of an original price. A
// presentation heuristic, not a tracked original price.
func (s *CartService) TotalSavings() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0.0
	for _, p := range s.purchases {
		for _, it := range p.Items {
			original := it.Price / 0.7
			sum += (original - it.Price) * float64(it.Quantity)
		}
	}
	return sum
}

func total(items []domain.CartItem) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

func dropLine(items []domain.CartItem, productID string) []domain.CartItem {
	kept := items[:0]
	for _, it := range items {
		if it.ID != productID {
			kept = append(kept, it)
		}
	}
	return kept
}

package service

import (
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// LoadFailedNotification is queued once when the product list cannot be
// loaded.
var LoadFailedNotification = domain.Notification{
	Title:       "Error",
	Description: "Failed to load products. Please try again.",
	Variant:     domain.VariantDestructive,
}

// Session is the single owner of one visitor's view state: the product list,
// the loading flag, the cart, the cart panel and pending notifications.
// All methods are safe for concurrent use.
type Session struct {
	id string

	mu            sync.Mutex
	products      []domain.Product
	loading       bool
	loadFailed    bool
	cart          *Cart
	showCart      bool
	notifications []domain.Notification
}

// Snapshot is a read-only copy of a session used for rendering.
type Snapshot struct {
	ID         string
	Loading    bool
	LoadFailed bool
	Products   []domain.Product
	Items      []domain.CartItem
	ShowCart   bool
	TotalPrice float64
	TotalItems int
}

func NewSession(id string) *Session {
	return &Session{
		id:      id,
		loading: true,
		cart:    NewCart(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// CompleteLoad records the outcome of the product load. It only takes effect
// once; the loading state is terminal.
func (s *Session) CompleteLoad(products []domain.Product, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loading {
		return
	}
	s.loading = false
	if err != nil {
		s.products = nil
		s.loadFailed = true
		s.notifications = append(s.notifications, LoadFailedNotification)
		return
	}
	s.products = products
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Products returns the loaded product list. It is never mutated after load,
// so the slice is shared.
func (s *Session) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products
}

// AddToCart adds the loaded product with the given id to the cart.
func (s *Session) AddToCart(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.findProduct(productID)
	if !ok {
		return ErrProductNotFound
	}
	s.notifications = append(s.notifications, s.cart.Add(p))
	return nil
}

// UpdateQuantity changes the quantity of a cart entry by delta. Reports
// whether the entry existed.
func (s *Session) UpdateQuantity(productID string, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantity(productID, delta)
}

func (s *Session) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, s.cart.Remove(productID))
}

// ToggleCart flips the cart panel and returns the new visibility.
func (s *Session) ToggleCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showCart = !s.showCart
	return s.showCart
}

func (s *Session) CartItems() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

func (s *Session) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

func (s *Session) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

// DrainNotifications returns and clears the pending notifications.
func (s *Session) DrainNotifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out
}

// PendingNotifications returns the queued notifications without clearing
// them.
func (s *Session) PendingNotifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		Loading:    s.loading,
		LoadFailed: s.loadFailed,
		Products:   s.products,
		Items:      s.cart.Items(),
		ShowCart:   s.showCart,
		TotalPrice: s.cart.TotalPrice(),
		TotalItems: s.cart.TotalItems(),
	}
}

func (s *Session) findProduct(id string) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

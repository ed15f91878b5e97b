package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedSession(products ...domain.Product) *Session {
	s := NewSession("s1")
	s.CompleteLoad(products, nil)
	return s
}

func TestSession_StartsLoading(t *testing.T) {
	s := NewSession("s1")

	assert.True(t, s.Loading())
	assert.Empty(t, s.Products())
	assert.Empty(t, s.PendingNotifications())
}

func TestSession_CompleteLoad_Success(t *testing.T) {
	s := loadedSession(pen())

	assert.False(t, s.Loading())
	assert.Equal(t, []domain.Product{pen()}, s.Products())
	assert.Empty(t, s.PendingNotifications())
}

func TestSession_CompleteLoad_Failure(t *testing.T) {
	s := NewSession("s1")

	s.CompleteLoad([]domain.Product{pen()}, errors.New("network down"))

	assert.False(t, s.Loading())
	assert.Empty(t, s.Products())
	assert.True(t, s.Snapshot().LoadFailed)
	assert.Equal(t, []domain.Notification{LoadFailedNotification}, s.PendingNotifications())
}

func TestSession_CompleteLoad_IsTerminal(t *testing.T) {
	s := loadedSession(pen())

	s.CompleteLoad(nil, errors.New("late failure"))

	assert.Equal(t, []domain.Product{pen()}, s.Products())
	assert.Empty(t, s.PendingNotifications())
}

func TestSession_AddToCart(t *testing.T) {
	s := loadedSession(pen())

	require.NoError(t, s.AddToCart("1"))
	require.NoError(t, s.AddToCart("1"))

	items := s.CartItems()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, s.TotalItems())
	assert.Equal(t, 20.0, s.TotalPrice())

	notes := s.DrainNotifications()
	require.Len(t, notes, 2)
	assert.Equal(t, "Added to cart!", notes[0].Title)
	assert.Empty(t, s.DrainNotifications())
}

func TestSession_AddToCart_UnknownProduct(t *testing.T) {
	s := loadedSession(pen())

	err := s.AddToCart("nope")

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, s.CartItems())
	assert.Empty(t, s.PendingNotifications())
}

func TestSession_UpdateQuantity(t *testing.T) {
	s := loadedSession(pen())
	require.NoError(t, s.AddToCart("1"))
	s.DrainNotifications()

	assert.True(t, s.UpdateQuantity("1", -1))
	assert.Empty(t, s.CartItems())
	assert.False(t, s.UpdateQuantity("1", 1), "entry is gone")
	assert.Empty(t, s.PendingNotifications(), "updates never notify")
}

func TestSession_RemoveFromCart(t *testing.T) {
	s := loadedSession(pen())
	require.NoError(t, s.AddToCart("1"))
	s.DrainNotifications()

	s.RemoveFromCart("1")

	assert.Empty(t, s.CartItems())
	notes := s.DrainNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Removed from cart", notes[0].Title)
}

func TestSession_ToggleCart(t *testing.T) {
	s := loadedSession()

	assert.True(t, s.ToggleCart())
	assert.True(t, s.Snapshot().ShowCart)
	assert.False(t, s.ToggleCart())
	assert.False(t, s.Snapshot().ShowCart)
}

func TestSession_Snapshot(t *testing.T) {
	ink := domain.Product{ID: "2", Name: "Ink", Price: 2.5}
	s := loadedSession(pen(), ink)
	require.NoError(t, s.AddToCart("1"))
	require.NoError(t, s.AddToCart("2"))
	require.NoError(t, s.AddToCart("2"))

	snap := s.Snapshot()

	assert.Equal(t, "s1", snap.ID)
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Products, 2)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 15.0, snap.TotalPrice)
	assert.Equal(t, 3, snap.TotalItems)
	assert.Len(t, s.PendingNotifications(), 3, "snapshot does not drain")
}

func TestSession_ConcurrentAdds(t *testing.T) {
	s := loadedSession(pen())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AddToCart("1"))
		}()
	}
	wg.Wait()

	items := s.CartItems()
	require.Len(t, items, 1)
	assert.Equal(t, 100, items[0].Quantity)
}

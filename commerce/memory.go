package commerce

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	cartTTL             = 48 * time.Hour
	cartCleanupInterval = 10 * time.Minute
)

// MemoryStore keeps item counts per cart session in process memory.
// Carts expire 48 hours after their last change.
type MemoryStore struct {
	mu    sync.Mutex
	carts *cache.Cache
	links Links
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(links Links) *MemoryStore {
	return &MemoryStore{
		carts: cache.New(cartTTL, cartCleanupInterval),
		links: links,
	}
}

// NewSession returns a fresh cart session id.
func (m *MemoryStore) NewSession() string {
	return uuid.NewString()
}

// CartCount returns the item count of the session's cart.
func (m *MemoryStore) CartCount(_ context.Context, s Session) (int, error) {
	if s.Key == "" {
		return 0, ErrNoCart
	}
	v, ok := m.carts.Get(s.Key)
	if !ok {
		return 0, ErrNoCart
	}
	return v.(int), nil
}

// Add puts quantity items into the cart, creating it when needed, and
// returns the new count.
func (m *MemoryStore) Add(_ context.Context, s Session, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	if s.Key == "" {
		return 0, ErrNoCart
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := quantity
	if v, ok := m.carts.Get(s.Key); ok {
		count += v.(int)
	}
	m.carts.Set(s.Key, count, cache.DefaultExpiration)
	return count, nil
}

// Clear empties the cart but keeps it alive.
func (m *MemoryStore) Clear(_ context.Context, s Session) {
	if s.Key == "" {
		return
	}
	m.carts.Set(s.Key, 0, cache.DefaultExpiration)
}

// Carts returns the number of live carts.
func (m *MemoryStore) Carts() int {
	return m.carts.ItemCount()
}

func (m *MemoryStore) Links() Links {
	return m.links
}

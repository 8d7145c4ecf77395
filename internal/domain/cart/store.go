package cart

import "sync"

// Store hands out one basket per user. Only the map itself is guarded; each
// basket has a single logical writer (the owning session), so the lines need
// no further synchronization.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// ForUser returns the user's basket, creating it on first use.
func (s *Store) ForUser(userID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		c = New()
		s.carts[userID] = c
	}
	return c
}

// Drop discards the user's basket entirely.
func (s *Store) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

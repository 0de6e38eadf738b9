// Package session keeps room tokens on the client side, one per room.
package session

import (
	"sync"
)

const keyPrefix = "room_token_"

// Key is the storage key for a room's token.
func Key(roomID string) string {
	return keyPrefix + roomID
}

// Store holds the bearer token of each joined room. Writes are visible to the next read.
// Version changes on every Save or Remove so derived views can drop cached state.
type Store interface {
	Save(roomID, token string) error
	Get(roomID string) (string, bool)
	Remove(roomID string) error
	Version() uint64
}

type MemoryStore struct {
	mu      sync.RWMutex
	tokens  map[string]string
	version uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Save(roomID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[Key(roomID)] = token
	s.version++
	return nil
}

func (s *MemoryStore) Get(roomID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[Key(roomID)]
	return token, ok
}

func (s *MemoryStore) Remove(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, Key(roomID))
	s.version++
	return nil
}

func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

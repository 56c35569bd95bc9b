package bridge

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore is a process-local store bounded to a fixed number of
// sessions; the least recently used session is evicted first.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

func NewMemoryStore(sessions int) (*MemoryStore, error) {
	cache, err := lru.New[string, []byte](sessions)
	if err != nil {
		return nil, fmt.Errorf("create memory bridge: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Put(_ context.Context, session string, payload []byte) error {
	if err := validateSession(session); err != nil {
		return err
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.cache.Add(session, cp)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, session string) ([]byte, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	b, ok := s.cache.Get(session)
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

// Len reports how many sessions are currently held.
func (s *MemoryStore) Len() int { return s.cache.Len() }

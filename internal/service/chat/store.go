package chat

import (
	"sync"

	"github.com/docchat/backend/internal/model/chat"
)

// Store keeps per-conversation turn history. The interface exists so the
// in-memory table can be swapped for a shared cache without touching the
// orchestrator.
type Store interface {
	// Exists reports whether the conversation id is known.
	Exists(id string) bool
	// Create registers an empty conversation. Concurrent calls for the same
	// id must result in exactly one history.
	Create(id string)
	// History returns a copy of the full retained history, oldest first.
	History(id string) []chat.Turn
	// AppendExchange appends a user/assistant pair atomically and evicts the
	// oldest turns beyond the retention ceiling.
	AppendExchange(id string, user, assistant chat.Turn)
}

// MemoryStore is the process-lifetime conversation table. Nothing is
// persisted; a restart loses all history.
type MemoryStore struct {
	mu        sync.RWMutex
	turns     map[string][]chat.Turn
	retention int
}

// NewMemoryStore creates a store that retains at most retention turns per
// conversation (FIFO eviction).
func NewMemoryStore(retention int) *MemoryStore {
	if retention <= 0 {
		retention = 20
	}
	return &MemoryStore{
		turns:     make(map[string][]chat.Turn),
		retention: retention,
	}
}

func (s *MemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.turns[id]
	return ok
}

func (s *MemoryStore) Create(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.turns[id]; !ok {
		s.turns[id] = make([]chat.Turn, 0, 8)
	}
}

func (s *MemoryStore) History(id string) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns, ok := s.turns[id]
	if !ok {
		return nil
	}
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied
}

func (s *MemoryStore) AppendExchange(id string, user, assistant chat.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[id], user, assistant)
	if excess := len(turns) - s.retention; excess > 0 {
		turns = turns[excess:]
	}
	s.turns[id] = turns
}

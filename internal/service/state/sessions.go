package state

import "sync"

// Sessions maps a chat surface key (telegram chat id, cli session) to the
// conversation it is currently answering.
type Sessions struct {
	mu     sync.RWMutex
	active map[string]string
	turns  *KeyedMutex
}

func NewSessions() *Sessions {
	return &Sessions{
		active: make(map[string]string),
		turns:  NewKeyedMutex(),
	}
}

// Lock serialises turns of one surface key, so the read of Active and the
// following Set or Reset happen without another message in between.
func (s *Sessions) Lock(key string) func() {
	return s.turns.Lock(key)
}

// Active returns the conversation id for key, or "" when a new one should start.
func (s *Sessions) Active(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[key]
}

func (s *Sessions) Set(key, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[key] = conversationID
}

// Reset forgets the active conversation; the next message starts a new one.
func (s *Sessions) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, key)
}

package sessions

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore keeps sessions in a mutex-guarded map. Used in development
// and tests; production runs the redis store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	return s
}

// expired entries are dropped lazily on access; StartJanitor sweeps the rest.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func (s *MemoryStore) live(sessionID string) *memoryEntry {
	e, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, sessionID)
		return nil
	}
	return e
}

func (s *MemoryStore) Create(_ context.Context, sessionID string, data Data, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = &memoryEntry{data: cloneData(data), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(sessionID)
	if e == nil {
		return nil, ErrNotFound
	}
	return cloneData(e.data), nil
}

func (s *MemoryStore) Update(_ context.Context, sessionID string, data Data, ttl time.Duration, preserveTTL bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(sessionID)
	if e == nil {
		return ErrNotFound
	}
	e.data = cloneData(data)
	if !preserveTTL {
		e.expiresAt = s.now().Add(ttl)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(sessionID) != nil, nil
}

func (s *MemoryStore) TTL(_ context.Context, sessionID string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(sessionID)
	if e == nil {
		return 0, ErrNotFound
	}
	return e.expiresAt.Sub(s.now()), nil
}

func (s *MemoryStore) Extend(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(sessionID)
	if e == nil {
		return ErrNotFound
	}
	e.expiresAt = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) VerifyCode(_ context.Context, sessionID, code string) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(sessionID)
	if e == nil {
		return nil, ErrNotFound
	}
	if verified(e.data) {
		return nil, ErrAlreadyVerified
	}
	if codeOf(e.data) != code {
		return nil, ErrCodeMismatch
	}
	e.data[fieldVerified] = true
	return cloneData(e.data), nil
}

func cloneData(data Data) Data {
	out := make(Data, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

package pendingstore

import (
	"context"
	"sync"
	"time"

	"pymepos-backend-go/internal/models"
)

// MemoryStore is the in-process implementation of Store, suitable for
// single-instance deployments. A mutex-guarded map keeps interleaved
// checkouts from clobbering each other's entries.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]models.PendingTransaction
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]models.PendingTransaction),
		now:     time.Now,
	}
}

// Put stores the intent keyed by sessionID, overwriting any prior entry.
func (s *MemoryStore) Put(_ context.Context, sessionID string, tx models.PendingTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = tx
	return nil
}

// TakeAndExpire removes and returns the entry for sessionID, sweeping every
// entry past the retention window on the way.
func (s *MemoryStore) TakeAndExpire(_ context.Context, sessionID string) (models.PendingTransaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-RetentionWindow)
	for key, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.entries, key)
		}
	}

	tx, ok := s.entries[sessionID]
	if ok {
		delete(s.entries, sessionID)
	}
	return tx, ok, nil
}

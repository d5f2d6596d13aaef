package pendingstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pymepos-backend-go/internal/models"
)

// FileStore persists the pending-transaction map as a single JSON file.
// Every read-modify-write cycle re-reads the latest on-disk state immediately
// before mutating it, so concurrent writers converge on last-writer-wins for
// the whole map without silently dropping unrelated sessions.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates a FileStore backed by the JSON file at path. The file
// is created on first write; a missing file reads as an empty map.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Put stores the intent keyed by sessionID, overwriting any prior entry.
func (s *FileStore) Put(_ context.Context, sessionID string, tx models.PendingTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[sessionID] = tx
	return s.save(entries)
}

// TakeAndExpire removes and returns the entry for sessionID, sweeping every
// entry past the retention window on the way. The file is rewritten only
// when something actually changed.
func (s *FileStore) TakeAndExpire(_ context.Context, sessionID string) (models.PendingTransaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return models.PendingTransaction{}, false, err
	}

	dirty := false
	cutoff := s.now().Add(-RetentionWindow)
	for key, entry := range entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(entries, key)
			dirty = true
		}
	}

	tx, ok := entries[sessionID]
	if ok {
		delete(entries, sessionID)
		dirty = true
	}

	if dirty {
		if err := s.save(entries); err != nil {
			return models.PendingTransaction{}, false, err
		}
	}
	return tx, ok, nil
}

func (s *FileStore) load() (map[string]models.PendingTransaction, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]models.PendingTransaction), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending-transaction file '%s': %w", s.path, err)
	}
	if len(data) == 0 {
		return make(map[string]models.PendingTransaction), nil
	}

	var entries map[string]models.PendingTransaction
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode pending-transaction file '%s': %w", s.path, err)
	}
	if entries == nil {
		entries = make(map[string]models.PendingTransaction)
	}
	return entries, nil
}

// save writes through a temp file and rename so a crash mid-write never
// leaves a truncated map behind.
func (s *FileStore) save(entries map[string]models.PendingTransaction) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pending transactions: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".pending-*")
	if err != nil {
		return fmt.Errorf("failed to create temp pending-transaction file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write pending-transaction file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close pending-transaction file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace pending-transaction file '%s': %w", s.path, err)
	}
	return nil
}

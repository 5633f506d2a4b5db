package ownership

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// filePermissions is the permission mode for the backing file.
const filePermissions = 0600

// Store is the durable map from operator identity to the driver keys that
// operator created. It gates edit and remove permissions: only the creator
// of a key may mutate it.
//
// Persistence is write-through: every mutation serializes the whole map and
// rewrites the backing JSON file. A persist failure is logged but never
// rolls back the in-memory mutation; the live process stays consistent and
// durability is best-effort.
//
// All public methods are thread-safe.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]*Entry
	logger  Logger
	now     func() time.Time
}

// Open loads the store from the given JSON file, creating an empty store
// if the file does not exist. A corrupt file is treated as empty and
// logged; the next mutation overwrites it.
func Open(path string, logger Logger) (*Store, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	s := &Store{
		path:    path,
		entries: make(map[string]*Entry),
		logger:  logger,
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("ownership file not found, starting empty", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ownership file: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		logger.Error("ownership file corrupt, starting empty", "path", path, "error", err)
		s.entries = make(map[string]*Entry)
		return s, nil
	}

	logger.Info("ownership store loaded", "path", path, "operators", len(s.entries))
	return s, nil
}

// Authenticate registers an operator on first successful login.
// Returns ErrAlreadyAuthenticated if the operator is already registered.
func (s *Store) Authenticate(operatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[operatorID]; ok {
		return ErrAlreadyAuthenticated
	}

	s.entries[operatorID] = &Entry{
		OperatorID:      operatorID,
		AuthenticatedAt: s.now().Format("02/01/2006 15:04:05"),
		OwnedKeys:       []string{},
	}
	s.persistLocked()
	return nil
}

// IsAuthenticated reports whether the operator has logged in.
func (s *Store) IsAuthenticated(operatorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[operatorID]
	return ok
}

// RecordOwnership registers that an operator created a key.
// Returns true if newly added, false if the key is already owned or the
// operator is unknown.
func (s *Store) RecordOwnership(operatorID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[operatorID]
	if !ok || entry.owns(key) {
		return false
	}

	entry.OwnedKeys = append(entry.OwnedKeys, key)
	s.persistLocked()
	return true
}

// ReleaseOwnership removes a key from an operator's owned set.
// Returns true if the key was present and removed.
func (s *Store) ReleaseOwnership(operatorID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[operatorID]
	if !ok {
		return false
	}

	for i, k := range entry.OwnedKeys {
		if k == key {
			entry.OwnedKeys = append(entry.OwnedKeys[:i], entry.OwnedKeys[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// CanEdit reports whether the operator created the key and may mutate it.
func (s *Store) CanEdit(operatorID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[operatorID]
	return ok && entry.owns(key)
}

// OperatorCount returns the number of authenticated operators.
// Used by the status API.
func (s *Store) OperatorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// persistLocked serializes the whole map and rewrites the backing file.
// Caller holds the lock. Failure is logged, not returned: the in-memory
// state is authoritative for the live process.
func (s *Store) persistLocked() {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		s.logger.Error("serializing ownership store", "error", err)
		return
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			s.logger.Error("creating ownership directory", "path", dir, "error", err)
			return
		}
	}

	if err := os.WriteFile(s.path, data, filePermissions); err != nil {
		s.logger.Error("persisting ownership store", "path", s.path, "error", err)
	}
}

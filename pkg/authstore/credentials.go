package authstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CredentialStore persists token pairs across process restarts, keyed by
// application namespace so two apps sharing a machine never read each
// other's sessions.
type CredentialStore interface {
	Save(namespace string, pair TokenPair) error
	Load(namespace string) (TokenPair, bool, error)
	Clear(namespace string) error
}

// MemoryCredentialStore keeps credentials in process memory only. Tests
// and short-lived tools use it.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	pairs map[string]TokenPair
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{pairs: make(map[string]TokenPair)}
}

func (m *MemoryCredentialStore) Save(namespace string, pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[namespace] = pair
	return nil
}

func (m *MemoryCredentialStore) Load(namespace string) (TokenPair, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair, ok := m.pairs[namespace]
	return pair, ok, nil
}

func (m *MemoryCredentialStore) Clear(namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pairs, namespace)
	return nil
}

// FileCredentialStore persists one JSON file per namespace under a base
// directory, mode 0600. Tokens are bearer credentials; the tight mode
// keeps other local users out.
type FileCredentialStore struct {
	dir string
}

// NewFileCredentialStore creates the store rooted at dir, creating the
// directory when missing.
func NewFileCredentialStore(dir string) (*FileCredentialStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}
	return &FileCredentialStore{dir: dir}, nil
}

func (f *FileCredentialStore) path(namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return filepath.Join(f.dir, namespace+".json")
}

func (f *FileCredentialStore) Save(namespace string, pair TokenPair) error {
	encoded, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(f.path(namespace), encoded, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

func (f *FileCredentialStore) Load(namespace string) (TokenPair, bool, error) {
	raw, err := os.ReadFile(f.path(namespace))
	if errors.Is(err, os.ErrNotExist) {
		return TokenPair{}, false, nil
	}
	if err != nil {
		return TokenPair{}, false, fmt.Errorf("failed to read credentials: %w", err)
	}
	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return TokenPair{}, false, fmt.Errorf("failed to decode credentials: %w", err)
	}
	return pair, true, nil
}

func (f *FileCredentialStore) Clear(namespace string) error {
	err := os.Remove(f.path(namespace))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

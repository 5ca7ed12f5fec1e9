package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// credentialsFileName is the JSON file used by the plain file backend.
const credentialsFileName = "credentials.json"

// fileBackend stores secrets as a flat JSON object in a 0600 file under the
// auth directory. It is the always-available fallback when the OS keyring
// cannot be used.
type fileBackend struct {
	mu   sync.Mutex
	path string
}

func newFileBackend(authDir string) *fileBackend {
	return &fileBackend{path: filepath.Join(authDir, credentialsFileName)}
}

// Get returns the stored value for key, or ErrNotFound.
func (b *fileBackend) Get(key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load()
	if err != nil {
		return "", err
	}
	value, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
func (b *fileBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return b.save(entries)
}

// Delete removes the value stored under key.
func (b *fileBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return b.save(entries)
}

func (b *fileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("keystore: read credentials file: %w", err)
	}
	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("keystore: parse credentials file: %w", err)
	}
	return entries, nil
}

func (b *fileBackend) save(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("keystore: create directory: %w", err)
	}
	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("keystore: create credentials file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err = json.NewEncoder(f).Encode(entries); err != nil {
		return fmt.Errorf("keystore: write credentials file: %w", err)
	}
	return nil
}

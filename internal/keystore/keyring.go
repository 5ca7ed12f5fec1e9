package keystore

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// service namespaces every entry this client writes into the OS keyring.
const keyringService = "com.tasknest.client"

// keyringBackend stores secrets in the operating system keyring.
type keyringBackend struct {
	service string
}

func newKeyringBackend() *keyringBackend {
	return &keyringBackend{service: keyringService}
}

// available probes the keyring by writing and removing a throwaway entry.
// Some hosts (headless servers, missing D-Bus session) have no usable keyring.
func (b *keyringBackend) available() bool {
	const probeKey = "availability_probe"
	if err := keyring.Set(b.service, probeKey, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(b.service, probeKey)
	return true
}

// Get returns the stored value for key, or ErrNotFound.
func (b *keyringBackend) Get(key string) (string, error) {
	value, err := keyring.Get(b.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
func (b *keyringBackend) Set(key, value string) error {
	return keyring.Set(b.service, key, value)
}

// Delete removes the value stored under key.
func (b *keyringBackend) Delete(key string) error {
	if err := keyring.Delete(b.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

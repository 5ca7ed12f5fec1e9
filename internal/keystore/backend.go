// Package keystore provides durable, process-independent storage for the
// credential material issued by the TaskNest backend: the access/id/refresh
// token bundle, the resolved user identity, and the active organization id.
//
// Storage goes through a small capability interface with two interchangeable
// backings: the OS keyring, and a plain JSON file for hosts where no keyring
// is available. Callers never observe which backing is in use.
package keystore

import "errors"

// ErrNotFound is returned by Backend.Get when no value is stored under a key.
var ErrNotFound = errors.New("keystore: entry not found")

// Backend abstracts a flat string key-value secret store.
type Backend interface {
	// Get returns the stored value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key, replacing any existing value.
	Set(key, value string) error
	// Delete removes the value stored under key. Deleting a missing key is not an error.
	Delete(key string) error
}

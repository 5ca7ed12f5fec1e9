package keystore

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tasknest/tasknest-cli/internal/config"
)

// Keys for the six persisted credential entries.
const (
	keyAccessToken    = "access_token"
	keyIDToken        = "id_token"
	keyRefreshToken   = "refresh_token"
	keyUserID         = "user_id"
	keyUserEmail      = "user_email"
	keyOrganizationID = "organization_id"
)

// allKeys enumerates every entry this store owns, for ClearAll.
var allKeys = []string{
	keyAccessToken,
	keyIDToken,
	keyRefreshToken,
	keyUserID,
	keyUserEmail,
	keyOrganizationID,
}

// Bundle is the token triple issued by the backend on successful
// authentication. The three tokens are always persisted and cleared together.
type Bundle struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// Store persists credential material through a Backend selected at
// construction time.
type Store struct {
	backend Backend
}

// NewStore wraps an explicit backend. Used directly by tests; applications
// should prefer Open.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open selects a backend from the configuration and returns a ready store.
// With credential-backend "auto" the OS keyring is probed first and the file
// backend is used when the probe fails.
func Open(cfg *config.Config) (*Store, error) {
	authDir, err := cfg.ResolveAuthDir()
	if err != nil {
		return nil, err
	}

	switch cfg.CredentialBackend {
	case config.BackendKeyring:
		return NewStore(newKeyringBackend()), nil
	case config.BackendFile:
		return NewStore(newFileBackend(authDir)), nil
	case config.BackendAuto, "":
		kr := newKeyringBackend()
		if kr.available() {
			log.WithField("backend", "keyring").Debug("credential store ready")
			return NewStore(kr), nil
		}
		log.WithField("backend", "file").Debug("OS keyring unavailable, using file credential store")
		return NewStore(newFileBackend(authDir)), nil
	default:
		return nil, fmt.Errorf("keystore: unknown credential backend %q", cfg.CredentialBackend)
	}
}

// set deletes any existing value before inserting the new one so a failed
// write never leaves a stale value behind.
func (s *Store) set(key, value string) error {
	if err := s.backend.Delete(key); err != nil {
		return fmt.Errorf("keystore: delete %s: %w", key, err)
	}
	if err := s.backend.Set(key, value); err != nil {
		return fmt.Errorf("keystore: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(key string) (string, bool) {
	value, err := s.backend.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithField("error", err).Warnf("keystore read failed for %s", key)
		}
		return "", false
	}
	return value, true
}

// SaveBundle persists the token triple. If any write fails the bundle is
// cleared so the store never holds a partial set of tokens.
func (s *Store) SaveBundle(bundle Bundle) error {
	writes := []struct {
		key   string
		value string
	}{
		{keyAccessToken, bundle.AccessToken},
		{keyIDToken, bundle.IDToken},
		{keyRefreshToken, bundle.RefreshToken},
	}
	for _, w := range writes {
		if err := s.set(w.key, w.value); err != nil {
			s.clearBundle()
			return err
		}
	}
	return nil
}

func (s *Store) clearBundle() {
	for _, key := range []string{keyAccessToken, keyIDToken, keyRefreshToken} {
		if err := s.backend.Delete(key); err != nil {
			log.WithField("error", err).Warnf("keystore delete failed for %s", key)
		}
	}
}

// AccessToken returns the stored access token, if present.
func (s *Store) AccessToken() (string, bool) { return s.get(keyAccessToken) }

// IDToken returns the stored id token, if present.
func (s *Store) IDToken() (string, bool) { return s.get(keyIDToken) }

// RefreshToken returns the stored refresh token, if present.
func (s *Store) RefreshToken() (string, bool) { return s.get(keyRefreshToken) }

// UserID returns the stored user id, if present.
func (s *Store) UserID() (string, bool) { return s.get(keyUserID) }

// UserEmail returns the stored user email, if present.
func (s *Store) UserEmail() (string, bool) { return s.get(keyUserEmail) }

// OrganizationID returns the stored active organization id. An empty string
// with ok=true means the backend reported no active organization; absence
// means tenant resolution has not completed yet.
func (s *Store) OrganizationID() (string, bool) { return s.get(keyOrganizationID) }

// SetUser persists the resolved user identity.
func (s *Store) SetUser(id, email string) error {
	if err := s.set(keyUserID, id); err != nil {
		return err
	}
	return s.set(keyUserEmail, email)
}

// SetOrganizationID persists the active organization id. Pass an empty string
// to record that the backend reported no active organization.
func (s *Store) SetOrganizationID(id string) error {
	return s.set(keyOrganizationID, id)
}

// HasAccessToken reports whether an access token is stored, without a network
// call. Used to gate session restoration at startup.
func (s *Store) HasAccessToken() bool {
	_, ok := s.get(keyAccessToken)
	return ok
}

// ClearAll deletes every entry unconditionally. Used on logout and on
// authorization failure.
func (s *Store) ClearAll() error {
	var firstErr error
	for _, key := range allKeys {
		if err := s.backend.Delete(key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("keystore: clear %s: %w", key, err)
		}
	}
	return firstErr
}

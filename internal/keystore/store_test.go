package keystore

import (
	"errors"
	"testing"
)

// flakyBackend fails writes for selected keys, for bundle-atomicity tests.
type flakyBackend struct {
	entries  map[string]string
	failSets map[string]bool
}

func newFlakyBackend(failSets ...string) *flakyBackend {
	fails := make(map[string]bool, len(failSets))
	for _, key := range failSets {
		fails[key] = true
	}
	return &flakyBackend{entries: make(map[string]string), failSets: fails}
}

func (b *flakyBackend) Get(key string) (string, error) {
	value, ok := b.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (b *flakyBackend) Set(key, value string) error {
	if b.failSets[key] {
		return errors.New("backend write refused")
	}
	b.entries[key] = value
	return nil
}

func (b *flakyBackend) Delete(key string) error {
	delete(b.entries, key)
	return nil
}

func TestFileBackendRoundTrip(t *testing.T) {
	t.Parallel()

	backend := newFileBackend(t.TempDir())

	if _, err := backend.Get("access_token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store = %v, want ErrNotFound", err)
	}
	if err := backend.Set("access_token", "tok-a"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := backend.Get("access_token")
	if err != nil || got != "tok-a" {
		t.Fatalf("Get() = %q, %v, want %q", got, err, "tok-a")
	}
	if err = backend.Set("access_token", "tok-b"); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}
	if got, _ = backend.Get("access_token"); got != "tok-b" {
		t.Fatalf("Get() after overwrite = %q, want %q", got, "tok-b")
	}
	if err = backend.Delete("access_token"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = backend.Get("access_token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
	// Deleting a missing key is not an error.
	if err = backend.Delete("access_token"); err != nil {
		t.Fatalf("Delete() of missing key = %v, want nil", err)
	}
}

func TestSaveBundlePersistsAllThreeTokens(t *testing.T) {
	t.Parallel()

	store := NewStore(newFileBackend(t.TempDir()))
	err := store.SaveBundle(Bundle{AccessToken: "a", IDToken: "i", RefreshToken: "r"})
	if err != nil {
		t.Fatalf("SaveBundle() failed: %v", err)
	}

	if !store.HasAccessToken() {
		t.Error("HasAccessToken() = false after SaveBundle")
	}
	if got, ok := store.IDToken(); !ok || got != "i" {
		t.Errorf("IDToken() = %q, %v", got, ok)
	}
	if got, ok := store.RefreshToken(); !ok || got != "r" {
		t.Errorf("RefreshToken() = %q, %v", got, ok)
	}
}

func TestSaveBundleNeverLeavesPartialTokens(t *testing.T) {
	t.Parallel()

	store := NewStore(newFlakyBackend("refresh_token"))
	err := store.SaveBundle(Bundle{AccessToken: "a", IDToken: "i", RefreshToken: "r"})
	if err == nil {
		t.Fatal("SaveBundle() succeeded, want error")
	}

	if store.HasAccessToken() {
		t.Error("access token still present after failed bundle write")
	}
	if _, ok := store.IDToken(); ok {
		t.Error("id token still present after failed bundle write")
	}
}

func TestClearAllRemovesEveryEntry(t *testing.T) {
	t.Parallel()

	store := NewStore(newFileBackend(t.TempDir()))
	if err := store.SaveBundle(Bundle{AccessToken: "a", IDToken: "i", RefreshToken: "r"}); err != nil {
		t.Fatalf("SaveBundle() failed: %v", err)
	}
	if err := store.SetUser("u-1", "dev@example.com"); err != nil {
		t.Fatalf("SetUser() failed: %v", err)
	}
	if err := store.SetOrganizationID("42"); err != nil {
		t.Fatalf("SetOrganizationID() failed: %v", err)
	}

	if err := store.ClearAll(); err != nil {
		t.Fatalf("ClearAll() failed: %v", err)
	}

	if store.HasAccessToken() {
		t.Error("access token survived ClearAll")
	}
	for name, read := range map[string]func() (string, bool){
		"id_token":        store.IDToken,
		"refresh_token":   store.RefreshToken,
		"user_id":         store.UserID,
		"user_email":      store.UserEmail,
		"organization_id": store.OrganizationID,
	} {
		if _, ok := read(); ok {
			t.Errorf("%s survived ClearAll", name)
		}
	}
}

func TestOrganizationIDEmptyMarker(t *testing.T) {
	t.Parallel()

	store := NewStore(newFileBackend(t.TempDir()))

	// Absent: tenant resolution has not run yet.
	if _, ok := store.OrganizationID(); ok {
		t.Fatal("OrganizationID() present on fresh store")
	}

	// Empty marker: resolution ran and found no active organization.
	if err := store.SetOrganizationID(""); err != nil {
		t.Fatalf("SetOrganizationID() failed: %v", err)
	}
	got, ok := store.OrganizationID()
	if !ok || got != "" {
		t.Fatalf("OrganizationID() = %q, %v, want empty marker present", got, ok)
	}
}

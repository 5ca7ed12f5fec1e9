package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/tasknest/tasknest-cli/internal/config"
)

type fakeCreds struct {
	access  string
	idToken string
	org     string
	hasOrg  bool
	cleared atomic.Int32
}

func (f *fakeCreds) AccessToken() (string, bool) { return f.access, f.access != "" }
func (f *fakeCreds) IDToken() (string, bool)     { return f.idToken, f.idToken != "" }
func (f *fakeCreds) OrganizationID() (string, bool) {
	return f.org, f.hasOrg
}
func (f *fakeCreds) ClearAll() error {
	f.cleared.Add(1)
	f.access = ""
	f.idToken = ""
	f.org = ""
	f.hasOrg = false
	return nil
}

func newTestClient(t *testing.T, handler http.Handler, creds CredentialSource) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Environment: "test",
		Endpoints:   map[string]string{"test": server.URL},
	}
	client, err := New(cfg, creds)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return client, server
}

func TestRequiresAuthWithoutTokenFailsBeforeNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), &fakeCreds{})

	_, err := client.Get(context.Background(), "/projects", nil, true)
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no network I/O, transport saw %d calls", got)
	}
}

func TestUnauthorizedResponseClearsCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		requiresAuth bool
		wantCleared  int32
	}{
		{"authenticated call clears store", true, 1},
		{"unauthenticated call leaves store alone", false, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			creds := &fakeCreds{access: "tok-abc"}
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}), creds)

			_, err := client.Get(context.Background(), "/auth/status", nil, tt.requiresAuth)
			if !IsUnauthorized(err) {
				t.Fatalf("expected unauthorized error, got %v", err)
			}
			if got := creds.cleared.Load(); got != tt.wantCleared {
				t.Fatalf("ClearAll calls = %d, want %d", got, tt.wantCleared)
			}
		})
	}
}

func TestAuthHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		creds      *fakeCreds
		wantOrg    string
		wantOrgSet bool
	}{
		{"positive organization id attached", &fakeCreds{access: "a", idToken: "i", org: "42", hasOrg: true}, "42", true},
		{"zero organization id skipped", &fakeCreds{access: "a", org: "0", hasOrg: true}, "", false},
		{"empty marker skipped", &fakeCreds{access: "a", org: "", hasOrg: true}, "", false},
		{"non-numeric organization id skipped", &fakeCreds{access: "a", org: "acme", hasOrg: true}, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var gotAuth, gotID, gotOrg string
			var orgSet bool
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotID = r.Header.Get("X-ID-Token")
				gotOrg = r.Header.Get("X-Organization-Id")
				_, orgSet = r.Header["X-Organization-Id"]
				_, _ = w.Write([]byte(`{}`))
			}), tt.creds)

			if _, err := client.Get(context.Background(), "/tasks", nil, true); err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if want := "Bearer " + tt.creds.access; gotAuth != want {
				t.Errorf("Authorization = %q, want %q", gotAuth, want)
			}
			if tt.creds.idToken != "" && gotID != tt.creds.idToken {
				t.Errorf("X-ID-Token = %q, want %q", gotID, tt.creds.idToken)
			}
			if orgSet != tt.wantOrgSet || gotOrg != tt.wantOrg {
				t.Errorf("X-Organization-Id = %q (set=%v), want %q (set=%v)", gotOrg, orgSet, tt.wantOrg, tt.wantOrgSet)
			}
		})
	}
}

func TestServerErrorMessageExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    string
	}{
		{"message field", http.StatusUnprocessableEntity, `{"message":"name is required"}`, "name is required"},
		{"error field fallback", http.StatusBadRequest, `{"error":"bad input"}`, "bad input"},
		{"undecodable body", http.StatusInternalServerError, `<html>oops</html>`, "request failed with status 500"},
		{"empty body", http.StatusServiceUnavailable, ``, "request failed with status 503"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}), &fakeCreds{access: "tok"})

			_, err := client.Get(context.Background(), "/projects", nil, true)
			apiErr, ok := AsError(err)
			if !ok || apiErr.Kind != KindServer {
				t.Fatalf("expected server error, got %v", err)
			}
			if apiErr.Message != tt.want {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.want)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
		})
	}
}

func TestParamSerialization(t *testing.T) {
	t.Parallel()

	t.Run("read call serializes params as query string", func(t *testing.T) {
		t.Parallel()
		var gotQuery string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("project_id")
			_, _ = w.Write([]byte(`{}`))
		}), &fakeCreds{access: "tok"})

		if _, err := client.Call(context.Background(), http.MethodGet, "/tasks", map[string]string{"project_id": "p-1"}, true); err != nil {
			t.Fatalf("Call() failed: %v", err)
		}
		if gotQuery != "p-1" {
			t.Errorf("query project_id = %q, want %q", gotQuery, "p-1")
		}
	})

	t.Run("write call serializes params as JSON body", func(t *testing.T) {
		t.Parallel()
		var gotBody []byte
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = readAll(r)
			_, _ = w.Write([]byte(`{}`))
		}), &fakeCreds{access: "tok"})

		if _, err := client.Call(context.Background(), http.MethodPost, "/tasks", map[string]string{"title": "ship it"}, true); err != nil {
			t.Fatalf("Call() failed: %v", err)
		}
		if string(gotBody) != `{"title":"ship it"}` {
			t.Errorf("body = %s, want %s", gotBody, `{"title":"ship it"}`)
		}
	})
}

func TestCancelledContextSurfacesCancelledKind(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}), &fakeCreds{access: "tok"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Get(ctx, "/projects", nil, true)
	if !IsCancelled(err) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
}

func readAll(r *http.Request) ([]byte, error) {
	defer func() { _ = r.Body.Close() }()
	return io.ReadAll(r.Body)
}

package api

import (
	"encoding/json"
	"testing"
)

type decodeFixture struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserEmail    string `json:"user_email"`
}

func TestDecodeSnakeCaseFields(t *testing.T) {
	t.Parallel()

	// Round-trip: encode a fixture in snake_case, decode, assert field values.
	raw, err := json.Marshal(map[string]string{
		"access_token":  "tok-a",
		"refresh_token": "tok-r",
		"user_email":    "dev@example.com",
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	got, err := decode[decodeFixture](raw)
	if err != nil {
		t.Fatalf("decode() failed: %v", err)
	}
	if got.AccessToken != "tok-a" || got.RefreshToken != "tok-r" || got.UserEmail != "dev@example.com" {
		t.Errorf("decode() = %+v, want snake_case fields mapped", got)
	}
}

func TestDecodeFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantKind Kind
	}{
		{"empty body", "", KindEmptyBody},
		{"whitespace body", "  \n", KindEmptyBody},
		{"malformed json", `{"access_token":`, KindDecode},
		{"wrong shape", `[1,2,3]`, KindDecode},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := decode[decodeFixture]([]byte(tt.body))
			apiErr, ok := AsError(err)
			if !ok || apiErr.Kind != tt.wantKind {
				t.Fatalf("decode(%q) error = %v, want kind %s", tt.body, err, tt.wantKind)
			}
			if tt.wantKind == KindDecode && apiErr.RawBody != tt.body {
				t.Errorf("RawBody = %q, want original body for diagnosis", apiErr.RawBody)
			}
		})
	}
}

func TestDecodeEnvelope(t *testing.T) {
	t.Parallel()

	t.Run("success envelope unwraps data", func(t *testing.T) {
		t.Parallel()
		got, err := decodeEnvelope[decodeFixture]([]byte(`{"success":true,"data":{"access_token":"tok"}}`))
		if err != nil {
			t.Fatalf("decodeEnvelope() failed: %v", err)
		}
		if got.AccessToken != "tok" {
			t.Errorf("AccessToken = %q, want %q", got.AccessToken, "tok")
		}
	})

	t.Run("failure envelope surfaces message", func(t *testing.T) {
		t.Parallel()
		_, err := decodeEnvelope[decodeFixture]([]byte(`{"success":false,"message":"quota exceeded"}`))
		apiErr, ok := AsError(err)
		if !ok || apiErr.Kind != KindServer {
			t.Fatalf("expected server error, got %v", err)
		}
		if apiErr.Message != "quota exceeded" {
			t.Errorf("message = %q, want %q", apiErr.Message, "quota exceeded")
		}
	})

	t.Run("plain body decodes without envelope", func(t *testing.T) {
		t.Parallel()
		got, err := decodeEnvelope[decodeFixture]([]byte(`{"access_token":"tok"}`))
		if err != nil {
			t.Fatalf("decodeEnvelope() failed: %v", err)
		}
		if got.AccessToken != "tok" {
			t.Errorf("AccessToken = %q, want %q", got.AccessToken, "tok")
		}
	})

	t.Run("success envelope without data", func(t *testing.T) {
		t.Parallel()
		_, err := decodeEnvelope[decodeFixture]([]byte(`{"success":true}`))
		if !IsKind(err, KindEmptyBody) {
			t.Fatalf("expected empty body error, got %v", err)
		}
	})
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/logging"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/net/publicsuffix"
)

// Request headers attached by the client.
const (
	headerAuthorization  = "Authorization"
	headerIDToken        = "X-ID-Token"
	headerOrganizationID = "X-Organization-Id"
	headerRequestID      = "X-Request-Id"
	headerIdempotencyKey = "X-Idempotency-Key"
)

// CredentialSource exposes the credential material the client attaches to
// authenticated requests, plus the clear-all side effect applied on 401.
// *keystore.Store satisfies it; tests substitute doubles.
type CredentialSource interface {
	// AccessToken returns the stored access token, if present.
	AccessToken() (string, bool)
	// IDToken returns the stored id token, if present.
	IDToken() (string, bool)
	// OrganizationID returns the stored active organization id, if present.
	OrganizationID() (string, bool)
	// ClearAll removes every stored credential entry.
	ClearAll() error
}

// Client executes JSON requests against the TaskNest backend. It attaches
// stored credentials and tenant context, enforces the fixed timeouts, and
// classifies every failure into the Kind taxonomy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
}

// New builds a request client from the resolved configuration. The HTTP
// client carries a shared cookie jar so session cookies set by the backend
// are forwarded on subsequent calls.
func New(cfg *config.Config, creds CredentialSource) (*Client, error) {
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("api: create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.RequestTimeout()

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   cfg.ResourceTimeout(),
			Transport: transport,
		},
		creds: creds,
	}, nil
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call executes a request against path. For read-style methods (GET, DELETE)
// params are serialized as the query string; for write-style methods they
// become a flat JSON body. Typed callers should prefer the JSON helpers and
// pass structured bodies through Post/Put.
func (c *Client) Call(ctx context.Context, method, path string, params map[string]string, requiresAuth bool) ([]byte, error) {
	switch method {
	case http.MethodGet, http.MethodDelete:
		return c.do(ctx, method, path, params, nil, requiresAuth)
	default:
		body, err := encodeParams(params)
		if err != nil {
			return nil, err
		}
		return c.do(ctx, method, path, nil, body, requiresAuth)
	}
}

// Get executes a read-style call with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, requiresAuth bool) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil, requiresAuth)
}

// Post executes a write-style call with a typed JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, requiresAuth bool) ([]byte, error) {
	return c.doTyped(ctx, http.MethodPost, path, body, requiresAuth)
}

// Put executes a write-style call with a typed JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, requiresAuth bool) ([]byte, error) {
	return c.doTyped(ctx, http.MethodPut, path, body, requiresAuth)
}

// Delete executes a delete call with optional query parameters.
func (c *Client) Delete(ctx context.Context, path string, params map[string]string, requiresAuth bool) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, params, nil, requiresAuth)
}

func (c *Client) doTyped(ctx context.Context, method, path string, body any, requiresAuth bool) ([]byte, error) {
	var encoded []byte
	if body != nil {
		var err error
		if encoded, err = json.Marshal(body); err != nil {
			return nil, &Error{Kind: KindUnknown, Message: "failed to encode request body", Cause: err}
		}
	}
	return c.do(ctx, method, path, nil, encoded, requiresAuth)
}

// encodeParams serializes a flat parameter map into a JSON object body.
// This is the only place an untyped parameter map crosses the wire.
func encodeParams(params map[string]string) ([]byte, error) {
	if len(params) == 0 {
		return nil, nil
	}
	body := "{}"
	var err error
	for key, value := range params {
		if body, err = sjson.Set(body, key, value); err != nil {
			return nil, &Error{Kind: KindUnknown, Message: "failed to encode request parameters", Cause: err}
		}
	}
	return []byte(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body []byte, requiresAuth bool) ([]byte, error) {
	target, err := c.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	// Authenticated calls fail before any network I/O when no token is stored.
	var accessToken string
	if requiresAuth {
		token, ok := c.creds.AccessToken()
		if !ok || strings.TrimSpace(token) == "" {
			return nil, NewError(KindUnauthorized, "no access token in credential store")
		}
		accessToken = token
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &Error{Kind: KindInvalidTarget, Message: fmt.Sprintf("failed to build request for %s", path), Cause: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestID := logging.GetRequestID(ctx)
	if requestID == "" {
		requestID = logging.GenerateRequestID()
	}
	req.Header.Set(headerRequestID, requestID)
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set(headerIdempotencyKey, uuid.NewString())
	}

	if requiresAuth {
		req.Header.Set(headerAuthorization, "Bearer "+accessToken)
		if idToken, ok := c.creds.IDToken(); ok && idToken != "" {
			req.Header.Set(headerIDToken, idToken)
		}
		if orgID, ok := c.creds.OrganizationID(); ok {
			// Only a positive integer id scopes the request to a tenant.
			if id, errConv := strconv.Atoi(orgID); errConv == nil && id > 0 {
				req.Header.Set(headerOrganizationID, orgID)
			}
		}
	}

	log.WithFields(log.Fields{"request_id": requestID, "method": method, "path": path}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			return nil, &Error{Kind: KindCancelled, Message: "request cancelled", Cause: err}
		}
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("request to %s failed", path), Cause: err}
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("failed to close response body: %v", errClose)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "failed to read response body", Cause: err}
	}

	log.WithFields(log.Fields{"request_id": requestID, "method": method, "path": path, "status": resp.StatusCode}).Debug("api response")

	if resp.StatusCode == http.StatusUnauthorized {
		// Authorization was denied on a call that required a session: the
		// stored credentials are no longer valid, clear them before surfacing.
		if requiresAuth {
			if errClear := c.creds.ClearAll(); errClear != nil {
				log.Errorf("failed to clear credentials after 401: %v", errClear)
			}
		}
		return nil, &Error{Kind: KindUnauthorized, Message: "authorization denied", StatusCode: resp.StatusCode, RawBody: string(data)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{
			Kind:       KindServer,
			Message:    serverErrorMessage(data, resp.StatusCode),
			StatusCode: resp.StatusCode,
			RawBody:    string(data),
		}
	}

	return data, nil
}

func (c *Client) buildURL(path string, query map[string]string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", &Error{Kind: KindInvalidTarget, Message: fmt.Sprintf("invalid request target %s", path), Cause: err}
	}
	if len(query) > 0 {
		values := target.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		target.RawQuery = values.Encode()
	}
	return target.String(), nil
}

// serverErrorMessage extracts the first available human-readable message from
// a structured error body {error, message, code, details}, falling back to a
// generic message when the body is absent or undecodable.
func serverErrorMessage(body []byte, statusCode int) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		for _, field := range []string{"message", "error", "details"} {
			if result := gjson.GetBytes(body, field); result.Exists() && result.Type == gjson.String && result.Str != "" {
				return result.Str
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", statusCode)
}

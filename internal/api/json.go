package api

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// JSON executes a call and decodes the response body into T. Wire field names
// are snake_case; the model structs map them to Go names through their json
// tags, a fixed convention applied to every response.
func JSON[T any](ctx context.Context, c *Client, method, path string, params map[string]string, requiresAuth bool) (*T, error) {
	data, err := c.Call(ctx, method, path, params, requiresAuth)
	if err != nil {
		return nil, err
	}
	return decode[T](data)
}

// JSONBody executes a write-style call with a typed request body and decodes
// the response into T.
func JSONBody[T any](ctx context.Context, c *Client, method, path string, body any, requiresAuth bool) (*T, error) {
	data, err := c.doTyped(ctx, method, path, body, requiresAuth)
	if err != nil {
		return nil, err
	}
	return decode[T](data)
}

// Enveloped executes a call against an endpoint that wraps its payload in
// {success, data, message} and decodes the data field into T. A response with
// success=false surfaces as a server error carrying the envelope message.
func Enveloped[T any](ctx context.Context, c *Client, method, path string, params map[string]string, requiresAuth bool) (*T, error) {
	data, err := c.Call(ctx, method, path, params, requiresAuth)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope[T](data)
}

// EnvelopedBody is Enveloped with a typed request body.
func EnvelopedBody[T any](ctx context.Context, c *Client, method, path string, body any, requiresAuth bool) (*T, error) {
	data, err := c.doTyped(ctx, method, path, body, requiresAuth)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope[T](data)
}

func decode[T any](data []byte) (*T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, NewError(KindEmptyBody, "response body is empty")
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, &Error{
			Kind:    KindDecode,
			Message: "failed to decode response",
			RawBody: string(data),
			Cause:   err,
		}
	}
	return &value, nil
}

func decodeEnvelope[T any](data []byte) (*T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, NewError(KindEmptyBody, "response body is empty")
	}

	success := gjson.GetBytes(data, "success")
	if !success.Exists() {
		// Endpoint responded without the envelope; decode the body directly.
		return decode[T](data)
	}
	if !success.Bool() {
		message := gjson.GetBytes(data, "message").Str
		if message == "" {
			message = "request was not successful"
		}
		return nil, &Error{Kind: KindServer, Message: message, RawBody: string(data)}
	}

	payload := gjson.GetBytes(data, "data")
	if !payload.Exists() {
		return nil, NewError(KindEmptyBody, "response envelope has no data")
	}
	return decode[T]([]byte(payload.Raw))
}

// Package auth verifies bearer credentials against the external identity
// service. The verified identity is the only one ever trusted: user ids
// asserted in request bodies are never read.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inkwell/backend/internal/gateway"
)

type Client struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify exchanges a bearer token for the caller's user id. Any failure,
// including an absent id in the response, is an authentication failure.
func (c *Client) Verify(ctx context.Context, token string) (string, error) {
	if c.baseURL == "" || c.anonKey == "" {
		return "", fmt.Errorf("%w: identity service URL or anon key missing", gateway.ErrMisconfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: identity service unreachable: %v", gateway.ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: identity service returned %d", gateway.ErrUnauthenticated, resp.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("%w: malformed identity response", gateway.ErrUnauthenticated)
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: identity response carries no user id", gateway.ErrUnauthenticated)
	}

	return user.ID, nil
}

// BearerFromRequest extracts the bearer token from the Authorization header.
func BearerFromRequest(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", gateway.ErrUnauthenticated)
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("%w: authorization header is not a bearer credential", gateway.ErrUnauthenticated)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", fmt.Errorf("%w: empty bearer credential", gateway.ErrUnauthenticated)
	}
	return token, nil
}

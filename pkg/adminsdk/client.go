// Package adminsdk is a small Go client for the PeakForm admin API. It is
// used by the end-to-end test suite and can be embedded in other services.
package adminsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded into the standard error envelope.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	Fields      map[string]string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s (http %d)", e.Code, e.Description, e.StatusCode)
	}
	return fmt.Sprintf("%s (http %d)", e.Code, e.StatusCode)
}

// Client talks to the admin API. Unauthenticated operations live on Client;
// Login returns a Session for everything behind authentication.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) do(ctx context.Context, method, path, token string, body, target any, expectedStatus int) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		var envelope ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Code: "unexpected_response"}
		}
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        envelope.Error,
			Description: envelope.ErrorDescription,
			Fields:      envelope.Fields,
		}
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login authenticates and returns a Session holding the token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var tokens TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", req, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &Session{client: c, tokens: tokens}, nil
}

// Register creates an account from an invitation token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/v1/auth/register", "", req, &user, http.StatusCreated)
	return user, err
}

// GetInvite looks up an invitation by its raw token.
func (c *Client) GetInvite(ctx context.Context, token string) (Invitation, error) {
	var inv Invitation
	err := c.do(ctx, http.MethodGet, "/v1/invites/"+token, "", nil, &inv, http.StatusOK)
	return inv, err
}

// Livez reports process liveness.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var health HealthResponse
	err := c.do(ctx, http.MethodGet, "/livez", "", nil, &health, http.StatusOK)
	return health, err
}

// Readyz reports readiness, including database connectivity.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var health HealthResponse
	err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &health, http.StatusOK)
	return health, err
}

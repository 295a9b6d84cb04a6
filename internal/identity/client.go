package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/infra/config"
)

// BackendError carries a backend rejection. Error returns the backend's
// message verbatim so login failures surface to the operator unmodified.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Client implements port.IdentityProvider over the backend's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a timeout-bounded backend client.
func NewClient(cfg config.BackendSettings) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials with the backend.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	var payload credentialPayload
	err := c.do(ctx, http.MethodPost, "/backend/v1/auth/login", "", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return domain.Credential{}, err
	}
	return payload.toDomain(), nil
}

// Verify asks the backend to confirm a stored token.
func (c *Client) Verify(ctx context.Context, token string) (domain.User, error) {
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, "/backend/v1/auth/verify", token, nil, &payload); err != nil {
		return domain.User{}, err
	}
	return payload.toDomain(), nil
}

// StartImpersonation asks the backend to mint a target credential.
func (c *Client) StartImpersonation(ctx context.Context, token, targetUserID string) (domain.Credential, error) {
	var payload credentialPayload
	err := c.do(ctx, http.MethodPost, "/backend/v1/impersonation/start", token, impersonateRequest{TargetUserID: targetUserID}, &payload)
	if err != nil {
		return domain.Credential{}, err
	}
	return payload.toDomain(), nil
}

// EndImpersonation asks the backend to re-mint the original credential.
func (c *Client) EndImpersonation(ctx context.Context, token string) (domain.Credential, error) {
	var payload credentialPayload
	err := c.do(ctx, http.MethodPost, "/backend/v1/impersonation/end", token, nil, &payload)
	if err != nil {
		return domain.Credential{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var failure errorPayload
		if decodeErr := json.NewDecoder(resp.Body).Decode(&failure); decodeErr != nil {
			failure.Error = ""
		}
		return &BackendError{StatusCode: resp.StatusCode, Message: failure.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ port.IdentityProvider = (*Client)(nil)

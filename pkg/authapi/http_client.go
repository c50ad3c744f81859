// Package authapi issues and verifies one-time codes through a remote auth
// service over REST.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-admin-console/components/otp"
)

// HTTPConfig configures the HTTP issuer.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPIssuer implements otp.Issuer against an auth service exposing
// POST /otp/issue and POST /otp/verify.
type HTTPIssuer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ otp.Issuer = (*HTTPIssuer)(nil)

// NewHTTPIssuer builds an issuer for the service at cfg.BaseURL.
func NewHTTPIssuer(cfg HTTPConfig) (*HTTPIssuer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("authapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPIssuer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Issue asks the service to send a fresh code to email.
func (c *HTTPIssuer) Issue(ctx context.Context, email string) error {
	return c.do(ctx, "/otp/issue", issueRequest{Email: email})
}

// Verify checks code for email. A rejected code maps to otp.ErrInvalidCode
// and an unknown address to otp.ErrNoCodeIssued.
func (c *HTTPIssuer) Verify(ctx context.Context, email, code string) error {
	return c.do(ctx, "/otp/verify", verifyRequest{Email: email, Code: code})
}

func (c *HTTPIssuer) do(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("authapi: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("authapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("authapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		return nil
	}

	var remote errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&remote)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return otp.ErrNoCodeIssued
	case resp.StatusCode == http.StatusUnprocessableEntity, remote.Code == "invalid_code":
		return otp.ErrInvalidCode
	}
	return fmt.Errorf("authapi: remote error %d: %s", resp.StatusCode, remote.Message)
}

type issueRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

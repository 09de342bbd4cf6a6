package authlookup

// Package authlookup implements ports.AuthorizationLookup over HTTP, for
// deployments where the allow-list lives behind a separate internal service.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domainauth "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// HTTPClient calls the check-user endpoint of the allow-list service.
//
// Only a definitive response decides authorization: a 200 with a decision
// body. Transport failures, timeouts, and unexpected statuses return errors
// and say nothing about whether the user is authorized.
type HTTPClient struct {
	url           string
	serviceSecret string
	client        *http.Client
}

// HTTPClientOptions holds dependencies for NewHTTPClient.
type HTTPClientOptions struct {
	// URL is the full check-user endpoint URL.
	URL string
	// ServiceSecret is sent as X-Service-Secret on every request.
	ServiceSecret string
	// Timeout bounds each call. Defaults to 10s.
	Timeout time.Duration
	// Client is optional; a default client with Timeout is built when nil.
	Client *http.Client
}

// NewHTTPClient creates an HTTP-backed authorization lookup.
func NewHTTPClient(opts HTTPClientOptions) (*HTTPClient, error) {
	if opts.URL == "" {
		return nil, errors.New("lookup URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		url:           opts.URL,
		serviceSecret: opts.ServiceSecret,
		client:        client,
	}, nil
}

type checkUserRequest struct {
	Email string `json:"email"`
}

// CheckUser asks the allow-list service for a decision about email.
func (c *HTTPClient) CheckUser(ctx context.Context, email string) (domainauth.Decision, error) {
	body, err := json.Marshal(checkUserRequest{Email: email})
	if err != nil {
		return domainauth.Decision{}, fmt.Errorf("marshal check-user request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domainauth.Decision{}, fmt.Errorf("build check-user request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceSecret != "" {
		req.Header.Set("X-Service-Secret", c.serviceSecret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domainauth.Decision{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "check-user call")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return domainauth.Decision{}, apperrors.Unavailable(
			fmt.Sprintf("check-user call: unexpected status %d", resp.StatusCode))
	}

	var decision domainauth.Decision
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decision); err != nil {
		return domainauth.Decision{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode check-user response")
	}
	return decision, nil
}

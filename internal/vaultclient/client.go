// Package vaultclient talks to the vault server's JSON API. It is the
// only way vaultctl reaches the journal, billing and chat.
package vaultclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/vault/internal/chat"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

// APIError is a non-2xx answer. Message carries the server's {error} text
// when there was one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server answered %d %s", e.Status, http.StatusText(e.Status))
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// New builds a client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        4,
			IdleConnTimeout:     90 * time.Second,
		},
	}, log)
}

// NewWithHTTPClient uses hc as is. Tests pass httptest's client.
func NewWithHTTPClient(baseURL string, hc *http.Client, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		log:     log,
	}
}

type successResponse struct {
	Success bool `json:"success"`
}

// List fetches every journal entry, newest first.
func (c *Client) List(ctx context.Context) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	if err := c.do(ctx, http.MethodGet, "/api/journal", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Append stores one entry.
func (c *Client) Append(ctx context.Context, e domain.JournalEntry) error {
	var out successResponse
	return c.do(ctx, http.MethodPost, "/api/journal", e, &out)
}

// Clear erases the whole journal.
func (c *Client) Clear(ctx context.Context) error {
	var out successResponse
	return c.do(ctx, http.MethodDelete, "/api/journal", nil, &out)
}

type checkoutRequest struct {
	PriceID   string `json:"priceId,omitempty"`
	Email     string `json:"email"`
	PersonaID string `json:"personaId"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// CreateCheckout returns the hosted payment page for itemID.
func (c *Client) CreateCheckout(ctx context.Context, itemID, email string) (string, error) {
	var out checkoutResponse
	err := c.do(ctx, http.MethodPost, "/api/create-checkout-session",
		checkoutRequest{Email: email, PersonaID: itemID}, &out)
	if err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("checkout answered without a payment URL")
	}
	return out.URL, nil
}

// Reply sends the transcript for the next model turn.
func (c *Client) Reply(ctx context.Context, req chat.Request) (chat.Reply, error) {
	var out chat.Reply
	if err := c.do(ctx, http.MethodPost, "/api/chat", req, &out); err != nil {
		return chat.Reply{}, err
	}
	return out, nil
}

// Health reads the server's self report.
func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var out domain.Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

// Personas fetches the catalog the server prompts with.
func (c *Client) Personas(ctx context.Context) ([]domain.Persona, error) {
	var out []domain.Persona
	if err := c.do(ctx, http.MethodGet, "/api/personas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.log.Debug("api call",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}

// Package vault implements the client side of passkeep: talking to the API,
// deriving the vault key and sealing secrets before they leave the machine.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/passkeep/passkeep/internal/models"
)

// ErrServer wraps a non-OK API answer.
var ErrServer = errors.New("vault client: server error")

// Client is an authenticated API client. The session cookie lives in the
// underlying jar; the vault key is derived locally and never sent anywhere.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient builds a Client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		http:    &http.Client{Jar: jar},
		baseURL: baseURL,
	}, nil
}

// RecordInput carries the writable fields of a record. Secret is the sealed
// blob; the plaintext never appears in a request body.
type RecordInput struct {
	Title    string              `json:"title"`
	Username string              `json:"username"`
	URL      string              `json:"url,omitempty"`
	Secret   models.SealedSecret `json:"secret"`
	Notes    string              `json:"notes,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(res.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%w: %s (%d)", ErrServer, apiErr.Error, res.StatusCode)
		}
		return fmt.Errorf("%w: status %d", ErrServer, res.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/register",
		map[string]string{"email": email, "password": password}, nil)
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/login",
		map[string]string{"email": email, "password": password}, nil)
}

// Logout destroys the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// EncSalt fetches the account's immutable key-derivation salt.
func (c *Client) EncSalt(ctx context.Context) (string, error) {
	var out struct {
		EncSalt string `json:"encSalt"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/enc-salt", nil, &out); err != nil {
		return "", err
	}
	return out.EncSalt, nil
}

// CreateRecord stores a new sealed record and returns its id.
func (c *Client) CreateRecord(ctx context.Context, in RecordInput) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/vault", in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListRecords fetches all of the account's records, most recent first.
func (c *Client) ListRecords(ctx context.Context) ([]models.VaultRecord, error) {
	var out struct {
		Items []models.VaultRecord `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/vault", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// UpdateRecord rewrites the mutable fields of a record.
func (c *Client) UpdateRecord(ctx context.Context, id string, in RecordInput) error {
	return c.do(ctx, http.MethodPut, "/api/vault/"+id, in, nil)
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/vault/"+id, nil, nil)
}

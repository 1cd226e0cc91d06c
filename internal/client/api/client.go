// Package api is the CLI's HTTP client for the OrgChat REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/common"
)

const apiPrefix = "/api/v1"

// ErrUnavailable is returned when the server cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx reply other than 401.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the API served at baseURL
// (e.g. "http://127.0.0.1:8080").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

type ResetRequestResult struct {
	Detail     string `json:"detail"`
	ResetToken string `json:"reset_token,omitempty"`
}

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Name       *string   `json:"name,omitempty"`
	Department *string   `json:"department,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refresh_token": refreshToken}, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": refreshToken}, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	var res ResetRequestResult
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password/request", "", map[string]string{"email": email}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ConfirmPasswordReset returns the server's confirmation message.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (string, error) {
	var res detailResponse
	err := c.do(ctx, http.MethodPost, "/auth/reset-password/confirm", "", map[string]string{
		"token":        token,
		"new_password": newPassword,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.Detail, nil
}

func (c *Client) Me(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Health pings the server's unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.send(req, nil)
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var d detailResponse
		_ = json.NewDecoder(resp.Body).Decode(&d)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", common.ErrorUnauthorized, d.Detail)
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: d.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

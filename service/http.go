// Package service ships a JSON/HTTP reference implementation of the
// authflow.Service interface. It implements only the operations the
// core consumes and designs no protocol beyond them.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tallyhq/authflow"
)

const defaultTimeout = 15 * time.Second

// HTTPClient talks to the remote auth service over JSON/HTTP. Non-2xx
// responses are mapped into *authflow.RemoteError with the server's
// structured message and error fields preserved, so the controller's
// message extraction precedence keeps working end to end.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// Option mutates an HTTPClient during construction.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) { c.client = client }
}

// WithHeader attaches a static header to every request, e.g. an API
// key or tenant header.
func WithHeader(key, value string) Option {
	return func(c *HTTPClient) { c.headers[key] = value }
}

// NewHTTPClient builds a client rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginWire struct {
	RequiresOTP bool           `json:"requires_otp"`
	UserID      string         `json:"user_id"`
	Email       string         `json:"email"`
	Message     string         `json:"message"`
	Token       string         `json:"token"`
	ExpiresAt   int64          `json:"expires_at"`
	Claims      map[string]any `json:"claims"`
}

type ackWire struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorWire struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login implements authflow.Service.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*authflow.LoginResponse, error) {
	var wire loginWire
	err := c.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &wire)
	if err != nil {
		return nil, err
	}
	return loginResponse(wire), nil
}

// VerifyLoginOTP implements authflow.Service.
func (c *HTTPClient) VerifyLoginOTP(ctx context.Context, userID, code string) (*authflow.LoginResponse, error) {
	var wire loginWire
	err := c.post(ctx, "/auth/verify-otp", map[string]string{
		"user_id": userID,
		"otp":     code,
	}, &wire)
	if err != nil {
		return nil, err
	}
	return loginResponse(wire), nil
}

// ResendLoginOTP implements authflow.Service.
func (c *HTTPClient) ResendLoginOTP(ctx context.Context, email string) (*authflow.Ack, error) {
	return c.postAck(ctx, "/auth/resend-otp", map[string]string{"email": email})
}

// Register implements authflow.Service.
func (c *HTTPClient) Register(ctx context.Context, req authflow.RegisterRequest) (*authflow.Ack, error) {
	return c.postAck(ctx, "/auth/register", req)
}

// ForgotPassword implements authflow.Service.
func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*authflow.Ack, error) {
	return c.postAck(ctx, "/auth/forgot-password", map[string]string{"email": email})
}

// ResetPassword implements authflow.Service.
func (c *HTTPClient) ResetPassword(ctx context.Context, email, otp, newPassword string) (*authflow.Ack, error) {
	return c.postAck(ctx, "/auth/reset-password", map[string]string{
		"email":        email,
		"otp":          otp,
		"new_password": newPassword,
	})
}

// ResendForgotPasswordOTP implements authflow.Service.
func (c *HTTPClient) ResendForgotPasswordOTP(ctx context.Context, email string) (*authflow.Ack, error) {
	return c.postAck(ctx, "/auth/forgot-password/resend", map[string]string{"email": email})
}

func loginResponse(wire loginWire) *authflow.LoginResponse {
	resp := &authflow.LoginResponse{
		RequiresOTP: wire.RequiresOTP,
		UserID:      wire.UserID,
		Email:       wire.Email,
		Message:     wire.Message,
		Token:       wire.Token,
		Claims:      wire.Claims,
	}
	if wire.ExpiresAt > 0 {
		resp.ExpiresAt = time.Unix(wire.ExpiresAt, 0)
	}
	return resp
}

func (c *HTTPClient) postAck(ctx context.Context, path string, body any) (*authflow.Ack, error) {
	var wire ackWire
	if err := c.post(ctx, path, body, &wire); err != nil {
		return nil, err
	}
	return &authflow.Ack{Success: wire.Success, Message: wire.Message}, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return authflow.NewRemoteError("", "", 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return authflow.NewRemoteError("", "", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var wire errorWire
		_ = json.Unmarshal(data, &wire)
		return authflow.NewRemoteError(
			wire.Message,
			wire.Error,
			resp.StatusCode,
			fmt.Errorf("%s %s: status %d", http.MethodPost, path, resp.StatusCode),
		)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return authflow.NewRemoteError("", "", resp.StatusCode, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

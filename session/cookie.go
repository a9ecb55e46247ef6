package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tallyhq/authflow"
)

// ErrCookieInvalid is returned when a cookie value fails signature or
// shape checks.
var ErrCookieInvalid = errors.New("session cookie invalid")

// CookieSink receives the cookie produced by a session write. Hosts
// typically append it to an http.ResponseWriter or hand it to the
// browser layer.
type CookieSink func(*http.Cookie)

// CookieStore signs the session payload into a JWT carried by a
// cookie. The cookie attributes (SameSite, Secure, lifetime) come from
// the controller's session options on every write.
type CookieStore struct {
	name   string
	secret []byte
	sink   CookieSink
	now    func() time.Time
}

// NewCookieStore builds a cookie store. The signing secret must not be
// empty; name defaults to "authflow_session".
func NewCookieStore(name string, secret []byte, sink CookieSink) (*CookieStore, error) {
	if len(secret) == 0 {
		return nil, errors.New("cookie signing secret required")
	}
	if sink == nil {
		return nil, errors.New("cookie sink required")
	}
	if name == "" {
		name = "authflow_session"
	}
	return &CookieStore{
		name:   name,
		secret: secret,
		sink:   sink,
		now:    time.Now,
	}, nil
}

// Set implements authflow.SessionStore.
func (s *CookieStore) Set(_ context.Context, payload authflow.SessionPayload, opts authflow.SessionOptions) error {
	now := s.now()
	expires := payload.ExpiresAt
	if expires.IsZero() {
		expires = now.Add(opts.TTL)
	}

	claims := jwt.MapClaims{
		"sub":   payload.UserID,
		"email": payload.Email,
		"tok":   payload.Token,
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	}
	if len(payload.Claims) > 0 {
		claims["data"] = payload.Claims
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	s.sink(&http.Cookie{
		Name:     s.name,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
	return nil
}

// Decode verifies a cookie value and recovers the session payload.
// Used by route guards.
func (s *CookieStore) Decode(value string) (authflow.SessionPayload, error) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrCookieInvalid, t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return authflow.SessionPayload{}, fmt.Errorf("%w: %v", ErrCookieInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return authflow.SessionPayload{}, ErrCookieInvalid
	}

	payload := authflow.SessionPayload{}
	if v, ok := claims["sub"].(string); ok {
		payload.UserID = v
	}
	if v, ok := claims["email"].(string); ok {
		payload.Email = v
	}
	if v, ok := claims["tok"].(string); ok {
		payload.Token = v
	}
	if v, ok := claims["exp"].(float64); ok {
		payload.ExpiresAt = time.Unix(int64(v), 0)
	}
	if v, ok := claims["data"].(map[string]any); ok {
		payload.Claims = v
	}
	return payload, nil
}

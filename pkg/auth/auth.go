// Package auth applies GitHub credentials to outgoing API requests.
//
//go:generate mockgen -destination=./mocks/auth.go . Authenticator
package auth

import (
	"net/http"
	"strings"
)

// Authenticator decorates a request with credentials.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// Type names an authentication scheme.
type Type string

// Authentication types.
const (
	BearerAuthType Type = "bearer"
	BasicAuthType  Type = "basic"
	HeaderAuthType Type = "header"
)

// BearerAuth sends a personal access token as a bearer token.
type BearerAuth struct {
	Token string
}

// Apply sets the Authorization header.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns BearerAuthType.
func (b BearerAuth) Type() Type { return BearerAuthType }

// BasicAuth sends a username with a token as password, as GitHub Enterprise
// installations behind basic-auth proxies expect.
type BasicAuth struct {
	Username string
	Password string
}

// Apply sets basic credentials.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns BasicAuthType.
func (b BasicAuth) Type() Type { return BasicAuthType }

// HeaderAuth sets arbitrary headers, then delegates to Next when set.
type HeaderAuth struct {
	Headers map[string]string
	Next    Authenticator
}

// Apply sets every header and applies Next.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	if h.Next != nil {
		return h.Next.Apply(req)
	}
	return nil
}

// Type returns HeaderAuthType.
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// FromToken returns a bearer authenticator, or nil for an empty token.
func FromToken(token string) Authenticator {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return BearerAuth{Token: token}
}

// New picks the scheme for the configured credentials: basic when a username
// is set, bearer otherwise. Extra headers wrap the result. It returns nil when
// there is nothing to send.
func New(username, token string, headers map[string]string) Authenticator {
	var a Authenticator
	switch {
	case username != "":
		a = BasicAuth{Username: username, Password: token}
	default:
		a = FromToken(token)
	}
	if len(headers) > 0 {
		return HeaderAuth{Headers: headers, Next: a}
	}
	return a
}

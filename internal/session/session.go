// Package session holds the signed-in identity between requests. The provider
// token, a session id and an optional display name travel in encrypted
// cookies; nothing is kept server side.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"blooddonor/pkg/types"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	CookieTokenName       = "bd_token"
	CookieSessionIDName   = "bd_sid"
	CookieDisplayNameName = "bd_name"
	CookieRedirectName    = "bd_redirect"
)

const redirectMaxAge = 5 * time.Minute

var ErrNoSession = errors.New("no session")

type Manager struct {
	cookie *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
}

func NewManager(hashKey, blockKey []byte, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		cookie: securecookie.New(hashKey, blockKey),
		maxAge: maxAge,
		secure: secure,
	}
}

// DecodeKeys reads the base64 cookie keys from config. Missing keys are
// replaced with random ones, so sessions will not survive a restart.
func DecodeKeys(hashKey, blockKey string) (hash []byte, block []byte, generated bool, err error) {
	if hashKey == "" || blockKey == "" {
		return securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32), true, nil
	}

	hash, err = base64.StdEncoding.DecodeString(hashKey)
	if err != nil {
		return nil, nil, false, fmt.Errorf("invalid cookie hash key: %w", err)
	}

	block, err = base64.StdEncoding.DecodeString(blockKey)
	if err != nil {
		return nil, nil, false, fmt.Errorf("invalid cookie block key: %w", err)
	}

	return hash, block, false, nil
}

// Begin starts a session for ident. The token cookie lives as long as the
// token itself when the provider reports an expiry.
func (m *Manager) Begin(w http.ResponseWriter, ident *types.AuthenticatedIdentity) error {
	maxAge := m.maxAge
	if !ident.ExpiresAt.IsZero() {
		maxAge = time.Until(ident.ExpiresAt)
	}
	if maxAge <= 0 {
		return fmt.Errorf("session token already expired")
	}

	encoded, err := m.cookie.Encode(CookieTokenName, ident.Token)
	if err != nil {
		return fmt.Errorf("failed to encrypt session token: %w", err)
	}
	m.set(w, CookieTokenName, encoded, maxAge)

	err = m.setSessionID(w, uuid.NewString())
	if err != nil {
		return err
	}

	return nil
}

// Token returns the provider token of the current session.
func (m *Manager) Token(r *http.Request) (string, error) {
	var token string
	err := m.read(r, CookieTokenName, &token)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

func (m *Manager) HasSession(r *http.Request) bool {
	_, err := m.Token(r)
	return err == nil
}

// ID returns the session id or "" when there is none.
func (m *Manager) ID(r *http.Request) string {
	var id string
	if err := m.read(r, CookieSessionIDName, &id); err != nil {
		return ""
	}
	return id
}

// EnsureID returns the session id, issuing an anonymous one if needed.
func (m *Manager) EnsureID(w http.ResponseWriter, r *http.Request) string {
	if id := m.ID(r); id != "" {
		return id
	}

	id := uuid.NewString()
	if err := m.setSessionID(w, id); err != nil {
		// unscoped searches still work, they just share one sequence
		return ""
	}
	return id
}

// End clears every session cookie.
func (m *Manager) End(w http.ResponseWriter) {
	for _, name := range []string{CookieTokenName, CookieSessionIDName, CookieDisplayNameName, CookieRedirectName} {
		m.clear(w, name)
	}
}

// SetDisplayName overrides the name the provider reported, e.g. after the
// donor renamed themselves on the profile screen.
func (m *Manager) SetDisplayName(w http.ResponseWriter, name string) error {
	encoded, err := m.cookie.Encode(CookieDisplayNameName, name)
	if err != nil {
		return fmt.Errorf("failed to encode display name: %w", err)
	}
	m.set(w, CookieDisplayNameName, encoded, m.maxAge)
	return nil
}

func (m *Manager) DisplayName(r *http.Request) string {
	var name string
	if err := m.read(r, CookieDisplayNameName, &name); err != nil {
		return ""
	}
	return name
}

// SetRedirect remembers where to send the user after signing in.
func (m *Manager) SetRedirect(w http.ResponseWriter, path string) {
	if !isLocalPath(path) {
		return
	}
	m.set(w, CookieRedirectName, path, redirectMaxAge)
}

// PopRedirect returns and clears the remembered path.
func (m *Manager) PopRedirect(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieRedirectName)
	if err != nil {
		return "", false
	}
	m.clear(w, CookieRedirectName)

	if !isLocalPath(c.Value) {
		return "", false
	}
	return c.Value, true
}

func (m *Manager) setSessionID(w http.ResponseWriter, id string) error {
	encoded, err := m.cookie.Encode(CookieSessionIDName, id)
	if err != nil {
		return fmt.Errorf("failed to encode session id: %w", err)
	}
	m.set(w, CookieSessionIDName, encoded, m.maxAge)
	return nil
}

func (m *Manager) read(r *http.Request, name string, dst any) error {
	c, err := r.Cookie(name)
	if err != nil {
		return ErrNoSession
	}
	err = m.cookie.Decode(name, c.Value, dst)
	if err != nil {
		return fmt.Errorf("failed to decode %s cookie: %w", name, err)
	}
	return nil
}

func (m *Manager) set(w http.ResponseWriter, name, value string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (m *Manager) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// isLocalPath reports whether p stays on this host. Browsers read both "//"
// and "/\" as the start of another host.
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	return true
}

type contextKey string

const contextKeyIdentity contextKey = "identity"

func WithIdentity(ctx context.Context, ident *types.AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, ident)
}

func IdentityFromContext(ctx context.Context) (*types.AuthenticatedIdentity, bool) {
	ident, ok := ctx.Value(contextKeyIdentity).(*types.AuthenticatedIdentity)
	return ident, ok && ident != nil
}

package session

import (
	"errors"
	"log"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyToken is returned by Begin when login produced no token.
var ErrEmptyToken = errors.New("empty access token")

// Session carries the admin's bearer token and the callback that runs when
// the backend rejects it. It is the only writer that clears the token outside
// an explicit logout.
type Session struct {
	mu           sync.Mutex
	tokens       TokenStore
	onInvalidate func()
}

// New creates a session over tokens. onInvalidate may be nil.
func New(tokens TokenStore, onInvalidate func()) *Session {
	return &Session{tokens: tokens, onInvalidate: onInvalidate}
}

// Token returns the current bearer token, if any.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.GetToken()
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Begin stores the token issued by a successful login.
func (s *Session) Begin(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.SetToken(token)
}

// Invalidate clears the token unconditionally and notifies the owner that the
// operator has to sign in again. Called on a missing token or a 401.
func (s *Session) Invalidate() {
	s.mu.Lock()
	if err := s.tokens.ClearToken(); err != nil {
		log.Printf("Warning: failed to clear session token: %v", err)
	}
	hook := s.onInvalidate
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Logout clears the token at the operator's request.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.ClearToken()
}

// Identity describes the signed-in admin as claimed by the token.
type Identity struct {
	Subject string `json:"subject,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Identity decodes the token's claims without verifying the signature; the
// backend remains the authority. ok is false for a missing or opaque token.
func (s *Session) Identity() (Identity, bool) {
	token, ok := s.Token()
	if !ok {
		return Identity{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, false
	}

	var id Identity
	id.Subject, _ = claims["sub"].(string)
	id.Email, _ = claims["email"].(string)
	id.Role, _ = claims["role"].(string)
	return id, true
}

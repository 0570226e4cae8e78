package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/25-26J-299/smartrose-admin/internal/store"
)

// TokenKey is the fixed storage key for the admin bearer token.
const TokenKey = "smartrose_admin_token"

// TokenStore holds the bearer token in durable storage.
type TokenStore interface {
	GetToken() (string, bool)
	SetToken(token string) error
	ClearToken() error
}

// storedTokens keeps the token in the console's settings table.
type storedTokens struct {
	settings store.SettingStore
	timeout  time.Duration
}

// NewStoredTokens returns a TokenStore persisted through settings.
func NewStoredTokens(settings store.SettingStore) TokenStore {
	return &storedTokens{settings: settings, timeout: 5 * time.Second}
}

func (t *storedTokens) GetToken() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	token, ok, err := t.settings.GetSetting(ctx, TokenKey)
	if err != nil {
		log.Printf("Warning: could not read session token: %v", err)
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (t *storedTokens) SetToken(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	return t.settings.PutSetting(ctx, TokenKey, token)
}

func (t *storedTokens) ClearToken() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	return t.settings.DeleteSetting(ctx, TokenKey)
}

// MemoryTokens is a TokenStore that forgets the token when the process exits.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokens returns an empty in-memory TokenStore.
func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{}
}

func (m *MemoryTokens) GetToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) ClearToken() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

// package sessions holds per-user authorization state for the lifetime of the process
package sessions

import (
	"sync"
	"time"

	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
	"golang.org/x/oauth2"
)

// Skew is the safety margin subtracted from a credential's provider-reported
// lifetime, so staleness is detected before the provider rejects the token.
const Skew = 15 * time.Second

// Session represents one authenticated user's standing grant.
//
// The access token never leaves the server process; only the opaque session id
// travels in a cookie.
type Session struct {
	ID           string
	UserID       string
	DisplayName  string
	ImageURL     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // skew already subtracted, see SkewedExpiry
}

// Fresh reports whether the access token is still safe to use at now.
func (s *Session) Fresh(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// SkewedExpiry converts a provider token into the expiry instant stored with a
// session.
func SkewedExpiry(token *oauth2.Token) time.Time {
	return token.Expiry.Add(-Skew)
}

// Store defines concurrency-safe access to live sessions keyed by an opaque,
// externally supplied identifier (a cookie value). The store never infers
// identity; absence is a normal outcome, not an error.
type Store interface {
	// Create registers a new session and returns its server-generated id.
	Create(profile services.Profile, accessToken, refreshToken string, expiresAt time.Time) string

	// Get returns a copy of the session, or false when none exists.
	Get(id string) (Session, bool)

	// Update atomically replaces the access credential and expiry.
	// Reports whether the session still existed.
	Update(id string, accessToken string, expiresAt time.Time) bool

	// Delete removes the session. Deleting an absent id is a no-op.
	Delete(id string)
}

// MemoryStore implements [Store] with a mutex-guarded map.
//
// Sessions live only as long as the process (multi-instance sharing and
// persistence are explicitly out of scope).
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create registers a new session under a fresh unguessable id.
func (m *MemoryStore) Create(profile services.Profile, accessToken, refreshToken string, expiresAt time.Time) string {
	id := shared.GenerateID()

	m.mu.Lock()
	m.sessions[id] = &Session{
		ID:           id,
		UserID:       profile.UserID,
		DisplayName:  profile.DisplayName,
		ImageURL:     profile.ImageURL,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
	m.mu.Unlock()

	return id
}

// Get returns a copy of the session so callers never observe concurrent writes.
func (m *MemoryStore) Get(id string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Update swaps the access credential and expiry in place.
func (m *MemoryStore) Update(id string, accessToken string, expiresAt time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return false
	}

	session.AccessToken = accessToken
	session.ExpiresAt = expiresAt
	return true
}

// Delete removes the session.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

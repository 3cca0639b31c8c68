package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/shared"
	"golang.org/x/oauth2"
)

// Refresher renews an access credential with the provider's token endpoint.
// Implemented by [services.SpotifyClient].
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Manager is the token refresh guard wrapping every authenticated operation:
// it hands out the session's access token, transparently renewing it first
// when the stored (skew-adjusted) expiry has passed.
type Manager struct {
	store     Store
	refresher Refresher
	logger    *log.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a Manager over the given store and refresher.
func NewManager(store Store, refresher Refresher, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Manager{
		store:     store,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the per-session mutex, creating it on first use.
// Per-key mutual exclusion keeps concurrent refreshes for one session
// single-flight without serializing unrelated sessions.
func (m *Manager) sessionLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}

// WithValidToken looks up the session and returns an access token that is
// valid for at least the skew window.
//
// An absent session yields [shared.ErrNotAuthenticated] — a normal outcome,
// not a provider failure. A rejected refresh yields [shared.ErrRefreshFailed]
// and leaves the stored session untouched, so the user can retry or explicitly
// re-authenticate.
func (m *Manager) WithValidToken(ctx context.Context, sessionID string) (string, *Session, error) {
	if sessionID == "" {
		return "", nil, shared.ErrNotAuthenticated
	}

	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, ok := m.store.Get(sessionID)
	if !ok {
		return "", nil, shared.ErrNotAuthenticated
	}

	if session.Fresh(m.now()) {
		return session.AccessToken, &session, nil
	}

	token, err := m.refresher.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	expiresAt := SkewedExpiry(token)
	m.store.Update(sessionID, token.AccessToken, expiresAt)

	session.AccessToken = token.AccessToken
	session.ExpiresAt = expiresAt

	m.logger.Debug("access token refreshed", "user", session.UserID)
	return session.AccessToken, &session, nil
}

// Forget drops the per-session lock after a session is deleted.
func (m *Manager) Forget(sessionID string) {
	m.mu.Lock()
	delete(m.locks, sessionID)
	m.mu.Unlock()
}

// Logout removes the session and its lock. Logging out an absent session is
// a no-op.
func (m *Manager) Logout(sessionID string) {
	if sessionID == "" {
		return
	}
	m.store.Delete(sessionID)
	m.Forget(sessionID)
}

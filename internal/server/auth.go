package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/sessions"
	"github.com/desertthunder/moodlist/internal/shared"
	"golang.org/x/oauth2"
)

// MusicAuth is the provider surface the authorization flow needs.
// Implemented by [services.SpotifyClient].
type MusicAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, accessToken string) (*services.SpotifyUser, error)
}

// SessionEnder tears down a session and any bookkeeping tied to it.
// Implemented by [sessions.Manager].
type SessionEnder interface {
	Logout(sessionID string)
}

// AuthHandler drives the three-legged authorization code flow and the
// session inspection endpoints.
type AuthHandler struct {
	auth         MusicAuth
	store        sessions.Store
	ender        SessionEnder
	cookies      *Cookies
	clientOrigin string
	logger       *log.Logger
}

// NewAuthHandler creates the handler for login, callback, logout and session.
func NewAuthHandler(auth MusicAuth, store sessions.Store, ender SessionEnder, cookies *Cookies, clientOrigin string, logger *log.Logger) *AuthHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &AuthHandler{
		auth:         auth,
		store:        store,
		ender:        ender,
		cookies:      cookies,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{
		"/api/auth/login",
		"/api/auth/callback",
		"/api/auth/logout",
		"/api/session",
	}
}

// ServeHTTP dispatches to the endpoint matching the request path.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		h.login(w, r)
	case "/api/auth/callback":
		h.callback(w, r)
	case "/api/auth/logout":
		h.logout(w, r)
	case "/api/session":
		h.session(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login mints a fresh anti-forgery value, stashes it in a short-lived cookie,
// and redirects the browser to the provider's consent page.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()
	h.cookies.Set(w, stateCookie, state, int(stateCookieTTL.Seconds()))

	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// callback completes the flow: the returned state must match the cookie
// before any provider call happens, then the code is exchanged and the
// user's profile fetched. Only after both succeed is a session created.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	expected, ok := h.cookies.Read(r, stateCookie)
	if code == "" || state == "" || !ok || state != expected {
		writeError(w, fmt.Errorf("%w: invalid or missing state", shared.ErrStateMismatch))
		return
	}

	token, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("authorization code exchange rejected", "error", err)
		writeError(w, err)
		return
	}

	user, err := h.auth.Profile(r.Context(), token.AccessToken)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", shared.ErrProfileFetch, err))
		return
	}

	profile := services.Profile{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = user.ID
	}
	if len(user.Images) > 0 {
		profile.ImageURL = user.Images[0].URL
	}

	id := h.store.Create(profile, token.AccessToken, token.RefreshToken, sessions.SkewedExpiry(token))

	h.cookies.Clear(w, stateCookie)
	h.cookies.Set(w, sessionCookie, id, 0)

	h.logger.Info("user authenticated", "user", profile.UserID)
	http.Redirect(w, r, h.clientOrigin, http.StatusFound)
}

// logout deletes the session, if any, and clears the cookie. Always succeeds.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: "method not allowed"})
		return
	}

	if id, ok := h.cookies.Read(r, sessionCookie); ok {
		h.ender.Logout(id)
	}
	h.cookies.Clear(w, sessionCookie)

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type sessionUser struct {
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url,omitempty"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
}

// session reports whether the browser holds a live session. Never an error:
// an anonymous visitor is a normal state.
func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cookies.Read(r, sessionCookie)
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	session, ok := h.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		User: &sessionUser{
			DisplayName: session.DisplayName,
			ImageURL:    session.ImageURL,
		},
	})
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/repositories"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/sessions"
	"github.com/desertthunder/moodlist/internal/shared"
)

// TokenGuard hands out a valid access token for the session making the
// request. Implemented by [sessions.Manager].
type TokenGuard interface {
	WithValidToken(ctx context.Context, sessionID string) (string, *sessions.Session, error)
}

// PlaylistCreator runs the two-phase assembly workflow.
// Implemented by [tasks.Assembler].
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, accessToken, name string, tracks []services.SuggestedTrack) (*services.PlaylistRef, error)
}

// History records and lists playlists this service created.
// Implemented by [repositories.HistoryRepository].
type History interface {
	Record(name string, ref *services.PlaylistRef) (*repositories.HistoryRecord, error)
	Recent(limit int) ([]repositories.HistoryRecord, error)
}

// PlaylistHandler serves the assembly phase and the local creation history.
type PlaylistHandler struct {
	guard     TokenGuard
	assembler PlaylistCreator
	history   History
	cookies   *Cookies
	logger    *log.Logger
}

// NewPlaylistHandler creates the playlist endpoints handler. A nil history
// disables recording without disabling creation.
func NewPlaylistHandler(guard TokenGuard, assembler PlaylistCreator, history History, cookies *Cookies, logger *log.Logger) *PlaylistHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &PlaylistHandler{
		guard:     guard,
		assembler: assembler,
		history:   history,
		cookies:   cookies,
		logger:    logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{
		"/api/spotify/create-playlist",
		"/api/playlists/history",
	}
}

// ServeHTTP dispatches to the endpoint matching the request path.
func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/spotify/create-playlist":
		h.create(w, r)
	case "/api/playlists/history":
		h.recent(w, r)
	default:
		http.NotFound(w, r)
	}
}

type createRequest struct {
	Name   string                    `json:"name"`
	Tracks []services.SuggestedTrack `json:"tracks"`
}

// create handles POST /api/spotify/create-playlist. The token guard runs
// first so an expired session refreshes (or fails) before any catalog call.
func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: "method not allowed"})
		return
	}

	id, _ := h.cookies.Read(r, sessionCookie)
	token, session, err := h.guard.WithValidToken(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: body must be JSON", shared.ErrInvalidRequest))
		return
	}

	ref, err := h.assembler.CreatePlaylist(r.Context(), token, req.Name, req.Tracks)
	if err != nil {
		h.logger.Error("playlist creation failed", "user", session.UserID, "error", err)
		writeError(w, err)
		return
	}

	if h.history != nil {
		if _, err := h.history.Record(req.Name, ref); err != nil {
			// History is observability, not the product; creation already succeeded.
			h.logger.Warn("history record failed", "playlist", ref.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, ref)
}

type historyResponse struct {
	Playlists []repositories.HistoryRecord `json:"playlists"`
}

// recent handles GET /api/playlists/history, newest first.
func (h *PlaylistHandler) recent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: "method not allowed"})
		return
	}

	if h.history == nil {
		writeJSON(w, http.StatusOK, historyResponse{Playlists: []repositories.HistoryRecord{}})
		return
	}

	records, err := h.history.Recent(0)
	if err != nil {
		h.logger.Error("history query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "history unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Playlists: records})
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

// Suggester turns a free-text mood prompt into an ordered track list.
// Implemented by [services.OllamaService].
type Suggester interface {
	Suggest(ctx context.Context, prompt string) ([]services.SuggestedTrack, error)
}

// SuggestHandler serves the suggestion phase of the workflow. It requires no
// session: prompting the model costs nothing provider-side.
type SuggestHandler struct {
	suggester Suggester
	logger    *log.Logger
}

// NewSuggestHandler creates the suggestion endpoint handler.
func NewSuggestHandler(suggester Suggester, logger *log.Logger) *SuggestHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SuggestHandler{suggester: suggester, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SuggestHandler) Routes() []string {
	return []string{"/api/ai/suggest"}
}

type suggestRequest struct {
	Prompt string `json:"prompt"`
}

type suggestResponse struct {
	Tracks []services.SuggestedTrack `json:"tracks"`
}

// ServeHTTP handles POST /api/ai/suggest.
func (h *SuggestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: "method not allowed"})
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: body must be JSON", shared.ErrEmptyPrompt))
		return
	}

	tracks, err := h.suggester.Suggest(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("suggestion failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestResponse{Tracks: tracks})
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

// fakeSuggester implements Suggester with a canned response.
type fakeSuggester struct {
	tracks []services.SuggestedTrack
	err    error
	prompt string
}

func (f *fakeSuggester) Suggest(ctx context.Context, prompt string) ([]services.SuggestedTrack, error) {
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, shared.ErrEmptyPrompt
	}
	return f.tracks, nil
}

func TestSuggest(t *testing.T) {
	t.Run("rejects non-POST", func(t *testing.T) {
		handler := NewSuggestHandler(&fakeSuggester{}, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ai/suggest", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler := NewSuggestHandler(&fakeSuggester{}, nil)

		req := httptest.NewRequest("POST", "/api/ai/suggest", strings.NewReader("not json"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects blank prompt", func(t *testing.T) {
		handler := NewSuggestHandler(&fakeSuggester{}, nil)

		req := httptest.NewRequest("POST", "/api/ai/suggest", strings.NewReader(`{"prompt":"  "}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns suggested tracks", func(t *testing.T) {
		suggester := &fakeSuggester{
			tracks: []services.SuggestedTrack{
				{Title: "Song A", Artist: "Artist A"},
				{Title: "Song B", Artist: "Artist B"},
			},
		}
		handler := NewSuggestHandler(suggester, nil)

		req := httptest.NewRequest("POST", "/api/ai/suggest", strings.NewReader(`{"prompt":"rainy morning"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if suggester.prompt != "rainy morning" {
			t.Errorf("expected prompt to pass through, got %q", suggester.prompt)
		}

		var resp suggestResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Tracks) != 2 || resp.Tracks[0].Title != "Song A" {
			t.Errorf("unexpected tracks: %+v", resp.Tracks)
		}
	})

	t.Run("provider outage surfaces a 500", func(t *testing.T) {
		suggester := &fakeSuggester{
			err: fmt.Errorf("%w: connection refused", shared.ErrProviderUnreachable),
		}
		handler := NewSuggestHandler(suggester, nil)

		req := httptest.NewRequest("POST", "/api/ai/suggest", strings.NewReader(`{"prompt":"upbeat"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}

		var envelope errorEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode error envelope: %v", err)
		}
		if envelope.Error == "" {
			t.Error("expected error message in envelope")
		}
	})
}

// Ollama chat API client for a locally hosted model server
// (https://github.com/ollama/ollama).

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/desertthunder/moodlist/internal/shared"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"

	// maxSuggestedTracks caps downstream search fan-out per request.
	maxSuggestedTracks = 20

	curatorInstruction = "You are a music curator. Given a prompt, return a concise JSON with an array called tracks. Each track must have title and artist. Return ONLY JSON."
)

// braceRegion greedily matches from the first opening brace to a closing brace
// at the end of the text. Models that wrap JSON in prose usually put the object
// last; multi-block output would be swallowed into one region here, matching
// the recovery behavior this service has always had.
var braceRegion = regexp.MustCompile(`(?s)\{.*\}$`)

// OllamaService generates track suggestions via the Ollama chat API.
type OllamaService struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaService creates an Ollama client for the given base URL and model.
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	return &OllamaService{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (o *OllamaService) Name() string {
	return "Ollama"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []chatMessage `json:"messages"`
	Options  struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type suggestionPayload struct {
	Tracks []SuggestedTrack `json:"tracks"`
}

// Suggest sends the mood prompt to the model as a single non-streaming chat
// exchange and parses the reply into an ordered track list, truncated to
// [maxSuggestedTracks].
func (o *OllamaService) Suggest(ctx context.Context, prompt string) ([]SuggestedTrack, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, shared.ErrEmptyPrompt
	}

	chatReq := chatRequest{
		Model:  o.model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: curatorInstruction},
			{Role: "user", Content: fmt.Sprintf("Prompt: %s\nReturn 12 tracks.", prompt)},
		},
	}
	chatReq.Options.Temperature = 0.6

	data, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot reach Ollama at %s (%v). Is Ollama running? Try: `ollama serve` and `ollama pull %s`",
			shared.ErrProviderUnreachable, o.baseURL, err, o.model)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama request failed (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode chat response: %v", shared.ErrInvalidModelResponse, err)
	}

	payload, err := recoverPayload(chatResp.Message.Content)
	if err != nil {
		return nil, err
	}

	tracks := payload.Tracks
	if len(tracks) > maxSuggestedTracks {
		tracks = tracks[:maxSuggestedTracks]
	}

	return tracks, nil
}

// recoverPayload parses raw model output into a suggestion payload.
//
// Strategies are tried in order and the first success wins: a strict parse of
// the whole text, then a parse of the trailing [braceRegion]. The fallback
// only runs when the strict parse fails outright; a well-formed JSON document
// without a tracks array is rejected, not re-scanned.
func recoverPayload(text string) (*suggestionPayload, error) {
	var payload suggestionPayload
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		if payload.Tracks == nil {
			return nil, fmt.Errorf("%w: no tracks array in model output", shared.ErrInvalidModelResponse)
		}
		return &payload, nil
	}

	region := braceRegion.FindString(text)
	if region == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", shared.ErrInvalidModelResponse)
	}

	payload = suggestionPayload{}
	if err := json.Unmarshal([]byte(region), &payload); err != nil || payload.Tracks == nil {
		return nil, fmt.Errorf("%w: no tracks array in model output", shared.ErrInvalidModelResponse)
	}

	return &payload, nil
}

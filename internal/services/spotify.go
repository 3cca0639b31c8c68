// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/moodlist/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	requestTimeout = 15 * time.Second
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Public       bool         `json:"public"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// SpotifyClient talks to the Spotify Web API. Uses [oauth2] for the
// authorization code exchange and token refresh.
//
// The client holds no per-user state; authenticated methods take the access
// token of the session making the request.
type SpotifyClient struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyClient creates a Spotify client from the configured credentials.
func NewSpotifyClient(cfg shared.SpotifyConfig) (*SpotifyClient, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3001/api/auth/callback"
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{
			"playlist-modify-private",
			"playlist-modify-public",
			"user-read-email",
		}
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyClient{
		config:     config,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyClient) Name() string {
	return "Spotify"
}

// AuthCodeURL returns the OAuth2 authorization URL for user login.
//
// The state token should be cryptographically random for CSRF protection.
func (s *SpotifyClient) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access/refresh token pair.
func (s *SpotifyClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}
	return token, nil
}

// Refresh obtains a fresh access token using the stored refresh token.
//
// Spotify does not rotate refresh tokens, so the returned token may carry an
// empty RefreshToken; callers keep the one they have.
func (s *SpotifyClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return token, nil
}

// doRequest performs an authenticated HTTP request against the Spotify API.
// A non-nil body is JSON-encoded; a non-nil result is JSON-decoded from the response.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint, accessToken string, body, result any) error {
	apiURL := s.baseURL + endpoint

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Status  int    `json:"status"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("spotify API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Profile retrieves the profile of the user the access token belongs to.
func (s *SpotifyClient) Profile(ctx context.Context, accessToken string) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchTrack searches the catalog for the single best match of a
// title/artist pair. Returns [shared.ErrTrackNotFound] when the search comes
// back empty.
func (s *SpotifyClient) SearchTrack(ctx context.Context, accessToken, title, artist string) (*SpotifyTrack, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("track:%s artist:%s", title, artist))
	query.Set("type", "track")
	query.Set("limit", "1")

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	endpoint := "/search?" + query.Encode()
	if err := s.doRequest(ctx, http.MethodGet, endpoint, accessToken, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: no results for '%s' by '%s'", shared.ErrTrackNotFound, title, artist)
	}

	return &response.Tracks.Items[0], nil
}

// CreatePlaylist creates an empty playlist owned by the current user.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, accessToken, name, description string) (*SpotifyPlaylist, error) {
	createReq := struct {
		Name        string `json:"name"`
		Public      bool   `json:"public"`
		Description string `json:"description"`
	}{
		Name:        name,
		Public:      false,
		Description: description,
	}

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, "/me/playlists", accessToken, createReq, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// AddTracks appends the given track URIs to a playlist in one request.
func (s *SpotifyClient) AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	addReq := struct {
		URIs []string `json:"uris"`
	}{
		URIs: uris,
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodPost, endpoint, accessToken, addReq, nil)
}

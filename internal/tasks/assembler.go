// package tasks implements the two-phase playlist assembly workflow.
//
// Phase one resolves each suggested (title, artist) pair to a provider-native
// track identifier via catalog search; phase two creates the playlist
// container and populates it. Resolution is best-effort: suggestions without
// a catalog match are dropped, not fatal.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

const (
	// playlistDescription marks playlists this service creates.
	playlistDescription = "Generated by moodlist"

	// searchWorkers bounds concurrent catalog searches per request.
	searchWorkers = 4
)

// Catalog is the provider surface the assembler needs.
// Implemented by [services.SpotifyClient].
type Catalog interface {
	SearchTrack(ctx context.Context, accessToken, title, artist string) (*services.SpotifyTrack, error)
	CreatePlaylist(ctx context.Context, accessToken, name, description string) (*services.SpotifyPlaylist, error)
	AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) error
}

// Assembler resolves suggested tracks against the provider catalog and
// materializes them as a private playlist.
type Assembler struct {
	catalog Catalog
	logger  *log.Logger
	workers int
}

// NewAssembler creates an Assembler over the given catalog.
func NewAssembler(catalog Catalog, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Assembler{
		catalog: catalog,
		logger:  logger,
		workers: searchWorkers,
	}
}

// Resolve maps each suggestion to its provider-native identifier.
//
// Searches run concurrently up to [searchWorkers] at a time, but results land
// in an index-addressed slice so the output preserves suggestion order.
// Suggestions with no match come back with an empty URI.
func (a *Assembler) Resolve(ctx context.Context, accessToken string, tracks []services.SuggestedTrack) []services.ResolvedTrack {
	resolved := make([]services.ResolvedTrack, len(tracks))
	sem := make(chan struct{}, a.workers)

	var wg sync.WaitGroup
	for i, track := range tracks {
		wg.Add(1)
		go func(i int, track services.SuggestedTrack) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resolved[i] = services.ResolvedTrack{SuggestedTrack: track}

			match, err := a.catalog.SearchTrack(ctx, accessToken, track.Title, track.Artist)
			if err != nil {
				a.logger.Debug("no catalog match", "title", track.Title, "artist", track.Artist, "error", err)
				return
			}
			resolved[i].URI = match.URI
		}(i, track)
	}
	wg.Wait()

	return resolved
}

// CreatePlaylist runs resolution, creates the playlist container, and adds all
// resolved identifiers in one request.
//
// A rejected add-items call is a deliberately accepted partial outcome: the
// playlist already exists on the provider side with no cross-resource rollback
// available, so the id and URL are still returned.
func (a *Assembler) CreatePlaylist(ctx context.Context, accessToken, name string, tracks []services.SuggestedTrack) (*services.PlaylistRef, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name is blank", shared.ErrInvalidRequest)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks to resolve", shared.ErrInvalidRequest)
	}

	resolved := a.Resolve(ctx, accessToken, tracks)

	uris := make([]string, 0, len(resolved))
	for _, track := range resolved {
		if track.URI != "" {
			uris = append(uris, track.URI)
		}
	}

	playlist, err := a.catalog.CreatePlaylist(ctx, accessToken, name, playlistDescription)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPlaylistCreate, err)
	}

	ref := &services.PlaylistRef{
		ID:        playlist.ID,
		URL:       playlist.ExternalURLs.Spotify,
		Requested: len(tracks),
		Resolved:  len(uris),
		Dropped:   len(tracks) - len(uris),
	}

	if len(uris) > 0 {
		if err := a.catalog.AddTracks(ctx, accessToken, playlist.ID, uris); err != nil {
			// Playlist exists but stays empty; surfaced to the caller as a
			// successful creation.
			a.logger.Warn("add tracks rejected", "playlist", playlist.ID,
				"error", fmt.Errorf("%w: %v", shared.ErrAddTracks, err))
		}
	}

	a.logger.Info("playlist assembled", "playlist", ref.ID,
		"requested", ref.Requested, "resolved", ref.Resolved, "dropped", ref.Dropped)

	return ref, nil
}

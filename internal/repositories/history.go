// Package repositories implements SQLite persistence for playlist history.
//
// Only created playlists are recorded; session state never touches disk.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

const historySchema = `
	CREATE TABLE IF NOT EXISTS playlist_history (
		id TEXT PRIMARY KEY,
		spotify_id TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		requested INTEGER NOT NULL,
		resolved INTEGER NOT NULL,
		dropped INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)
`

// defaultHistoryLimit caps how many records a listing returns.
const defaultHistoryLimit = 50

// HistoryRecord describes one playlist this service created on the provider.
type HistoryRecord struct {
	ID        string    `json:"id"`
	SpotifyID string    `json:"spotify_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Requested int       `json:"requested"`
	Resolved  int       `json:"resolved"`
	Dropped   int       `json:"dropped"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryRepository persists playlist creation records.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates the repository and ensures its schema exists.
func NewHistoryRepository(db *sql.DB) (*HistoryRepository, error) {
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return &HistoryRepository{db: db}, nil
}

// Record inserts a new history row for a created playlist.
func (r *HistoryRepository) Record(name string, ref *services.PlaylistRef) (*HistoryRecord, error) {
	record := &HistoryRecord{
		ID:        shared.GenerateID(),
		SpotifyID: ref.ID,
		Name:      name,
		URL:       ref.URL,
		Requested: ref.Requested,
		Resolved:  ref.Resolved,
		Dropped:   ref.Dropped,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO playlist_history (id, spotify_id, name, url, requested, resolved, dropped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.ID,
		record.SpotifyID,
		record.Name,
		record.URL,
		record.Requested,
		record.Resolved,
		record.Dropped,
		record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history record: %w", err)
	}

	return record, nil
}

// Recent returns the newest records first, capped at limit
// (or [defaultHistoryLimit] when limit is not positive).
func (r *HistoryRepository) Recent(limit int) ([]HistoryRecord, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT id, spotify_id, name, url, requested, resolved, dropped, created_at
		FROM playlist_history
		ORDER BY created_at DESC, id
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []HistoryRecord{}
	for rows.Next() {
		var record HistoryRecord
		if err := rows.Scan(
			&record.ID,
			&record.SpotifyID,
			&record.Name,
			&record.URL,
			&record.Requested,
			&record.Resolved,
			&record.Dropped,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return records, nil
}

package repositories

import (
	"testing"
	"time"

	"github.com/desertthunder/moodlist/internal/services"
	"github.com/desertthunder/moodlist/internal/shared"
)

func newTestRepo(t *testing.T) *HistoryRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewHistoryRepository(db)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return repo
}

func TestHistoryRepository(t *testing.T) {
	t.Run("Record and Recent", func(t *testing.T) {
		repo := newTestRepo(t)

		ref := &services.PlaylistRef{
			ID:        "pl1",
			URL:       "https://open.spotify.com/playlist/pl1",
			Requested: 12,
			Resolved:  10,
			Dropped:   2,
		}

		record, err := repo.Record("Rainy Morning", ref)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if record.ID == "" {
			t.Error("expected generated record id")
		}
		if record.SpotifyID != "pl1" {
			t.Errorf("expected spotify id 'pl1', got %s", record.SpotifyID)
		}

		records, err := repo.Recent(10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Name != "Rainy Morning" || records[0].Dropped != 2 {
			t.Errorf("unexpected record: %+v", records[0])
		}
	})

	t.Run("Recent orders newest first", func(t *testing.T) {
		repo := newTestRepo(t)

		for i, name := range []string{"first", "second", "third"} {
			if _, err := repo.Record(name, &services.PlaylistRef{ID: name}); err != nil {
				t.Fatalf("failed to record %q: %v", name, err)
			}
			// created_at has sub-second precision; keep inserts distinct
			if i < 2 {
				time.Sleep(2 * time.Millisecond)
			}
		}

		records, err := repo.Recent(0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0].Name != "third" || records[2].Name != "first" {
			t.Errorf("expected newest-first ordering, got %v, %v, %v",
				records[0].Name, records[1].Name, records[2].Name)
		}
	})

	t.Run("Recent respects limit", func(t *testing.T) {
		repo := newTestRepo(t)

		for i := 0; i < 5; i++ {
			if _, err := repo.Record("mix", &services.PlaylistRef{ID: "pl"}); err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}

		records, err := repo.Recent(3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected 3 records, got %d", len(records))
		}
	})

	t.Run("Empty history returns empty slice", func(t *testing.T) {
		repo := newTestRepo(t)

		records, err := repo.Recent(10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", records)
		}
	})
}

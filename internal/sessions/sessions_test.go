package sessions

import (
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/moodlist/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testProfile() services.Profile {
	return services.Profile{
		UserID:      "user123",
		DisplayName: "Test User",
		ImageURL:    "https://img.example/a.png",
	}
}

func TestMemoryStore(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	t.Run("Create and Get", func(t *testing.T) {
		store := NewMemoryStore()

		id := store.Create(testProfile(), "access", "refresh", expiry)
		require.NotEmpty(t, id)

		session, ok := store.Get(id)
		require.True(t, ok)
		assert.Equal(t, id, session.ID)
		assert.Equal(t, "user123", session.UserID)
		assert.Equal(t, "Test User", session.DisplayName)
		assert.Equal(t, "access", session.AccessToken)
		assert.Equal(t, "refresh", session.RefreshToken)
		assert.True(t, session.ExpiresAt.Equal(expiry))
	})

	t.Run("IDs are unique", func(t *testing.T) {
		store := NewMemoryStore()

		a := store.Create(testProfile(), "x", "y", expiry)
		b := store.Create(testProfile(), "x", "y", expiry)
		assert.NotEqual(t, a, b)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("Get absent is not an error", func(t *testing.T) {
		store := NewMemoryStore()

		_, ok := store.Get("nope")
		assert.False(t, ok)
	})

	t.Run("Get returns a copy", func(t *testing.T) {
		store := NewMemoryStore()
		id := store.Create(testProfile(), "access", "refresh", expiry)

		session, _ := store.Get(id)
		session.AccessToken = "mutated"

		fresh, _ := store.Get(id)
		assert.Equal(t, "access", fresh.AccessToken)
	})

	t.Run("Update", func(t *testing.T) {
		store := NewMemoryStore()
		id := store.Create(testProfile(), "old", "refresh", expiry)

		later := expiry.Add(time.Hour)
		require.True(t, store.Update(id, "new", later))

		session, _ := store.Get(id)
		assert.Equal(t, "new", session.AccessToken)
		assert.True(t, session.ExpiresAt.Equal(later))
		assert.Equal(t, "refresh", session.RefreshToken)

		assert.False(t, store.Update("absent", "x", later))
	})

	t.Run("Delete", func(t *testing.T) {
		store := NewMemoryStore()
		id := store.Create(testProfile(), "access", "refresh", expiry)

		store.Delete(id)
		_, ok := store.Get(id)
		assert.False(t, ok)

		store.Delete(id) // idempotent
	})

	t.Run("Concurrent readers and writers", func(t *testing.T) {
		store := NewMemoryStore()
		id := store.Create(testProfile(), "access", "refresh", expiry)

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				store.Update(id, "access", expiry)
			}()
			go func() {
				defer wg.Done()
				store.Get(id)
			}()
		}
		wg.Wait()

		session, ok := store.Get(id)
		require.True(t, ok)
		assert.Equal(t, "access", session.AccessToken)
	})
}

func TestSessionFresh(t *testing.T) {
	now := time.Now()
	session := Session{ExpiresAt: now.Add(time.Minute)}

	assert.True(t, session.Fresh(now))
	assert.False(t, session.Fresh(now.Add(time.Minute)))
	assert.False(t, session.Fresh(now.Add(2*time.Minute)))
}

func TestSkewedExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	token := &oauth2.Token{AccessToken: "a", Expiry: expiry}

	assert.True(t, SkewedExpiry(token).Equal(expiry.Add(-Skew)))
}

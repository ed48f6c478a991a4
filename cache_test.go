package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	accounts "github.com/goliatone/go-accounts"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCachedStore(t *testing.T) (*accounts.CachedUserStore, *memStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := newMemStore()
	return accounts.NewCachedUserStore(inner, client, time.Minute, nil), inner
}

func TestCachedUserStore(t *testing.T) {
	ctx := context.Background()

	t.Run("read-through populates the cache", func(t *testing.T) {
		cached, inner := setupCachedStore(t)

		user := testUser()
		_, err := inner.Insert(ctx, user)
		require.NoError(t, err)

		found, err := cached.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		// served from cache even after the record vanishes from storage
		delete(inner.users, user.ID.String())

		found, err = cached.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Len(t, found.Emails, 2)
	})

	t.Run("miss falls through to storage", func(t *testing.T) {
		cached, _ := setupCachedStore(t)

		_, err := cached.FindByID(ctx, "missing-id")
		assert.ErrorIs(t, err, accounts.ErrUserNotFound)
	})

	t.Run("password update invalidates the entry", func(t *testing.T) {
		cached, _ := setupCachedStore(t)

		user := testUser()
		_, err := cached.Insert(ctx, user)
		require.NoError(t, err)

		_, err = cached.FindByID(ctx, user.ID.String())
		require.NoError(t, err)

		require.NoError(t, cached.UpdatePasswordHash(ctx, user.ID.String(), "hash-2"))

		found, err := cached.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "hash-2", found.PasswordHash)
	})

	t.Run("verification invalidates the entry", func(t *testing.T) {
		cached, _ := setupCachedStore(t)

		user := testUser()
		_, err := cached.Insert(ctx, user)
		require.NoError(t, err)

		_, err = cached.FindByID(ctx, user.ID.String())
		require.NoError(t, err)

		require.NoError(t, cached.SetEmailVerified(ctx, user.ID.String(), "b@x.com"))

		found, err := cached.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.True(t, found.EmailByAddress("b@x.com").Verified)
	})
}

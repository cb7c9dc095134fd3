package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travelrules/core"
)

func TestUserStorage_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStorage(db, zap.NewNop().Sugar())
	ctx := context.Background()

	user := &core.User{ID: 42, Username: "traveler", Language: core.LanguageRU, CountryCode: "IT"}
	require.NoError(t, store.Upsert(ctx, user))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "traveler", got.Username)
	assert.Equal(t, core.LanguageRU, got.Language)
	assert.Equal(t, "IT", got.CountryCode)
	assert.False(t, got.OnboardingDone)
}

func TestUserStorage_GetNotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStorage(db, zap.NewNop().Sugar())

	_, err := store.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserStorage_DefaultLanguage(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStorage(db, zap.NewNop().Sugar())
	ctx := context.Background()

	user := &core.User{ID: 1}
	require.NoError(t, store.Upsert(ctx, user))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, core.LanguageEN, got.Language)
}

// TestUserStorage_UpsertPreservesSearches verifies a profile refresh never
// resets the lifetime search counter.
func TestUserStorage_UpsertPreservesSearches(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStorage(db, zap.NewNop().Sugar())
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &core.User{ID: 42, Username: "old"}))
	require.NoError(t, store.IncrementSearches(ctx, 42))
	require.NoError(t, store.IncrementSearches(ctx, 42))

	require.NoError(t, store.Upsert(ctx, &core.User{ID: 42, Username: "new"}))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Username)
	assert.Equal(t, int64(2), got.TotalSearches)
}

func TestUserStorage_SetLanguage(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStorage(db, zap.NewNop().Sugar())
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &core.User{ID: 42}))
	require.NoError(t, store.SetLanguage(ctx, 42, core.LanguageRU))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, core.LanguageRU, got.Language)

	assert.ErrorIs(t, store.SetLanguage(ctx, 999, core.LanguageRU), ErrUserNotFound)
}

func TestUserStorage_CountUsers(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStorage(db, zap.NewNop().Sugar())
	ctx := context.Background()

	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Upsert(ctx, &core.User{ID: 1}))
	require.NoError(t, store.Upsert(ctx, &core.User{ID: 2}))
	require.NoError(t, store.Upsert(ctx, &core.User{ID: 1}))

	count, err = store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "upsert of an existing user adds nothing")
}

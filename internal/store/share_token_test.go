package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/store"
)

func newTestToken(id, cookbookID, tokenStr string) *domain.ShareToken {
	return &domain.ShareToken{
		ID:         id,
		CookbookID: cookbookID,
		Token:      tokenStr,
		CreatedBy:  "user-owner",
		CreatedAt:  time.Now(),
	}
}

func TestCreateShareToken_DuplicateTokenString(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-1", "cb-1", "tok-abc")))

	err := s.CreateShareToken(ctx, newTestToken("shr-2", "cb-1", "tok-abc"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetShareTokenByToken(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-1", "cb-1", "tok-abc")))

	token, err := s.GetShareTokenByToken(ctx, "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "shr-1", token.ID)
	assert.Equal(t, "cb-1", token.CookbookID)

	_, err = s.GetShareTokenByToken(ctx, "tok-missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestIncrementShareTokenUsage(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now()

	max := 2
	tok := newTestToken("shr-1", "cb-1", "tok-abc")
	tok.MaxUsages = &max
	require.NoError(t, s.CreateShareToken(ctx, tok))

	// First two increments succeed
	updated, err := s.IncrementShareTokenUsage(ctx, "shr-1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageCount)

	updated, err = s.IncrementShareTokenUsage(ctx, "shr-1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.UsageCount)

	// Third hits the cap
	_, err = s.IncrementShareTokenUsage(ctx, "shr-1", now)
	require.ErrorIs(t, err, store.ErrTokenDead)

	// Counter did not move past the cap
	stored, err := s.GetShareToken(ctx, "shr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsageCount)
}

func TestIncrementShareTokenUsage_Expired(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	tok := newTestToken("shr-1", "cb-1", "tok-abc")
	tok.ExpiresAt = &past
	require.NoError(t, s.CreateShareToken(ctx, tok))

	_, err := s.IncrementShareTokenUsage(ctx, "shr-1", time.Now())
	require.ErrorIs(t, err, store.ErrTokenDead)
}

func TestIncrementShareTokenUsage_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.IncrementShareTokenUsage(context.Background(), "shr-missing", time.Now())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListShareTokensByCookbook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-1", "cb-1", "tok-1")))
	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-2", "cb-1", "tok-2")))
	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-3", "cb-other", "tok-3")))

	tokens, err := s.ListShareTokensByCookbook(ctx, "cb-1")
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	// Dead tokens still show up in listings
	past := time.Now().Add(-time.Hour)
	dead := newTestToken("shr-4", "cb-1", "tok-4")
	dead.ExpiresAt = &past
	require.NoError(t, s.CreateShareToken(ctx, dead))

	tokens, err = s.ListShareTokensByCookbook(ctx, "cb-1")
	require.NoError(t, err)
	assert.Len(t, tokens, 3)
}

func TestDeleteShareTokensByCookbook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-1", "cb-1", "tok-1")))
	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-2", "cb-1", "tok-2")))
	require.NoError(t, s.CreateShareToken(ctx, newTestToken("shr-3", "cb-other", "tok-3")))

	require.NoError(t, s.DeleteShareTokensByCookbook(ctx, "cb-1"))

	tokens, err := s.ListShareTokensByCookbook(ctx, "cb-1")
	require.NoError(t, err)
	assert.Empty(t, tokens)

	// Token index entries are gone too
	_, err = s.GetShareTokenByToken(ctx, "tok-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Other cookbook untouched
	remaining, err := s.ListShareTokensByCookbook(ctx, "cb-other")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

package service

import (
	"context"
	"testing"

	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookbookCRUD(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")

	cookbook, err := env.cookbooks.Create(ctx, owner.ID, CreateCookbookRequest{
		Name:        "Weeknight Dinners",
		Description: "Quick meals",
	})
	require.NoError(t, err)
	assert.False(t, cookbook.IsPublic)
	assert.Equal(t, owner.ID, cookbook.OwnerID)
	assert.Nil(t, cookbook.CopiedFrom)

	got, err := env.cookbooks.Get(ctx, cookbook.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weeknight Dinners", got.Name)

	updated, err := env.cookbooks.Update(ctx, cookbook.ID, owner.ID, UpdateCookbookRequest{
		Name: strPtr("Weeknight Winners"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Weeknight Winners", updated.Name)
	assert.Equal(t, "Quick meals", updated.Description)

	require.NoError(t, env.cookbooks.Delete(ctx, cookbook.ID, owner.ID))

	_, err = env.cookbooks.Get(ctx, cookbook.ID, owner.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCookbookCreate_Validation(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	_, err := env.cookbooks.Create(context.Background(), "user-x", CreateCookbookRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCookbookOwnership(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")
	stranger := createTestUser(t, env.store, "stranger@example.com", "Stranger")
	private := createTestCookbook(t, env.store, owner.ID, "Private", false)
	public := createTestCookbook(t, env.store, owner.ID, "Public", true)

	// Private cookbooks look missing to strangers
	_, err := env.cookbooks.Get(ctx, private.ID, stranger.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Public cookbooks are readable by anyone
	got, err := env.cookbooks.Get(ctx, public.ID, stranger.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", got.Name)

	// But never writable by non-owners
	_, err = env.cookbooks.Update(ctx, public.ID, stranger.ID, UpdateCookbookRequest{Name: strPtr("Hijacked")})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	err = env.cookbooks.Delete(ctx, public.ID, stranger.ID)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestCookbookList_NewestFirstAndScoped(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	alice := createTestUser(t, env.store, "alice@example.com", "Alice")
	bob := createTestUser(t, env.store, "bob@example.com", "Bob")

	first, err := env.cookbooks.Create(ctx, alice.ID, CreateCookbookRequest{Name: "First"})
	require.NoError(t, err)
	second, err := env.cookbooks.Create(ctx, alice.ID, CreateCookbookRequest{Name: "Second"})
	require.NoError(t, err)
	// Force distinct timestamps regardless of clock resolution
	second.CreatedAt = first.CreatedAt.Add(1)
	require.NoError(t, env.store.Cookbooks.Update(ctx, second.ID, second))

	createTestCookbook(t, env.store, bob.ID, "Bobs", false)

	list, err := env.cookbooks.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Name)
	assert.Equal(t, "First", list[1].Name)
}

func TestCookbookDelete_Cascades(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")
	cookbook := createTestCookbook(t, env.store, owner.ID, "Doomed", false)
	recipe := createTestRecipe(t, env.store, cookbook.ID, owner.ID, "Toast")

	token, err := env.shares.Issue(ctx, cookbook.ID, owner.ID, IssueShareRequest{})
	require.NoError(t, err)

	require.NoError(t, env.cookbooks.Delete(ctx, cookbook.ID, owner.ID))

	_, err = env.recipes.Get(ctx, recipe.ID, owner.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.shares.Resolve(ctx, token.Token)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrExpired)
}

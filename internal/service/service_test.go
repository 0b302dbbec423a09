package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/media/images"
	"github.com/simmerapp/simmer-server/internal/store"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

// testEnv bundles the services under test with their shared store.
type testEnv struct {
	store     *store.Store
	auth      *AuthService
	cookbooks *CookbookService
	recipes   *RecipeService
	shares    *ShareService
}

// setupServiceTest creates the full service stack on a temporary store.
func setupServiceTest(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "simmer-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	imageStorage, err := images.NewStorage(filepath.Join(tmpDir, "images"))
	require.NoError(t, err)

	cookbooks := NewCookbookService(s, imageStorage, logger)

	env := &testEnv{
		store:     s,
		auth:      NewAuthService(s, tokenService, logger),
		cookbooks: cookbooks,
		recipes:   NewRecipeService(s, imageStorage, logger),
		shares:    NewShareService(s, cookbooks, logger),
	}

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return env, cleanup
}

// createTestUser creates a user directly in the store.
func createTestUser(t *testing.T, s *store.Store, email, displayName string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           id.MustGenerate("user"),
		Email:        email,
		PasswordHash: "unused",
		DisplayName:  displayName,
	}
	user.InitTimestamps()

	require.NoError(t, s.Users.Create(context.Background(), user.ID, user))
	return user
}

// createTestCookbook creates a cookbook directly in the store.
func createTestCookbook(t *testing.T, s *store.Store, ownerID, name string, isPublic bool) *domain.Cookbook {
	t.Helper()

	cookbook := &domain.Cookbook{
		ID:       id.MustGenerate("cb"),
		OwnerID:  ownerID,
		Name:     name,
		IsPublic: isPublic,
	}
	cookbook.InitTimestamps()

	require.NoError(t, s.Cookbooks.Create(context.Background(), cookbook.ID, cookbook))
	return cookbook
}

// createTestRecipe creates a recipe directly in the store.
func createTestRecipe(t *testing.T, s *store.Store, cookbookID, ownerID, title string) *domain.Recipe {
	t.Helper()

	recipe := &domain.Recipe{
		ID:         id.MustGenerate("rcp"),
		CookbookID: cookbookID,
		OwnerID:    ownerID,
		Title:      title,
		Ingredients: []domain.Ingredient{
			{Item: "salt", Amount: "1 tsp"},
		},
		Instructions: []string{"Season", "Cook"},
	}
	recipe.InitTimestamps()

	require.NoError(t, s.CreateRecipe(context.Background(), recipe))
	return recipe
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

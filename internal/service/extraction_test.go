package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"log/slog"
	"testing"

	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor returns canned results without calling any model.
type fakeExtractor struct {
	recipe *extract.Recipe
	err    error
}

func (f *fakeExtractor) FromURL(context.Context, string) (*extract.Recipe, error) {
	return f.recipe, f.err
}

func (f *fakeExtractor) FromImage(context.Context, []byte, string) (*extract.Recipe, error) {
	return f.recipe, f.err
}

func setupExtractionTest(t *testing.T, extractor extract.Extractor) (*ExtractionService, *testEnv, func()) {
	t.Helper()
	env, cleanup := setupServiceTest(t)
	svc := NewExtractionService(env.store, env.recipes, extractor, slog.New(slog.DiscardHandler))
	return svc, env, cleanup
}

func TestExtractFromURL(t *testing.T) {
	extractor := &fakeExtractor{recipe: &extract.Recipe{
		Title:        "Shakshuka",
		Description:  "Eggs in tomato sauce",
		Ingredients:  []extract.Ingredient{{Item: "eggs", Amount: "4"}, {Item: "tomatoes"}},
		Instructions: []string{"Simmer sauce", "Crack in eggs"},
		ImageURL:     "https://img.example.com/shakshuka.jpg",
		Servings:     "2-3",
	}}

	svc, env, cleanup := setupExtractionTest(t, extractor)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")
	cookbook := createTestCookbook(t, env.store, owner.ID, "Brunch", false)

	recipe, err := svc.FromURL(ctx, owner.ID, ExtractURLRequest{
		URL:        "https://recipes.example.com/shakshuka",
		CookbookID: cookbook.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Shakshuka", recipe.Title)
	assert.Equal(t, "https://recipes.example.com/shakshuka", recipe.OriginalURL)
	assert.Equal(t, "https://img.example.com/shakshuka.jpg", recipe.ImageURL)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "eggs", recipe.Ingredients[0].Item)

	// The recipe landed in the cookbook
	list, err := env.recipes.ListByCookbook(ctx, cookbook.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExtractFromURL_Guards(t *testing.T) {
	svc, env, cleanup := setupExtractionTest(t, &fakeExtractor{recipe: &extract.Recipe{Title: "X"}})
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")
	stranger := createTestUser(t, env.store, "stranger@example.com", "Stranger")
	cookbook := createTestCookbook(t, env.store, owner.ID, "Book", false)

	_, err := svc.FromURL(ctx, stranger.ID, ExtractURLRequest{
		URL:        "https://recipes.example.com/x",
		CookbookID: cookbook.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = svc.FromURL(ctx, owner.ID, ExtractURLRequest{
		URL:        "not a url",
		CookbookID: cookbook.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestExtract_NotConfigured(t *testing.T) {
	svc, env, cleanup := setupExtractionTest(t, &fakeExtractor{err: extract.ErrNotConfigured})
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")
	cookbook := createTestCookbook(t, env.store, owner.ID, "Book", false)

	_, err := svc.FromURL(ctx, owner.ID, ExtractURLRequest{
		URL:        "https://recipes.example.com/x",
		CookbookID: cookbook.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
}

func TestExtractFromImage_StoresPhoto(t *testing.T) {
	extractor := &fakeExtractor{recipe: &extract.Recipe{
		Title:        "Grandma's Casserole",
		Ingredients:  []extract.Ingredient{{Item: "potatoes"}},
		Instructions: []string{"Layer", "Bake"},
	}}

	svc, env, cleanup := setupExtractionTest(t, extractor)
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")
	cookbook := createTestCookbook(t, env.store, owner.ID, "Heirlooms", false)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 50, 50)), nil))

	recipe, err := svc.FromImage(ctx, owner.ID, cookbook.ID, buf.Bytes(), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "Grandma's Casserole", recipe.Title)
	// The uploaded photo became the recipe image
	assert.Equal(t, "/api/v1/recipes/"+recipe.ID+"/image", recipe.ImageURL)
	assert.NotEmpty(t, recipe.BlurHash)

	data, _, err := env.recipes.GetImage(ctx, recipe.ID, owner.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestExtractFromImage_Validation(t *testing.T) {
	svc, env, cleanup := setupExtractionTest(t, &fakeExtractor{recipe: &extract.Recipe{Title: "X"}})
	defer cleanup()
	ctx := context.Background()

	owner := createTestUser(t, env.store, "owner@example.com", "Owner")

	_, err := svc.FromImage(ctx, owner.ID, "", []byte("data"), "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.FromImage(ctx, owner.ID, "cb-x", nil, "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

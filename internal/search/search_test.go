package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/domain"
)

func setupTestIndex(t *testing.T) *RecipeIndex {
	t.Helper()

	idx, err := NewRecipeIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func testRecipe(id, ownerID, cookbookID, title string, ingredients ...string) *domain.Recipe {
	ings := make([]domain.Ingredient, 0, len(ingredients))
	for _, item := range ingredients {
		ings = append(ings, domain.Ingredient{Item: item})
	}
	r := &domain.Recipe{
		ID:          id,
		OwnerID:     ownerID,
		CookbookID:  cookbookID,
		Title:       title,
		Ingredients: ings,
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	return r
}

func TestSearch_TitleMatch(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-1", "user-alice", "cb-1", "Tomato Soup", "tomatoes", "basil"))))
	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-2", "user-alice", "cb-1", "Banana Bread", "bananas", "flour"))))

	params := DefaultParams("user-alice")
	params.Query = "tomato"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "rcp-1", result.Hits[0].ID)
	assert.Equal(t, "Tomato Soup", result.Hits[0].Title)
}

func TestSearch_IngredientMatch(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-1", "user-alice", "cb-1", "Weeknight Curry", "chickpeas", "coconut milk"))))

	params := DefaultParams("user-alice")
	params.Query = "chickpeas"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "rcp-1", result.Hits[0].ID)
}

func TestSearch_OwnerScoped(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-1", "user-alice", "cb-1", "Tomato Soup", "tomatoes"))))
	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-2", "user-bob", "cb-2", "Tomato Salad", "tomatoes"))))

	params := DefaultParams("user-bob")
	params.Query = "tomato"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "rcp-2", result.Hits[0].ID)
}

func TestSearch_RequiresOwner(t *testing.T) {
	idx := setupTestIndex(t)

	_, err := idx.Search(context.Background(), Params{Query: "anything"})
	assert.Error(t, err)
}

func TestSearch_CookbookFilter(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-1", "user-alice", "cb-soups", "Tomato Soup", "tomatoes"))))
	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-2", "user-alice", "cb-salads", "Tomato Salad", "tomatoes"))))

	params := DefaultParams("user-alice")
	params.Query = "tomato"
	params.CookbookID = "cb-salads"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "rcp-2", result.Hits[0].ID)
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-1", "user-alice", "cb-1", "Tomato Soup"))))
	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-2", "user-alice", "cb-1", "Banana Bread"))))
	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-3", "user-bob", "cb-2", "Pancakes"))))

	result, err := idx.Search(context.Background(), DefaultParams("user-alice"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestDeleteDocument(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-1", "user-alice", "cb-1", "Tomato Soup", "tomatoes"))))
	require.NoError(t, idx.DeleteDocument("rcp-1"))

	params := DefaultParams("user-alice")
	params.Query = "tomato"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestIndexDocuments_Batch(t *testing.T) {
	idx := setupTestIndex(t)

	docs := []*RecipeDocument{
		RecipeToDocument(testRecipe("rcp-1", "user-alice", "cb-1", "Soup")),
		RecipeToDocument(testRecipe("rcp-2", "user-alice", "cb-1", "Stew")),
		RecipeToDocument(testRecipe("rcp-3", "user-alice", "cb-1", "Broth")),
	}
	require.NoError(t, idx.IndexDocuments(docs))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestRebuild(t *testing.T) {
	idx := setupTestIndex(t)

	require.NoError(t, idx.IndexDocument(RecipeToDocument(
		testRecipe("rcp-1", "user-alice", "cb-1", "Soup"))))
	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

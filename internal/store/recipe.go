package store

import (
	"context"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// Recipe operations wrap the generic entity so the search index stays in
// sync with every write. Index failures are logged, never surfaced: search
// is best-effort and the index can always be rebuilt.

// CreateRecipe persists a new recipe and indexes it for search.
func (s *Store) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	if err := s.Recipes.Create(ctx, recipe.ID, recipe); err != nil {
		return err
	}
	s.indexRecipe(ctx, recipe)
	return nil
}

// UpdateRecipe persists recipe changes and reindexes it for search.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	if err := s.Recipes.Update(ctx, recipe.ID, recipe); err != nil {
		return err
	}
	s.indexRecipe(ctx, recipe)
	return nil
}

// DeleteRecipe removes a recipe and drops it from the search index.
func (s *Store) DeleteRecipe(ctx context.Context, recipeID string) error {
	if err := s.Recipes.Delete(ctx, recipeID); err != nil {
		return err
	}
	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteRecipe(ctx, recipeID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to remove recipe from search index", "recipe_id", recipeID, "error", err)
		}
	}
	return nil
}

// ListRecipesByCookbook returns all recipes in a cookbook.
func (s *Store) ListRecipesByCookbook(ctx context.Context, cookbookID string) ([]*domain.Recipe, error) {
	return s.Recipes.FindByIndex(ctx, "cookbook", cookbookID)
}

// DeleteRecipesByCookbook deletes every recipe in a cookbook.
// Used when the cookbook itself is deleted.
func (s *Store) DeleteRecipesByCookbook(ctx context.Context, cookbookID string) error {
	recipes, err := s.ListRecipesByCookbook(ctx, cookbookID)
	if err != nil {
		return err
	}

	for _, recipe := range recipes {
		if err := s.DeleteRecipe(ctx, recipe.ID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) indexRecipe(ctx context.Context, recipe *domain.Recipe) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexRecipe(ctx, recipe); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index recipe for search", "recipe_id", recipe.ID, "error", err)
	}
}

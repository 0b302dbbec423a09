package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/search"
	"github.com/simmerapp/simmer-server/internal/store"
)

// SearchService runs owner-scoped recipe searches and keeps the index in
// sync with store writes. It implements store.SearchIndexer, so wiring it
// via store.SetSearchIndexer makes every recipe write update the index.
type SearchService struct {
	index  *search.RecipeIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.RecipeIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// SearchParams configures a recipe search from the API surface.
type SearchParams struct {
	Query      string
	CookbookID string
	Limit      int
	Offset     int
	SortBy     string
}

// Search runs a full-text query over the caller's recipes.
func (s *SearchService) Search(ctx context.Context, callerID string, params SearchParams) (*search.Result, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthenticated("authentication required")
	}

	searchParams := search.DefaultParams(callerID)
	searchParams.Query = params.Query
	searchParams.CookbookID = params.CookbookID
	if params.Limit > 0 && params.Limit <= 100 {
		searchParams.Limit = params.Limit
	}
	if params.Offset > 0 {
		searchParams.Offset = params.Offset
	}
	if params.SortBy != "" {
		searchParams.SortBy = params.SortBy
	}

	result, err := s.index.Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}

	return result, nil
}

// IndexRecipe adds or updates one recipe in the search index.
func (s *SearchService) IndexRecipe(_ context.Context, recipe *domain.Recipe) error {
	return s.index.IndexDocument(search.RecipeToDocument(recipe))
}

// DeleteRecipe removes one recipe from the search index.
func (s *SearchService) DeleteRecipe(_ context.Context, recipeID string) error {
	return s.index.DeleteDocument(recipeID)
}

// Reindex drops the search index and rebuilds it from every recipe in the
// store. Used on startup when the mapping version changes and as a repair
// tool.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	docs := make([]*search.RecipeDocument, 0)
	for recipe, err := range s.store.Recipes.List(ctx) {
		if err != nil {
			return 0, fmt.Errorf("list recipes: %w", err)
		}
		docs = append(docs, search.RecipeToDocument(recipe))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index recipes: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Search index rebuilt", "documents", len(docs))
	}

	return len(docs), nil
}

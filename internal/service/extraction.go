package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/extract"
	"github.com/simmerapp/simmer-server/internal/store"
)

// ExtractionService turns webpages and photos into recipes via the
// extractor and the recipe service.
type ExtractionService struct {
	store     *store.Store
	recipes   *RecipeService
	extractor extract.Extractor
	logger    *slog.Logger
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(store *store.Store, recipes *RecipeService, extractor extract.Extractor, logger *slog.Logger) *ExtractionService {
	return &ExtractionService{
		store:     store,
		recipes:   recipes,
		extractor: extractor,
		logger:    logger,
	}
}

// ExtractURLRequest contains the source URL and target cookbook.
type ExtractURLRequest struct {
	URL        string `json:"url" validate:"required,url"`
	CookbookID string `json:"cookbook_id" validate:"required"`
}

// FromURL extracts a recipe from a webpage and saves it into a cookbook
// the caller owns. The source URL is recorded on the recipe.
func (s *ExtractionService) FromURL(ctx context.Context, callerID string, req ExtractURLRequest) (*domain.Recipe, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := ownedCookbook(ctx, s.store, req.CookbookID, callerID); err != nil {
		return nil, err
	}

	extracted, err := s.extractor.FromURL(ctx, req.URL)
	if err != nil {
		return nil, s.mapExtractError(err, "failed to extract recipe from URL")
	}

	createReq := extractedToCreateRequest(extracted)
	createReq.OriginalURL = req.URL

	return s.recipes.Create(ctx, req.CookbookID, callerID, createReq)
}

// FromImage extracts a recipe from a photo and saves it into a cookbook
// the caller owns. The uploaded photo becomes the recipe's image.
func (s *ExtractionService) FromImage(ctx context.Context, callerID, cookbookID string, imageData []byte, mimeType string) (*domain.Recipe, error) {
	if cookbookID == "" {
		return nil, domainerrors.Validation("cookbook_id is required")
	}
	if len(imageData) == 0 {
		return nil, domainerrors.Validation("image data is required")
	}

	if _, err := ownedCookbook(ctx, s.store, cookbookID, callerID); err != nil {
		return nil, err
	}

	extracted, err := s.extractor.FromImage(ctx, imageData, mimeType)
	if err != nil {
		return nil, s.mapExtractError(err, "failed to extract recipe from image")
	}

	recipe, err := s.recipes.Create(ctx, cookbookID, callerID, extractedToCreateRequest(extracted))
	if err != nil {
		return nil, err
	}

	// The photo the user uploaded is the best image we have; store it.
	// The recipe already exists, so a photo failure is logged, not fatal.
	updated, err := s.recipes.UploadImage(ctx, recipe.ID, callerID, imageData)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to store extraction source photo",
				"recipe_id", recipe.ID,
				"error", err,
			)
		}
		return recipe, nil
	}

	return updated, nil
}

// mapExtractError translates extractor failures into domain errors.
func (s *ExtractionService) mapExtractError(err error, msg string) error {
	if errors.Is(err, extract.ErrNotConfigured) {
		return domainerrors.Unavailable("recipe extraction is not configured")
	}
	if s.logger != nil {
		s.logger.Warn("Extraction failed", "error", err)
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, msg)
}

// extractedToCreateRequest maps the extractor's output onto a recipe
// create request.
func extractedToCreateRequest(extracted *extract.Recipe) CreateRecipeRequest {
	ingredients := make([]IngredientInput, 0, len(extracted.Ingredients))
	for _, ing := range extracted.Ingredients {
		if ing.Item == "" {
			continue
		}
		ingredients = append(ingredients, IngredientInput{Item: ing.Item, Amount: ing.Amount})
	}

	return CreateRecipeRequest{
		Title:        extracted.Title,
		Description:  extracted.Description,
		Ingredients:  ingredients,
		Instructions: extracted.Instructions,
		ImageURL:     extracted.ImageURL,
		PrepTime:     extracted.PrepTime,
		CookTime:     extracted.CookTime,
		Servings:     extracted.Servings,
	}
}

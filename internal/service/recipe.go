package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/media/images"
	"github.com/simmerapp/simmer-server/internal/store"
)

// RecipeService handles recipe CRUD and photo storage.
type RecipeService struct {
	store  *store.Store
	images *images.Storage
	logger *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(store *store.Store, imageStorage *images.Storage, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:  store,
		images: imageStorage,
		logger: logger,
	}
}

// IngredientInput is one ingredient line in a create or update request.
type IngredientInput struct {
	Item   string `json:"item" validate:"required,max=200"`
	Amount string `json:"amount" validate:"max=100"`
}

// CreateRecipeRequest contains the data for a new recipe.
type CreateRecipeRequest struct {
	Title        string            `json:"title" validate:"required,max=200"`
	Description  string            `json:"description" validate:"max=5000"`
	Ingredients  []IngredientInput `json:"ingredients" validate:"dive"`
	Instructions []string          `json:"instructions" validate:"dive,max=2000"`
	ImageURL     string            `json:"image_url" validate:"max=2000"`
	OriginalURL  string            `json:"original_url" validate:"omitempty,url"`
	PrepTime     string            `json:"prep_time" validate:"max=50"`
	CookTime     string            `json:"cook_time" validate:"max=50"`
	Servings     string            `json:"servings" validate:"max=50"`
}

// UpdateRecipeRequest contains partial recipe updates.
// Nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Title        *string            `json:"title" validate:"omitnil,min=1,max=200"`
	Description  *string            `json:"description" validate:"omitnil,max=5000"`
	Ingredients  *[]IngredientInput `json:"ingredients" validate:"omitnil,dive"`
	Instructions *[]string          `json:"instructions" validate:"omitnil,dive,max=2000"`
	ImageURL     *string            `json:"image_url" validate:"omitnil,max=2000"`
	PrepTime     *string            `json:"prep_time" validate:"omitnil,max=50"`
	CookTime     *string            `json:"cook_time" validate:"omitnil,max=50"`
	Servings     *string            `json:"servings" validate:"omitnil,max=50"`
}

// Create adds a recipe to a cookbook the caller owns.
func (s *RecipeService) Create(ctx context.Context, cookbookID, callerID string, req CreateRecipeRequest) (*domain.Recipe, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	cookbook, err := ownedCookbook(ctx, s.store, cookbookID, callerID)
	if err != nil {
		return nil, err
	}

	recipeID, err := id.Generate("rcp")
	if err != nil {
		return nil, fmt.Errorf("generate recipe ID: %w", err)
	}

	recipe := &domain.Recipe{
		ID:           recipeID,
		CookbookID:   cookbook.ID,
		OwnerID:      cookbook.OwnerID,
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  toIngredients(req.Ingredients),
		Instructions: req.Instructions,
		ImageURL:     req.ImageURL,
		OriginalURL:  req.OriginalURL,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []domain.Ingredient{}
	}
	if recipe.Instructions == nil {
		recipe.Instructions = []string{}
	}
	recipe.InitTimestamps()

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Recipe created", "recipe_id", recipeID, "cookbook_id", cookbook.ID)
	}

	return recipe, nil
}

// Get returns a recipe the caller may read, resolving visibility through
// the parent cookbook. Hidden and missing are both NotFound.
func (s *RecipeService) Get(ctx context.Context, recipeID, callerID string) (*domain.Recipe, error) {
	recipe, err := s.store.Recipes.Get(ctx, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	if _, err := visibleCookbook(ctx, s.store, recipe.CookbookID, callerID); err != nil {
		return nil, domainerrors.NotFound("recipe not found")
	}

	return recipe, nil
}

// ListByCookbook returns a cookbook's recipes, newest first.
// Hidden or missing cookbooks yield an empty slice, never an error.
func (s *RecipeService) ListByCookbook(ctx context.Context, cookbookID, callerID string) ([]*domain.Recipe, error) {
	if _, err := visibleCookbook(ctx, s.store, cookbookID, callerID); err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			return []*domain.Recipe{}, nil
		}
		return nil, err
	}

	recipes, err := s.store.ListRecipesByCookbook(ctx, cookbookID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	slices.SortFunc(recipes, func(a, b *domain.Recipe) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return recipes, nil
}

// Update applies partial changes to an owned recipe.
func (s *RecipeService) Update(ctx context.Context, recipeID, callerID string, req UpdateRecipeRequest) (*domain.Recipe, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	recipe, err := s.ownedRecipe(ctx, recipeID, callerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Ingredients != nil {
		recipe.Ingredients = toIngredients(*req.Ingredients)
		if recipe.Ingredients == nil {
			recipe.Ingredients = []domain.Ingredient{}
		}
	}
	if req.Instructions != nil {
		recipe.Instructions = *req.Instructions
		if recipe.Instructions == nil {
			recipe.Instructions = []string{}
		}
	}
	if req.ImageURL != nil {
		recipe.ImageURL = *req.ImageURL
	}
	if req.PrepTime != nil {
		recipe.PrepTime = *req.PrepTime
	}
	if req.CookTime != nil {
		recipe.CookTime = *req.CookTime
	}
	if req.Servings != nil {
		recipe.Servings = *req.Servings
	}
	recipe.Touch()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	return recipe, nil
}

// Delete removes an owned recipe and its stored photo.
func (s *RecipeService) Delete(ctx context.Context, recipeID, callerID string) error {
	if _, err := s.ownedRecipe(ctx, recipeID, callerID); err != nil {
		return err
	}

	if s.images != nil {
		if err := s.images.Delete(recipeID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to delete recipe image", "recipe_id", recipeID, "error", err)
		}
	}

	if err := s.store.DeleteRecipe(ctx, recipeID); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Recipe deleted", "recipe_id", recipeID)
	}

	return nil
}

// UploadImage stores a photo for an owned recipe. The image is downscaled
// if oversized, a blurhash placeholder is computed, and the recipe's
// image URL is pointed at the serving endpoint.
func (s *RecipeService) UploadImage(ctx context.Context, recipeID, callerID string, imgData []byte) (*domain.Recipe, error) {
	if s.images == nil {
		return nil, domainerrors.Unavailable("image storage is not configured")
	}
	if len(imgData) == 0 {
		return nil, domainerrors.Validation("image data is required")
	}

	recipe, err := s.ownedRecipe(ctx, recipeID, callerID)
	if err != nil {
		return nil, err
	}

	normalized, err := images.Normalize(imgData)
	if err != nil {
		return nil, domainerrors.Validation("unsupported or corrupt image").WithCause(err)
	}

	if err := s.images.Save(recipeID, normalized); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	recipe.ImageURL = recipeImageURL(recipeID)
	if hash, err := images.ComputeBlurHash(normalized); err == nil {
		recipe.BlurHash = hash
	} else if s.logger != nil {
		s.logger.Warn("Failed to compute blurhash", "recipe_id", recipeID, "error", err)
	}
	recipe.Touch()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	return recipe, nil
}

// GetImage returns the stored photo bytes and content hash for a recipe
// the caller may read.
func (s *RecipeService) GetImage(ctx context.Context, recipeID, callerID string) ([]byte, string, error) {
	if s.images == nil {
		return nil, "", domainerrors.Unavailable("image storage is not configured")
	}

	if _, err := s.Get(ctx, recipeID, callerID); err != nil {
		return nil, "", err
	}

	if !s.images.Exists(recipeID) {
		return nil, "", domainerrors.NotFound("recipe has no image")
	}

	data, err := s.images.Get(recipeID)
	if err != nil {
		return nil, "", fmt.Errorf("get image: %w", err)
	}

	hash, err := s.images.Hash(recipeID)
	if err != nil {
		return nil, "", fmt.Errorf("hash image: %w", err)
	}

	return data, hash, nil
}

// recipeImageURL is the API path a locally stored recipe photo is served
// from. Recipes created from external URLs keep their remote image URL
// instead.
func recipeImageURL(recipeID string) string {
	return "/api/v1/recipes/" + recipeID + "/image"
}

// ownedRecipe loads a recipe and verifies strict ownership.
func (s *RecipeService) ownedRecipe(ctx context.Context, recipeID, callerID string) (*domain.Recipe, error) {
	recipe, err := s.store.Recipes.Get(ctx, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	if recipe.OwnerID != callerID {
		return nil, domainerrors.Unauthorized("you do not own this recipe")
	}

	return recipe, nil
}

func toIngredients(inputs []IngredientInput) []domain.Ingredient {
	if inputs == nil {
		return nil
	}
	out := make([]domain.Ingredient, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, domain.Ingredient{Item: in.Item, Amount: in.Amount})
	}
	return out
}

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/store"
)

// Copy clones a cookbook and all its recipes into a new owner's account.
//
// The copy is always private, carries attribution back to the source, and
// never includes the source's share tokens. Recipes are re-inserted with
// fresh IDs and timestamps but verbatim content; locally stored photos are
// duplicated under the clone's ID. If a recipe insert fails,
// the cookbook and earlier recipes stand; nothing is rolled back.
func (s *CookbookService) Copy(ctx context.Context, sourceCookbookID, newOwnerID, newName string) (*domain.Cookbook, error) {
	source, err := s.store.Cookbooks.Get(ctx, sourceCookbookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("cookbook not found")
		}
		return nil, fmt.Errorf("get source cookbook: %w", err)
	}

	// Attribution records the source owner's name as it is right now.
	// If the owner account is gone the copy still works.
	ownerName := "Unknown"
	if owner, err := s.store.Users.Get(ctx, source.OwnerID); err == nil {
		ownerName = owner.Name()
	}

	name := newName
	if name == "" {
		name = source.Name
	}

	cookbookID, err := id.Generate("cb")
	if err != nil {
		return nil, fmt.Errorf("generate cookbook ID: %w", err)
	}

	now := time.Now()
	cookbook := &domain.Cookbook{
		ID:          cookbookID,
		OwnerID:     newOwnerID,
		Name:        name,
		Description: source.Description,
		IsPublic:    false,
		CopiedFrom: &domain.Attribution{
			CookbookID: source.ID,
			OwnerName:  ownerName,
		},
	}
	cookbook.CreatedAt = now
	cookbook.UpdatedAt = now

	if err := s.store.Cookbooks.Create(ctx, cookbook.ID, cookbook); err != nil {
		return nil, fmt.Errorf("create cookbook copy: %w", err)
	}

	recipes, err := s.store.ListRecipesByCookbook(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("list source recipes: %w", err)
	}

	// Clone in creation order so the copy reads like the original.
	slices.SortFunc(recipes, func(a, b *domain.Recipe) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	for _, recipe := range recipes {
		clone := recipe.CloneInto(cookbook.ID, newOwnerID, now)
		clone.ID, err = id.Generate("rcp")
		if err != nil {
			return nil, fmt.Errorf("generate recipe ID: %w", err)
		}
		s.copyRecipeImage(recipe, clone)
		if err := s.store.CreateRecipe(ctx, clone); err != nil {
			return nil, fmt.Errorf("copy recipe %s: %w", recipe.ID, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Cookbook copied",
			"source_id", source.ID,
			"cookbook_id", cookbook.ID,
			"owner_id", newOwnerID,
			"recipes", len(recipes),
		)
	}

	return cookbook, nil
}

// copyRecipeImage duplicates a locally stored photo so the clone does not
// point back at the source recipe, which the new owner may not be able to
// read and which disappears if the source is deleted. External image URLs
// are left alone. Failures keep the source URL and the copy proceeds.
func (s *CookbookService) copyRecipeImage(source, clone *domain.Recipe) {
	if s.images == nil || source.ImageURL != recipeImageURL(source.ID) {
		return
	}

	imgData, err := s.images.Get(source.ID)
	if err == nil {
		err = s.images.Save(clone.ID, imgData)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to copy recipe image",
				"source_recipe_id", source.ID,
				"recipe_id", clone.ID,
				"error", err,
			)
		}
		return
	}

	clone.ImageURL = recipeImageURL(clone.ID)
}

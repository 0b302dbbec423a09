package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/media/images"
	"github.com/simmerapp/simmer-server/internal/store"
)

// CookbookService handles cookbook CRUD and duplication.
type CookbookService struct {
	store  *store.Store
	images *images.Storage
	logger *slog.Logger
}

// NewCookbookService creates a new cookbook service. The image storage is
// used to duplicate locally stored recipe photos during Copy.
func NewCookbookService(store *store.Store, images *images.Storage, logger *slog.Logger) *CookbookService {
	return &CookbookService{
		store:  store,
		images: images,
		logger: logger,
	}
}

// CreateCookbookRequest contains the data for a new cookbook.
type CreateCookbookRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateCookbookRequest contains partial cookbook updates.
// Nil fields are left unchanged.
type UpdateCookbookRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	IsPublic    *bool   `json:"is_public"`
}

// Create creates a new private cookbook owned by the caller.
func (s *CookbookService) Create(ctx context.Context, callerID string, req CreateCookbookRequest) (*domain.Cookbook, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	cookbookID, err := id.Generate("cb")
	if err != nil {
		return nil, fmt.Errorf("generate cookbook ID: %w", err)
	}

	cookbook := &domain.Cookbook{
		ID:          cookbookID,
		OwnerID:     callerID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    false,
	}
	cookbook.InitTimestamps()

	if err := s.store.Cookbooks.Create(ctx, cookbook.ID, cookbook); err != nil {
		return nil, fmt.Errorf("create cookbook: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Cookbook created", "cookbook_id", cookbookID, "owner_id", callerID)
	}

	return cookbook, nil
}

// List returns the caller's cookbooks, newest first.
func (s *CookbookService) List(ctx context.Context, callerID string) ([]*domain.Cookbook, error) {
	cookbooks, err := s.store.ListCookbooksByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list cookbooks: %w", err)
	}

	slices.SortFunc(cookbooks, func(a, b *domain.Cookbook) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return cookbooks, nil
}

// Get returns a cookbook the caller may read.
func (s *CookbookService) Get(ctx context.Context, cookbookID, callerID string) (*domain.Cookbook, error) {
	return visibleCookbook(ctx, s.store, cookbookID, callerID)
}

// Update applies partial changes to an owned cookbook.
func (s *CookbookService) Update(ctx context.Context, cookbookID, callerID string, req UpdateCookbookRequest) (*domain.Cookbook, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	cookbook, err := ownedCookbook(ctx, s.store, cookbookID, callerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		cookbook.Name = *req.Name
	}
	if req.Description != nil {
		cookbook.Description = *req.Description
	}
	if req.IsPublic != nil {
		cookbook.IsPublic = *req.IsPublic
	}
	cookbook.Touch()

	if err := s.store.Cookbooks.Update(ctx, cookbook.ID, cookbook); err != nil {
		return nil, fmt.Errorf("update cookbook: %w", err)
	}

	return cookbook, nil
}

// Delete removes an owned cookbook together with its recipes and share
// tokens.
func (s *CookbookService) Delete(ctx context.Context, cookbookID, callerID string) error {
	if _, err := ownedCookbook(ctx, s.store, cookbookID, callerID); err != nil {
		return err
	}

	if err := s.store.DeleteCookbookCascade(ctx, cookbookID); err != nil {
		return fmt.Errorf("delete cookbook: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Cookbook deleted", "cookbook_id", cookbookID, "owner_id", callerID)
	}

	return nil
}

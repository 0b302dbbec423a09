package store

import (
	"context"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// ListCookbooksByOwner returns all cookbooks owned by a user.
func (s *Store) ListCookbooksByOwner(ctx context.Context, ownerID string) ([]*domain.Cookbook, error) {
	return s.Cookbooks.FindByIndex(ctx, "owner", ownerID)
}

// DeleteCookbookCascade deletes a cookbook together with its recipes and
// share tokens, in that order. Each step is its own transaction; if a later
// step fails the earlier deletions stand, which leaves the cookbook intact
// and still listable so the caller can retry.
func (s *Store) DeleteCookbookCascade(ctx context.Context, cookbookID string) error {
	if err := s.DeleteRecipesByCookbook(ctx, cookbookID); err != nil {
		return err
	}
	if err := s.DeleteShareTokensByCookbook(ctx, cookbookID); err != nil {
		return err
	}
	return s.Cookbooks.Delete(ctx, cookbookID)
}

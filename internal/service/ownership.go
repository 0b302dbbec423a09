package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/store"
)

// The two ownership predicates live here so every service applies them
// identically. Commands use ownedCookbook (strict), reads use
// visibleCookbook (owner or public).

// ownedCookbook loads a cookbook and verifies strict ownership.
// Missing cookbooks are NotFound; someone else's are Unauthorized.
func ownedCookbook(ctx context.Context, st *store.Store, cookbookID, callerID string) (*domain.Cookbook, error) {
	cookbook, err := st.Cookbooks.Get(ctx, cookbookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("cookbook not found")
		}
		return nil, fmt.Errorf("get cookbook: %w", err)
	}

	if cookbook.OwnerID != callerID {
		return nil, domainerrors.Unauthorized("you do not own this cookbook")
	}

	return cookbook, nil
}

// visibleCookbook loads a cookbook the caller may read (owner or public).
// Hidden and missing both come back as NotFound so callers cannot probe
// for the existence of private cookbooks.
func visibleCookbook(ctx context.Context, st *store.Store, cookbookID, callerID string) (*domain.Cookbook, error) {
	cookbook, err := st.Cookbooks.Get(ctx, cookbookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("cookbook not found")
		}
		return nil, fmt.Errorf("get cookbook: %w", err)
	}

	if !cookbook.VisibleTo(callerID) {
		return nil, domainerrors.NotFound("cookbook not found")
	}

	return cookbook, nil
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/store"
)

// shareTokenSize is the number of random bytes in a share token
// (16 bytes = 128 bits of entropy).
const shareTokenSize = 16

// ShareService handles share token issuance, resolution and redemption.
type ShareService struct {
	store     *store.Store
	cookbooks *CookbookService
	logger    *slog.Logger
}

// NewShareService creates a new share service.
func NewShareService(store *store.Store, cookbooks *CookbookService, logger *slog.Logger) *ShareService {
	return &ShareService{
		store:     store,
		cookbooks: cookbooks,
		logger:    logger,
	}
}

// IssueShareRequest contains the options for a new share token.
type IssueShareRequest struct {
	ExpiresInDays int  `json:"expires_in_days" validate:"omitempty,gte=1"`
	MaxUsages     *int `json:"max_usages" validate:"omitnil,gte=1"`
}

// ResolveResponse is the public preview of a shared cookbook.
type ResolveResponse struct {
	Cookbook    *domain.Cookbook `json:"cookbook"`
	OwnerName   string           `json:"owner_name"`
	RecipeCount int              `json:"recipe_count"`
}

// ShareTokenInfo is a share token with its computed status, for owner
// listings.
type ShareTokenInfo struct {
	*domain.ShareToken
	Status string `json:"status"`
}

// Issue mints a share token for a cookbook the caller owns.
// The token string is the only credential; no expiry and no usage cap
// means the link works forever.
func (s *ShareService) Issue(ctx context.Context, cookbookID, callerID string, req IssueShareRequest) (*domain.ShareToken, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	cookbook, err := ownedCookbook(ctx, s.store, cookbookID, callerID)
	if err != nil {
		return nil, err
	}

	tokenStr, err := generateShareToken()
	if err != nil {
		return nil, fmt.Errorf("generate share token: %w", err)
	}

	tokenID, err := id.Generate("shr")
	if err != nil {
		return nil, fmt.Errorf("generate share token ID: %w", err)
	}

	now := time.Now()
	token := &domain.ShareToken{
		ID:         tokenID,
		CookbookID: cookbook.ID,
		Token:      tokenStr,
		CreatedBy:  callerID,
		UsageCount: 0,
		MaxUsages:  req.MaxUsages,
		CreatedAt:  now,
	}
	if req.ExpiresInDays > 0 {
		expiresAt := now.Add(time.Duration(req.ExpiresInDays) * 24 * time.Hour)
		token.ExpiresAt = &expiresAt
	}

	if err := s.store.CreateShareToken(ctx, token); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Extremely unlikely with 128-bit entropy, but handle it
			return nil, domainerrors.Conflict("share token collision, please try again")
		}
		return nil, fmt.Errorf("create share token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Share token issued",
			"share_id", tokenID,
			"cookbook_id", cookbook.ID,
			"created_by", callerID,
		)
	}

	return token, nil
}

// Resolve previews the cookbook behind a share token. No authentication
// required. Dead and missing tokens are indistinguishable.
func (s *ShareService) Resolve(ctx context.Context, tokenStr string) (*ResolveResponse, error) {
	token, err := s.liveToken(ctx, tokenStr, time.Now())
	if err != nil {
		return nil, err
	}

	cookbook, err := s.store.Cookbooks.Get(ctx, token.CookbookID)
	if err != nil {
		// Cookbook gone but token lingering; same uniform answer
		return nil, domainerrors.InvalidOrExpired()
	}

	ownerName := "Unknown"
	if owner, err := s.store.Users.Get(ctx, cookbook.OwnerID); err == nil {
		ownerName = owner.Name()
	}

	recipes, err := s.store.ListRecipesByCookbook(ctx, cookbook.ID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	return &ResolveResponse{
		Cookbook:    cookbook,
		OwnerName:   ownerName,
		RecipeCount: len(recipes),
	}, nil
}

// Redeem consumes one usage of a share token and copies the cookbook into
// the caller's account.
//
// The usage increment and the copy are separate steps. If the copy fails
// after the increment, that usage is burned; the holder can retry with a
// remaining usage, or ask the owner for a new link. Spending the usage
// first means a failing copy can never be used to clone without limit.
func (s *ShareService) Redeem(ctx context.Context, tokenStr, callerID, newName string) (*domain.Cookbook, error) {
	if callerID == "" {
		return nil, domainerrors.Unauthenticated("authentication required")
	}

	token, err := s.liveToken(ctx, tokenStr, time.Now())
	if err != nil {
		return nil, err
	}

	if _, err := s.store.IncrementShareTokenUsage(ctx, token.ID, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrTokenDead) {
			return nil, domainerrors.InvalidOrExpired()
		}
		return nil, fmt.Errorf("redeem share token: %w", err)
	}

	cookbook, err := s.cookbooks.Copy(ctx, token.CookbookID, callerID, newName)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Share token redeemed",
			"share_id", token.ID,
			"cookbook_id", cookbook.ID,
			"redeemed_by", callerID,
		)
	}

	return cookbook, nil
}

// ListForCookbook returns all share tokens for a cookbook, dead ones
// included, with their computed status. Non-owners get an empty slice,
// never an error.
func (s *ShareService) ListForCookbook(ctx context.Context, cookbookID, callerID string) ([]*ShareTokenInfo, error) {
	cookbook, err := s.store.Cookbooks.Get(ctx, cookbookID)
	if err != nil || cookbook.OwnerID != callerID {
		return []*ShareTokenInfo{}, nil
	}

	tokens, err := s.store.ListShareTokensByCookbook(ctx, cookbookID)
	if err != nil {
		return nil, fmt.Errorf("list share tokens: %w", err)
	}

	now := time.Now()
	infos := make([]*ShareTokenInfo, 0, len(tokens))
	for _, token := range tokens {
		infos = append(infos, &ShareTokenInfo{
			ShareToken: token,
			Status:     token.Status(now),
		})
	}

	return infos, nil
}

// liveToken looks up a share token and checks liveness. Every failure mode
// collapses onto the same InvalidOrExpired error.
func (s *ShareService) liveToken(ctx context.Context, tokenStr string, now time.Time) (*domain.ShareToken, error) {
	if tokenStr == "" {
		return nil, domainerrors.InvalidOrExpired()
	}

	token, err := s.store.GetShareTokenByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidOrExpired()
		}
		return nil, fmt.Errorf("lookup share token: %w", err)
	}

	if !token.IsAlive(now) {
		return nil, domainerrors.InvalidOrExpired()
	}

	return token, nil
}

// generateShareToken generates a cryptographically random, URL-safe token.
func generateShareToken() (string, error) {
	b := make([]byte, shareTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/simmerapp/simmer-server/internal/domain"
)

// Share tokens get hand-rolled badger code instead of the generic Entity:
// redemption needs a read-modify-write of the usage counter inside a single
// transaction, which the Entity API cannot express.
const (
	shareTokenPrefix           = "sharetoken:"
	shareTokenByTokenPrefix    = "sharetoken:idx:token:"    // For public token lookups
	shareTokenByCookbookPrefix = "sharetoken:idx:cookbook:" // For owner listings
)

// CreateShareToken creates a new share token.
// Returns ErrAlreadyExists if the token string is already in use.
func (s *Store) CreateShareToken(ctx context.Context, token *domain.ShareToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(shareTokenPrefix + token.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check share token exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	tokenKey := []byte(shareTokenByTokenPrefix + token.Token)
	cookbookKey := []byte(shareTokenByCookbookPrefix + token.CookbookID + ":" + token.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		// Check if token string is already in use
		_, err := txn.Get(tokenKey)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check token exists: %w", err)
		}

		data, err := json.Marshal(token)
		if err != nil {
			return fmt.Errorf("marshal share token: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Create token index
		if err := txn.Set(tokenKey, []byte(token.ID)); err != nil {
			return err
		}

		// Create cookbook index for listing
		return txn.Set(cookbookKey, []byte{})
	})
}

// GetShareToken retrieves a share token by ID.
func (s *Store) GetShareToken(_ context.Context, id string) (*domain.ShareToken, error) {
	key := []byte(shareTokenPrefix + id)

	var token domain.ShareToken
	if err := s.get(key, &token); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get share token: %w", err)
	}

	return &token, nil
}

// GetShareTokenByToken retrieves a share token by its public token string.
// This is the primary lookup method for the resolve and redeem flows.
func (s *Store) GetShareTokenByToken(ctx context.Context, tokenStr string) (*domain.ShareToken, error) {
	tokenKey := []byte(shareTokenByTokenPrefix + tokenStr)

	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup share token: %w", err)
	}

	return s.GetShareToken(ctx, id)
}

// IncrementShareTokenUsage atomically increments a token's usage counter.
// Liveness is re-checked inside the transaction so two concurrent redemptions
// of a token with one remaining use cannot both succeed.
// Returns ErrNotFound if the token is missing and ErrTokenDead if it has
// expired or reached its cap.
func (s *Store) IncrementShareTokenUsage(ctx context.Context, id string, now time.Time) (*domain.ShareToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(shareTokenPrefix + id)
	var token domain.ShareToken

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get share token: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &token)
		})
		if err != nil {
			return fmt.Errorf("unmarshal share token: %w", err)
		}

		if !token.IsAlive(now) {
			return ErrTokenDead
		}

		token.UsageCount++

		data, err := json.Marshal(&token)
		if err != nil {
			return fmt.Errorf("marshal share token: %w", err)
		}

		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// ListShareTokensByCookbook returns all share tokens for a cookbook,
// dead ones included.
func (s *Store) ListShareTokensByCookbook(ctx context.Context, cookbookID string) ([]*domain.ShareToken, error) {
	prefix := []byte(shareTokenByCookbookPrefix + cookbookID + ":")
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, key[len(prefix):])
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list share tokens: %w", err)
	}

	tokens := make([]*domain.ShareToken, 0, len(ids))
	for _, id := range ids {
		token, err := s.GetShareToken(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // Skip tokens deleted between scan and get
			}
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// DeleteShareToken deletes a share token and its indexes.
// Idempotent - no error if the token does not exist.
func (s *Store) DeleteShareToken(_ context.Context, id string) error {
	key := []byte(shareTokenPrefix + id)

	var token domain.ShareToken
	if err := s.get(key, &token); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Already gone
		}
		return fmt.Errorf("get share token for deletion: %w", err)
	}

	tokenKey := []byte(shareTokenByTokenPrefix + token.Token)
	cookbookKey := []byte(shareTokenByCookbookPrefix + token.CookbookID + ":" + id)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(tokenKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(cookbookKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// DeleteShareTokensByCookbook deletes every share token belonging to a
// cookbook. Used when the cookbook itself is deleted.
func (s *Store) DeleteShareTokensByCookbook(ctx context.Context, cookbookID string) error {
	tokens, err := s.ListShareTokensByCookbook(ctx, cookbookID)
	if err != nil {
		return err
	}

	for _, token := range tokens {
		if err := s.DeleteShareToken(ctx, token.ID); err != nil {
			return fmt.Errorf("delete share token %s: %w", token.ID, err)
		}
	}

	return nil
}

// Package store persists Simmer's entities in a Badger key-value database.
//
// Key layout: "user:<id>", "cookbook:<id>", "recipe:<id>" and
// "sharetoken:<id>" hold JSON documents; "idx:" keys under each prefix hold
// secondary indexes (see Entity and share_token.go).
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/simmerapp/simmer-server/internal/domain"
)

// SearchIndexer is the interface for updating the recipe search index.
// Store uses this to keep search in sync without depending on search
// implementation details.
type SearchIndexer interface {
	IndexRecipe(ctx context.Context, recipe *domain.Recipe) error
	DeleteRecipe(ctx context.Context, recipeID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexRecipe is a no-op.
func (NoopSearchIndexer) IndexRecipe(context.Context, *domain.Recipe) error { return nil }

// DeleteRecipe is a no-op.
func (NoopSearchIndexer) DeleteRecipe(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	Users     *Entity[domain.User]
	Cookbooks *Entity[domain.Cookbook]
	Recipes   *Entity[domain.Recipe]
	Sessions  *Entity[domain.Session]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize generic entities
	store.initUsers()
	store.initCookbooks()
	store.initRecipes()
	store.initSessions()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// normalizeEmail lowercases and trims an email for case-insensitive lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initUsers initializes the Users entity on the store.
// Uses case-insensitive email indexing via normalizeEmail transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithUniqueIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail, // Transform lookups to be case-insensitive
		)
}

// initCookbooks initializes the Cookbooks entity on the store.
// Indexed by owner for per-user listings.
func (s *Store) initCookbooks() {
	s.Cookbooks = NewEntity[domain.Cookbook](s, "cookbook:").
		WithIndex("owner", func(c *domain.Cookbook) []string {
			return []string{c.OwnerID}
		})
}

// initSessions initializes the Sessions entity on the store.
// The refresh token hash is unique so a token maps to exactly one session.
func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.Session](s, "session:").
		WithUniqueIndex("token_hash", func(sess *domain.Session) []string {
			return []string{sess.RefreshTokenHash}
		}).
		WithIndex("user", func(sess *domain.Session) []string {
			return []string{sess.UserID}
		})
}

// initRecipes initializes the Recipes entity on the store.
// Indexed by parent cookbook and by owner.
func (s *Store) initRecipes() {
	s.Recipes = NewEntity[domain.Recipe](s, "recipe:").
		WithIndex("cookbook", func(r *domain.Recipe) []string {
			return []string{r.CookbookID}
		}).
		WithIndex("owner", func(r *domain.Recipe) []string {
			return []string{r.OwnerID}
		})
}

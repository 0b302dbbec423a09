// Package search provides full-text recipe search using Bleve.
// Every query is scoped to a single owner; the index itself is shared.
package search

import (
	"strings"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// RecipeDocument is the document structure for the Bleve index.
//
// Ingredient items are flattened into one text field. Amounts are left out:
// nobody searches for "400g", and indexing them just adds noise.
type RecipeDocument struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`    // Keyword field, scopes every query
	CookbookID  string `json:"cookbook_id"` // Keyword field, optional filter
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Ingredients string `json:"ingredients,omitempty"`
	CreatedAt   int64  `json:"created_at"` // Unix millis
	UpdatedAt   int64  `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *RecipeDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"owner_id":    d.OwnerID,
		"cookbook_id": d.CookbookID,
		"title":       d.Title,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Ingredients != "" {
		m["ingredients"] = d.Ingredients
	}

	return m
}

// RecipeToDocument converts a domain Recipe to a RecipeDocument.
func RecipeToDocument(r *domain.Recipe) *RecipeDocument {
	items := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		items = append(items, ing.Item)
	}

	return &RecipeDocument{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		CookbookID:  r.CookbookID,
		Title:       r.Title,
		Description: r.Description,
		Ingredients: strings.Join(items, " "),
		CreatedAt:   r.CreatedAt.UnixMilli(),
		UpdatedAt:   r.UpdatedAt.UnixMilli(),
	}
}

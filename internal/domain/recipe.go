package domain

import "time"

// Ingredient is a single entry in a recipe's ingredient list.
// Amount is free-form text ("2 cups", "a pinch") and optional.
type Ingredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount,omitempty"`
}

// Recipe belongs to exactly one cookbook. OwnerID is denormalized from the
// parent cookbook at creation time for query efficiency; the parent remains
// the source of truth for visibility checks.
type Recipe struct {
	Timestamps
	ID           string       `json:"id"`
	CookbookID   string       `json:"cookbook_id"`
	OwnerID      string       `json:"owner_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	ImageURL     string       `json:"image_url,omitempty"`
	OriginalURL  string       `json:"original_url,omitempty"`
	PrepTime     string       `json:"prep_time,omitempty"`
	CookTime     string       `json:"cook_time,omitempty"`
	Servings     string       `json:"servings,omitempty"`
	BlurHash     string       `json:"blur_hash,omitempty"`
}

// CloneInto returns a copy of the recipe re-homed under a new cookbook and
// owner. Content fields are carried verbatim; identity and timestamps are
// left for the caller to assign.
func (r *Recipe) CloneInto(cookbookID, ownerID string, now time.Time) *Recipe {
	clone := &Recipe{
		CookbookID:   cookbookID,
		OwnerID:      ownerID,
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  make([]Ingredient, len(r.Ingredients)),
		Instructions: make([]string, len(r.Instructions)),
		ImageURL:     r.ImageURL,
		OriginalURL:  r.OriginalURL,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		BlurHash:     r.BlurHash,
	}
	copy(clone.Ingredients, r.Ingredients)
	copy(clone.Instructions, r.Instructions)
	clone.CreatedAt = now
	clone.UpdatedAt = now
	return clone
}

// Package extract pulls structured recipe data out of webpages and photos
// using the Gemini generateContent API.
package extract

import (
	"context"
	"errors"
)

// Sentinel errors for extraction operations.
var (
	ErrNotConfigured = errors.New("extract: no API key configured")
	ErrEmptyResult   = errors.New("extract: model returned no usable recipe")
)

// Ingredient is a single extracted ingredient line.
type Ingredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount,omitempty"`
}

// Recipe is the structured result of an extraction.
// Field names match the JSON schema the model is prompted to produce.
type Recipe struct {
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	PrepTime     string       `json:"prepTime,omitempty"`
	CookTime     string       `json:"cookTime,omitempty"`
	Servings     string       `json:"servings,omitempty"`
	ImageURL     string       `json:"imageUrl,omitempty"`
}

// Extractor produces recipes from external sources.
// Implemented by Client; tests substitute a fake.
type Extractor interface {
	FromURL(ctx context.Context, pageURL string) (*Recipe, error)
	FromImage(ctx context.Context, imageData []byte, mimeType string) (*Recipe, error)
}

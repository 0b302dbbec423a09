package extract

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGemini returns a test server that answers every generateContent call
// with the given candidate text.
func fakeGemini(t *testing.T, candidateText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.UnmarshalRead(r.Body, &req))
		require.NotEmpty(t, req.Contents)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": candidateText}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.MarshalWrite(w, resp))
	}))
}

func testClient(geminiURL string) *Client {
	c := NewClient("test-key", "gemini-2.0-flash", nil)
	c.baseURL = geminiURL
	return c
}

func TestFromURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:image" content="https://img.example.com/stew.jpg">
			</head><body><h1>Beef Stew</h1><p>2 lbs beef chuck</p></body></html>`)
	}))
	defer page.Close()

	gemini := fakeGemini(t, `{
		"title": "Beef Stew",
		"description": "Hearty winter stew",
		"ingredients": [{"item": "beef chuck", "amount": "2 lbs"}],
		"instructions": ["Brown the beef", "Simmer for 2 hours"],
		"prepTime": "20 mins",
		"cookTime": "2 hours",
		"servings": "6"
	}`)
	defer gemini.Close()

	c := testClient(gemini.URL)
	recipe, err := c.FromURL(context.Background(), page.URL)
	require.NoError(t, err)

	assert.Equal(t, "Beef Stew", recipe.Title)
	assert.Equal(t, "Hearty winter stew", recipe.Description)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "beef chuck", recipe.Ingredients[0].Item)
	assert.Equal(t, "2 lbs", recipe.Ingredients[0].Amount)
	assert.Equal(t, []string{"Brown the beef", "Simmer for 2 hours"}, recipe.Instructions)
	assert.Equal(t, "2 hours", recipe.CookTime)

	// Model reported no image, so the page's og:image fills in
	assert.Equal(t, "https://img.example.com/stew.jpg", recipe.ImageURL)
}

func TestFromURL_ModelImageWins(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta property="og:image" content="https://img.example.com/og.jpg"></head><body>x</body></html>`)
	}))
	defer page.Close()

	gemini := fakeGemini(t, `{"title": "Toast", "ingredients": [], "instructions": [], "imageUrl": "https://img.example.com/model.jpg"}`)
	defer gemini.Close()

	c := testClient(gemini.URL)
	recipe, err := c.FromURL(context.Background(), page.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/model.jpg", recipe.ImageURL)
}

func TestFromImage(t *testing.T) {
	// Model wraps the JSON in a markdown fence, which should be stripped
	gemini := fakeGemini(t, "```json\n{\"title\": \"Pancakes\", \"ingredients\": [{\"item\": \"flour\"}], \"instructions\": [\"Mix\", \"Fry\"]}\n```")
	defer gemini.Close()

	c := testClient(gemini.URL)
	recipe, err := c.FromImage(context.Background(), []byte("fake image bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Title)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "flour", recipe.Ingredients[0].Item)
}

func TestFromImage_EmptyData(t *testing.T) {
	c := testClient("http://unused.invalid")
	_, err := c.FromImage(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("", "gemini-2.0-flash", nil)
	assert.False(t, c.Configured())

	_, err := c.FromURL(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.FromImage(context.Background(), []byte("data"), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseRecipeJSON_MissingTitle(t *testing.T) {
	_, err := parseRecipeJSON(`{"description": "no title here"}`)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestFindOGImage(t *testing.T) {
	assert.Equal(t, "https://x.test/a.jpg", findOGImage(`<html><head><meta property="og:image" content="https://x.test/a.jpg"></head></html>`))
	assert.Empty(t, findOGImage(`<html><head><title>nope</title></head></html>`))
}

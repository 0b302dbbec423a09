package api

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"image"
	"image/jpeg"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/extract"
	"github.com/simmerapp/simmer-server/internal/media/images"
	"github.com/simmerapp/simmer-server/internal/ratelimit"
	"github.com/simmerapp/simmer-server/internal/search"
	"github.com/simmerapp/simmer-server/internal/service"
	"github.com/simmerapp/simmer-server/internal/store"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testJPEG encodes a small valid JPEG.
func testJPEG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30)), nil))
	return buf.Bytes()
}

// fakeExtractor returns a canned recipe without calling any model.
type fakeExtractor struct {
	recipe *extract.Recipe
	err    error
}

func (f *fakeExtractor) FromURL(context.Context, string) (*extract.Recipe, error) {
	return f.recipe, f.err
}

func (f *fakeExtractor) FromImage(context.Context, []byte, string) (*extract.Recipe, error) {
	return f.recipe, f.err
}

// setupServer builds a server on a temporary store with the given
// extractor and rate limiter.
func setupServer(t *testing.T, extractor extract.Extractor, limiter *ratelimit.KeyedRateLimiter) *Server {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "simmer-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	index, err := search.NewRecipeIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)

	imageStorage, err := images.NewStorage(filepath.Join(tmpDir, "images"))
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	cookbooks := service.NewCookbookService(s, imageStorage, logger)
	recipes := service.NewRecipeService(s, imageStorage, logger)
	searchService := service.NewSearchService(index, s, logger)
	s.SetSearchIndexer(searchService)

	t.Cleanup(func() {
		_ = index.Close()
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return NewServer(
		service.NewAuthService(s, tokenService, logger),
		cookbooks,
		recipes,
		service.NewShareService(s, cookbooks, logger),
		searchService,
		service.NewExtractionService(s, recipes, extractor, logger),
		limiter,
		logger,
	)
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of a response envelope into dest.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    jsontext.Value `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "expected success envelope, got %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// registerUser registers an account and returns its auth response.
func registerUser(t *testing.T, srv *Server, email, displayName string) AuthResponse {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":        email,
		"password":     "hunter2hunter2",
		"display_name": displayName,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	decodeData(t, rec, &resp)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := setupServer(t, &fakeExtractor{}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	srv := setupServer(t, &fakeExtractor{}, nil)

	registered := registerUser(t, srv, "cook@example.com", "Cook")
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)
	require.Equal(t, "Bearer", registered.TokenType)

	// The envelope never leaks the password hash
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/users/me", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "password_hash")

	var me UserResponse
	decodeData(t, rec, &me)
	require.Equal(t, "cook@example.com", me.Email)

	// Login works with the same credentials
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Refresh rotates the token pair
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Garbage token is a 401
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/users/me", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// So is a missing header
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCookbookEndpoints(t *testing.T) {
	srv := setupServer(t, &fakeExtractor{}, nil)
	owner := registerUser(t, srv, "owner@example.com", "Owner")
	stranger := registerUser(t, srv, "stranger@example.com", "Stranger")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks", owner.AccessToken, map[string]string{
		"name": "Weeknight Dinners",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		IsPublic bool   `json:"is_public"`
	}
	decodeData(t, rec, &created)
	require.Equal(t, "Weeknight Dinners", created.Name)
	require.False(t, created.IsPublic)

	// Listing shows it
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/cookbooks", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Private cookbooks 404 for strangers
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/cookbooks/"+created.ID, stranger.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Owner can rename
	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/cookbooks/"+created.ID, owner.AccessToken, map[string]string{
		"name": "Weekend Projects",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Stranger cannot delete
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/cookbooks/"+created.ID, stranger.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/cookbooks/"+created.ID, owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecipeEndpoints(t *testing.T) {
	srv := setupServer(t, &fakeExtractor{}, nil)
	owner := registerUser(t, srv, "owner@example.com", "Owner")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks", owner.AccessToken, map[string]string{"name": "Pasta"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var cookbook struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &cookbook)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks/"+cookbook.ID+"/recipes", owner.AccessToken, map[string]any{
		"title":        "Cacio e Pepe",
		"ingredients":  []map[string]string{{"item": "pecorino", "amount": "100g"}},
		"instructions": []string{"Toast pepper", "Toss"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var recipe struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	decodeData(t, rec, &recipe)

	// Missing title fails validation
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks/"+cookbook.ID+"/recipes", owner.AccessToken, map[string]any{
		"description": "no title",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/cookbooks/"+cookbook.ID+"/recipes", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/recipes/"+recipe.ID, owner.AccessToken, map[string]string{
		"title": "Cacio e Pepe, Properly",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/recipes/"+recipe.ID, owner.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/recipes/"+recipe.ID, owner.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecipeImageEndpoints(t *testing.T) {
	srv := setupServer(t, &fakeExtractor{}, nil)
	owner := registerUser(t, srv, "owner@example.com", "Owner")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks", owner.AccessToken, map[string]string{"name": "Bakes"})
	var cookbook struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &cookbook)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks/"+cookbook.ID+"/recipes", owner.AccessToken, map[string]any{"title": "Focaccia"})
	var recipe struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &recipe)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/"+recipe.ID+"/image", bytes.NewReader(testJPEG(t)))
	req.Header.Set("Authorization", "Bearer "+owner.AccessToken)
	upload := httptest.NewRecorder()
	srv.ServeHTTP(upload, req)
	require.Equal(t, http.StatusOK, upload.Code, upload.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/recipes/"+recipe.ID+"/image", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	// Conditional request hits the ETag
	req = httptest.NewRequest(http.MethodGet, "/api/v1/recipes/"+recipe.ID+"/image", nil)
	req.Header.Set("Authorization", "Bearer "+owner.AccessToken)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	srv.ServeHTTP(cached, req)
	require.Equal(t, http.StatusNotModified, cached.Code)
}

func TestShareEndpoints(t *testing.T) {
	srv := setupServer(t, &fakeExtractor{}, nil)
	owner := registerUser(t, srv, "owner@example.com", "Owner")
	recipient := registerUser(t, srv, "recipient@example.com", "Recipient")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks", owner.AccessToken, map[string]string{"name": "Family Recipes"})
	var cookbook struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &cookbook)

	doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks/"+cookbook.ID+"/recipes", owner.AccessToken, map[string]any{"title": "Sunday Roast"})

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks/"+cookbook.ID+"/shares", owner.AccessToken, map[string]any{
		"expires_in_days": 7,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var token struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &token)
	require.NotEmpty(t, token.Token)

	// Resolution is public
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/shares/"+token.Token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resolved struct {
		OwnerName   string `json:"owner_name"`
		RecipeCount int    `json:"recipe_count"`
	}
	decodeData(t, rec, &resolved)
	require.Equal(t, "Owner", resolved.OwnerName)
	require.Equal(t, 1, resolved.RecipeCount)

	// Redemption needs an account
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/shares/"+token.Token+"/redeem", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/shares/"+token.Token+"/redeem", recipient.AccessToken, map[string]string{
		"name": "Their Family Recipes",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var copied struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, rec, &copied)
	require.NotEqual(t, cookbook.ID, copied.ID)
	require.Equal(t, "Their Family Recipes", copied.Name)

	// Unknown tokens are indistinguishable from expired ones
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/shares/never-issued", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractEndpoints(t *testing.T) {
	extractor := &fakeExtractor{recipe: &extract.Recipe{
		Title:        "Pad Thai",
		Ingredients:  []extract.Ingredient{{Item: "rice noodles"}},
		Instructions: []string{"Soak", "Stir fry"},
	}}
	srv := setupServer(t, extractor, nil)
	owner := registerUser(t, srv, "owner@example.com", "Owner")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks", owner.AccessToken, map[string]string{"name": "Takeout"})
	var cookbook struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &cookbook)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/extract/url", owner.AccessToken, map[string]string{
		"url":         "https://recipes.example.com/pad-thai",
		"cookbook_id": cookbook.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var recipe struct {
		Title       string `json:"title"`
		OriginalURL string `json:"original_url"`
	}
	decodeData(t, rec, &recipe)
	require.Equal(t, "Pad Thai", recipe.Title)
	require.Equal(t, "https://recipes.example.com/pad-thai", recipe.OriginalURL)

	// Unauthenticated callers never reach the model
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/extract/url", "", map[string]string{
		"url":         "https://recipes.example.com/pad-thai",
		"cookbook_id": cookbook.ID,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractRateLimit(t *testing.T) {
	extractor := &fakeExtractor{recipe: &extract.Recipe{Title: "Soup"}}

	// One request, then a long wait
	limiter := ratelimit.New(0.001, 1)
	defer limiter.Stop()

	srv := setupServer(t, extractor, limiter)
	owner := registerUser(t, srv, "owner@example.com", "Owner")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks", owner.AccessToken, map[string]string{"name": "Soups"})
	var cookbook struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &cookbook)

	body := map[string]string{
		"url":         "https://recipes.example.com/soup",
		"cookbook_id": cookbook.ID,
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/extract/url", owner.AccessToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/extract/url", owner.AccessToken, body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	srv := setupServer(t, &fakeExtractor{}, nil)
	owner := registerUser(t, srv, "owner@example.com", "Owner")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks", owner.AccessToken, map[string]string{"name": "Everything"})
	var cookbook struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &cookbook)

	doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks/"+cookbook.ID+"/recipes", owner.AccessToken, map[string]any{"title": "Miso Ramen"})
	doJSON(t, srv, http.MethodPost, "/api/v1/cookbooks/"+cookbook.ID+"/recipes", owner.AccessToken, map[string]any{"title": "Apple Pie"})

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/search/recipes?q=ramen", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Total uint64 `json:"total"`
	}
	decodeData(t, rec, &result)
	require.Equal(t, uint64(1), result.Total)
}

package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/service"
	"github.com/simmerapp/simmer-server/internal/util"
)

// handleCreateRecipe creates a recipe inside an owned cookbook.
func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRecipeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	recipe, err := s.recipeService.Create(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, recipe, s.logger)
}

// handleListRecipes lists a cookbook's recipes, newest first.
// Hidden or missing cookbooks yield an empty list.
func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipeService.ListByCookbook(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, recipes, s.logger)
}

// handleGetRecipe returns a single recipe if its cookbook is visible.
func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.recipeService.Get(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, recipe, s.logger)
}

// handleUpdateRecipe applies a partial update to an owned recipe.
func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRecipeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	recipe, err := s.recipeService.Update(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, recipe, s.logger)
}

// handleDeleteRecipe deletes an owned recipe.
func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.recipeService.Delete(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleUploadRecipeImage stores a photo for an owned recipe.
// The raw image bytes come in the request body.
func (s *Server) handleUploadRecipeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBody)
	imgData, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Failed to read image data", s.logger)
		return
	}

	recipe, err := s.recipeService.UploadImage(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()), imgData)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, recipe, s.logger)
}

// handleGetRecipeImage serves a recipe photo with ETag caching.
func (s *Server) handleGetRecipeImage(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")
	callerID := getUserID(r.Context())

	recipe, err := s.recipeService.Get(r.Context(), recipeID, callerID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	data, hash, err := s.recipeService.GetImage(r.Context(), recipeID, callerID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	etag := `"` + hash + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Disposition", `inline; filename="`+util.Slugify(recipe.Title)+`.jpg"`)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write image response", "error", err)
	}
}

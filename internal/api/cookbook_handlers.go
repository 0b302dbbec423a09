package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/service"
)

// handleCreateCookbook creates a new private cookbook for the caller.
func (s *Server) handleCreateCookbook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCookbookRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cookbook, err := s.cookbookService.Create(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, cookbook, s.logger)
}

// handleListCookbooks returns the caller's cookbooks, newest first.
func (s *Server) handleListCookbooks(w http.ResponseWriter, r *http.Request) {
	cookbooks, err := s.cookbookService.List(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cookbooks, s.logger)
}

// handleGetCookbook returns a single cookbook if visible to the caller.
func (s *Server) handleGetCookbook(w http.ResponseWriter, r *http.Request) {
	cookbook, err := s.cookbookService.Get(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cookbook, s.logger)
}

// handleUpdateCookbook applies a partial update to an owned cookbook.
func (s *Server) handleUpdateCookbook(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateCookbookRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cookbook, err := s.cookbookService.Update(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cookbook, s.logger)
}

// handleDeleteCookbook deletes an owned cookbook with everything in it.
func (s *Server) handleDeleteCookbook(w http.ResponseWriter, r *http.Request) {
	if err := s.cookbookService.Delete(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

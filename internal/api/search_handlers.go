package api

import (
	"net/http"
	"strconv"

	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/service"
)

// handleSearchRecipes searches the caller's own recipes.
func (s *Server) handleSearchRecipes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := service.SearchParams{
		Query:      query.Get("q"),
		CookbookID: query.Get("cookbook_id"),
		SortBy:     query.Get("sort"),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			params.Offset = offset
		}
	}

	result, err := s.searchService.Search(r.Context(), getUserID(r.Context()), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

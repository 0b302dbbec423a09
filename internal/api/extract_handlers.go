package api

import (
	"net/http"

	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/service"
)

// ExtractImageRequest is the request body for photo extraction.
// The image travels base64-encoded in the JSON body.
type ExtractImageRequest struct {
	CookbookID string `json:"cookbook_id"`
	Image      []byte `json:"image"`
	MimeType   string `json:"mime_type"`
}

// handleExtractFromURL runs AI extraction on a webpage and saves the result.
func (s *Server) handleExtractFromURL(w http.ResponseWriter, r *http.Request) {
	var req service.ExtractURLRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	recipe, err := s.extractionService.FromURL(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, recipe, s.logger)
}

// handleExtractFromImage runs AI extraction on an uploaded photo.
func (s *Server) handleExtractFromImage(w http.ResponseWriter, r *http.Request) {
	var req ExtractImageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	recipe, err := s.extractionService.FromImage(r.Context(), getUserID(r.Context()), req.CookbookID, req.Image, req.MimeType)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, recipe, s.logger)
}

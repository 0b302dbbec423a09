package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/service"
)

// RedeemShareRequest is the request body for redeeming a share link.
type RedeemShareRequest struct {
	Name string `json:"name"` // Optional name for the copied cookbook
}

// handleIssueShare creates a share token for an owned cookbook.
func (s *Server) handleIssueShare(w http.ResponseWriter, r *http.Request) {
	var req service.IssueShareRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	token, err := s.shareService.Issue(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, token, s.logger)
}

// handleListShares lists a cookbook's share tokens. Owners see everything,
// everyone else gets an empty list.
func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.shareService.ListForCookbook(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tokens, s.logger)
}

// handleResolveShare previews the cookbook behind a share token.
// Public: recipients do not need an account to look.
func (s *Server) handleResolveShare(w http.ResponseWriter, r *http.Request) {
	resolved, err := s.shareService.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resolved, s.logger)
}

// handleRedeemShare copies the shared cookbook into the caller's account.
func (s *Server) handleRedeemShare(w http.ResponseWriter, r *http.Request) {
	var req RedeemShareRequest
	if r.ContentLength > 0 {
		if !s.decodeJSON(w, r, &req) {
			return
		}
	}

	cookbook, err := s.shareService.Redeem(r.Context(), chi.URLParam(r, "token"), getUserID(r.Context()), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, cookbook, s.logger)
}

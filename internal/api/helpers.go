package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/simmerapp/simmer-server/internal/http/response"
)

const (
	// maxJSONBody caps JSON request bodies. Extraction photos ride in a
	// base64 field, so this has to fit a normalized phone picture.
	maxJSONBody = 15 << 20

	// maxImageBody caps raw image uploads.
	maxImageBody = 10 << 20
)

// decodeJSON reads and decodes a JSON request body into dest.
// Writes a 400 response and returns false when the body is unreadable.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.UnmarshalRead(r.Body, dest); err != nil {
		response.BadRequest(w, "Invalid JSON request body", s.logger)
		return false
	}

	return true
}

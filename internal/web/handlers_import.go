package web

import (
	"net/http"

	"github.com/JonMunkholm/contactbook/internal/core"
)

// importRequest is the body of POST /api/contacts/import.
type importRequest struct {
	Contacts *[]core.ContactDraft `json:"contacts"`
}

// handleImport runs a bulk import. Batch-level problems (missing, empty or
// oversized array, busy limiter) fail the whole request; item problems are
// reported in the ImportResult with status 200.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(w, r, s.cfg.Import.MaxBodyBytes, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Contacts == nil {
		respondError(w, r, &core.ValidationError{Message: "Contacts array is required"})
		return
	}

	result, err := s.service.ImportContacts(r.Context(), ownerID(r), *req.Contacts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

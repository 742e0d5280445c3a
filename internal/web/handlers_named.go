package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/contactbook/internal/core"
)

// Tags and meeting places share one set of handlers parameterised by kind.

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListNamed(kind core.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.service.ListNamed(r.Context(), ownerID(r), kind)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]core.NamedEntity{listKey(kind): list})
	}
}

// listKey is the envelope field for a list of kind.
func listKey(kind core.EntityKind) string {
	if kind == core.KindMeetingPlace {
		return "meetingPlaces"
	}
	return "tags"
}

func (s *Server) handleCreateNamed(kind core.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
			respondError(w, r, err)
			return
		}
		e, err := s.service.CreateNamed(r.Context(), ownerID(r), kind, req.Name)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func (s *Server) handleRenameNamed(kind core.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
			respondError(w, r, err)
			return
		}
		e, err := s.service.RenameNamed(r.Context(), ownerID(r), kind, chi.URLParam(r, "id"), req.Name)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) handleDeleteNamed(kind core.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.service.DeleteNamed(r.Context(), ownerID(r), kind, chi.URLParam(r, "id")); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

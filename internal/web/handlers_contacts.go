package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/contactbook/internal/core"
)

// maxJSONBody caps non-import request bodies.
const maxJSONBody = 1 << 20

// contactRequest is the body of create and update calls. Dates are strings
// so that plain YYYY-MM-DD values are accepted alongside RFC 3339.
type contactRequest struct {
	Name *string `json:"name"`
	core.ContactFields
	BirthDate      *string           `json:"birthDate"`
	CustomFields   map[string]string `json:"customFields"`
	MetAt          *string           `json:"metAt"`
	TagIDs         *[]string         `json:"tagIds"`
	MeetingPlaceID *string           `json:"meetingPlaceId"`
	Links          *[]core.Link      `json:"links"`
}

// dates parses the optional birthDate and metAt values.
func (req *contactRequest) dates() (birth, met *time.Time, err error) {
	if birth, err = parseDateField("birthDate", req.BirthDate); err != nil {
		return nil, nil, err
	}
	if met, err = parseDateField("metAt", req.MetAt); err != nil {
		return nil, nil, err
	}
	return birth, met, nil
}

func (req *contactRequest) input() (core.ContactInput, error) {
	birth, met, err := req.dates()
	if err != nil {
		return core.ContactInput{}, err
	}

	in := core.ContactInput{
		ContactFields:  req.ContactFields,
		CustomFields:   req.CustomFields,
		MeetingPlaceID: req.MeetingPlaceID,
	}
	in.BirthDate = birth
	if req.Name != nil {
		in.Name = *req.Name
	}
	if met != nil {
		in.MetAt = *met
	}
	if req.TagIDs != nil {
		in.TagIDs = *req.TagIDs
	}
	if req.Links != nil {
		in.Links = *req.Links
	}
	return in, nil
}

func (req *contactRequest) patch() (core.ContactPatch, error) {
	birth, met, err := req.dates()
	if err != nil {
		return core.ContactPatch{}, err
	}

	p := core.ContactPatch{
		Name:           req.Name,
		ContactFields:  req.ContactFields,
		CustomFields:   req.CustomFields,
		MetAt:          met,
		TagIDs:         req.TagIDs,
		MeetingPlaceID: req.MeetingPlaceID,
		Links:          req.Links,
	}
	p.BirthDate = birth
	return p, nil
}

func parseDateField(field string, v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	t, ok := core.ParseDate(*v)
	if !ok {
		return nil, &core.ValidationError{Field: field, Value: *v, Message: "invalid date"}
	}
	return &t, nil
}

// handleListContacts returns the owner's contacts filtered and sorted by
// the query string.
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilterSpec(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}

	list, err := s.service.ListContacts(r.Context(), ownerID(r), spec)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(w, r, err)
		return
	}

	c, err := s.service.CreateContact(r.Context(), ownerID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.GetContact(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		respondError(w, r, err)
		return
	}

	c, err := s.service.UpdateContact(r.Context(), ownerID(r), chi.URLParam(r, "id"), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteContact(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllContacts(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.DeleteAllContacts(r.Context(), ownerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
}

type photoRequest struct {
	PhotoURL string `json:"photoUrl"`
}

func (s *Server) handleSetPhoto(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.PhotoURL) == "" {
		respondError(w, r, &core.ValidationError{Field: "photoUrl", Message: "Photo URL is required"})
		return
	}

	c, err := s.service.SetContactPhoto(r.Context(), ownerID(r), chi.URLParam(r, "id"), &req.PhotoURL)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.SetContactPhoto(r.Context(), ownerID(r), chi.URLParam(r, "id"), nil)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

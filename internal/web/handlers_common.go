package web

// handlers_common.go holds query parsing shared by the list endpoints.

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/contactbook/internal/core"
)

// parseFilterSpec builds a FilterSpec from list query parameters:
//
//	search, tagIds, meetingPlaceIds, gender, hasContact,
//	metAtFrom, metAtTo, sortBy, sortOrder
//
// tagIds and meetingPlaceIds may be repeated or comma-separated. Unknown
// parameters are ignored.
func parseFilterSpec(q url.Values) (core.FilterSpec, error) {
	spec := core.FilterSpec{
		Search:          strings.TrimSpace(q.Get("search")),
		TagIDs:          multiValue(q["tagIds"]),
		MeetingPlaceIDs: multiValue(q["meetingPlaceIds"]),
	}

	var err error
	if spec.Gender, err = core.ParseGender(q.Get("gender")); err != nil {
		return core.FilterSpec{}, err
	}

	if v := q.Get("hasContact"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return core.FilterSpec{}, fmt.Errorf("%w: hasContact must be true or false", core.ErrInvalidFilter)
		}
		spec.HasContact = b
	}

	if spec.MetAtFrom, err = parseTimeParam(q, "metAtFrom", false); err != nil {
		return core.FilterSpec{}, err
	}
	if spec.MetAtTo, err = parseTimeParam(q, "metAtTo", true); err != nil {
		return core.FilterSpec{}, err
	}

	if spec.SortBy, err = core.ParseSortField(q.Get("sortBy")); err != nil {
		return core.FilterSpec{}, err
	}
	if spec.SortOrder, err = core.ParseSortOrder(q.Get("sortOrder")); err != nil {
		return core.FilterSpec{}, err
	}
	return spec, nil
}

// parseTimeParam parses an RFC 3339 or date-only value. A date-only upper
// bound is extended to the end of that day so the range stays inclusive.
func parseTimeParam(q url.Values, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", core.ErrInvalidFilter, name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// multiValue flattens repeated and comma-separated values, dropping blanks.
func multiValue(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	body := map[string]any{"status": "ok"}
	if l := s.service.Limiter(); l != nil {
		body["imports"] = l.Status()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context(), ownerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

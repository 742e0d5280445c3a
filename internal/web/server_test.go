package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/contactbook/internal/config"
	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/store"
)

const testOwner = "owner-1"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Import: config.ImportConfig{MaxConcurrent: 2, MaxWaitTime: time.Second, Timeout: time.Minute, MaxBodyBytes: 1 << 20},
		Rate:   config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{
			EnableCSP:   true,
			OwnerHeader: "X-Owner-ID",
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	ctx := context.Background()
	st, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() })

	svc := core.NewService(st,
		core.WithImportLimiter(core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
		core.WithImportTimeout(cfg.Import.Timeout),
	)
	srv := NewServer(svc, cfg)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

// do sends a request as testOwner and decodes a JSON response into out.
func do(t *testing.T, srv *Server, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", testOwner)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func TestImportEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	var result core.ImportResult
	rec := do(t, srv, http.MethodPost, "/api/contacts/import", map[string]any{
		"contacts": []map[string]any{
			{"name": "Ann", "tags": []string{"Work"}, "meetingPlace": "Cafe"},
			{"name": 42},
			{"name": "Bob", "tags": []string{"work"}, "metAt": "2023-04-01"},
		},
	}, &result)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{`Failed to import "unnamed": Name is required`}, result.Errors)

	var tags struct {
		Tags []core.NamedEntity `json:"tags"`
	}
	do(t, srv, http.MethodGet, "/api/tags", nil, &tags)
	require.Len(t, tags.Tags, 1)
	assert.Equal(t, "Work", tags.Tags[0].Name)
}

func TestImportEndpoint_BatchErrors(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tooMany := make([]map[string]string, core.MaxImportBatch+1)
	for i := range tooMany {
		tooMany[i] = map[string]string{"name": fmt.Sprintf("C%d", i)}
	}

	tests := []struct {
		name     string
		body     any
		wantCode string
		wantMsg  string
	}{
		{"missing array", map[string]any{}, "VAL005", "Contacts array is required"},
		{"empty array", map[string]any{"contacts": []any{}}, "IMP001", "Contacts array cannot be empty"},
		{"too many", map[string]any{"contacts": tooMany}, "IMP002", "Cannot import more than 100 contacts at once"},
		{"not json", "{nope", "REQ003", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			rec := do(t, srv, http.MethodPost, "/api/contacts/import", tt.body, &resp)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
		})
	}
}

func TestContactLifecycle(t *testing.T) {
	srv := newTestServer(t, testConfig())

	var tag core.NamedEntity
	rec := do(t, srv, http.MethodPost, "/api/tags", map[string]string{"name": "Friends"}, &tag)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created core.Contact
	rec = do(t, srv, http.MethodPost, "/api/contacts", map[string]any{
		"name":       "  Ann  ",
		"gender":     "female",
		"birthDate":  "1990-02-03",
		"tagIds":     []string{tag.ID},
		"occupation": "Pilot",
		"links":      []map[string]string{{"type": "phone", "value": "+1"}},
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Ann", created.Name)
	require.Len(t, created.Tags, 1)
	require.NotNil(t, created.BirthDate)
	assert.Equal(t, "1990-02-03", created.BirthDate.Format(time.DateOnly))

	var updated core.Contact
	rec = do(t, srv, http.MethodPut, "/api/contacts/"+created.ID, map[string]any{
		"occupation": "Captain",
		"tagIds":     []string{},
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Captain", *updated.Occupation)
	assert.Empty(t, updated.Tags)

	var note core.Note
	rec = do(t, srv, http.MethodPost, "/api/contacts/"+created.ID+"/notes",
		map[string]string{"title": "Met again", "description": "at the airport"}, &note)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got core.Contact
	rec = do(t, srv, http.MethodGet, "/api/contacts/"+created.ID, nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Met again", got.Notes[0].Title)

	rec = do(t, srv, http.MethodPost, "/api/contacts/"+created.ID+"/photo",
		map[string]string{"photoUrl": "https://example.com/ann.jpg"}, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Photo)

	rec = do(t, srv, http.MethodDelete, "/api/contacts/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var resp ErrorResponse
	rec = do(t, srv, http.MethodGet, "/api/contacts/"+created.ID, nil, &resp)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DB002", resp.Code)
}

func TestCreateContact_NameRequired(t *testing.T) {
	srv := newTestServer(t, testConfig())

	var resp ErrorResponse
	rec := do(t, srv, http.MethodPost, "/api/contacts", map[string]any{"name": "  "}, &resp)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required", resp.Message)
}

func TestListContacts_Query(t *testing.T) {
	srv := newTestServer(t, testConfig())

	do(t, srv, http.MethodPost, "/api/contacts/import", map[string]any{
		"contacts": []map[string]any{
			{"name": "Ann", "gender": "female", "meetingPlace": "Zoo", "tags": []string{"a"}},
			{"name": "Bob", "gender": "male", "meetingPlace": "Aquarium", "tags": []string{"b"}},
			{"name": "Cy", "tags": []string{"c"}},
		},
	}, nil)

	var tags struct {
		Tags []core.NamedEntity `json:"tags"`
	}
	do(t, srv, http.MethodGet, "/api/tags", nil, &tags)
	ids := map[string]string{}
	for _, tg := range tags.Tags {
		ids[tg.Name] = tg.ID
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"search", "?search=AN", []string{"Ann"}},
		{"gender", "?gender=male", []string{"Bob"}},
		{"comma separated tags", "?sortBy=name&tagIds=" + ids["a"] + "," + ids["c"], []string{"Ann", "Cy"}},
		{"repeated tags", "?sortBy=name&tagIds=" + ids["b"] + "&tagIds=" + ids["c"], []string{"Bob", "Cy"}},
		{"meeting place sort", "?sortBy=meetingPlace&sortOrder=desc&gender=", []string{"Ann", "Bob", "Cy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list core.ContactList
			rec := do(t, srv, http.MethodGet, "/api/contacts"+tt.query, nil, &list)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			names := make([]string, 0, len(list.Contacts))
			for _, c := range list.Contacts {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), list.Total)
		})
	}
}

func TestListContacts_InvalidQuery(t *testing.T) {
	srv := newTestServer(t, testConfig())

	for _, q := range []string{"?sortBy=shoeSize", "?sortOrder=sideways", "?gender=other", "?metAtFrom=yesterday", "?hasContact=maybe"} {
		t.Run(q, func(t *testing.T) {
			var resp ErrorResponse
			rec := do(t, srv, http.MethodGet, "/api/contacts"+q, nil, &resp)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VAL003", resp.Code)
		})
	}
}

func TestDeleteMeetingPlace_InUse(t *testing.T) {
	srv := newTestServer(t, testConfig())

	do(t, srv, http.MethodPost, "/api/contacts/import", map[string]any{
		"contacts": []map[string]any{{"name": "Ann", "meetingPlace": "Park"}},
	}, nil)

	var places struct {
		MeetingPlaces []core.NamedEntity `json:"meetingPlaces"`
	}
	do(t, srv, http.MethodGet, "/api/meeting-places", nil, &places)
	require.Len(t, places.MeetingPlaces, 1)

	var resp ErrorResponse
	rec := do(t, srv, http.MethodDelete, "/api/meeting-places/"+places.MeetingPlaces[0].ID, nil, &resp)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot delete meeting place: it is used by 1 contact(s)", resp.Message)

	rec = do(t, srv, http.MethodPost, "/api/meeting-places", map[string]string{"name": "park"}, &resp)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DB001", resp.Code)
}

func TestStatsAndDeleteAll(t *testing.T) {
	srv := newTestServer(t, testConfig())

	do(t, srv, http.MethodPost, "/api/contacts/import", map[string]any{
		"contacts": []map[string]any{{"name": "Ann", "tags": []string{"x"}}, {"name": "Bob"}},
	}, nil)

	var stats core.Stats
	rec := do(t, srv, http.MethodGet, "/api/stats", nil, &stats)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, stats.TotalContacts)
	assert.EqualValues(t, 1, stats.TotalTags)
	assert.EqualValues(t, 2, stats.RecentContacts)

	var deleted struct {
		Success bool  `json:"success"`
		Deleted int64 `json:"deleted"`
	}
	rec = do(t, srv, http.MethodDelete, "/api/contacts/all", nil, &deleted)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deleted.Success)
	assert.EqualValues(t, 2, deleted.Deleted)
}

func TestOwnerIsolation(t *testing.T) {
	srv := newTestServer(t, testConfig())

	var created core.Contact
	do(t, srv, http.MethodPost, "/api/contacts", map[string]string{"name": "Ann"}, &created)

	req := httptest.NewRequest(http.MethodGet, "/api/contacts/"+created.ID, nil)
	req.Header.Set("X-Owner-ID", "owner-2")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMissingOwner(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH003")
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"k1", "k2"}
	srv := newTestServer(t, cfg)

	tests := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusForbidden},
		{"k2", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set("X-Owner-ID", testOwner)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "key %q", tt.key)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("X-Owner-ID", testOwner)
	req.Header.Set("Authorization", "Bearer k1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, ImportLimit: 1}
	srv := newTestServer(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestHealthAndHeaders(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"status":"ok"`))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

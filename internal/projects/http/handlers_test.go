package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
	"github.com/filmschedule/filmschedule-backend/internal/projects/repository"
	"github.com/filmschedule/filmschedule-backend/internal/projects/service"
)

type testEnv struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
}

func setupRouter(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	svc := service.NewProjectService(
		repository.NewRedisStore(client, ""),
		service.WithClock(func() time.Time { return now }),
	)

	r := gin.New()
	New(svc).Register(r.Group("/api/projects"))
	return &testEnv{router: r, mr: mr}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeProject(t *testing.T, rr *httptest.ResponseRecorder) domain.Project {
	t.Helper()
	var p domain.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func savePayload(name string, dates ...string) map[string]any {
	days := make([]map[string]any, 0, len(dates))
	for _, d := range dates {
		days = append(days, map[string]any{
			"date": d,
			"rows": []map[string]any{{"type": "item", "time": "08:00", "scene": "1"}},
		})
	}
	return map[string]any{"name": name, "days": days}
}

func TestSaveAndGet(t *testing.T) {
	env := setupRouter(t)

	rr := env.do(t, http.MethodPost, "/api/projects/save", savePayload("Feature", "20-06-2024"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	saved := decodeProject(t, rr)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "15-06-2024 09:00:00", saved.CreatedAt)
	assert.False(t, saved.Archived)

	rr = env.do(t, http.MethodGet, "/api/projects/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeProject(t, rr)
	assert.Equal(t, saved, got)
}

func TestSave_Validation(t *testing.T) {
	env := setupRouter(t)

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", `{"name": `},
		{"missing name", map[string]any{"notes": "x"}},
		{"blank name", map[string]any{"name": "   "}},
		{"bad row type", map[string]any{
			"name": "X",
			"days": []map[string]any{{"date": "01-01-2024", "rows": []map[string]any{{"type": "banner"}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/projects/save", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, false, body["ok"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestList(t *testing.T) {
	env := setupRouter(t)

	env.do(t, http.MethodPost, "/api/projects/save", savePayload("Upcoming", "20-06-2024"))
	env.do(t, http.MethodPost, "/api/projects/save", savePayload("Wrapped", "01-06-2024"))

	rr := env.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var res service.ListResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Active, 1)
	assert.Equal(t, "Upcoming", res.Active[0].Name)
	assert.Empty(t, res.Archived)

	rr = env.do(t, http.MethodGet, "/api/projects?include_archived=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Archived, 1)
	assert.Equal(t, "Wrapped", res.Archived[0].Name)

	rr = env.do(t, http.MethodGet, "/api/projects?include_archived=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdate(t *testing.T) {
	env := setupRouter(t)

	saved := decodeProject(t, env.do(t, http.MethodPost, "/api/projects/save", savePayload("Feature", "20-06-2024")))

	rr := env.do(t, http.MethodPut, "/api/projects/"+saved.ID, savePayload("Feature v2", "01-06-2024"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	up := decodeProject(t, rr)
	assert.Equal(t, saved.ID, up.ID)
	assert.Equal(t, "Feature v2", up.Name)
	assert.True(t, up.Archived)

	rr = env.do(t, http.MethodPut, "/api/projects/prj_missing", savePayload("X"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDelete(t *testing.T) {
	env := setupRouter(t)

	saved := decodeProject(t, env.do(t, http.MethodPost, "/api/projects/save", savePayload("Feature")))

	rr := env.do(t, http.MethodDelete, "/api/projects/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success": true, "message": "Project deleted"}`, rr.Body.String())

	rr = env.do(t, http.MethodDelete, "/api/projects/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"ok": false, "error": "project not found"}`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/projects/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestToggleArchive(t *testing.T) {
	env := setupRouter(t)

	saved := decodeProject(t, env.do(t, http.MethodPost, "/api/projects/save", savePayload("Feature", "20-06-2024")))

	rr := env.do(t, http.MethodPost, "/api/projects/"+saved.ID+"/archive", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success": true, "archived": true, "message": "Project archived"}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/projects/"+saved.ID+"/archive", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success": true, "archived": false, "message": "Project unarchived"}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/projects/prj_missing/archive", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDuplicate(t *testing.T) {
	env := setupRouter(t)

	saved := decodeProject(t, env.do(t, http.MethodPost, "/api/projects/save", savePayload("Feature", "20-06-2024")))

	rr := env.do(t, http.MethodPost, "/api/projects/"+saved.ID+"/duplicate", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cp := decodeProject(t, rr)
	assert.NotEqual(t, saved.ID, cp.ID)
	assert.Equal(t, "Feature (Copy)", cp.Name)
	require.Len(t, cp.Days, 1)
	assert.NotEqual(t, saved.Days[0].ID, cp.Days[0].ID)

	rr = env.do(t, http.MethodPost, "/api/projects/prj_missing/duplicate", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExportCSV(t *testing.T) {
	env := setupRouter(t)

	saved := decodeProject(t, env.do(t, http.MethodPost, "/api/projects/save", savePayload("Night/Shoot", "20-06-2024")))

	rr := env.do(t, http.MethodGet, "/api/projects/"+saved.ID+"/export.csv", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="NightShoot.csv"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "SCHEDULE\nDate,Time,Scene,Location,Cast,Notes\n20-06-2024,08:00,1,,,\n"))

	rr = env.do(t, http.MethodGet, "/api/projects/prj_missing/export.csv", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExportPostedCSV_DoesNotPersist(t *testing.T) {
	env := setupRouter(t)

	rr := env.do(t, http.MethodPost, "/api/projects/export/csv", savePayload("Draft", "20-06-2024"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "20-06-2024,08:00,1")
	assert.Equal(t, `attachment; filename="Draft.csv"`, rr.Header().Get("Content-Disposition"))

	rr = env.do(t, http.MethodGet, "/api/projects?include_archived=true", nil)
	var res service.ListResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Empty(t, res.Active)
	assert.Empty(t, res.Archived)
}

func TestPrint(t *testing.T) {
	env := setupRouter(t)

	saved := decodeProject(t, env.do(t, http.MethodPost, "/api/projects/save", savePayload("Feature", "20-06-2024")))

	rr := env.do(t, http.MethodGet, "/api/projects/"+saved.ID+"/print", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<h1>Feature</h1>")
}

func TestStoreUnavailable(t *testing.T) {
	env := setupRouter(t)
	env.mr.Close()

	rr := env.do(t, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"ok": false, "error": "database unavailable"}`, rr.Body.String())
}

func TestUnknownIDShapedLikeNameKey(t *testing.T) {
	env := setupRouter(t)
	rr := env.do(t, http.MethodPost, "/api/projects/save", savePayload("Feature", "20-06-2024"))
	require.Equal(t, http.StatusOK, rr.Code)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/projects/name:Feature"},
		{http.MethodDelete, "/api/projects/name:Feature"},
		{http.MethodPost, "/api/projects/name:Feature/archive"},
		{http.MethodPost, "/api/projects/name:Feature/duplicate"},
		{http.MethodGet, "/api/projects/name:Feature/export.csv"},
	} {
		rr := env.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, "%s %s", tc.method, tc.path)
	}

	rr = env.do(t, http.MethodPut, "/api/projects/name:Feature", savePayload("Feature"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

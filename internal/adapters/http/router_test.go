package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallyhq/rally/internal/app"
	"github.com/rallyhq/rally/internal/app/orch"
	"github.com/rallyhq/rally/internal/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:          "release",
		StaticPath:    t.TempDir(),
		Secret:        "test-secret",
		AdminPassword: "adminpw",
	}
	o := orch.New(app.NewState())
	o.Seed([]string{"lobby"})
	return SetupRouter(context.Background(), cfg, o, app.NewTokenStore())
}

func doJSON(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adminLogin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/admin/login", `{"password":"adminpw"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestPublicRoomsAPI(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/rooms", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Rooms []string `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"lobby"}, resp.Rooms)
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(r, http.MethodPost, "/api/rooms", `{"name":"den","password":"pw"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/rooms", `{"name":"den","password":"pw"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/rooms", `{"name":"   "}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminAuth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/admin/login", `{"password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/rooms", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/rooms", "", "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := adminLogin(t, r)
	w = doJSON(r, http.MethodGet, "/api/admin/rooms", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	// The admin view carries full metadata, password included.
	assert.Contains(t, w.Body.String(), "password")

	w = doJSON(r, http.MethodPost, "/api/admin/logout", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/admin/rooms", "", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoomCRUD(t *testing.T) {
	r := newTestRouter(t)
	token := adminLogin(t, r)

	w := doJSON(r, http.MethodPost, "/api/admin/rooms", `{"name":"ops","password":"pw"}`, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/admin/rooms/ops", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/admin/rooms/ops", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminBlocklist(t *testing.T) {
	r := newTestRouter(t)
	token := adminLogin(t, r)

	w := doJSON(r, http.MethodPost, "/api/admin/rooms/lobby/block", `{"address":"not-an-ip"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/rooms/lobby/block", `{"address":"10.0.0.7"}`, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/admin/rooms/lobby/block", `{"address":"10.0.0.7"}`, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/admin/rooms/lobby/block", `{"address":"10.0.0.7"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/rooms/nowhere/block", `{"address":"10.0.0.7"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

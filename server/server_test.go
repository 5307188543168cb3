package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dekarrin/kelp/internal/config"
	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/kelpsvc"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		DB:                config.Database{Type: config.DatabaseInMemory},
		TokenSecret:       []byte("test-secret-value-that-is-long-enough-ok"),
		UnauthDelayMillis: -1,
	}.FillDefaults()

	srv, err := New(cfg)
	require.NoError(t, err)
	return srv
}

// seedAdmin creates an admin user directly against the store, bypassing the
// POST /users endpoint the same way cmd/kelpd does on startup, and returns a
// bearer token for that admin.
func seedAdmin(t *testing.T, srv *Server) string {
	t.Helper()
	svc := kelpsvc.Service{DB: srv.store}
	_, err := svc.CreateUser(context.Background(), "root", "toor12345", "", dao.Admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"root","password":"toor12345"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func Test_Server_GetInfo(t *testing.T) {
	require := require.New(t)
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/info", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(http.StatusOK, rec.Code)
}

func Test_Server_FullScriptLifecycle(t *testing.T) {
	require := require.New(t)
	srv := newTestServer(t)
	adminToken := seedAdmin(t, srv)

	// admin provisions a new user
	createUserBody := `{"username":"fronds","password":"kelpforest1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(createUserBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(http.StatusCreated, rec.Code)

	// log in as the new user
	loginBody := `{"username":"fronds","password":"kelpforest1"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(http.StatusCreated, rec.Code)

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.NotEmpty(loginResp.Token)

	// create a script
	scriptBody := `{"name":"greeting","source":"\"hello, kelp\""}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scripts", strings.NewReader(scriptBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(http.StatusCreated, rec.Code)

	var scriptResp struct {
		ID string `json:"id"`
	}
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &scriptResp))
	require.NotEmpty(scriptResp.ID)

	// run it
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scripts/"+scriptResp.ID+"/run", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)

	var runResp struct {
		Output string `json:"output"`
	}
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &runResp))
	require.Equal("hello, kelp", runResp.Output)
}

func Test_Server_ScriptsRequireAuth(t *testing.T) {
	require := require.New(t)
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scripts", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(http.StatusUnauthorized, rec.Code)
}

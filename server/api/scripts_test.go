package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/dao/inmem"
	"github.com/dekarrin/kelp/server/kelpsvc"
	"github.com/dekarrin/kelp/server/middle"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestAPI() API {
	return API{Backend: kelpsvc.Service{DB: inmem.NewDatastore()}}
}

func asUser(req *http.Request, user dao.User) *http.Request {
	ctx := context.WithValue(req.Context(), middle.AuthUser, user)
	return req.WithContext(ctx)
}

func withIDParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func Test_EpCreateScript_Success(t *testing.T) {
	require := require.New(t)
	a := newTestAPI()
	owner := dao.User{ID: uuid.New()}

	body := jsonBody(t, ScriptCreateRequest{Name: "greet", Source: `"hi"`})
	req := httptest.NewRequest(http.MethodPost, "/scripts", body)
	req.Header.Set("Content-Type", "application/json")
	req = asUser(req, owner)

	r := a.epCreateScript(req)
	require.Equal(http.StatusCreated, r.Status)
	require.False(r.IsErr)
}

func Test_EpCreateScript_RejectsMissingName(t *testing.T) {
	require := require.New(t)
	a := newTestAPI()
	owner := dao.User{ID: uuid.New()}

	body := jsonBody(t, ScriptCreateRequest{Source: `1`})
	req := httptest.NewRequest(http.MethodPost, "/scripts", body)
	req.Header.Set("Content-Type", "application/json")
	req = asUser(req, owner)

	r := a.epCreateScript(req)
	require.Equal(http.StatusBadRequest, r.Status)
}

func Test_EpGetScript_ForbiddenForNonOwner(t *testing.T) {
	require := require.New(t)
	a := newTestAPI()
	owner := dao.User{ID: uuid.New(), Username: "owner"}
	other := dao.User{ID: uuid.New(), Username: "other", Role: dao.Normal}

	created, err := a.Backend.CreateScript(context.Background(), owner.ID.String(), "greet", `1`)
	require.NoError(err)

	req := httptest.NewRequest(http.MethodGet, "/scripts/"+created.ID.String(), nil)
	req = withIDParam(req, created.ID.String())
	req = asUser(req, other)

	r := a.epGetScript(req)
	require.Equal(http.StatusForbidden, r.Status)
}

func Test_EpGetScript_AllowedForAdmin(t *testing.T) {
	require := require.New(t)
	a := newTestAPI()
	owner := dao.User{ID: uuid.New(), Username: "owner"}
	admin := dao.User{ID: uuid.New(), Username: "root", Role: dao.Admin}

	created, err := a.Backend.CreateScript(context.Background(), owner.ID.String(), "greet", `1`)
	require.NoError(err)

	req := httptest.NewRequest(http.MethodGet, "/scripts/"+created.ID.String(), nil)
	req = withIDParam(req, created.ID.String())
	req = asUser(req, admin)

	r := a.epGetScript(req)
	require.Equal(http.StatusOK, r.Status)
}

func Test_EpRunScript_ReturnsOutput(t *testing.T) {
	require := require.New(t)
	a := newTestAPI()
	owner := dao.User{ID: uuid.New(), Username: "owner"}

	created, err := a.Backend.CreateScript(context.Background(), owner.ID.String(), "math", `2 + 2`)
	require.NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/scripts/"+created.ID.String()+"/run", nil)
	req = withIDParam(req, created.ID.String())
	req = asUser(req, owner)

	r := a.epRunScript(req)
	require.Equal(http.StatusOK, r.Status)
}

func Test_EpDeleteScript_NotFound(t *testing.T) {
	require := require.New(t)
	a := newTestAPI()
	admin := dao.User{ID: uuid.New(), Role: dao.Admin}

	req := httptest.NewRequest(http.MethodDelete, "/scripts/00000000-0000-0000-0000-000000000000", nil)
	req = withIDParam(req, "00000000-0000-0000-0000-000000000000")
	req = asUser(req, admin)

	r := a.epDeleteScript(req)
	require.Equal(http.StatusNotFound, r.Status)
}

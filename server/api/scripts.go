package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/middle"
	"github.com/dekarrin/kelp/server/result"
	"github.com/dekarrin/kelp/server/serr"
)

func scriptToModel(s dao.Script) ScriptModel {
	return ScriptModel{
		URI:      PathPrefix + "/scripts/" + s.ID.String(),
		ID:       s.ID.String(),
		UserID:   s.UserID.String(),
		Name:     s.Name,
		Source:   s.Source,
		Created:  s.Created.Format(time.RFC3339),
		Modified: s.Modified.Format(time.RFC3339),
	}
}

// HTTPGetAllScripts returns a HandlerFunc that lists scripts. Admins see
// every script in the store; other users see only their own.
func (api API) HTTPGetAllScripts() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllScripts)
}

func (api API) epGetAllScripts(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	var scripts []dao.Script
	var err error
	if user.Role == dao.Admin {
		scripts, err = api.Backend.GetAllScripts(req.Context())
	} else {
		scripts, err = api.Backend.GetAllScriptsByUser(req.Context(), user.ID.String())
	}
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]ScriptModel, len(scripts))
	for i := range scripts {
		resp[i] = scriptToModel(scripts[i])
	}

	return result.OK(resp, "user '%s' got all scripts", user.Username)
}

// HTTPCreateScript returns a HandlerFunc that saves a new script owned by
// the logged-in caller.
func (api API) HTTPCreateScript() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateScript)
}

func (api API) epCreateScript(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	var createReq ScriptCreateRequest
	if err := parseJSON(req, &createReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if createReq.Name == "" {
		return result.BadRequest("name: property is empty or missing from request", "empty name")
	}

	script, err := api.Backend.CreateScript(req.Context(), user.ID.String(), createReq.Name, createReq.Source)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(scriptToModel(script), "user '%s' created script '%s'", user.Username, script.Name)
}

// HTTPGetScript returns a HandlerFunc that fetches a single script. Only the
// owner or an admin may fetch it.
func (api API) HTTPGetScript() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetScript)
}

func (api API) epGetScript(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	script, err := api.Backend.GetScript(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if script.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) get script %s: forbidden", user.Username, user.Role, id)
	}

	return result.OK(scriptToModel(script), "user '%s' got script '%s'", user.Username, script.Name)
}

// HTTPUpdateScript returns a HandlerFunc that replaces a script's name and
// source. Only the owner or an admin may update it.
func (api API) HTTPUpdateScript() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epUpdateScript)
}

func (api API) epUpdateScript(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	existing, err := api.Backend.GetScript(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if existing.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) update script %s: forbidden", user.Username, user.Role, id)
	}

	var updateReq ScriptCreateRequest
	if err := parseJSON(req, &updateReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if updateReq.Name == "" {
		return result.BadRequest("name: property is empty or missing from request", "empty name")
	}

	updated, err := api.Backend.UpdateScript(req.Context(), id.String(), updateReq.Name, updateReq.Source)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		} else if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(scriptToModel(updated), "user '%s' updated script '%s'", user.Username, updated.Name)
}

// HTTPDeleteScript returns a HandlerFunc that deletes a script. Only the
// owner or an admin may delete it.
func (api API) HTTPDeleteScript() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteScript)
}

func (api API) epDeleteScript(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	existing, err := api.Backend.GetScript(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if existing.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete script %s: forbidden", user.Username, user.Role, id)
	}

	deleted, err := api.Backend.DeleteScript(req.Context(), id.String())
	if err != nil && !errors.Is(err, serr.ErrNotFound) {
		return result.InternalServerError("could not delete script: " + err.Error())
	}

	return result.NoContent("user '%s' deleted script '%s'", user.Username, deleted.Name)
}

// HTTPRunScript returns a HandlerFunc that parses (or loads the cached
// parse of) the script's source and evaluates it on a fresh Runtime. Only
// the owner or an admin may run it.
func (api API) HTTPRunScript() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epRunScript)
}

func (api API) epRunScript(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	script, err := api.Backend.GetScript(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if script.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) run script %s: forbidden", user.Username, user.Role, id)
	}

	run, err := api.Backend.RunScript(req.Context(), id.String())
	if err != nil {
		return result.InternalServerError(fmt.Sprintf("could not run script: %s", err.Error()))
	}

	resp := ScriptRunResult{Output: run.Output, Error: run.Error}
	return result.OK(resp, "user '%s' ran script '%s'", user.Username, script.Name)
}

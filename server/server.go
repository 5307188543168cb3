// Package server assembles kelpd, the HTTP front end for saving, listing,
// and running kelp scripts.
package server

import (
	"fmt"
	"net/http"

	"github.com/dekarrin/kelp/internal/config"
	"github.com/dekarrin/kelp/server/api"
	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/dao/inmem"
	"github.com/dekarrin/kelp/server/dao/sqlite"
	"github.com/dekarrin/kelp/server/kelpsvc"
	"github.com/dekarrin/kelp/server/middle"
	"github.com/go-chi/chi/v5"
)

// Server is a fully assembled kelpd instance, ready to be given to
// http.ListenAndServe.
type Server struct {
	router http.Handler
	store  dao.Store
}

// New builds a Server from cfg: it opens the configured persistence backend,
// wires the service and API layers, and assembles the chi router with auth
// and panic-recovery middleware applied per-route the same way as the
// routes require it.
func New(cfg config.Config) (*Server, error) {
	store, err := openStore(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("could not open store: %w", err)
	}

	svc := kelpsvc.Service{DB: store}
	a := api.API{
		Backend:     svc,
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware(middle.DontPanic()))

	required := middle.RequireAuth(store.Users(), cfg.TokenSecret, cfg.UnauthDelay(), dao.User{})
	optional := middle.OptionalAuth(store.Users(), cfg.TokenSecret, cfg.UnauthDelay(), dao.User{})

	r.Route(api.PathPrefix, func(r chi.Router) {
		r.With(chiMiddleware(optional)).Get("/info", a.HTTPGetInfo())

		r.Post("/login", a.HTTPCreateLogin())

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(required))

			r.Delete("/login/{id}", a.HTTPDeleteLogin())
			r.Post("/tokens", a.HTTPCreateToken())

			r.Get("/users", a.HTTPGetAllUsers())
			r.Post("/users", a.HTTPCreateUser())
			r.Get("/users/{id}", a.HTTPGetUser())
			r.Put("/users/{id}", a.HTTPReplaceUser())
			r.Patch("/users/{id}", a.HTTPUpdateUser())
			r.Delete("/users/{id}", a.HTTPDeleteUser())

			r.Get("/scripts", a.HTTPGetAllScripts())
			r.Post("/scripts", a.HTTPCreateScript())
			r.Get("/scripts/{id}", a.HTTPGetScript())
			r.Put("/scripts/{id}", a.HTTPUpdateScript())
			r.Delete("/scripts/{id}", a.HTTPDeleteScript())
			r.Post("/scripts/{id}/run", a.HTTPRunScript())
		})
	})

	return &Server{router: r, store: store}, nil
}

// ListenAndServe starts the server listening on addr. It blocks until the
// server stops, returning the error http.ListenAndServe returned.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Store returns the persistence store backing the server, for use by
// callers that need direct DB access (e.g. to seed an initial admin user).
func (s *Server) Store() dao.Store {
	return s.store
}

func openStore(dbCfg config.Database) (dao.Store, error) {
	switch dbCfg.Type {
	case config.DatabaseInMemory, config.DatabaseNone:
		return inmem.NewDatastore(), nil
	case config.DatabaseSQLite:
		return sqlite.NewDatastore(dbCfg.DataDir)
	default:
		return nil, fmt.Errorf("unsupported DB type: %v", dbCfg.Type)
	}
}

// chiMiddleware adapts a middle.Middleware, which wraps a handler and
// returns a handler, to chi's own middleware function shape (identical
// signature, kept distinct so callers reason about each in its own idiom).
func chiMiddleware(mw middle.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next)
	}
}

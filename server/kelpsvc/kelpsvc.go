// Package kelpsvc has services for interacting with the kelpd backend,
// decoupled from the API that exposes it over HTTP.
package kelpsvc

import (
	"github.com/dekarrin/kelp/server/dao"
)

// Service is a service for interacting with and modifying the kelpd backend.
// It performs the actions requested and makes calls to persistence to
// preserve backend state.
//
// The zero-value of Service is not ready to be used; assign a valid DAO
// store to DB before attempting to use it.
type Service struct {
	// DB is the persistence store of the service.
	DB dao.Store
}

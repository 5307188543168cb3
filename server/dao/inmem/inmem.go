// Package inmem provides an in-memory implementation of dao.Store.
package inmem

import (
	"fmt"

	"github.com/dekarrin/kelp/server/dao"
)

type store struct {
	users   *InMemoryUsersRepository
	scripts *InMemoryScriptsRepository
}

func NewDatastore() dao.Store {
	return &store{
		users:   NewUsersRepository(),
		scripts: NewScriptsRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Scripts() dao.ScriptRepository {
	return s.scripts
}

func (s *store) Close() error {
	var err error

	if uErr := s.users.Close(); uErr != nil {
		err = uErr
	}
	if sErr := s.scripts.Close(); sErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, sErr)
		} else {
			err = sErr
		}
	}

	return err
}

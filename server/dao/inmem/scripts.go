package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/google/uuid"
)

func NewScriptsRepository() *InMemoryScriptsRepository {
	return &InMemoryScriptsRepository{
		scripts: make(map[uuid.UUID]dao.Script),
	}
}

type InMemoryScriptsRepository struct {
	scripts map[uuid.UUID]dao.Script
}

func (imsr *InMemoryScriptsRepository) Close() error {
	return nil
}

func (imsr *InMemoryScriptsRepository) Create(ctx context.Context, s dao.Script) (dao.Script, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Script{}, fmt.Errorf("could not generate ID: %w", err)
	}

	s.ID = newUUID
	now := time.Now()
	s.Created = now
	s.Modified = now

	imsr.scripts[s.ID] = s

	return s, nil
}

func (imsr *InMemoryScriptsRepository) GetAll(ctx context.Context) ([]dao.Script, error) {
	all := make([]dao.Script, 0, len(imsr.scripts))

	for k := range imsr.scripts {
		all = append(all, imsr.scripts[k])
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})

	return all, nil
}

func (imsr *InMemoryScriptsRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Script, error) {
	var all []dao.Script

	for k := range imsr.scripts {
		if imsr.scripts[k].UserID == userID {
			all = append(all, imsr.scripts[k])
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})

	return all, nil
}

func (imsr *InMemoryScriptsRepository) Update(ctx context.Context, id uuid.UUID, s dao.Script) (dao.Script, error) {
	existing, ok := imsr.scripts[id]
	if !ok {
		return dao.Script{}, dao.ErrNotFound
	}

	s.Created = existing.Created
	s.Modified = time.Now()

	imsr.scripts[s.ID] = s
	if s.ID != id {
		delete(imsr.scripts, id)
	}

	return s, nil
}

func (imsr *InMemoryScriptsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	s, ok := imsr.scripts[id]
	if !ok {
		return dao.Script{}, dao.ErrNotFound
	}

	return s, nil
}

func (imsr *InMemoryScriptsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	s, ok := imsr.scripts[id]
	if !ok {
		return dao.Script{}, dao.ErrNotFound
	}

	delete(imsr.scripts, id)

	return s, nil
}

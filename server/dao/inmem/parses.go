package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/simplegrammar/internal/util"
	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/google/uuid"
)

func NewParsesRepository() *InMemoryParsesRepository {
	return &InMemoryParsesRepository{
		parses:       make(map[uuid.UUID]dao.Parse),
		byOwnerIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryParsesRepository struct {
	mtx          sync.RWMutex
	parses       map[uuid.UUID]dao.Parse
	byOwnerIndex map[uuid.UUID][]uuid.UUID
}

func (impr *InMemoryParsesRepository) Close() error {
	return nil
}

func (impr *InMemoryParsesRepository) Create(ctx context.Context, p dao.Parse) (dao.Parse, error) {
	impr.mtx.Lock()
	defer impr.mtx.Unlock()

	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Parse{}, fmt.Errorf("could not generate ID: %w", err)
	}

	p.ID = newUUID
	p.Created = time.Now()

	// stored trees must not change if the caller keeps modifying theirs
	if p.Tree != nil {
		p.Tree = p.Tree.Copy()
	}

	impr.parses[p.ID] = p
	impr.byOwnerIndex[p.OwnerID] = append(impr.byOwnerIndex[p.OwnerID], p.ID)

	return p, nil
}

func sortParses(all []dao.Parse) []dao.Parse {
	return util.SortBy(all, func(l, r dao.Parse) bool {
		if !l.Created.Equal(r.Created) {
			return l.Created.Before(r.Created)
		}
		return l.ID.String() < r.ID.String()
	})
}

func (impr *InMemoryParsesRepository) GetAll(ctx context.Context) ([]dao.Parse, error) {
	impr.mtx.RLock()
	defer impr.mtx.RUnlock()

	all := make([]dao.Parse, 0, len(impr.parses))
	for k := range impr.parses {
		all = append(all, impr.parses[k])
	}

	return sortParses(all), nil
}

func (impr *InMemoryParsesRepository) GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]dao.Parse, error) {
	impr.mtx.RLock()
	defer impr.mtx.RUnlock()

	ids := impr.byOwnerIndex[owner]
	all := make([]dao.Parse, 0, len(ids))
	for _, id := range ids {
		all = append(all, impr.parses[id])
	}

	return sortParses(all), nil
}

func (impr *InMemoryParsesRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Parse, error) {
	impr.mtx.RLock()
	defer impr.mtx.RUnlock()

	p, ok := impr.parses[id]
	if !ok {
		return dao.Parse{}, dao.ErrNotFound
	}

	return p, nil
}

func (impr *InMemoryParsesRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Parse, error) {
	impr.mtx.Lock()
	defer impr.mtx.Unlock()

	p, ok := impr.parses[id]
	if !ok {
		return dao.Parse{}, dao.ErrNotFound
	}

	delete(impr.parses, id)

	owned := impr.byOwnerIndex[p.OwnerID]
	if util.InSlice(id, owned) {
		impr.byOwnerIndex[p.OwnerID] = util.SliceRemove(id, owned)
	}

	return p, nil
}

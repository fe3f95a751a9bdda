package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/google/uuid"
)

func NewUsersRepository() *InMemoryUsersRepository {
	return &InMemoryUsersRepository{
		byID:   make(map[uuid.UUID]dao.User),
		byName: make(map[string]uuid.UUID),
	}
}

// InMemoryUsersRepository keeps users in a map indexed by both ID and
// username.
type InMemoryUsersRepository struct {
	mtx    sync.RWMutex
	byID   map[uuid.UUID]dao.User
	byName map[string]uuid.UUID
}

func (imur *InMemoryUsersRepository) Close() error {
	return nil
}

func (imur *InMemoryUsersRepository) Create(ctx context.Context, user dao.User) (dao.User, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imur.mtx.Lock()
	defer imur.mtx.Unlock()

	if _, taken := imur.byName[user.Username]; taken {
		return dao.User{}, dao.ErrConstraintViolation
	}

	now := time.Now()
	user.ID = id
	user.Created = now
	user.LastLogout = now

	imur.byID[id] = user
	imur.byName[user.Username] = id
	return user, nil
}

func (imur *InMemoryUsersRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	imur.mtx.RLock()
	defer imur.mtx.RUnlock()

	user, ok := imur.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return user, nil
}

func (imur *InMemoryUsersRepository) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	imur.mtx.RLock()
	defer imur.mtx.RUnlock()

	id, ok := imur.byName[username]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return imur.byID[id], nil
}

func (imur *InMemoryUsersRepository) SetLastLogout(ctx context.Context, id uuid.UUID, t time.Time) (dao.User, error) {
	imur.mtx.Lock()
	defer imur.mtx.Unlock()

	user, ok := imur.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	user.LastLogout = t
	imur.byID[id] = user
	return user, nil
}

func (imur *InMemoryUsersRepository) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	imur.mtx.Lock()
	defer imur.mtx.Unlock()

	user, ok := imur.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	delete(imur.byName, user.Username)
	delete(imur.byID, id)
	return user, nil
}

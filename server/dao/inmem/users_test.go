package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_UsersRepository(t *testing.T) {
	assert := assert.New(t)
	repo := NewUsersRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, dao.User{Username: "feferi", Password: "cGFzcw==", Role: dao.Author})
	if !assert.NoError(err) {
		return
	}
	assert.NotEqual(uuid.Nil, u.ID)
	assert.Equal(u.Created, u.LastLogout)

	_, err = repo.Create(ctx, dao.User{Username: "feferi", Password: "x"})
	assert.ErrorIs(err, dao.ErrConstraintViolation)

	out := u.LastLogout.Add(time.Minute)
	updated, err := repo.SetLastLogout(ctx, u.ID, out)
	if assert.NoError(err) {
		assert.Equal(out, updated.LastLogout)
		assert.Equal(dao.Author, updated.Role)
	}

	byName, err := repo.GetByUsername(ctx, "feferi")
	if assert.NoError(err) {
		assert.Equal(out, byName.LastLogout)
	}

	_, err = repo.SetLastLogout(ctx, uuid.New(), out)
	assert.ErrorIs(err, dao.ErrNotFound)

	_, err = repo.Delete(ctx, u.ID)
	assert.NoError(err)
	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(err, dao.ErrNotFound)

	// the username is free again
	_, err = repo.Create(ctx, dao.User{Username: "feferi", Password: "x"})
	assert.NoError(err)
}

package sgs

import (
	"context"
	"errors"
	"time"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/serr"
	"github.com/google/uuid"
)

// Login returns the user with the given credentials. An unknown username and
// a wrong password both give serr.ErrBadCredentials, so callers cannot tell
// which accounts exist.
func (svc Service) Login(ctx context.Context, username, password string) (dao.User, error) {
	user, err := svc.DB.Users().GetByUsername(ctx, username)
	if errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.ErrBadCredentials
	} else if err != nil {
		return dao.User{}, serr.WrapDB("look up user", err)
	}

	ok, err := checkPassword(user, password)
	if err != nil {
		return dao.User{}, serr.New("check password", err)
	}
	if !ok {
		return dao.User{}, serr.ErrBadCredentials
	}
	return user, nil
}

// Logout ends every login of the user with the given ID. Tokens are signed
// with the logout time at second precision, so it is set a second ahead to
// rule out a token issued in the same second surviving.
func (svc Service) Logout(ctx context.Context, id uuid.UUID) (dao.User, error) {
	user, err := svc.DB.Users().SetLastLogout(ctx, id, time.Now().Add(time.Second))
	if errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.ErrNotFound
	} else if err != nil {
		return dao.User{}, serr.WrapDB("record logout", err)
	}
	return user, nil
}

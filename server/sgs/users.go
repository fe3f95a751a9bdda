package sgs

import (
	"context"
	"errors"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/serr"
	"github.com/google/uuid"
)

// CreateUser adds an account. A taken username gives serr.ErrAlreadyExists
// and a blank username or password gives serr.ErrBadArgument.
func (svc Service) CreateUser(ctx context.Context, username, password string, role dao.Role) (dao.User, error) {
	if username == "" {
		return dao.User{}, serr.New("username cannot be blank", serr.ErrBadArgument)
	}
	if password == "" {
		return dao.User{}, serr.New("password cannot be blank", serr.ErrBadArgument)
	}

	hash, err := svc.hashPassword(password)
	if err != nil {
		return dao.User{}, err
	}

	user, err := svc.DB.Users().Create(ctx, dao.User{Username: username, Password: hash, Role: role})
	if errors.Is(err, dao.ErrConstraintViolation) {
		return dao.User{}, serr.New("user '"+username+"'", serr.ErrAlreadyExists)
	} else if err != nil {
		return dao.User{}, serr.WrapDB("create user", err)
	}
	return user, nil
}

// EnsureAdmin creates an admin account with the given credentials unless the
// username is already taken. It returns whether the account was created.
func (svc Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := svc.CreateUser(ctx, username, password, dao.Admin)
	if errors.Is(err, serr.ErrAlreadyExists) {
		return false, nil
	}
	return err == nil, err
}

// DeleteUser removes the user with the given ID along with every parse and
// grammar they own. Parses other users made with those grammars are kept.
func (svc Service) DeleteUser(ctx context.Context, id uuid.UUID) (dao.User, error) {
	user, err := svc.DB.Users().GetByID(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.ErrNotFound
	} else if err != nil {
		return dao.User{}, serr.WrapDB("look up user", err)
	}

	parses, err := svc.DB.Parses().GetAllByOwner(ctx, id)
	if err != nil {
		return dao.User{}, serr.WrapDB("list user's parses", err)
	}
	for _, p := range parses {
		if _, err := svc.DB.Parses().Delete(ctx, p.ID); err != nil && !errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.WrapDB("delete user's parse", err)
		}
	}

	grammars, err := svc.DB.Grammars().GetAll(ctx)
	if err != nil {
		return dao.User{}, serr.WrapDB("list grammars", err)
	}
	for _, g := range grammars {
		if g.OwnerID != id {
			continue
		}
		if _, err := svc.DB.Grammars().Delete(ctx, g.ID); err != nil && !errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.WrapDB("delete user's grammar", err)
		}
	}

	if _, err := svc.DB.Users().Delete(ctx, id); err != nil && !errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.WrapDB("delete user", err)
	}
	return user, nil
}

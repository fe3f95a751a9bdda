package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/result"
	"github.com/dekarrin/simplegrammar/server/serr"
)

// HTTPCreateUser returns a HandlerFunc that adds an account. Only admins may
// create accounts. The role defaults to "reader", which may parse but not
// upload grammars.
func (api API) HTTPCreateUser() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateUser)
}

func (api API) epCreateUser(req *http.Request) result.Result {
	user := requester(req)
	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) create user: forbidden", user.Username, user.Role)
	}

	var createReq UserModel
	if err := parseJSON(req, &createReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	role := dao.Reader
	if createReq.Role != "" {
		var err error
		if role, err = dao.ParseRole(createReq.Role); err != nil {
			return result.BadRequest("role: "+err.Error(), "bad role %q", createReq.Role)
		}
	}

	created, err := api.Backend.CreateUser(req.Context(), createReq.Username, createReq.Password, role)
	if errors.Is(err, serr.ErrAlreadyExists) {
		return result.Conflict("User with that username already exists", "user '%s' already exists", createReq.Username)
	} else if errors.Is(err, serr.ErrBadArgument) {
		return result.BadRequest(err.Error(), err.Error())
	} else if err != nil {
		return result.InternalServerError(err.Error())
	}

	return result.Created(userModel(created), "user '%s' created %s user '%s'", user.Username, role, created.Username)
}

// HTTPDeleteUser returns a HandlerFunc that removes an account along with the
// grammars and parses it owns. Users may delete themselves; only admins may
// delete others.
func (api API) HTTPDeleteUser() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteUser)
}

func (api API) epDeleteUser(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := requester(req)

	if id != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete user %s: forbidden", user.Username, user.Role, id)
	}

	deleted, err := api.Backend.DeleteUser(req.Context(), id)
	if errors.Is(err, serr.ErrNotFound) {
		return result.NotFound()
	} else if err != nil {
		return result.InternalServerError("could not delete user: %s", err.Error())
	}

	return result.NoContent("user '%s' deleted user '%s' and everything they owned", user.Username, deleted.Username)
}

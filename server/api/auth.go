package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/result"
	"github.com/dekarrin/simplegrammar/server/serr"
	"github.com/dekarrin/simplegrammar/server/token"
)

// HTTPCreateLogin returns a HandlerFunc that exchanges a username and password
// for a bearer token.
func (api API) HTTPCreateLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateLogin)
}

func (api API) epCreateLogin(req *http.Request) result.Result {
	var creds LoginRequest
	if err := parseJSON(req, &creds); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if creds.Username == "" || creds.Password == "" {
		return result.BadRequest("username and password are required", "missing credentials")
	}

	user, err := api.Backend.Login(req.Context(), creds.Username, creds.Password)
	if errors.Is(err, serr.ErrBadCredentials) {
		return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", creds.Username, err.Error())
	} else if err != nil {
		return result.InternalServerError(err.Error())
	}

	return api.issueToken(user, "logged in")
}

// HTTPCreateToken returns a HandlerFunc that gives the logged-in user a fresh
// token, extending their login without sending credentials again.
func (api API) HTTPCreateToken() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateToken)
}

func (api API) epCreateToken(req *http.Request) result.Result {
	return api.issueToken(requester(req), "refreshed token")
}

func (api API) issueToken(user dao.User, action string) result.Result {
	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: %s", err.Error())
	}
	resp := LoginResponse{Token: tok, UserID: user.ID.String()}
	return result.Created(resp, "user '%s' %s", user.Username, action)
}

// HTTPDeleteLogin returns a HandlerFunc that invalidates every token issued to
// a user. Users may log themselves out; only admins may log out others.
func (api API) HTTPDeleteLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteLogin)
}

func (api API) epDeleteLogin(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := requester(req)

	if id != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) logout of user %s: forbidden", user.Username, user.Role, id)
	}

	out, err := api.Backend.Logout(req.Context(), id)
	if errors.Is(err, serr.ErrNotFound) {
		return result.NotFound()
	} else if err != nil {
		return result.InternalServerError("could not log out user: %s", err.Error())
	}

	return result.NoContent("user '%s' logged out user '%s'", user.Username, out.Username)
}

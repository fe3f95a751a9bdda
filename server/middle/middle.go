// Package middle contains middleware for use with the simplegrammar server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/result"
	"github.com/dekarrin/simplegrammar/server/token"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

type ctxKey struct{}

// Requester gives the user whose token authenticated the request. ok is false
// if the request passed through Authenticate without a valid token, or did not
// pass through it at all.
func Requester(ctx context.Context) (user dao.User, ok bool) {
	user, ok = ctx.Value(ctxKey{}).(dao.User)
	return user, ok
}

// Authenticate returns middleware that looks up the user named by the
// request's bearer token and makes them available through Requester. When
// required is set, a request without a valid token gets an HTTP-401 after
// waiting for delay and never reaches next.
func Authenticate(users dao.UserRepository, secret []byte, delay time.Duration, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			user, err := authenticate(req, users, secret)
			if err != nil {
				if required {
					time.Sleep(delay)
					result.Unauthorized("", "%s", err.Error()).WriteResponse(w)
					return
				}
				next.ServeHTTP(w, req)
				return
			}

			ctx := context.WithValue(req.Context(), ctxKey{}, user)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func authenticate(req *http.Request, users dao.UserRepository, secret []byte) (dao.User, error) {
	tok, err := token.Get(req)
	if err != nil {
		return dao.User{}, err
	}
	return token.Validate(req.Context(), tok, secret, users)
}

package api

import (
	"net/http"

	"github.com/dekarrin/simplegrammar/internal/version"
	"github.com/dekarrin/simplegrammar/server/middle"
	"github.com/dekarrin/simplegrammar/server/result"
)

// HTTPGetInfo returns a HandlerFunc that gives the versions of the server and
// the parser. Logging in is not needed.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.SimpleGrammar = version.Current

	who := "unauthed client"
	if user, ok := middle.Requester(req.Context()); ok {
		who = "user '" + user.Username + "'"
	}
	return result.OK(resp, "%s got API info", who)
}

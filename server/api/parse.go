package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/result"
	"github.com/dekarrin/simplegrammar/server/serr"
	"github.com/dekarrin/simplegrammar/server/sgs"
	"github.com/dekarrin/simplegrammar/token"
)

// HTTPCreateParse returns a HandlerFunc that parses source text or tokens with
// a stored grammar (or the built-in PL/SQL grammar if none is named) and keeps
// the result. Input that fails to parse still creates a parse; its error is
// given in the response.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the logged-in user of the client making the request.
func (api API) HTTPCreateParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateParse)
}

func (api API) epCreateParse(req *http.Request) result.Result {
	user := requester(req)

	var parseReq ParseRequest
	err := parseJSON(req, &parseReq)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if parseReq.Source != "" && parseReq.Tokens != nil {
		return result.BadRequest("only one of source or tokens may be given", "both source and tokens given")
	}
	if parseReq.MaxLookahead < 0 {
		return result.BadRequest("max_lookahead: must not be negative", "negative max_lookahead")
	}

	in := sgs.ParseInput{
		GrammarID:    parseReq.GrammarID,
		Root:         parseReq.Root,
		Source:       parseReq.Source,
		Trace:        parseReq.Trace,
		MaxLookahead: parseReq.MaxLookahead,
	}
	if parseReq.Tokens != nil {
		in.Tokens = make([]token.Token, len(parseReq.Tokens))
		for i := range parseReq.Tokens {
			if parseReq.Tokens[i].Name == "" {
				return result.BadRequest("tokens: every token must have a name", "token %d has no name", i)
			}
			in.Tokens[i] = parseReq.Tokens[i].toToken()
		}
	}

	res, err := api.Backend.Parse(req.Context(), user.ID, in)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := parseModel(res.Parse)
	resp.Package = res.Package
	resp.Trace = res.Trace

	outcome := "succeeded"
	if res.Parse.Failed() {
		outcome = "failed: " + res.Parse.ErrorMessage
	}
	return result.Created(resp, "user '%s' created parse %s; parse %s", user.Username, res.Parse.ID, outcome)
}

// HTTPGetAllParses returns a HandlerFunc that retrieves parses. Admins get all
// parses; other users get only their own.
func (api API) HTTPGetAllParses() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllParses)
}

func (api API) epGetAllParses(req *http.Request) result.Result {
	user := requester(req)

	var all []dao.Parse
	var err error
	if user.Role == dao.Admin {
		all, err = api.Backend.GetAllParses(req.Context())
	} else {
		all, err = api.Backend.GetParsesByOwner(req.Context(), user.ID)
	}
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]ParseModel, len(all))
	for i := range all {
		resp[i] = parseModel(all[i])
	}

	return result.OK(resp, "user '%s' got %d parses", user.Username, len(resp))
}

// HTTPGetParse returns a HandlerFunc that retrieves a single parse. Only the
// owner of the parse or an admin may retrieve it.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the ID of the parse and the logged-in user of the client making the request.
func (api API) HTTPGetParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetParse)
}

func (api API) epGetParse(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := requester(req)

	p, err := api.Backend.GetParse(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if p.OwnerID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) get parse %s: forbidden", user.Username, user.Role, id)
	}

	resp := parseModel(p)
	resp.Package = sgs.PackageOf(p)

	return result.OK(resp, "user '%s' got parse %s", user.Username, id)
}

// HTTPDeleteParse returns a HandlerFunc that deletes a parse. Only the owner
// of the parse or an admin may delete it.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the ID of the parse and the logged-in user of the client making the request.
func (api API) HTTPDeleteParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteParse)
}

func (api API) epDeleteParse(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := requester(req)

	p, err := api.Backend.GetParse(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if p.OwnerID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete parse %s: forbidden", user.Username, user.Role, id)
	}

	_, err = api.Backend.DeleteParse(req.Context(), id.String())
	if err != nil && !errors.Is(err, serr.ErrNotFound) {
		return result.InternalServerError("could not delete parse: " + err.Error())
	}

	return result.NoContent("user '%s' deleted parse %s", user.Username, id)
}

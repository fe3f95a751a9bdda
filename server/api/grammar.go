package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/result"
	"github.com/dekarrin/simplegrammar/server/serr"
)

// HTTPCreateGrammar returns a HandlerFunc that uploads a new grammar owned by
// the logged-in user, who must be an author or an admin. The grammar, and its
// lexer if given, must load without error.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the logged-in user of the client making the request.
func (api API) HTTPCreateGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateGrammar)
}

func (api API) epCreateGrammar(req *http.Request) result.Result {
	user := requester(req)
	if !user.Role.Uploads() {
		return result.Forbidden("user '%s' (role %s) upload grammar: forbidden", user.Username, user.Role)
	}

	var createReq GrammarModel
	err := parseJSON(req, &createReq)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if createReq.Name == "" {
		return result.BadRequest("name: property is empty or missing from request", "empty name")
	}
	if createReq.Text == "" {
		return result.BadRequest("text: property is empty or missing from request", "empty text")
	}

	g, err := api.Backend.CreateGrammar(req.Context(), user.ID, createReq.Name, createReq.Text, createReq.Lexer)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(grammarModel(g), "user '%s' created grammar %s", user.Username, g.ID)
}

// HTTPGetAllGrammars returns a HandlerFunc that retrieves all grammars. Any
// logged-in user may list grammars.
func (api API) HTTPGetAllGrammars() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllGrammars)
}

func (api API) epGetAllGrammars(req *http.Request) result.Result {
	user := requester(req)

	all, err := api.Backend.GetAllGrammars(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]GrammarModel, len(all))
	for i := range all {
		resp[i] = grammarModel(all[i])
	}

	return result.OK(resp, "user '%s' got all grammars", user.Username)
}

// HTTPGetGrammar returns a HandlerFunc that retrieves a single grammar.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the ID of the grammar and the logged-in user of the client making the
// request.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetGrammar)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := requester(req)

	g, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(grammarModel(g), "user '%s' got grammar %s", user.Username, id)
}

// HTTPDeleteGrammar returns a HandlerFunc that deletes a grammar. Only the
// owner of the grammar or an admin may delete it.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the ID of the grammar and the logged-in user of the client making the
// request.
func (api API) HTTPDeleteGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteGrammar)
}

func (api API) epDeleteGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := requester(req)

	g, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if g.OwnerID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete grammar %s: forbidden", user.Username, user.Role, id)
	}

	_, err = api.Backend.DeleteGrammar(req.Context(), id.String())
	if err != nil && !errors.Is(err, serr.ErrNotFound) {
		return result.InternalServerError("could not delete grammar: " + err.Error())
	}

	return result.NoContent("user '%s' deleted grammar %s", user.Username, id)
}

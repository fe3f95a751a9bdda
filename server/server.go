// Package server provides an HTTP REST server that parses input with uploaded
// grammars and keeps the results.
//
// Routes, all under /api/v1:
//
//	POST   /login          - accepts user and password and returns a jwt.
//	DELETE /login/{id}     - ends the user's login and invalidates their jwts.
//	POST   /tokens         - refreshes the token without requiring credentials.
//	POST   /users          - create a new user account (admin only).
//	DELETE /users/{id}     - delete a user and their grammars and parses.
//	POST   /grammars       - upload a grammar and optional pattern lexer
//	                         (authors and admins only).
//	GET    /grammars       - get all grammars.
//	GET    /grammars/{id}  - get a grammar.
//	DELETE /grammars/{id}  - delete a grammar (owner or admin only).
//	POST   /parses         - parse source or tokens and keep the result.
//	GET    /parses         - get the caller's parses (all of them for admins).
//	GET    /parses/{id}    - get a parse.
//	DELETE /parses/{id}    - delete a parse.
//	GET    /info           - get version info on the server and parser.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/dekarrin/simplegrammar/server/api"
	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/sgs"
	"github.com/go-chi/chi/v5"
)

// Server is an HTTP REST server that parses input with stored grammars. The
// zero-value of a Server should not be used directly; call New() to get one
// ready for use.
type Server struct {
	router chi.Router
	api    api.API
	db     dao.Store
}

// New creates a new Server from the given config. Unset values in cfg are
// given their defaults before it is validated.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, err
	}

	s := &Server{
		db: db,
		api: api.API{
			Backend:     sgs.Service{DB: db, PasswordCost: cfg.PasswordCost},
			UnauthDelay: cfg.UnauthDelay(),
			Secret:      cfg.TokenSecret,
		},
	}
	s.router = newRouter(s.api)

	return s, nil
}

// Service gives the backend the server's API uses, for direct programmatic
// access.
func (s *Server) Service() sgs.Service {
	return s.api.Backend
}

// EnsureAdmin creates an admin user with the given username and password if
// no user with that username exists yet. It returns whether one was created.
func (s *Server) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	return s.api.Backend.EnsureAdmin(ctx, username, password)
}

// ServeHTTP routes the request to the API.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// ServeForever begins listening on the given address and port for HTTP REST
// client requests. If address is kept as "", it will default to "localhost". If
// port is less than 1, it will default to 8080. It only returns on error.
func (s *Server) ServeForever(address string, port int) error {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	log.Printf("INFO  Listening on %s", listenAddress)
	return http.ListenAndServe(listenAddress, s)
}

// Close releases the server's persistence store.
func (s *Server) Close() error {
	return s.db.Close()
}

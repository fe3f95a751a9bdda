// Package sgs has services for interacting with the simplegrammar server
// backend decoupled from the API that accesses it.
package sgs

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/serr"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt cost used for password hashes when
// Service.PasswordCost is not set.
const DefaultPasswordCost = 14

// Service is a service for interacting with and modifying the simplegrammar
// server backend. It performs the actions requested and makes calls to server
// persistence to preserve the backend state.
//
// The zero-value of Service is not ready to be used; assign a valid DAO store
// to DB before attempting to use it.
type Service struct {

	// DB is the persistence store of the service.
	DB dao.Store

	// PasswordCost is the bcrypt cost of stored password hashes. If zero,
	// DefaultPasswordCost is used.
	PasswordCost int
}

// hashPassword gives the form of password that is kept in persistence.
func (svc Service) hashPassword(password string) (string, error) {
	cost := svc.PasswordCost
	if cost == 0 {
		cost = DefaultPasswordCost
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", serr.New("password is too long", err, serr.ErrBadArgument)
		}
		return "", serr.New("password could not be encrypted", err)
	}

	return base64.StdEncoding.EncodeToString(passHash), nil
}

// checkPassword reports whether password is the one stored for u.
func checkPassword(u dao.User, password string) (bool, error) {
	hash, err := base64.StdEncoding.DecodeString(u.Password)
	if err != nil {
		return false, fmt.Errorf("stored password hash for %q is not base64: %w", u.Username, err)
	}

	err = bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return err == nil, err
}

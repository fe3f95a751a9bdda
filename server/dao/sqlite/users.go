package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/google/uuid"
)

// UsersDB stores users in the users table. Grammars and parses reference it,
// so deleting a user removes everything they own.
type UsersDB struct {
	db *sql.DB
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role INTEGER NOT NULL,
		created INTEGER NOT NULL,
		last_logout INTEGER NOT NULL
	);`)
	return wrapDBError(err)
}

const selectUser = `SELECT id, username, password, role, created, last_logout FROM users`

func scanUser(row scanner) (dao.User, error) {
	var u dao.User
	var id string
	var role, created, logout int64

	if err := row.Scan(&id, &u.Username, &u.Password, &role, &created, &logout); err != nil {
		return dao.User{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &u.ID); err != nil {
		return dao.User{}, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	if err := convertFromDB_Role(role, &u.Role); err != nil {
		return dao.User{}, fmt.Errorf("stored role %d is invalid: %w", role, err)
	}
	_ = convertFromDB_Time(created, &u.Created)
	_ = convertFromDB_Time(logout, &u.LastLogout)

	return u, nil
}

func (repo *UsersDB) Create(ctx context.Context, user dao.User) (dao.User, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}
	now := convertToDB_Time(time.Now())

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password, role, created, last_logout) VALUES (?, ?, ?, ?, ?, ?);`,
		convertToDB_UUID(id), user.Username, user.Password, convertToDB_Role(user.Role), now, now,
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, id)
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	return scanUser(repo.db.QueryRowContext(ctx, selectUser+` WHERE id = ?;`, convertToDB_UUID(id)))
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	return scanUser(repo.db.QueryRowContext(ctx, selectUser+` WHERE username = ?;`, username))
}

func (repo *UsersDB) SetLastLogout(ctx context.Context, id uuid.UUID, t time.Time) (dao.User, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET last_logout = ? WHERE id = ?;`, convertToDB_Time(t), convertToDB_UUID(id))
	if err := affectedOne(res, err); err != nil {
		return dao.User{}, err
	}
	return repo.GetByID(ctx, id)
}

func (repo *UsersDB) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return dao.User{}, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?;`, convertToDB_UUID(id))
	if err := affectedOne(res, err); err != nil {
		return dao.User{}, err
	}
	return user, nil
}

// Close is a no-op; the connection is shared and is closed by the store.
func (repo *UsersDB) Close() error {
	return nil
}

// affectedOne checks the outcome of a statement that must change a row.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n < 1 {
		return dao.ErrNotFound
	}
	return nil
}

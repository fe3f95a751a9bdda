package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/google/uuid"
)

const parseColumns = `id, owner_id, grammar_id, root, source, tree, error_message, error_line, error_column, created`

type ParsesDB struct {
	db *sql.DB
}

func (repo *ParsesDB) init(fk bool) error {
	// grammar_id is not a foreign key; parses against the built-in grammar
	// store the nil UUID, and parses outlive the grammar they were made with.
	stmt := `CREATE TABLE IF NOT EXISTS parses (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		grammar_id TEXT NOT NULL,
		root TEXT NOT NULL,
		source TEXT NOT NULL,
		tree TEXT NOT NULL,
		error_message TEXT NOT NULL,
		error_line INTEGER NOT NULL,
		error_column INTEGER NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func scanParse(row scanner) (dao.Parse, error) {
	var p dao.Parse
	var id string
	var owner string
	var grammarID string
	var treeData string
	var created int64

	err := row.Scan(
		&id,
		&owner,
		&grammarID,
		&p.Root,
		&p.Source,
		&treeData,
		&p.ErrorMessage,
		&p.ErrorLine,
		&p.ErrorColumn,
		&created,
	)
	if err != nil {
		return p, wrapDBError(err)
	}

	err = convertFromDB_UUID(id, &p.ID)
	if err != nil {
		return p, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	err = convertFromDB_UUID(owner, &p.OwnerID)
	if err != nil {
		return p, fmt.Errorf("stored owner UUID %q is invalid: %w", owner, err)
	}
	err = convertFromDB_UUID(grammarID, &p.GrammarID)
	if err != nil {
		return p, fmt.Errorf("stored grammar UUID %q is invalid: %w", grammarID, err)
	}
	err = convertFromDB_Tree(treeData, &p.Tree)
	if err != nil {
		return p, fmt.Errorf("stored tree is invalid: %w", err)
	}
	err = convertFromDB_Time(created, &p.Created)
	if err != nil {
		return p, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}

	return p, nil
}

func (repo *ParsesDB) Create(ctx context.Context, p dao.Parse) (dao.Parse, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Parse{}, fmt.Errorf("could not generate ID: %w", err)
	}

	treeData, err := convertToDB_Tree(p.Tree)
	if err != nil {
		return dao.Parse{}, fmt.Errorf("could not encode tree: %w", err)
	}

	_, err = repo.db.ExecContext(ctx, `INSERT INTO parses (`+parseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(p.OwnerID),
		convertToDB_UUID(p.GrammarID),
		p.Root,
		p.Source,
		treeData,
		p.ErrorMessage,
		p.ErrorLine,
		p.ErrorColumn,
		convertToDB_Time(time.Now()),
	)
	if err != nil {
		return dao.Parse{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *ParsesDB) query(ctx context.Context, where string, args ...interface{}) ([]dao.Parse, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT `+parseColumns+` FROM parses `+where+` ORDER BY created, id;`, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Parse
	for rows.Next() {
		p, err := scanParse(rows)
		if err != nil {
			return all, err
		}
		all = append(all, p)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *ParsesDB) GetAll(ctx context.Context) ([]dao.Parse, error) {
	return repo.query(ctx, "")
}

func (repo *ParsesDB) GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]dao.Parse, error) {
	return repo.query(ctx, "WHERE owner_id = ?", convertToDB_UUID(owner))
}

func (repo *ParsesDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Parse, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT `+parseColumns+` FROM parses WHERE id = ?;`, convertToDB_UUID(id))
	return scanParse(row)
}

func (repo *ParsesDB) Delete(ctx context.Context, id uuid.UUID) (dao.Parse, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM parses WHERE id = ?`, convertToDB_UUID(id))
	if err := affectedOne(res, err); err != nil {
		return curVal, err
	}

	return curVal, nil
}

func (repo *ParsesDB) Close() error {
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/google/uuid"
)

type ScriptsDB struct {
	db *sql.DB
}

func (repo *ScriptsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS scripts (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		program_cache TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *ScriptsDB) Create(ctx context.Context, s dao.Script) (dao.Script, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Script{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO scripts (id, user_id, name, source, program_cache, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Script{}, wrapDBError(err)
	}

	now := time.Now()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(s.UserID),
		s.Name,
		s.Source,
		convertToDB_ByteSlice(s.ProgramCache),
		convertToDB_Time(now),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Script{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *ScriptsDB) GetAll(ctx context.Context) ([]dao.Script, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, name, source, program_cache, created, modified FROM scripts;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return scanScriptRows(rows)
}

func (repo *ScriptsDB) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Script, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, name, source, program_cache, created, modified FROM scripts WHERE user_id=?;`,
		convertToDB_UUID(userID),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return scanScriptRows(rows)
}

func scanScriptRows(rows *sql.Rows) ([]dao.Script, error) {
	var all []dao.Script

	for rows.Next() {
		var s dao.Script
		var id string
		var userID string
		var cache string
		var created int64
		var modified int64

		err := rows.Scan(&id, &userID, &s.Name, &s.Source, &cache, &created, &modified)
		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &s.ID); err != nil {
			return all, err
		}
		if err := convertFromDB_UUID(userID, &s.UserID); err != nil {
			return all, err
		}
		if err := convertFromDB_ByteSlice(cache, &s.ProgramCache); err != nil {
			return all, err
		}
		if err := convertFromDB_Time(created, &s.Created); err != nil {
			return all, err
		}
		if err := convertFromDB_Time(modified, &s.Modified); err != nil {
			return all, err
		}

		all = append(all, s)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *ScriptsDB) Update(ctx context.Context, id uuid.UUID, s dao.Script) (dao.Script, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE scripts SET id=?, user_id=?, name=?, source=?, program_cache=?, created=?, modified=? WHERE id=?;`,
		convertToDB_UUID(s.ID),
		convertToDB_UUID(s.UserID),
		s.Name,
		s.Source,
		convertToDB_ByteSlice(s.ProgramCache),
		convertToDB_Time(s.Created),
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Script{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Script{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Script{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, s.ID)
}

func (repo *ScriptsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	s := dao.Script{
		ID: id,
	}
	var userID string
	var cache string
	var created int64
	var modified int64

	row := repo.db.QueryRowContext(ctx, `SELECT user_id, name, source, program_cache, created, modified FROM scripts WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(&userID, &s.Name, &s.Source, &cache, &created, &modified)
	if err != nil {
		return s, wrapDBError(err)
	}

	if err := convertFromDB_UUID(userID, &s.UserID); err != nil {
		return s, err
	}
	if err := convertFromDB_ByteSlice(cache, &s.ProgramCache); err != nil {
		return s, err
	}
	if err := convertFromDB_Time(created, &s.Created); err != nil {
		return s, err
	}
	if err := convertFromDB_Time(modified, &s.Modified); err != nil {
		return s, err
	}

	return s, nil
}

func (repo *ScriptsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM scripts WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *ScriptsDB) Close() error {
	return nil
}

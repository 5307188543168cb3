package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/google/uuid"
)

type UsersDB struct {
	db *sql.DB
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role INTEGER NOT NULL,
		email TEXT NOT NULL,
		last_logout_time INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *UsersDB) Create(ctx context.Context, user dao.User) (dao.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO users (id, username, password, role, email, last_logout_time) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	_, err = stmt.ExecContext(ctx, newUUID.String(), user.Username, user.Password, convertToDB_Role(user.Role), convertToDB_Email(user.Email), user.LastLogoutTime.Unix())
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *UsersDB) GetAll(ctx context.Context) ([]dao.User, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, username, password, role, email, last_logout_time FROM users;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.User

	for rows.Next() {
		var user dao.User
		var email string
		var logoutTime int64
		var role string
		var id string
		err = rows.Scan(
			&id,
			&user.Username,
			&user.Password,
			&role,
			&email,
			&logoutTime,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &user.ID); err != nil {
			return all, err
		}
		if err := convertFromDB_Email(email, &user.Email); err != nil {
			return all, err
		}
		if err := convertFromDB_Time(logoutTime, &user.LastLogoutTime); err != nil {
			return all, err
		}
		if err := convertFromDB_Role(role, &user.Role); err != nil {
			return all, err
		}

		all = append(all, user)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *UsersDB) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET id=?, username=?, password=?, role=?, email=?, last_logout_time=? WHERE id=?;`,
		user.ID.String(),
		user.Username,
		user.Password,
		convertToDB_Role(user.Role),
		convertToDB_Email(user.Email),
		user.LastLogoutTime.Unix(),
		id.String(),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.User{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, user.ID)
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	user := dao.User{
		Username: username,
	}
	var id string
	var role string
	var email string
	var logout int64

	row := repo.db.QueryRowContext(ctx, `SELECT id, password, role, email, last_logout_time FROM users WHERE username = ?;`,
		username,
	)
	err := row.Scan(
		&id,
		&user.Password,
		&role,
		&email,
		&logout,
	)
	if err != nil {
		return user, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &user.ID); err != nil {
		return user, err
	}
	if err := convertFromDB_Email(email, &user.Email); err != nil {
		return user, err
	}
	if err := convertFromDB_Time(logout, &user.LastLogoutTime); err != nil {
		return user, err
	}
	if err := convertFromDB_Role(role, &user.Role); err != nil {
		return user, err
	}

	return user, nil
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	user := dao.User{
		ID: id,
	}
	var role string
	var email string
	var logout int64

	row := repo.db.QueryRowContext(ctx, `SELECT username, password, role, email, last_logout_time FROM users WHERE id = ?;`,
		id.String(),
	)
	err := row.Scan(
		&user.Username,
		&user.Password,
		&role,
		&email,
		&logout,
	)
	if err != nil {
		return user, wrapDBError(err)
	}

	if err := convertFromDB_Email(email, &user.Email); err != nil {
		return user, err
	}
	if err := convertFromDB_Time(logout, &user.LastLogoutTime); err != nil {
		return user, err
	}
	if err := convertFromDB_Role(role, &user.Role); err != nil {
		return user, err
	}

	return user, nil
}

func (repo *UsersDB) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
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

func (repo *UsersDB) Close() error {
	return nil
}

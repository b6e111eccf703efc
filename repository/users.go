package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bioauth/common"
	"bioauth/database"
	"bioauth/model"
	"bioauth/utils"
)

type UserRepo struct {
	db database.DBTX
}

func NewUserRepo(db database.DBTX) *UserRepo {
	return &UserRepo{db: db}
}

// AddUser inserts a user and returns its id. A taken username yields
// common.ErrDuplicateUser; the UNIQUE constraint decides, there is no pre-check.
func (r *UserRepo) AddUser(ctx context.Context, username, passwordHash, createdAt string) (int64, error) {
	timer := utils.TrackDBOperation("insert", "users")
	defer timer.ObserveDuration()

	if username == "" || passwordHash == "" {
		utils.TrackError("database", "invalid_user_data")
		return 0, fmt.Errorf("%w: username and password hash required", common.ErrInvalidInput)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, createdAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, common.ErrDuplicateUser
		}
		utils.TrackError("database", "user_creation_failed")
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

const userColumns = `id, username, password_hash, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByUsername returns (nil, nil) when no such user exists.
func (r *UserRepo) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		utils.TrackError("database", "user_lookup_error")
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return u, nil
}

// FindUserByCredentials matches username and digest together, so a missing user
// and a wrong password look the same to the caller.
func (r *UserRepo) FindUserByCredentials(ctx context.Context, username, passwordHash string) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND password_hash = ?`,
		username, passwordHash))
	if err != nil {
		utils.TrackError("database", "user_lookup_error")
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return u, nil
}

// UpdateUserPassword returns the number of rows changed (0 or 1).
func (r *UserRepo) UpdateUserPassword(ctx context.Context, username, passwordHash string) (int64, error) {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	if passwordHash == "" {
		utils.TrackError("database", "invalid_password_hash")
		return 0, fmt.Errorf("%w: empty password hash", common.ErrInvalidInput)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE username = ?`, passwordHash, username)
	if err != nil {
		utils.TrackError("database", "password_update_failed")
		return 0, fmt.Errorf("failed to update password: %w", err)
	}
	return res.RowsAffected()
}

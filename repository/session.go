package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bioauth/database"
	"bioauth/model"
	"bioauth/utils"
)

type SessionRepo struct {
	db database.DBTX
}

func NewSessionRepo(db database.DBTX) *SessionRepo {
	return &SessionRepo{db: db}
}

const sessionColumns = `username, session_column, first_login, last_login, total_sessions, last_device`

func scanSession(scan func(dest ...any) error) (*model.SessionTracking, error) {
	var s model.SessionTracking
	if err := scan(&s.Username, &s.SessionColumn, &s.FirstLogin, &s.LastLogin, &s.TotalSessions, &s.LastDevice); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession returns (nil, nil) for a user who never logged in.
func (r *SessionRepo) GetSession(ctx context.Context, username string) (*model.SessionTracking, error) {
	timer := utils.TrackDBOperation("find", "user_sessions")
	defer timer.ObserveDuration()

	s, err := scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE username = ?`, username).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "session_fetch_failed")
		return nil, fmt.Errorf("failed to fetch session for %q: %w", username, err)
	}
	return s, nil
}

// MaxSessionColumn returns the highest column ever assigned, or 0 if none.
func (r *SessionRepo) MaxSessionColumn(ctx context.Context) (int64, error) {
	timer := utils.TrackDBOperation("max", "user_sessions")
	defer timer.ObserveDuration()

	var max int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(session_column), 0) FROM user_sessions`).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max session column: %w", err)
	}
	return max, nil
}

func (r *SessionRepo) CreateSession(ctx context.Context, s *model.SessionTracking) error {
	timer := utils.TrackDBOperation("insert", "user_sessions")
	defer timer.ObserveDuration()

	if s == nil || s.Username == "" || s.SessionColumn < 1 {
		utils.TrackError("database", "invalid_session_data")
		return fmt.Errorf("invalid session data: missing required fields")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		s.Username, s.SessionColumn, s.FirstLogin, s.LastLogin, s.TotalSessions, s.LastDevice)
	if err != nil {
		utils.TrackError("database", "session_creation_failed")
		return fmt.Errorf("failed to create session record: %w", err)
	}
	return nil
}

// RecordRepeatLogin bumps last_login and total_sessions for an existing record.
func (r *SessionRepo) RecordRepeatLogin(ctx context.Context, username, at string, device *string) error {
	timer := utils.TrackDBOperation("update", "user_sessions")
	defer timer.ObserveDuration()

	res, err := r.db.ExecContext(ctx,
		`UPDATE user_sessions
		    SET last_login = ?, total_sessions = total_sessions + 1, last_device = COALESCE(?, last_device)
		  WHERE username = ?`,
		at, device, username)
	if err != nil {
		utils.TrackError("database", "session_update_failed")
		return fmt.Errorf("failed to update session record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update session record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session record for %q not found", username)
	}
	return nil
}

// ListSessions returns every tracking record ordered by session column.
func (r *SessionRepo) ListSessions(ctx context.Context) ([]model.SessionTracking, error) {
	timer := utils.TrackDBOperation("list", "user_sessions")
	defer timer.ObserveDuration()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions ORDER BY session_column`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []model.SessionTracking
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

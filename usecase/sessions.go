package usecase

import (
	"context"

	"bioauth/common"
	"bioauth/database"
	"bioauth/model"
	"bioauth/repository"
)

// SessionService keeps per-user login bookkeeping and hands out session
// columns: one per user, assigned on first login, never reused while the
// user exists.
type SessionService struct {
	store *database.Store
	clock Clock
}

func NewSessionService(store *database.Store, clock Clock) *SessionService {
	return &SessionService{store: store, clock: orSystem(clock)}
}

// AllocateSessionColumn returns the column the next new user would get.
func (s *SessionService) AllocateSessionColumn(ctx context.Context) (int64, error) {
	var next int64
	err := s.store.Do(ctx, func(ctx context.Context, q database.DBTX) error {
		highest, err := repository.NewSessionRepo(q).MaxSessionColumn(ctx)
		next = highest + 1
		return err
	})
	return next, err
}

// RecordLogin updates or creates the user's tracking record and returns its
// session column. The read and the write share one immediate transaction, so
// concurrent first logins cannot receive the same column.
func (s *SessionService) RecordLogin(ctx context.Context, username, device string) (int64, error) {
	if isBlank(username) {
		return 0, common.ErrInvalidInput
	}
	var dev *string
	if device != "" {
		dev = &device
	}

	var column int64
	err := s.store.WithTx(ctx, func(ctx context.Context, q database.DBTX) error {
		sessions := repository.NewSessionRepo(q)
		now := s.clock().Format(TimestampLayout)

		existing, err := sessions.GetSession(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			column = existing.SessionColumn
			return sessions.RecordRepeatLogin(ctx, username, now, dev)
		}

		highest, err := sessions.MaxSessionColumn(ctx)
		if err != nil {
			return err
		}
		column = highest + 1
		return sessions.CreateSession(ctx, &model.SessionTracking{
			Username:      username,
			SessionColumn: column,
			FirstLogin:    now,
			LastLogin:     now,
			TotalSessions: 1,
			LastDevice:    dev,
		})
	})
	if err != nil {
		return 0, err
	}
	return column, nil
}

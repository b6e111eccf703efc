package usecase

import (
	"context"
	"fmt"
	"strings"

	"bioauth/common"
	"bioauth/database"
	"bioauth/model"
	"bioauth/repository"
	"bioauth/services"
)

type UserService struct {
	store              *database.Store
	clock              Clock
	requireOldPassword bool
}

func NewUserService(store *database.Store, clock Clock, requireOldPassword bool) *UserService {
	return &UserService{store: store, clock: orSystem(clock), requireOldPassword: requireOldPassword}
}

// Register creates a user and returns its id. The unique constraint on
// username decides duplicates.
func (s *UserService) Register(ctx context.Context, username, password string) (int64, error) {
	if isBlank(username) || password == "" {
		return 0, fmt.Errorf("%w: username and password are required", common.ErrInvalidInput)
	}

	var id int64
	err := s.store.Do(ctx, func(ctx context.Context, q database.DBTX) error {
		var err error
		id, err = repository.NewUserRepo(q).AddUser(ctx, username, services.HashPassword(password),
			s.clock().Format(TimestampLayout))
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if isBlank(username) || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrInvalidInput)
	}

	var user *model.User
	err := s.store.Do(ctx, func(ctx context.Context, q database.DBTX) error {
		var err error
		user, err = repository.NewUserRepo(q).FindUserByCredentials(ctx, username, services.HashPassword(password))
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword replaces the stored digest. When the service requires it, the
// old password must be given and must match.
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword, oldPassword string) error {
	if isBlank(username) || newPassword == "" {
		return fmt.Errorf("%w: username and new_password are required", common.ErrInvalidInput)
	}
	if s.requireOldPassword && oldPassword == "" {
		return fmt.Errorf("%w: old_password is required", common.ErrInvalidInput)
	}

	return s.store.WithTx(ctx, func(ctx context.Context, q database.DBTX) error {
		users := repository.NewUserRepo(q)
		if s.requireOldPassword {
			user, err := users.FindUserByUsername(ctx, username)
			if err != nil {
				return err
			}
			if user == nil {
				return common.ErrUserNotFound
			}
			if !services.PasswordMatches(user.PasswordHash, oldPassword) {
				return common.ErrInvalidCredentials
			}
		}

		n, err := users.UpdateUserPassword(ctx, username, services.HashPassword(newPassword))
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrUserNotFound
		}
		return nil
	})
}

// EnsureUser returns the id of username, provisioning it with the placeholder
// digest when it does not exist.
func (s *UserService) EnsureUser(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.store.WithTx(ctx, func(ctx context.Context, q database.DBTX) error {
		var err error
		id, _, err = ensureUser(ctx, repository.NewUserRepo(q), username, s.clock().Format(TimestampLayout))
		return err
	})
	return id, err
}

// isBlank reports a username made only of whitespace. Usernames are otherwise
// stored and matched exactly as sent.
func isBlank(username string) bool {
	return strings.TrimSpace(username) == ""
}

func ensureUser(ctx context.Context, users *repository.UserRepo, username, now string) (int64, bool, error) {
	user, err := users.FindUserByUsername(ctx, username)
	if err != nil {
		return 0, false, err
	}
	if user != nil {
		return user.ID, false, nil
	}
	id, err := users.AddUser(ctx, username, services.PlaceholderDigest, now)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

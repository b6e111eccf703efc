package usecase

import (
	"context"

	"bioauth/database"
	"bioauth/model"
	"bioauth/utils"
)

type AdminService struct {
	store  *database.Store
	strict bool
}

func NewAdminService(store *database.Store, strict bool) *AdminService {
	return &AdminService{store: store, strict: strict}
}

// ClearData removes every user, session record and telemetry row.
func (s *AdminService) ClearData(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}

func (s *AdminService) Stats(ctx context.Context) (*model.StoreStats, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &model.StoreStats{
		Tables:     counts,
		System:     utils.GetSystemUsage(),
		StrictMode: s.strict,
	}, nil
}

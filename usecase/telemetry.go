package usecase

import (
	"context"
	"fmt"

	"bioauth/common"
	"bioauth/database"
	"bioauth/dto"
	"bioauth/model"
	"bioauth/repository"
	"bioauth/utils"
)

const (
	ModeStrict     = "strict"
	ModePermissive = "permissive"
)

type CollectResult struct {
	SessionID   string
	RecordID    int64
	UserCreated bool
}

// TelemetryService validates and stores telemetry batches. In strict mode every
// field must be present, consent must be true and the user must exist. In
// permissive mode absent fields get defaults and unknown users are created.
type TelemetryService struct {
	store  *database.Store
	clock  Clock
	strict bool
}

func NewTelemetryService(store *database.Store, clock Clock, strict bool) *TelemetryService {
	return &TelemetryService{store: store, clock: orSystem(clock), strict: strict}
}

func (s *TelemetryService) Mode() string {
	if s.strict {
		return ModeStrict
	}
	return ModePermissive
}

func (s *TelemetryService) Collect(ctx context.Context, req *dto.CollectDataRequest) (*CollectResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", common.ErrInvalidInput)
	}

	res, err := s.collect(ctx, req)
	outcome := "stored"
	if err != nil {
		outcome = "rejected"
	}
	utils.TrackTelemetry(s.Mode(), outcome)
	return res, err
}

func (s *TelemetryService) collect(ctx context.Context, req *dto.CollectDataRequest) (*CollectResult, error) {
	if s.strict {
		if missing := req.MissingStrictFields(); len(missing) > 0 {
			return nil, &common.MissingFieldsError{Fields: missing}
		}
		if !*req.Consent {
			return nil, common.ErrConsentRequired
		}
	} else {
		if !req.HasUsername() {
			return nil, fmt.Errorf("%w: username is required", common.ErrInvalidInput)
		}
		req.ApplyPermissiveDefaults()
	}

	now := s.clock()
	username := req.UsernameValue()
	sessionID := username + "_" + now.Format(SessionIDLayout)
	rec := &model.TelemetryRecord{
		Username:                username,
		SessionID:               &sessionID,
		SessionStart:            req.SessionStart,
		SessionEnd:              req.SessionEnd,
		SwipeGestureCoordinates: req.Coordinates(),
		SwipeGesturePattern:     req.SwipeGesturePattern,
		GyroscopePattern:        req.GyroscopePattern,
		WifiSSID:                req.WifiSSID,
		WifiBSSID:               req.WifiBSSID,
		LocationLat:             req.LocationLat,
		LocationLon:             req.LocationLon,
		LoginTime:               req.LoginTime,
		ScreenBrightness:        req.ScreenBrightness,
		Consent:                 req.Consent,
		Timestamp:               now.Format(TimestampLayout),
	}

	res := &CollectResult{SessionID: sessionID}
	err := s.store.WithTx(ctx, func(ctx context.Context, q database.DBTX) error {
		users := repository.NewUserRepo(q)

		if s.strict {
			user, err := users.FindUserByUsername(ctx, username)
			if err != nil {
				return err
			}
			if user == nil {
				return common.ErrUserNotRegistered
			}
			rec.UserID = &user.ID
		} else {
			id, created, err := ensureUser(ctx, users, username, rec.Timestamp)
			if err != nil {
				return err
			}
			rec.UserID = &id
			res.UserCreated = created
		}

		id, err := repository.NewTelemetryRepo(q).Insert(ctx, rec)
		res.RecordID = id
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

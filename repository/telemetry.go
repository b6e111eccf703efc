package repository

import (
	"context"
	"fmt"
	"strings"

	"bioauth/database"
	"bioauth/model"
	"bioauth/utils"
)

type TelemetryRepo struct {
	db database.DBTX
}

func NewTelemetryRepo(db database.DBTX) *TelemetryRepo {
	return &TelemetryRepo{db: db}
}

// Insert stores one record and returns its row id. r.ID is ignored.
func (r *TelemetryRepo) Insert(ctx context.Context, rec *model.TelemetryRecord) (int64, error) {
	timer := utils.TrackDBOperation("insert", "user_data")
	defer timer.ObserveDuration()

	cols := model.TelemetryColumns[1:]
	query := `INSERT INTO user_data (` + strings.Join(cols, ", ") + `) VALUES (?` +
		strings.Repeat(", ?", len(cols)-1) + `)`

	res, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.Username,
		rec.SessionID,
		rec.SessionStart,
		rec.SessionEnd,
		rec.SwipeGestureCoordinates,
		rec.SwipeGesturePattern,
		rec.GyroscopePattern,
		rec.WifiSSID,
		rec.WifiBSSID,
		rec.LocationLat,
		rec.LocationLon,
		rec.LoginTime,
		rec.ScreenBrightness,
		rec.Consent,
		rec.Timestamp,
	)
	if err != nil {
		utils.TrackError("database", "telemetry_insert_failed")
		return 0, fmt.Errorf("insert telemetry: %w", err)
	}
	return res.LastInsertId()
}

func telemetryDest(rec *model.TelemetryRecord) []any {
	return []any{
		&rec.ID,
		&rec.UserID,
		&rec.Username,
		&rec.SessionID,
		&rec.SessionStart,
		&rec.SessionEnd,
		&rec.SwipeGestureCoordinates,
		&rec.SwipeGesturePattern,
		&rec.GyroscopePattern,
		&rec.WifiSSID,
		&rec.WifiBSSID,
		&rec.LocationLat,
		&rec.LocationLon,
		&rec.LoginTime,
		&rec.ScreenBrightness,
		&rec.Consent,
		&rec.Timestamp,
	}
}

// exportOrder sorts by username then session start; row id breaks ties.
const exportOrder = ` ORDER BY d.username, d.session_start, d.id`

func qualified(prefix string) string {
	cols := make([]string, len(model.TelemetryColumns))
	for i, c := range model.TelemetryColumns {
		cols[i] = prefix + c
	}
	return strings.Join(cols, ", ")
}

// Each streams every telemetry row in export order, calling fn once per row.
// The record passed to fn is reused between calls.
func (r *TelemetryRepo) Each(ctx context.Context, fn func(*model.TelemetryRecord) error) error {
	timer := utils.TrackDBOperation("scan", "user_data")
	defer timer.ObserveDuration()

	rows, err := r.db.QueryContext(ctx, `SELECT `+qualified("d.")+` FROM user_data d`+exportOrder)
	if err != nil {
		return fmt.Errorf("query telemetry: %w", err)
	}
	defer rows.Close()

	var rec model.TelemetryRecord
	dest := telemetryDest(&rec)
	for rows.Next() {
		rec = model.TelemetryRecord{}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan telemetry: %w", err)
		}
		if err := fn(&rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// EachStructured is Each with the owning user's session column joined in.
// SessionColumn is nil for users who never logged in.
func (r *TelemetryRepo) EachStructured(ctx context.Context, fn func(*model.StructuredRecord) error) error {
	timer := utils.TrackDBOperation("scan", "user_data")
	defer timer.ObserveDuration()

	rows, err := r.db.QueryContext(ctx,
		`SELECT s.session_column, `+qualified("d.")+`
		   FROM user_data d
		   LEFT JOIN user_sessions s ON s.username = d.username`+exportOrder)
	if err != nil {
		return fmt.Errorf("query structured telemetry: %w", err)
	}
	defer rows.Close()

	var rec model.StructuredRecord
	dest := append([]any{&rec.SessionColumn}, telemetryDest(&rec.TelemetryRecord)...)
	for rows.Next() {
		rec = model.StructuredRecord{}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan structured telemetry: %w", err)
		}
		if err := fn(&rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

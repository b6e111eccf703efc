package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"bioauth/common"
	"bioauth/database"
	"bioauth/model"
	"bioauth/repository"
	"bioauth/utils"
)

const (
	// NullText stands in for NULL in CSV cells and the structured sheet.
	NullText = "NULL"

	SheetSessions   = "User Sessions"
	SheetRaw        = "Raw Data"
	SheetStructured = "Structured Data"

	csvFlushEvery = 200
)

var sessionHeader = []string{
	"username", "session_column", "first_login", "last_login", "total_sessions", "last_device",
}

var structuredHeader = []string{
	"Session Column", "Username", "Session ID", "Session Start", "Session End",
	"Swipe Coordinates", "Swipe Pattern", "Gyroscope Pattern", "WiFi SSID", "WiFi BSSID",
	"Latitude", "Longitude", "Login Time", "Screen Brightness", "Consent", "Timestamp",
}

// ExportService renders the stored telemetry as CSV or as an Excel workbook.
type ExportService struct {
	store *database.Store
}

func NewExportService(store *database.Store) *ExportService {
	return &ExportService{store: store}
}

// WriteCSV writes every telemetry row to w, header first. Rows are spooled to a
// temp file while the connection is held; w only sees bytes after the
// connection is back in the pool, so a slow reader never blocks the store.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	err := s.writeCSV(ctx, w)
	if err != nil {
		utils.TrackExport("csv", "failed")
		return exportError("csv", err)
	}
	utils.TrackExport("csv", "ok")
	return nil
}

func (s *ExportService) writeCSV(ctx context.Context, w io.Writer) error {
	spool, err := os.CreateTemp("", "export-*.csv")
	if err != nil {
		return err
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	cw := csv.NewWriter(spool)
	err = s.store.Do(ctx, func(ctx context.Context, q database.DBTX) error {
		if err := cw.Write(model.TelemetryColumns); err != nil {
			return err
		}
		n := 0
		record := make([]string, len(model.TelemetryColumns))
		err := repository.NewTelemetryRepo(q).Each(ctx, func(rec *model.TelemetryRecord) error {
			for i, v := range rec.Values() {
				record[i] = csvValue(v)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
			if n++; n%csvFlushEvery == 0 {
				cw.Flush()
				return cw.Error()
			}
			return nil
		})
		if err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return err
	}

	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(w, spool)
	return err
}

func csvValue(v any) string {
	switch v := v.(type) {
	case nil:
		return NullText
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}

// WriteExcel builds a three-sheet workbook in memory and writes it to w once
// the connection has been released.
func (s *ExportService) WriteExcel(ctx context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	err := s.store.Do(ctx, func(ctx context.Context, q database.DBTX) error {
		if err := f.SetSheetName("Sheet1", SheetSessions); err != nil {
			return err
		}
		if err := writeSessionsSheet(ctx, f, repository.NewSessionRepo(q)); err != nil {
			return err
		}
		telemetry := repository.NewTelemetryRepo(q)
		if err := writeRawSheet(ctx, f, telemetry); err != nil {
			return err
		}
		return writeStructuredSheet(ctx, f, telemetry)
	})
	if err == nil {
		f.SetActiveSheet(0)
		err = f.Write(w)
	}
	if err != nil {
		utils.TrackExport("excel", "failed")
		return exportError("excel", err)
	}
	utils.TrackExport("excel", "ok")
	return nil
}

// sheetWriter appends rows to one worksheet through excelize's stream writer.
type sheetWriter struct {
	sw  *excelize.StreamWriter
	row int
}

func newSheetWriter(f *excelize.File, sheet string, header []string) (*sheetWriter, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{sw: sw}
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return w, w.add(cells)
}

func (w *sheetWriter) add(cells []any) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	return w.sw.SetRow(cell, cells)
}

func writeSessionsSheet(ctx context.Context, f *excelize.File, sessions *repository.SessionRepo) error {
	list, err := sessions.ListSessions(ctx)
	if err != nil {
		return err
	}
	w, err := newSheetWriter(f, SheetSessions, sessionHeader)
	if err != nil {
		return err
	}
	for _, s := range list {
		device := ""
		if s.LastDevice != nil {
			device = *s.LastDevice
		}
		if err := w.add([]any{s.Username, s.SessionColumn, s.FirstLogin, s.LastLogin, s.TotalSessions, device}); err != nil {
			return err
		}
	}
	return w.sw.Flush()
}

func writeRawSheet(ctx context.Context, f *excelize.File, telemetry *repository.TelemetryRepo) error {
	w, err := newSheetWriter(f, SheetRaw, model.TelemetryColumns)
	if err != nil {
		return err
	}
	err = telemetry.Each(ctx, func(rec *model.TelemetryRecord) error {
		values := rec.Values()
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				values[i] = ""
			case bool:
				values[i] = boolInt(v)
			}
		}
		return w.add(values)
	})
	if err != nil {
		return err
	}
	return w.sw.Flush()
}

func writeStructuredSheet(ctx context.Context, f *excelize.File, telemetry *repository.TelemetryRepo) error {
	w, err := newSheetWriter(f, SheetStructured, structuredHeader)
	if err != nil {
		return err
	}
	err = telemetry.EachStructured(ctx, func(rec *model.StructuredRecord) error {
		return w.add([]any{
			orNull(rec.SessionColumn),
			rec.Username,
			orNull(rec.SessionID),
			orNull(rec.SessionStart),
			orNull(rec.SessionEnd),
			orNull(rec.SwipeGestureCoordinates),
			orNull(rec.SwipeGesturePattern),
			orNull(rec.GyroscopePattern),
			orNull(rec.WifiSSID),
			orNull(rec.WifiBSSID),
			orNull(rec.LocationLat),
			orNull(rec.LocationLon),
			orNull(rec.LoginTime),
			orNull(rec.ScreenBrightness),
			consentLabel(rec.Consent),
			rec.Timestamp,
		})
	})
	if err != nil {
		return err
	}
	return w.sw.Flush()
}

func orNull[T any](p *T) any {
	if p == nil {
		return NullText
	}
	return *p
}

func consentLabel(c *bool) string {
	switch {
	case c == nil:
		return NullText
	case *c:
		return "Yes"
	default:
		return "No"
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func exportError(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrExport, format, err)
}

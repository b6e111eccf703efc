package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bioauth/middleware"
	"bioauth/usecase"
	"bioauth/utils"
)

const (
	csvFilename   = "all_sessions.csv"
	excelFilename = "all_sessions.xlsx"
	excelMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportHandler struct {
	exports *usecase.ExportService
}

func NewExportHandler(exports *usecase.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportCSV handles GET /export_csv.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	h.export(c, "export_csv", "text/csv", csvFilename, h.exports.WriteCSV)
}

// ExportExcel handles GET /export_excel.
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	h.export(c, "export_excel", excelMIME, excelFilename, h.exports.WriteExcel)
}

func (h *ExportHandler) export(c *gin.Context, op, contentType, filename string,
	write func(ctx context.Context, w io.Writer) error) {
	w := &attachmentWriter{c: c, contentType: contentType, filename: filename}
	err := write(c.Request.Context(), w)
	if err == nil {
		w.start()
		return
	}
	if !w.started {
		respondError(c, op, err, "")
		return
	}
	// Headers are already sent; the body is cut short.
	utils.TrackError("export", op+"_truncated")
	middleware.Logger(c).Error("export truncated", "op", op, "error", err)
	c.Abort()
}

// attachmentWriter sends the download headers on the first Write, so an
// export that fails before producing output can still answer with an error.
type attachmentWriter struct {
	c           *gin.Context
	contentType string
	filename    string
	started     bool
}

func (w *attachmentWriter) start() {
	if w.started {
		return
	}
	w.started = true
	w.c.Header("Content-Type", w.contentType)
	w.c.Header("Content-Disposition", "attachment;filename="+w.filename)
	w.c.Status(http.StatusOK)
}

func (w *attachmentWriter) Write(p []byte) (int, error) {
	w.start()
	return w.c.Writer.Write(p)
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/api/middleware"
	"github.com/financepro/financepro/internal/report"
	"github.com/financepro/financepro/internal/state"
)

// ExportsHandler serves downloadable report files.
type ExportsHandler struct {
	controller *state.Controller
	log        zerolog.Logger
}

// NewExportsHandler creates an exports handler.
func NewExportsHandler(controller *state.Controller, log zerolog.Logger) *ExportsHandler {
	return &ExportsHandler{controller: controller, log: log}
}

// CSV handles GET /api/exports/csv, honoring the list filters.
func (h *ExportsHandler) CSV(w http.ResponseWriter, r *http.Request) {
	filtered := filterFromQuery(r).Apply(h.controller.Transactions())

	filename := fmt.Sprintf("transacoes_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	if err := report.WriteCSV(w, filtered); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV export")
	}
}

// Excel handles GET /api/exports/xlsx, honoring the list filters.
func (h *ExportsHandler) Excel(w http.ResponseWriter, r *http.Request) {
	filtered := filterFromQuery(r).Apply(h.controller.Transactions())

	filename := fmt.Sprintf("relatorio_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	title := "Relatório Financeiro - " + time.Now().Format("02/01/2006")
	if err := report.WriteExcel(w, title, filtered); err != nil {
		h.log.Error().Err(err).Msg("Failed to write spreadsheet export")
	}
}

// BackupHandler exposes the backup loop status.
type BackupHandler struct {
	controller *state.Controller
}

// NewBackupHandler creates a backup status handler.
func NewBackupHandler(controller *state.Controller) *BackupHandler {
	return &BackupHandler{controller: controller}
}

// Status handles GET /api/backup
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.controller.Backup())
}

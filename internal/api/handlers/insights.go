package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/api/middleware"
	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/report"
	"github.com/financepro/financepro/internal/state"
)

// InsightService is the slice of the model layer the handlers need.
type InsightService interface {
	Insights(ctx context.Context, transactions []domain.Transaction) string
	Forecast(ctx context.Context, transactions []domain.Transaction) *domain.FinancialForecast
}

// InsightsHandler serves model-generated analysis over the session's data.
type InsightsHandler struct {
	controller *state.Controller
	insight    InsightService
	log        zerolog.Logger
}

// NewInsightsHandler creates an insights handler.
func NewInsightsHandler(controller *state.Controller, insight InsightService, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{controller: controller, insight: insight, log: log}
}

// Insights handles GET /api/insights
func (h *InsightsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	text := h.insight.Insights(r.Context(), h.controller.Transactions())
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"insights": text})
}

// Forecast handles GET /api/forecast
func (h *InsightsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	forecast := h.insight.Forecast(r.Context(), h.controller.Transactions())
	if forecast == nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, "Forecast unavailable")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, forecast)
}

// SummaryHandler serves dashboard totals.
type SummaryHandler struct {
	controller *state.Controller
}

// NewSummaryHandler creates a summary handler.
func NewSummaryHandler(controller *state.Controller) *SummaryHandler {
	return &SummaryHandler{controller: controller}
}

// Summary handles GET /api/summary, honoring the same filters as the
// transaction list.
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filtered := filterFromQuery(r).Apply(h.controller.Transactions())
	middleware.WriteJSON(w, http.StatusOK, report.Summarize(filtered))
}

package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flick-business/flick-business/internal/platform/httpx"
	"github.com/flick-business/flick-business/internal/shared"
)

// Handler exposes reporting endpoints.
type Handler struct {
	logger    *slog.Logger
	summaries *CachedSummaries
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, summaries *CachedSummaries) *Handler {
	return &Handler{logger: logger, summaries: summaries}
}

// MountRoutes attaches reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/financial-summary", h.FinancialSummary)
	r.Get("/dashboard/summary", h.DashboardSummary)
}

// FinancialSummary serves the summary for an explicit period.
func (h *Handler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	q := r.URL.Query()

	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid from timestamp", shared.ErrValidation))
		return
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid to timestamp", shared.ErrValidation))
		return
	}
	h.respond(w, r, identity.UserID, from, to)
}

// DashboardSummary serves the summary for the current month to date.
func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	h.respond(w, r, identity.UserID, from, to)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, userID int64, from, to time.Time) {
	summary, err := h.summaries.Summary(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

package payments

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flick-business/flick-business/internal/platform/httpx"
	"github.com/flick-business/flick-business/internal/shared"
)

// Handler exposes payment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.Record)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.Record(r.Context(), identity.UserID, req)
	if err != nil {
		h.logger.Warn("record payment rejected",
			slog.Int64("user_id", identity.UserID),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("payment recorded",
		slog.Int64("user_id", identity.UserID),
		slog.Int64("payment_id", payment.ID),
		slog.String("amount", payment.Amount.String()))
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	q := r.URL.Query()

	var f ListFilters
	if raw := q.Get("customerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid customerId", shared.ErrValidation))
			return
		}
		f.CustomerID = &id
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	result, err := h.service.List(r.Context(), identity.UserID, f)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", shared.ErrValidation))
		return
	}
	result, err := h.service.Get(r.Context(), identity.UserID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

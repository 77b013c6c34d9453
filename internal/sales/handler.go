package sales

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flick-business/flick-business/internal/platform/httpx"
	"github.com/flick-business/flick-business/internal/shared"
)

// Handler exposes sale endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}/permanent", h.DeletePermanently)
	})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", shared.ErrValidation)
	}
	return id, nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req RegisterSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, err := h.service.Register(r.Context(), identity.UserID, req)
	if err != nil {
		h.logger.Warn("register sale rejected",
			slog.Int64("user_id", identity.UserID),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("sale registered",
		slog.Int64("user_id", identity.UserID),
		slog.Int64("sale_id", sale.ID),
		slog.String("total", sale.TotalAmount.String()))
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	q := r.URL.Query()

	f := ListFilters{
		PaymentMethod: shared.PaymentMethod(q.Get("paymentMethod")),
		Status:        PaymentStatus(q.Get("status")),
		OrderBy:       q.Get("orderBy"),
	}
	if raw := q.Get("customerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid customerId", shared.ErrValidation))
			return
		}
		f.CustomerID = &id
	}
	if raw := q.Get("productId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid productId", shared.ErrValidation))
			return
		}
		f.ProductID = &id
	}
	for param, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if raw := q.Get(param); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				httpx.RespondError(w, fmt.Errorf("%w: invalid %s timestamp", shared.ErrValidation, param))
				return
			}
			*dst = &ts
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	result, err := h.service.List(r.Context(), identity.UserID, f)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Get(r.Context(), identity.UserID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) DeletePermanently(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeletePermanently(r.Context(), identity.UserID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("sale permanently deleted",
		slog.Int64("user_id", identity.UserID),
		slog.Int64("sale_id", id))
	w.WriteHeader(http.StatusNoContent)
}

package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flick-business/flick-business/internal/platform/httpx"
	"github.com/flick-business/flick-business/internal/shared"
)

// Handler exposes category endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches category routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/categories", h.List)
	r.Post("/categories", h.Create)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	result, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req CreateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Create(r.Context(), identity.UserID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flick-business/flick-business/internal/platform/httpx"
	"github.com/flick-business/flick-business/internal/shared"
)

// Handler exposes account endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountPublicRoutes attaches the unauthenticated routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}

// MountProtectedRoutes attaches the profile routes.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Get("/users/me", h.Me)
	r.Put("/users/me", h.UpdateProfile)
	r.Delete("/users/me", h.DeleteAccount)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("account registered", slog.Int64("user_id", result.User.ID))
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.logger.Warn("login rejected", slog.String("email", req.Email))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	user, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), identity.UserID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if err := h.service.DeleteAccount(r.Context(), identity.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("account deleted", slog.Int64("user_id", identity.UserID))
	w.WriteHeader(http.StatusNoContent)
}

package httpx

import (
	"errors"
	"net/http"

	"github.com/flick-business/flick-business/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Every
// request-rejection error carries one of the shared kind sentinels; anything
// else is treated as an internal failure and its detail is withheld.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrPolicyViolation):
		Problem(w, http.StatusUnprocessableEntity, "Business Rule Violation", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	}); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		notFound   *errs.NotFoundError
		validation *errs.ValidationError
		remote     *errs.RemoteError
		confirm    *errs.ConfirmationRequiredError
		readOnly   *errs.ReadOnlyError
		busy       *errs.BusyError
		img        *errs.ImageError
		db         *errs.DatabaseError
		external   *errs.ExternalServiceError
		enc        *errs.EncryptionError
	)

	switch {
	case errors.As(err, &notFound):
		log.Warn("resource not found", "error", notFound.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", notFound.Message)

	case errors.As(err, &validation):
		log.Warn("validation failed", "error", validation.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", validation.Message)

	case errors.As(err, &remote):
		log.Warn("remote rejected change", "action", remote.Action, "error", remote.Message)
		h.WriteError(w, r, http.StatusUnprocessableEntity, "remote_error", remote.Message)

	case errors.As(err, &confirm):
		log.Info("confirmation required", "prompt", confirm.Message)
		h.WriteError(w, r, http.StatusPreconditionRequired, "confirmation_required", confirm.Message)

	case errors.As(err, &readOnly):
		log.Warn("change attempted in read-only mode")
		h.WriteError(w, r, http.StatusForbidden, "read_only", readOnly.Message)

	case errors.As(err, &busy):
		log.Warn("change rejected while busy")
		h.WriteError(w, r, http.StatusConflict, "busy", busy.Message)

	case errors.As(err, &img):
		log.Warn("image processing failed", "error", img.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_image", img.Message)

	case errors.As(err, &db):
		log.Error("database error",
			"operation", db.Operation,
			"error", db.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	case errors.As(err, &external):
		level := slog.LevelError
		if external.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", external.Service,
			"transient", external.Transient,
			"error", external.Message)

		status := http.StatusBadGateway
		if external.Transient {
			status = http.StatusServiceUnavailable
		}
		h.WriteError(w, r, status, "service_unavailable",
			"Service temporarily unavailable")

	case errors.As(err, &enc):
		log.Error("encryption error", "error", enc.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}

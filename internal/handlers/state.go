package handlers

import (
	"context"
	"net/http"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/response"
	"github.com/GregMSThompson/moneylog/internal/services"
)

type stateService interface {
	Summary() dto.StateSummary
	Sync(ctx context.Context) error
	Notices() []services.Notice
	Manifest() dto.WebManifest
	ApplyAccessKey(ctx context.Context, present bool, value string) error
}

type stateHandlers struct {
	ResponseHandler response.ResponseHandler
	StateSvc        stateService
}

func NewStateHandlers(deps *Deps) *stateHandlers {
	return &stateHandlers{
		ResponseHandler: deps.ResponseHandler,
		StateSvc:        deps.StateSvc,
	}
}

func (h *stateHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.StateSvc.Summary())
}

func (h *stateHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.StateSvc.Sync(r.Context()); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.StateSvc.Summary())
}

func (h *stateHandlers) GetNotices(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.StateSvc.Notices())
}

// SetAccessKey switches edit mode. An empty key logs out.
func (h *stateHandlers) SetAccessKey(w http.ResponseWriter, r *http.Request) {
	var req dto.AccessKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.StateSvc.ApplyAccessKey(r.Context(), true, req.Key); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.StateSvc.Summary())
}

// Manifest is served bare (no envelope): browsers read it directly.
func (h *stateHandlers) Manifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := encodeJSON(w, h.StateSvc.Manifest()); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/models"
	"github.com/GregMSThompson/moneylog/internal/response"
)

type settingsService interface {
	Categories(typ models.EntryType) []models.Category
	SaveSettings(ctx context.Context, form dto.SettingsForm) error
	MovePayment(req dto.MoveRequest) ([]string, error)
	MoveCategory(req dto.MoveRequest) ([]models.Category, error)
}

type settingsResponse struct {
	Categories []models.Category `json:"categories"`
	Payments   []string          `json:"payments"`
}

type settingsHandlers struct {
	ResponseHandler response.ResponseHandler
	SettingsSvc     settingsService
	StateSvc        stateService
}

func NewSettingsHandlers(deps *Deps) *settingsHandlers {
	return &settingsHandlers{
		ResponseHandler: deps.ResponseHandler,
		SettingsSvc:     deps.SettingsSvc,
		StateSvc:        deps.StateSvc,
	}
}

func (h *settingsHandlers) SettingsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetSettings)
	r.Put("/", h.SaveSettings)
	r.Post("/payments/move", h.MovePayment)
	r.Post("/categories/move", h.MoveCategory)
	return r
}

func (h *settingsHandlers) current(typ models.EntryType) settingsResponse {
	return settingsResponse{
		Categories: h.SettingsSvc.Categories(typ),
		Payments:   h.StateSvc.Summary().Payments,
	}
}

// GetSettings lists categories (?type= keeps those usable for one entry
// type) and payment methods.
func (h *settingsHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	typ := models.EntryType(r.URL.Query().Get("type"))
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.current(typ))
}

func (h *settingsHandlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var form dto.SettingsForm
	if err := decodeJSON(r, &form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.SettingsSvc.SaveSettings(r.Context(), form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.current(""))
}

func (h *settingsHandlers) MovePayment(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	payments, err := h.SettingsSvc.MovePayment(req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, payments)
}

func (h *settingsHandlers) MoveCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	categories, err := h.SettingsSvc.MoveCategory(req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, categories)
}

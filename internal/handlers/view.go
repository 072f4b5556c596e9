package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/moneylog/internal/gesture"
	"github.com/GregMSThompson/moneylog/internal/models"
	"github.com/GregMSThompson/moneylog/internal/response"
	"github.com/GregMSThompson/moneylog/internal/view"
)

type viewSession interface {
	State() view.State
	SelectTab(tab view.Tab) error
	SetChartType(typ models.EntryType) error
	Touch(ev gesture.Event) bool
	OpenLightbox(imageURL string) error
	CloseLightbox()
	Flush()
}

type tabRequest struct {
	Tab view.Tab `json:"tab"`
}

type chartTypeRequest struct {
	Type models.EntryType `json:"type"`
}

type lightboxRequest struct {
	ImageURL string `json:"imageUrl"`
}

type viewHandlers struct {
	ResponseHandler response.ResponseHandler
	View            viewSession
}

func NewViewHandlers(deps *Deps) *viewHandlers {
	return &viewHandlers{
		ResponseHandler: deps.ResponseHandler,
		View:            deps.View,
	}
}

func (h *viewHandlers) ViewRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetView)
	r.Post("/tab", h.SelectTab)
	r.Post("/touch", h.Touch)
	r.Post("/lightbox", h.OpenLightbox)
	r.Delete("/lightbox", h.CloseLightbox)
	r.Get("/chart", h.GetChart)
	r.Post("/chart", h.SetChartType)
	return r
}

func (h *viewHandlers) GetView(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.View.State())
}

func (h *viewHandlers) SelectTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.View.SelectTab(req.Tab); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.View.State())
}

func (h *viewHandlers) Touch(w http.ResponseWriter, r *http.Request) {
	var ev gesture.Event
	if err := decodeJSON(r, &ev); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.View.Touch(ev)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.View.State())
}

func (h *viewHandlers) OpenLightbox(w http.ResponseWriter, r *http.Request) {
	var req lightboxRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.View.OpenLightbox(req.ImageURL); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.View.State().Lightbox)
}

func (h *viewHandlers) CloseLightbox(w http.ResponseWriter, r *http.Request) {
	h.View.CloseLightbox()
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.View.State().Lightbox)
}

// GetChart returns the last rendered chart. ?flush=true renders a pending
// redraw first instead of waiting out the debounce.
func (h *viewHandlers) GetChart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("flush") == "true" {
		h.View.Flush()
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.View.State().Chart)
}

func (h *viewHandlers) SetChartType(w http.ResponseWriter, r *http.Request) {
	var req chartTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.View.SetChartType(req.Type); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.View.State())
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/ledger"
	"github.com/GregMSThompson/moneylog/internal/models"
	"github.com/GregMSThompson/moneylog/internal/response"
)

type entryService interface {
	Filter() models.Filter
	SetFilter(f models.Filter) error
	Entries() dto.EntryListResponse
	EntriesWith(f models.Filter) dto.EntryListResponse
	Chart(typ models.EntryType) ledger.ChartDataset
	SaveEntry(ctx context.Context, form dto.EntryForm) error
	DeleteEntry(ctx context.Context, id string, confirmed bool) error
}

var filterParams = []string{"start", "end", "category", "payment", "keyword", "type"}

type entryHandlers struct {
	ResponseHandler response.ResponseHandler
	EntrySvc        entryService
}

func NewEntryHandlers(deps *Deps) *entryHandlers {
	return &entryHandlers{
		ResponseHandler: deps.ResponseHandler,
		EntrySvc:        deps.EntrySvc,
	}
}

func (h *entryHandlers) EntryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListEntries)
	r.Post("/", h.CreateEntry)
	r.Put("/{id}", h.UpdateEntry)
	r.Delete("/{id}", h.DeleteEntry)
	return r
}

// ListEntries returns the stored filter's view. Filter query parameters,
// when given, produce a one-off view and leave the stored filter alone.
func (h *entryHandlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	custom := false
	for _, p := range filterParams {
		if q.Has(p) {
			custom = true
			break
		}
	}
	if !custom {
		h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.EntrySvc.Entries())
		return
	}

	f := models.Filter{
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Category: q.Get("category"),
		Payment:  q.Get("payment"),
		Keyword:  q.Get("keyword"),
		Type:     models.EntryType(q.Get("type")),
	}
	if err := validateFilter(f); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.EntrySvc.EntriesWith(f))
}

func (h *entryHandlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var form dto.EntryForm
	if err := decodeJSON(r, &form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	form.ID = ""
	if err := h.EntrySvc.SaveEntry(r.Context(), form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, h.EntrySvc.Entries())
}

func (h *entryHandlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var form dto.EntryForm
	if err := decodeJSON(r, &form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	form.ID = chi.URLParam(r, "id")
	if err := h.EntrySvc.SaveEntry(r.Context(), form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.EntrySvc.Entries())
}

func (h *entryHandlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.EntrySvc.DeleteEntry(r.Context(), id, confirmed(r)); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *entryHandlers) GetFilter(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.EntrySvc.Filter())
}

func (h *entryHandlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	var f models.Filter
	if err := decodeJSON(r, &f); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.EntrySvc.SetFilter(f); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.EntrySvc.Entries())
}

// GetChart groups the stored filter's view; ?type= scopes it.
func (h *entryHandlers) GetChart(w http.ResponseWriter, r *http.Request) {
	typ := models.EntryType(r.URL.Query().Get("type"))
	if err := validateFilter(models.Filter{Type: typ}); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.EntrySvc.Chart(typ))
}

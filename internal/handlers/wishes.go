package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/response"
)

type wishService interface {
	Wishes() dto.WishListResponse
	WishLogs(id string) ([]dto.EntryView, error)
	SaveWish(ctx context.Context, form dto.WishForm) error
	CompleteWish(ctx context.Context, id string, confirmed bool) error
	Deposit(ctx context.Context, id string, form dto.DepositForm) error
	DeleteWish(ctx context.Context, id string, confirmed bool) error
}

type wishHandlers struct {
	ResponseHandler response.ResponseHandler
	WishSvc         wishService
}

func NewWishHandlers(deps *Deps) *wishHandlers {
	return &wishHandlers{
		ResponseHandler: deps.ResponseHandler,
		WishSvc:         deps.WishSvc,
	}
}

func (h *wishHandlers) WishRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListWishes)
	r.Post("/", h.CreateWish)
	r.Put("/{id}", h.UpdateWish)
	r.Delete("/{id}", h.DeleteWish)
	r.Post("/{id}/complete", h.CompleteWish)
	r.Post("/{id}/deposits", h.Deposit)
	r.Get("/{id}/logs", h.WishLogs)
	return r
}

func (h *wishHandlers) ListWishes(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.WishSvc.Wishes())
}

func (h *wishHandlers) CreateWish(w http.ResponseWriter, r *http.Request) {
	var form dto.WishForm
	if err := decodeJSON(r, &form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	form.ID = ""
	if err := h.WishSvc.SaveWish(r.Context(), form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, h.WishSvc.Wishes())
}

func (h *wishHandlers) UpdateWish(w http.ResponseWriter, r *http.Request) {
	var form dto.WishForm
	if err := decodeJSON(r, &form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	form.ID = chi.URLParam(r, "id")
	if err := h.WishSvc.SaveWish(r.Context(), form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.WishSvc.Wishes())
}

func (h *wishHandlers) DeleteWish(w http.ResponseWriter, r *http.Request) {
	if err := h.WishSvc.DeleteWish(r.Context(), chi.URLParam(r, "id"), confirmed(r)); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *wishHandlers) CompleteWish(w http.ResponseWriter, r *http.Request) {
	if err := h.WishSvc.CompleteWish(r.Context(), chi.URLParam(r, "id"), confirmed(r)); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.WishSvc.Wishes())
}

func (h *wishHandlers) Deposit(w http.ResponseWriter, r *http.Request) {
	var form dto.DepositForm
	if err := decodeJSON(r, &form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.WishSvc.Deposit(r.Context(), chi.URLParam(r, "id"), form); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, h.WishSvc.Wishes())
}

func (h *wishHandlers) WishLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.WishSvc.WishLogs(chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, logs)
}

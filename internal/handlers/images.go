package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/imaging"
	"github.com/GregMSThompson/moneylog/internal/response"
)

const (
	imageField     = "image"
	maxUploadBytes = 25 << 20
)

type imageService interface {
	PrepareImage(ctx context.Context, r io.Reader) (imaging.Result, error)
}

type imageHandlers struct {
	ResponseHandler response.ResponseHandler
	ImageSvc        imageService
}

func NewImageHandlers(deps *Deps) *imageHandlers {
	return &imageHandlers{
		ResponseHandler: deps.ResponseHandler,
		ImageSvc:        deps.ImageSvc,
	}
}

// UploadImage takes a multipart "image" field and returns the downscaled
// data URL to put in an entry or wish form.
func (h *imageHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile(imageField)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("multipart field \"image\" is required"))
		return
	}
	defer file.Close()

	res, err := h.ImageSvc.PrepareImage(r.Context(), file)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

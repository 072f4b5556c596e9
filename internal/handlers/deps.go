package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/response"
	"github.com/GregMSThompson/moneylog/internal/services"
)

// ConfirmHeader carries the user's answer to a destructive-action prompt.
const ConfirmHeader = "X-Confirm"

type Deps struct {
	ResponseHandler response.ResponseHandler
	StateSvc        stateService
	EntrySvc        entryService
	WishSvc         wishService
	SettingsSvc     settingsService
	ImageSvc        imageService
	View            viewSession
}

var validateFilter = services.ValidateFilter

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func confirmed(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(ConfirmHeader), "true")
}

func encodeJSON(w http.ResponseWriter, v any) error {
	return json.NewEncoder(w).Encode(v)
}

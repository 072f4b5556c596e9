package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/models"
)

// Wire types for the spreadsheet-backed web-script endpoint. Row keys are the
// sheet's column headers.

const (
	ActionInit             = "init"
	ActionGetLogs          = "getLogs"
	ActionSaveWish         = "saveWish"
	ActionDeleteWish       = "deleteWish"
	ActionUpdateCategories = "updateCategories"
	ActionUpdatePayments   = "updatePayments"
	ActionUpdateSettings   = "updateSettings"

	StatusError = "error"
)

// Dialect captures the two generations of the remote script: the ledger-only
// one (add/update/delete, settings saved in two calls) and the wish one
// (addLog/updateLog/deleteLog, single updateSettings call).
type Dialect struct {
	Name          string
	AddEntry      string
	UpdateEntry   string
	DeleteEntry   string
	SplitSettings bool
	Wishes        bool
}

var (
	DialectLedger = Dialect{Name: "ledger", AddEntry: "add", UpdateEntry: "update", DeleteEntry: "delete", SplitSettings: true}
	DialectWish   = Dialect{Name: "wish", AddEntry: "addLog", UpdateEntry: "updateLog", DeleteEntry: "deleteLog", Wishes: true}
)

func ParseDialect(name string) Dialect {
	if strings.EqualFold(strings.TrimSpace(name), DialectLedger.Name) {
		return DialectLedger
	}
	return DialectWish
}

// FlexNumber accepts a JSON number, a numeric string, "" or null.
// Anything non-numeric decodes to zero.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = 0
		}
		*n = FlexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = FlexNumber(f)
	return nil
}

// FlexString accepts a JSON string or number (sheet IDs are often numeric).
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
		return nil
	}
	*s = FlexString(strings.TrimSpace(string(b)))
	return nil
}

// FlexList accepts either a JSON array of strings or one comma-separated string.
type FlexList []string

func (l *FlexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = FlexList(strings.Split(s, ","))
		return nil
	}
	var items []FlexString
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(FlexList, len(items))
	for i, it := range items {
		out[i] = string(it)
	}
	*l = out
	return nil
}

type CategoryRecord struct {
	Main string     `json:"main"`
	Subs FlexList   `json:"subs"`
	Type FlexString `json:"type"`
}

type InitResponse struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Categories []CategoryRecord `json:"categories"`
	Payments   []FlexString     `json:"payments"`
	WishList   []WishRecord     `json:"wishList"`
}

// Validate rejects bodies that do not look like an init reply at all.
func (r InitResponse) Validate() error {
	if r.Status == StatusError {
		return errs.NewRemoteError(ActionInit, r.Message)
	}
	if r.Categories == nil {
		return errs.NewValidationError("init response is missing categories")
	}
	return nil
}

func (r InitResponse) PaymentNames() []string {
	out := make([]string, 0, len(r.Payments))
	for _, p := range r.Payments {
		if p != "" {
			out = append(out, string(p))
		}
	}
	return out
}

type LogRecord struct {
	ID           FlexString `json:"ID"`
	Date         FlexString `json:"日期"`
	Type         FlexString `json:"類型"`
	Item         FlexString `json:"品項"`
	Amount       FlexNumber `json:"金額"`
	MainCategory FlexString `json:"大分類"`
	SubCategory  FlexString `json:"小分類"`
	Payment      FlexString `json:"付款方式"`
	Note         FlexString `json:"備註"`
	ImageID      FlexString `json:"圖片ID"`
	RelWishID    FlexString `json:"關聯願望ID"`
	WishID       FlexString `json:"願望ID"`
	WishIDAlt    FlexString `json:"wishId"`
}

// ToModel validates the row and converts it. Rows without an ID or a date
// cannot be edited, filtered or deleted and are rejected.
func (r LogRecord) ToModel() (models.LedgerEntry, error) {
	if r.ID == "" {
		return models.LedgerEntry{}, errs.NewValidationError("log row has no ID")
	}
	if r.Date == "" {
		return models.LedgerEntry{}, errs.NewValidationError("log row " + string(r.ID) + " has no date")
	}
	wishID := r.RelWishID
	if wishID == "" {
		wishID = r.WishID
	}
	if wishID == "" {
		wishID = r.WishIDAlt
	}
	return models.LedgerEntry{
		ID:           string(r.ID),
		Date:         string(r.Date),
		Type:         models.EntryType(r.Type),
		Item:         string(r.Item),
		Amount:       float64(r.Amount),
		MainCategory: string(r.MainCategory),
		SubCategory:  string(r.SubCategory),
		Payment:      string(r.Payment),
		Note:         string(r.Note),
		ImageID:      string(r.ImageID),
		WishID:       string(wishID),
	}, nil
}

type WishRecord struct {
	ID            FlexString `json:"願望ID"`
	Name          FlexString `json:"願望名稱"`
	Target        FlexNumber `json:"目標金額"`
	CurrentMoney  FlexNumber `json:"目前金額 (錢)"`
	CurrentPoints FlexNumber `json:"目前點數 (點)"`
	Status        FlexString `json:"狀態"`
	Note          FlexString `json:"備註"`
	ImageID       FlexString `json:"圖片ID"`
	CreatedTime   FlexString `json:"建立時間"`
	AchievedDate  FlexString `json:"達成日期"`
}

func (r WishRecord) ToModel() (models.Wish, error) {
	if r.ID == "" {
		return models.Wish{}, errs.NewValidationError("wish row has no ID")
	}
	status := models.WishStatus(r.Status)
	if status == "" {
		status = models.WishInProgress
	}
	return models.Wish{
		ID:            string(r.ID),
		Name:          string(r.Name),
		Target:        float64(r.Target),
		CurrentMoney:  float64(r.CurrentMoney),
		CurrentPoints: float64(r.CurrentPoints),
		Status:        status,
		Note:          string(r.Note),
		ImageID:       string(r.ImageID),
		CreatedTime:   string(r.CreatedTime),
		AchievedDate:  string(r.AchievedDate),
	}, nil
}

// Envelope is the part every POST body shares.
type Envelope struct {
	Action    string `json:"action"`
	Key       string `json:"key,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (e *Envelope) Base() *Envelope { return e }

// ActionPayload is any POST body understood by the remote script.
type ActionPayload interface {
	Base() *Envelope
}

type EntryRequest struct {
	Envelope
	ID           string  `json:"id,omitempty"`
	Date         string  `json:"date"`
	Type         string  `json:"type,omitempty"`
	Item         string  `json:"item"`
	Amount       float64 `json:"amount"`
	MainCategory string  `json:"mainCategory"`
	SubCategory  string  `json:"subCategory"`
	Payment      string  `json:"payment"`
	Note         string  `json:"note"`
	ImageData    string  `json:"imageData,omitempty"`
	DeleteImage  bool    `json:"deleteImage"`
	WishID       string  `json:"wishId,omitempty"`
}

type DeleteEntryRequest struct {
	Envelope
	ID string `json:"id"`
}

type WishRequest struct {
	Envelope
	WishID        string  `json:"wishId,omitempty"`
	Name          string  `json:"name"`
	Target        float64 `json:"target"`
	Status        string  `json:"status"`
	Note          string  `json:"note"`
	ImageData     string  `json:"imageData,omitempty"`
	ImgID         string  `json:"imgId"`
	CreatedTime   string  `json:"createdTime"`
	CurrentMoney  float64 `json:"currentMoney"`
	CurrentPoints float64 `json:"currentPoints"`
	AchievedDate  string  `json:"achievedDate,omitempty"`
}

type DeleteWishRequest struct {
	Envelope
	WishID string `json:"wishId"`
}

type CategoryPayload struct {
	Main string   `json:"main"`
	Subs []string `json:"subs"`
	Type string   `json:"type,omitempty"`
}

type SettingsRequest struct {
	Envelope
	Categories []CategoryPayload `json:"categories"`
	Payments   []string          `json:"payments"`
}

// ListRequest is used by updatePayments / updateCategories, which take
// their list under "data".
type ListRequest struct {
	Envelope
	Data any `json:"data"`
}

type ActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

package dto

import (
	"strings"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/models"
)

// EntryForm is the add / edit entry form. ImageData is a newly captured
// image (data URL); ImageID is the existing image being kept. An update keeps
// the stored image unless DeleteImage is set.
type EntryForm struct {
	ID           string           `json:"id,omitempty"`
	Date         string           `json:"date"`
	Type         models.EntryType `json:"type"`
	Item         string           `json:"item"`
	Amount       *float64         `json:"amount"`
	MainCategory string           `json:"mainCategory"`
	SubCategory  string           `json:"subCategory"`
	Payment      string           `json:"payment"`
	Note         string           `json:"note"`
	ImageData    string           `json:"imageData,omitempty"`
	ImageID      string           `json:"imageId,omitempty"`
	DeleteImage  bool             `json:"deleteImage,omitempty"`
}

func (f EntryForm) Validate() error {
	if f.Amount == nil || *f.Amount == 0 || strings.TrimSpace(f.MainCategory) == "" {
		return errs.NewValidationError("amount and main category are required")
	}
	return nil
}

// WishForm is the add / edit wish form.
type WishForm struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Target      *float64 `json:"target"`
	Note        string   `json:"note"`
	ImageData   string   `json:"imageData,omitempty"`
	ImageID     string   `json:"imageId,omitempty"`
	CreatedTime string   `json:"createdTime,omitempty"`
}

func (f WishForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" || f.Target == nil || *f.Target == 0 {
		return errs.NewValidationError("name and target are required")
	}
	return nil
}

type DepositKind string

const (
	DepositMoney  DepositKind = "money"
	DepositPoints DepositKind = "points"
)

type DepositForm struct {
	Kind   DepositKind `json:"kind"`
	Amount *float64    `json:"amount"`
	Note   string      `json:"note"`
}

func (f DepositForm) Validate() error {
	if f.Kind != DepositMoney && f.Kind != DepositPoints {
		return errs.NewValidationError("deposit kind must be money or points")
	}
	if f.Amount == nil || *f.Amount == 0 {
		return errs.NewValidationError("deposit amount is required")
	}
	return nil
}

// CategoryForm is one row of the settings editor: subcategories are edited
// as a comma-joined string.
type CategoryForm struct {
	Main   string           `json:"main"`
	SubRaw string           `json:"subRaw"`
	Type   models.EntryType `json:"type,omitempty"`
}

type SettingsForm struct {
	Categories []CategoryForm `json:"categories"`
	Payments   []string       `json:"payments"`
}

func (f SettingsForm) Validate() error {
	for _, c := range f.Categories {
		if strings.TrimSpace(c.Main) == "" {
			return errs.NewValidationError("category name is required")
		}
	}
	return nil
}

// MoveRequest swaps the item at Index with its neighbour (Step is -1 or +1).
type MoveRequest struct {
	Index int `json:"index"`
	Step  int `json:"step"`
}

func (m MoveRequest) Validate() error {
	if m.Step != 1 && m.Step != -1 {
		return errs.NewValidationError("step must be -1 or 1")
	}
	return nil
}

// AccessKeyRequest sets the edit-mode key; "" logs out.
type AccessKeyRequest struct {
	Key string `json:"key"`
}

// StateSummary is what GET /api/state reports.
type StateSummary struct {
	EditMode   bool          `json:"editMode"`
	Busy       bool          `json:"busy"`
	Filter     models.Filter `json:"filter"`
	Entries    int           `json:"entries"`
	Categories int           `json:"categories"`
	Payments   []string      `json:"payments"`
	Wishes     int           `json:"wishes"`
	Balance    float64       `json:"balance"`
	LastSync   string        `json:"lastSync,omitempty"`
}

// EntryView is a ledger entry as presented: display date and thumbnail.
type EntryView struct {
	models.LedgerEntry
	DisplayDate string `json:"displayDate"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type EntryListResponse struct {
	Filter  models.Filter `json:"filter"`
	Entries []EntryView   `json:"entries"`
	Total   float64       `json:"total"`
}

type WishView struct {
	models.Wish
	Percent  int     `json:"percent"`
	MoneyBar float64 `json:"moneyBar"`
	PointBar float64 `json:"pointBar"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

type WishListResponse struct {
	Wishes           []WishView `json:"wishes"`
	Achievements     []WishView `json:"achievements"`
	AchievementCount int        `json:"achievementCount"`
}

type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// WebManifest is the dynamic web-app manifest.
type WebManifest struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
}

package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/ledger"
	"github.com/GregMSThompson/moneylog/internal/models"
)

const thumbnailBase = "https://drive.google.com/thumbnail"

// ThumbnailURL is the preview URL of a stored image, or "" for no image.
func ThumbnailURL(imageID string) string {
	if imageID == "" {
		return ""
	}
	return thumbnailBase + "?id=" + url.QueryEscape(imageID) + "&sz=s1000"
}

func (c *controller) Filter() models.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Filter
}

// SetFilter replaces the filter. Empty fields do not constrain.
func (c *controller) SetFilter(f models.Filter) error {
	if err := ValidateFilter(f); err != nil {
		return err
	}
	f.Keyword = strings.TrimSpace(f.Keyword)
	c.mu.Lock()
	c.state.Filter = f
	c.mu.Unlock()
	c.notify(ChangeFilter)
	return nil
}

func ValidateFilter(f models.Filter) error {
	for _, d := range []string{f.Start, f.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(ledger.DateLayout, d); err != nil {
			return errs.NewValidationError("dates must be YYYY-MM-DD: " + d)
		}
	}
	switch f.Type {
	case "", models.EntryExpense, models.EntryIncome, models.EntryPointReward:
		return nil
	}
	return errs.NewValidationError("unknown entry type: " + string(f.Type))
}

// Entries is the filtered view (newest first) with its total.
func (c *controller) Entries() dto.EntryListResponse {
	c.mu.RLock()
	f := c.state.Filter
	filtered := ledger.Apply(c.state.Entries, c.state.Categories, f, c.opts.Location)
	c.mu.RUnlock()

	return dto.EntryListResponse{
		Filter:  f,
		Entries: c.entryViews(filtered),
		Total:   ledger.Total(filtered),
	}
}

// EntriesWith applies f without changing the stored filter.
func (c *controller) EntriesWith(f models.Filter) dto.EntryListResponse {
	c.mu.RLock()
	filtered := ledger.Apply(c.state.Entries, c.state.Categories, f, c.opts.Location)
	c.mu.RUnlock()
	return dto.EntryListResponse{Filter: f, Entries: c.entryViews(filtered), Total: ledger.Total(filtered)}
}

// Chart groups the filtered view by main category, optionally scoped to typ.
func (c *controller) Chart(typ models.EntryType) ledger.ChartDataset {
	c.mu.RLock()
	filtered := ledger.Apply(c.state.Entries, c.state.Categories, c.state.Filter, c.opts.Location)
	c.mu.RUnlock()
	return ledger.Chart(filtered, typ)
}

func (c *controller) Balance() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ledger.Balance(c.state.Entries)
}

func (c *controller) Summary() dto.StateSummary {
	s := c.Snapshot()
	out := dto.StateSummary{
		EditMode:   s.AccessKey != "",
		Busy:       c.Busy(),
		Filter:     s.Filter,
		Entries:    len(s.Entries),
		Categories: len(s.Categories),
		Payments:   s.Payments,
		Wishes:     len(s.Wishes),
		Balance:    ledger.Balance(s.Entries),
	}
	if !s.LastSync.IsZero() {
		out.LastSync = s.LastSync.Format(time.RFC3339)
	}
	return out
}

func (c *controller) entryViews(entries []models.LedgerEntry) []dto.EntryView {
	out := make([]dto.EntryView, len(entries))
	for i, e := range entries {
		out[i] = dto.EntryView{
			LedgerEntry: e,
			DisplayDate: ledger.DisplayDate(e.Date, c.opts.Location),
			ImageURL:    ThumbnailURL(e.ImageID),
		}
	}
	return out
}

func (c *controller) findEntry(id string) (models.LedgerEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.state.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.LedgerEntry{}, false
}

// SaveEntry creates (no ID) or updates an entry. A remote rejection is
// returned with the server's message so the form can stay open.
func (c *controller) SaveEntry(ctx context.Context, form dto.EntryForm) error {
	validate := func() error {
		if err := form.Validate(); err != nil {
			return err
		}
		if form.ID != "" {
			if _, ok := c.findEntry(form.ID); !ok {
				return errs.NewNotFoundError("entry " + form.ID + " not found")
			}
		}
		return nil
	}
	return c.mutate(ctx, "save entry", validate, func(key string) error {
		_, err := c.api.Post(ctx, c.entryRequest(form, key))
		return err
	})
}

func (c *controller) entryRequest(form dto.EntryForm, key string) *dto.EntryRequest {
	action := c.opts.Dialect.AddEntry
	if form.ID != "" {
		action = c.opts.Dialect.UpdateEntry
	}
	date := form.Date
	if date == "" {
		date = ledger.Today(c.now())
	}
	typ := form.Type
	if typ == "" {
		typ = models.EntryExpense
	}
	return &dto.EntryRequest{
		Envelope:     dto.Envelope{Action: action, Key: key},
		ID:           form.ID,
		Date:         date,
		Type:         string(typ),
		Item:         form.Item,
		Amount:       *form.Amount,
		MainCategory: strings.TrimSpace(form.MainCategory),
		SubCategory:  form.SubCategory,
		Payment:      form.Payment,
		Note:         form.Note,
		ImageData:    form.ImageData,
		DeleteImage:  form.ID != "" && form.DeleteImage && form.ImageData == "",
	}
}

// DeleteEntry removes an entry. It needs explicit confirmation.
func (c *controller) DeleteEntry(ctx context.Context, id string, confirmed bool) error {
	validate := func() error {
		if _, ok := c.findEntry(id); !ok {
			return errs.NewNotFoundError("entry " + id + " not found")
		}
		if !confirmed {
			return errs.NewConfirmationRequiredError("Delete this entry? This cannot be undone.")
		}
		return nil
	}
	return c.mutate(ctx, "delete entry", validate, func(key string) error {
		_, err := c.api.Post(ctx, &dto.DeleteEntryRequest{
			Envelope: dto.Envelope{Action: c.opts.Dialect.DeleteEntry, Key: key},
			ID:       id,
		})
		return err
	})
}

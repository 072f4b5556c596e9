package services

import (
	"context"
	"strings"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/ledger"
	"github.com/GregMSThompson/moneylog/internal/models"
)

// Categories returns the categories for typ ("" for all).
func (c *controller) Categories(typ models.EntryType) []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if typ == "" {
		return append([]models.Category(nil), c.state.Categories...)
	}
	return ledger.CategoriesOfType(c.state.Categories, typ)
}

// SaveSettings replaces categories and payment methods. The ledger endpoint
// takes two calls, payments then categories, with no rollback if the second
// fails; the wish endpoint takes one.
func (c *controller) SaveSettings(ctx context.Context, form dto.SettingsForm) error {
	cats, pays := normalizeSettings(form)
	return c.mutate(ctx, "save settings", form.Validate, func(key string) error {
		payload := make([]dto.CategoryPayload, len(cats))
		for i, cat := range cats {
			payload[i] = dto.CategoryPayload{Main: cat.Main, Subs: cat.Subs, Type: string(cat.Type)}
		}

		if !c.opts.Dialect.SplitSettings {
			_, err := c.api.Post(ctx, &dto.SettingsRequest{
				Envelope:   dto.Envelope{Action: dto.ActionUpdateSettings, Key: key},
				Categories: payload,
				Payments:   pays,
			})
			return err
		}

		if _, err := c.api.Post(ctx, &dto.ListRequest{
			Envelope: dto.Envelope{Action: dto.ActionUpdatePayments, Key: key},
			Data:     pays,
		}); err != nil {
			return err
		}
		_, err := c.api.Post(ctx, &dto.ListRequest{
			Envelope: dto.Envelope{Action: dto.ActionUpdateCategories, Key: key},
			Data:     payload,
		})
		return err
	})
}

func normalizeSettings(form dto.SettingsForm) ([]models.Category, []string) {
	cats := make([]models.Category, 0, len(form.Categories))
	for _, cf := range form.Categories {
		cats = append(cats, ledger.NormalizeCategory(cf.Main, []string{cf.SubRaw}, cf.Type))
	}
	cats = ledger.UniqueByMain(cats)

	pays := make([]string, 0, len(form.Payments))
	for _, p := range form.Payments {
		if p = strings.TrimSpace(p); p != "" {
			pays = append(pays, p)
		}
	}
	return cats, pays
}

// MovePayment swaps a payment method with its neighbour in local state.
// Out-of-range moves are ignored. The order is sent on the next save.
func (c *controller) MovePayment(req dto.MoveRequest) ([]string, error) {
	if err := c.requireEditMode(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	moved := ledger.Move(c.state.Payments, req.Index, req.Step)
	out := append([]string(nil), c.state.Payments...)
	c.mu.Unlock()
	if moved {
		c.notify(ChangeSettings)
	}
	return out, nil
}

// MoveCategory swaps a category with its neighbour in local state.
func (c *controller) MoveCategory(req dto.MoveRequest) ([]models.Category, error) {
	if err := c.requireEditMode(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	moved := ledger.Move(c.state.Categories, req.Index, req.Step)
	out := append([]models.Category(nil), c.state.Categories...)
	c.mu.Unlock()
	if moved {
		c.notify(ChangeSettings)
	}
	return out, nil
}

package services

import (
	"context"
	"strings"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/ledger"
	"github.com/GregMSThompson/moneylog/internal/models"
)

const (
	depositMoneyPrefix  = "存錢："
	depositPointsPrefix = "獎勵："
)

func (c *controller) requireWishes() error {
	if !c.opts.Dialect.Wishes {
		return errs.NewValidationError("the " + c.opts.Dialect.Name + " endpoint has no wishes")
	}
	return nil
}

func (c *controller) findWish(id string) (models.Wish, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ledger.FindWish(c.state.Wishes, id)
}

func wishView(w models.Wish) dto.WishView {
	p := ledger.Progress(w)
	return dto.WishView{
		Wish:     w,
		Percent:  p.Percent,
		MoneyBar: p.MoneyBar,
		PointBar: p.PointBar,
		ImageURL: ThumbnailURL(w.ImageID),
	}
}

// Wishes lists wishes (in progress first) and the achievement hall.
func (c *controller) Wishes() dto.WishListResponse {
	c.mu.RLock()
	wishes := ledger.SortWishes(c.state.Wishes)
	achieved := ledger.Achievements(c.state.Wishes)
	c.mu.RUnlock()

	out := dto.WishListResponse{
		Wishes:           make([]dto.WishView, len(wishes)),
		Achievements:     make([]dto.WishView, len(achieved)),
		AchievementCount: len(achieved),
	}
	for i, w := range wishes {
		out.Wishes[i] = wishView(w)
	}
	for i, w := range achieved {
		out.Achievements[i] = wishView(w)
	}
	return out
}

// WishLogs returns the entries linked to a wish, newest first.
func (c *controller) WishLogs(id string) ([]dto.EntryView, error) {
	if _, ok := c.findWish(id); !ok {
		return nil, errs.NewNotFoundError("wish " + id + " not found")
	}
	c.mu.RLock()
	logs := ledger.WishLogs(c.state.Entries, id)
	c.mu.RUnlock()
	return c.entryViews(logs), nil
}

// SaveWish creates or edits a wish. Totals always come from state (zero for
// a new wish) so an edit never resets progress.
func (c *controller) SaveWish(ctx context.Context, form dto.WishForm) error {
	var existing models.Wish
	validate := func() error {
		if err := c.requireWishes(); err != nil {
			return err
		}
		if err := form.Validate(); err != nil {
			return err
		}
		if form.ID != "" {
			w, ok := c.findWish(form.ID)
			if !ok {
				return errs.NewNotFoundError("wish " + form.ID + " not found")
			}
			existing = w
		}
		return nil
	}
	return c.mutate(ctx, "save wish", validate, func(key string) error {
		req := &dto.WishRequest{
			Envelope:    dto.Envelope{Action: dto.ActionSaveWish, Key: key},
			WishID:      form.ID,
			Name:        strings.TrimSpace(form.Name),
			Target:      *form.Target,
			Status:      string(models.WishInProgress),
			Note:        form.Note,
			ImageData:   form.ImageData,
			ImgID:       form.ImageID,
			CreatedTime: form.CreatedTime,
		}
		if form.ID != "" {
			req.Status = string(existing.Status)
			req.CurrentMoney = existing.CurrentMoney
			req.CurrentPoints = existing.CurrentPoints
			req.AchievedDate = existing.AchievedDate
			if req.CreatedTime == "" {
				req.CreatedTime = existing.CreatedTime
			}
		}
		_, err := c.api.Post(ctx, req)
		return err
	})
}

// CompleteWish moves a wish to the achievement hall with today's date. Every
// other field is sent back unchanged.
func (c *controller) CompleteWish(ctx context.Context, id string, confirmed bool) error {
	var w models.Wish
	validate := func() error {
		if err := c.requireWishes(); err != nil {
			return err
		}
		found, ok := c.findWish(id)
		if !ok {
			return errs.NewNotFoundError("wish " + id + " not found")
		}
		if found.Achieved() {
			return errs.NewValidationError("wish is already achieved")
		}
		if !confirmed {
			return errs.NewConfirmationRequiredError("Mark this wish as achieved?")
		}
		w = found
		return nil
	}
	return c.mutate(ctx, "complete wish", validate, func(key string) error {
		_, err := c.api.Post(ctx, completeRequest(w, key, ledger.Today(c.now())))
		return err
	})
}

func completeRequest(w models.Wish, key, today string) *dto.WishRequest {
	return &dto.WishRequest{
		Envelope:      dto.Envelope{Action: dto.ActionSaveWish, Key: key},
		WishID:        w.ID,
		Name:          w.Name,
		Target:        w.Target,
		Status:        string(models.WishAchieved),
		Note:          w.Note,
		ImgID:         w.ImageID,
		CreatedTime:   w.CreatedTime,
		CurrentMoney:  w.CurrentMoney,
		CurrentPoints: w.CurrentPoints,
		AchievedDate:  today,
	}
}

// Deposit records a contribution to a wish as one synthetic ledger entry.
func (c *controller) Deposit(ctx context.Context, id string, form dto.DepositForm) error {
	var w models.Wish
	validate := func() error {
		if err := c.requireWishes(); err != nil {
			return err
		}
		if err := form.Validate(); err != nil {
			return err
		}
		found, ok := c.findWish(id)
		if !ok {
			return errs.NewNotFoundError("wish " + id + " not found")
		}
		w = found
		return nil
	}
	return c.mutate(ctx, "deposit", validate, func(key string) error {
		req := depositRequest(w, form, c.opts.Dialect.AddEntry, key, ledger.Today(c.now()))
		_, err := c.api.Post(ctx, req)
		return err
	})
}

func depositRequest(w models.Wish, form dto.DepositForm, action, key, today string) *dto.EntryRequest {
	req := &dto.EntryRequest{
		Envelope:    dto.Envelope{Action: action, Key: key},
		Date:        today,
		Type:        string(models.EntryExpense),
		Item:        depositMoneyPrefix + w.Name,
		Amount:      *form.Amount,
		SubCategory: w.Name,
		Payment:     models.PaymentDreamBank,
		Note:        form.Note,
		WishID:      w.ID,
	}
	req.MainCategory = models.CategoryWishSavings
	if form.Kind == dto.DepositPoints {
		req.Type = string(models.EntryPointReward)
		req.Item = depositPointsPrefix + w.Name
		req.MainCategory = models.CategoryBehaviorReward
	}
	return req
}

// DeleteWish removes a wish. It needs explicit confirmation.
func (c *controller) DeleteWish(ctx context.Context, id string, confirmed bool) error {
	validate := func() error {
		if err := c.requireWishes(); err != nil {
			return err
		}
		if _, ok := c.findWish(id); !ok {
			return errs.NewNotFoundError("wish " + id + " not found")
		}
		if !confirmed {
			return errs.NewConfirmationRequiredError("Delete this wish? This cannot be undone.")
		}
		return nil
	}
	return c.mutate(ctx, "delete wish", validate, func(key string) error {
		_, err := c.api.Post(ctx, &dto.DeleteWishRequest{
			Envelope: dto.Envelope{Action: dto.ActionDeleteWish, Key: key},
			WishID:   id,
		})
		return err
	})
}

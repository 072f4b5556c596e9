package ledger

import (
	"math"
	"slices"
	"strings"

	"github.com/GregMSThompson/moneylog/internal/models"
)

// SortWishes orders in-progress wishes first (newest created first), then
// achieved ones (most recently achieved first). The input is not modified.
func SortWishes(wishes []models.Wish) []models.Wish {
	out := slices.Clone(wishes)
	slices.SortStableFunc(out, func(a, b models.Wish) int {
		aOpen, bOpen := !a.Achieved(), !b.Achieved()
		switch {
		case aOpen && !bOpen:
			return -1
		case !aOpen && bOpen:
			return 1
		case aOpen:
			return strings.Compare(b.CreatedTime, a.CreatedTime)
		default:
			return strings.Compare(b.AchievedDate, a.AchievedDate)
		}
	})
	return out
}

// Achievements returns achieved wishes, most recent first.
func Achievements(wishes []models.Wish) []models.Wish {
	out := make([]models.Wish, 0)
	for _, w := range wishes {
		if w.Achieved() {
			out = append(out, w)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Wish) int {
		return strings.Compare(b.AchievedDate, a.AchievedDate)
	})
	return out
}

// WishProgress is the overall percentage toward target, capped at 100,
// plus the share each contribution track contributes.
type WishProgress struct {
	Percent  int     `json:"percent"`
	MoneyBar float64 `json:"moneyBar"`
	PointBar float64 `json:"pointBar"`
}

func Progress(w models.Wish) WishProgress {
	if w.Target <= 0 {
		return WishProgress{}
	}
	total := w.CurrentMoney + w.CurrentPoints
	pct := int(math.Round(total / w.Target * 100))
	return WishProgress{
		Percent:  min(100, pct),
		MoneyBar: w.CurrentMoney / w.Target * 100,
		PointBar: w.CurrentPoints / w.Target * 100,
	}
}

// WishLogs returns the entries linked to wishID, newest first.
func WishLogs(entries []models.LedgerEntry, wishID string) []models.LedgerEntry {
	wishID = strings.TrimSpace(wishID)
	if wishID == "" {
		return nil
	}
	out := make([]models.LedgerEntry, 0)
	for _, e := range entries {
		if strings.TrimSpace(e.WishID) == wishID {
			out = append(out, e)
		}
	}
	slices.Reverse(out)
	return out
}

// FindWish returns the wish with id, if any.
func FindWish(wishes []models.Wish, id string) (models.Wish, bool) {
	for _, w := range wishes {
		if w.ID == id {
			return w, true
		}
	}
	return models.Wish{}, false
}

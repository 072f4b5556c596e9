// Package ledger holds the pure derivations over mirrored ledger state:
// filtering, totals, chart buckets, category normalisation and wish views.
// Nothing here performs I/O; callers re-run these after every state change.
package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/GregMSThompson/moneylog/internal/models"
)

// Apply returns the entries that satisfy every predicate of f, most
// recently appended first. Source order is whatever the remote returned.
func Apply(entries []models.LedgerEntry, categories []models.Category, f models.Filter, loc *time.Location) []models.LedgerEntry {
	keyword := strings.ToLower(f.Keyword)
	out := make([]models.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if !inRange(e, f, loc) {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Category != "" && ResolveMainCategory(e, categories) != f.Category {
			continue
		}
		if f.Payment != "" && e.Payment != f.Payment {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(e.Item+e.Note), keyword) {
			continue
		}
		out = append(out, e)
	}
	slices.Reverse(out)
	return out
}

// inRange compares on the normalised day. A missing bound does not
// constrain; an entry with an unreadable date only passes an unbounded filter.
func inRange(e models.LedgerEntry, f models.Filter, loc *time.Location) bool {
	if f.Start == "" && f.End == "" {
		return true
	}
	d, ok := NormalizeDate(e.Date, loc)
	if !ok {
		return false
	}
	if f.Start != "" && d < f.Start {
		return false
	}
	if f.End != "" && d > f.End {
		return false
	}
	return true
}

// ResolveMainCategory returns the entry's main category, falling back to the
// category whose subcategory list contains the entry's subcategory.
func ResolveMainCategory(e models.LedgerEntry, categories []models.Category) string {
	if e.MainCategory != "" {
		return e.MainCategory
	}
	if e.SubCategory == "" {
		return ""
	}
	for _, c := range categories {
		if slices.Contains(c.Subs, e.SubCategory) {
			return c.Main
		}
	}
	return ""
}

// Total sums the amounts of entries.
func Total(entries []models.LedgerEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Amount
	}
	return sum
}

// Balance is income minus expense over all entries; point rewards are excluded.
func Balance(entries []models.LedgerEntry) float64 {
	var bal float64
	for _, e := range entries {
		switch e.Type {
		case models.EntryIncome:
			bal += e.Amount
		case models.EntryExpense:
			bal -= e.Amount
		}
	}
	return bal
}

// Move swaps items[idx] with its neighbour at idx+step. Out-of-range moves
// leave the slice untouched and report false.
func Move[T any](items []T, idx, step int) bool {
	target := idx + step
	if idx < 0 || idx >= len(items) || target < 0 || target >= len(items) || step == 0 {
		return false
	}
	items[idx], items[target] = items[target], items[idx]
	return true
}

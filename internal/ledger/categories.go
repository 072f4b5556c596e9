package ledger

import (
	"strings"

	"github.com/GregMSThompson/moneylog/internal/models"
)

// SplitSubs parses the comma-joined subcategory form, trimming and dropping
// empty parts. Duplicates are kept.
func SplitSubs(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeCategory builds a category holding both the display form and the
// parsed list of its subcategories.
func NormalizeCategory(main string, subs []string, typ models.EntryType) models.Category {
	clean := SplitSubs(strings.Join(subs, ","))
	return models.Category{
		Main:   strings.TrimSpace(main),
		SubRaw: strings.Join(clean, ","),
		Subs:   clean,
		Type:   typ,
	}
}

// UniqueByMain drops categories with an empty or repeated main name,
// keeping the first occurrence.
func UniqueByMain(categories []models.Category) []models.Category {
	seen := make(map[string]bool, len(categories))
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if c.Main == "" || seen[c.Main] {
			continue
		}
		seen[c.Main] = true
		out = append(out, c)
	}
	return out
}

// SubCategories returns the parsed subcategories of main, or nil.
func SubCategories(categories []models.Category, main string) []string {
	for _, c := range categories {
		if c.Main == main {
			return SplitSubs(c.SubRaw)
		}
	}
	return nil
}

// CategoriesOfType keeps categories tagged typ. Untagged categories match
// every type so ledger-only sheets keep working.
func CategoriesOfType(categories []models.Category, typ models.EntryType) []models.Category {
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if c.Type == "" || c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

package ledger

import (
	"slices"
	"testing"
	"time"

	"github.com/GregMSThompson/moneylog/internal/models"
)

func TestNormalizeDate(t *testing.T) {
	taipei := time.FixedZone("Asia/Taipei", 8*3600)
	cases := []struct {
		raw  string
		loc  *time.Location
		want string
		ok   bool
	}{
		{"2025-03-07", time.UTC, "2025-03-07", true},
		{"2025/3/7", time.UTC, "2025-03-07", true},
		// local midnight in Taipei serialised as UTC the previous day
		{"2025-03-06T16:00:00.000Z", taipei, "2025-03-07", true},
		{"2025-03-06T16:00:00Z", time.UTC, "2025-03-06", true},
		{"2025-03-07 23:59:59", taipei, "2025-03-07", true},
		{"", time.UTC, "", false},
		{"yesterday", time.UTC, "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeDate(c.raw, c.loc)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizeDate(%q) = %q,%v want %q,%v", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestDisplayDate(t *testing.T) {
	if got := DisplayDate("2025-03-07", time.UTC); got != "2025/3/7" {
		t.Fatalf("display mismatch: %q", got)
	}
	if got := DisplayDate("garbage", time.UTC); got != "garbage" {
		t.Fatalf("unparseable value should pass through, got %q", got)
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2025, time.February, 17, 9, 30, 0, 0, time.UTC)
	start, end := DefaultWindow(now)
	if start != "2025-02-01" || end != "2025-02-17" {
		t.Fatalf("window mismatch: %s..%s", start, end)
	}
}

func TestChartGroupsByCategoryInFirstAppearanceOrder(t *testing.T) {
	entries := []models.LedgerEntry{
		{Type: models.EntryExpense, MainCategory: "Food", Amount: 3},
		{Type: models.EntryExpense, Amount: 5},
		{Type: models.EntryIncome, MainCategory: "Salary", Amount: 100},
		{Type: models.EntryExpense, MainCategory: "Food", Amount: 7},
	}
	ds := Chart(entries, models.EntryExpense)
	if ds.Hidden {
		t.Fatal("chart should not be hidden")
	}
	want := []ChartBucket{{Label: "Food", Value: 10}, {Label: models.CategoryUncategorized, Value: 5}}
	if !slices.Equal(ds.Buckets, want) {
		t.Fatalf("buckets mismatch: %+v", ds.Buckets)
	}
	if ds.Total != 15 {
		t.Fatalf("total mismatch: %v", ds.Total)
	}
}

func TestChartEmptyIsHidden(t *testing.T) {
	ds := Chart([]models.LedgerEntry{{Type: models.EntryIncome, Amount: 1}}, models.EntryExpense)
	if !ds.Hidden || len(ds.Buckets) != 0 {
		t.Fatalf("expected hidden empty chart, got %+v", ds)
	}
}

func TestNormalizeCategoryAndLookup(t *testing.T) {
	c := NormalizeCategory(" Food ", []string{"Lunch, Dinner", "", "Lunch"}, "")
	if c.Main != "Food" {
		t.Fatalf("main not trimmed: %q", c.Main)
	}
	if c.SubRaw != "Lunch,Dinner,Lunch" {
		t.Fatalf("subRaw mismatch: %q", c.SubRaw)
	}
	if !slices.Equal(c.Subs, []string{"Lunch", "Dinner", "Lunch"}) {
		t.Fatalf("subs mismatch: %v", c.Subs)
	}
	if got := SubCategories([]models.Category{c}, "Food"); len(got) != 3 {
		t.Fatalf("expected 3 subs, got %v", got)
	}
	if got := SubCategories([]models.Category{c}, "Missing"); got != nil {
		t.Fatalf("expected nil for unknown main, got %v", got)
	}
}

func TestUniqueByMain(t *testing.T) {
	got := UniqueByMain([]models.Category{{Main: "A"}, {Main: ""}, {Main: "B"}, {Main: "A", SubRaw: "dup"}})
	if len(got) != 2 || got[0].SubRaw != "" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestCategoriesOfType(t *testing.T) {
	cats := []models.Category{{Main: "Food", Type: models.EntryExpense}, {Main: "Salary", Type: models.EntryIncome}, {Main: "Misc"}}
	got := CategoriesOfType(cats, models.EntryIncome)
	if len(got) != 2 || got[0].Main != "Salary" || got[1].Main != "Misc" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestSortWishes(t *testing.T) {
	wishes := []models.Wish{
		{ID: "a", Status: models.WishAchieved, AchievedDate: "2025-01-01"},
		{ID: "b", Status: models.WishInProgress, CreatedTime: "2025-01-01"},
		{ID: "c", Status: models.WishAchieved, AchievedDate: "2025-03-01"},
		{ID: "d", Status: models.WishInProgress, CreatedTime: "2025-02-01"},
	}
	got := SortWishes(wishes)
	var order []string
	for _, w := range got {
		order = append(order, w.ID)
	}
	if !slices.Equal(order, []string{"d", "b", "c", "a"}) {
		t.Fatalf("order mismatch: %v", order)
	}
	if wishes[0].ID != "a" {
		t.Fatal("input must not be reordered")
	}
	if ach := Achievements(wishes); len(ach) != 2 || ach[0].ID != "c" {
		t.Fatalf("achievements mismatch: %+v", ach)
	}
}

func TestProgress(t *testing.T) {
	p := Progress(models.Wish{Target: 200, CurrentMoney: 150, CurrentPoints: 100})
	if p.Percent != 100 {
		t.Fatalf("percent must cap at 100, got %d", p.Percent)
	}
	if p.MoneyBar != 75 || p.PointBar != 50 {
		t.Fatalf("bars mismatch: %+v", p)
	}
	if Progress(models.Wish{}).Percent != 0 {
		t.Fatal("zero target must not divide by zero")
	}
}

func TestWishLogs(t *testing.T) {
	entries := []models.LedgerEntry{
		{ID: "1", WishID: "w1"},
		{ID: "2", WishID: "w2"},
		{ID: "3", WishID: " w1 "},
	}
	got := WishLogs(entries, "w1")
	if !slices.Equal(ids(got), []string{"3", "1"}) {
		t.Fatalf("wish logs mismatch: %v", ids(got))
	}
	if WishLogs(entries, "") != nil {
		t.Fatal("empty wish id must match nothing")
	}
}

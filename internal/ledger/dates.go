package ledger

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// layouts the remote sheet has been seen to emit.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	DateLayout,
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
}

// NormalizeDate returns the calendar day of a remote date value as
// YYYY-MM-DD. Timestamps are read in loc (the sheet serialises local
// midnight as UTC); bare dates are taken as they are. ok is false when the
// value cannot be parsed.
func NormalizeDate(raw string, loc *time.Location) (day string, ok bool) {
	t, ok := parse(raw, loc)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

// DisplayDate renders a remote date as Y/M/D without zero padding.
func DisplayDate(raw string, loc *time.Location) string {
	t, ok := parse(raw, loc)
	if !ok {
		return raw
	}
	return fmt.Sprintf("%d/%d/%d", t.Year(), int(t.Month()), t.Day())
}

func parse(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Today formats now as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// DefaultWindow is the first day of now's month through now.
func DefaultWindow(now time.Time) (start, end string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.Format(DateLayout), now.Format(DateLayout)
}

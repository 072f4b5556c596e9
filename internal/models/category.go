package models

// Category is a main category with its ordered subcategories. SubRaw is the
// comma-joined form edited in settings; Subs is the parsed list.
type Category struct {
	Main   string    `json:"main"`
	SubRaw string    `json:"subRaw"`
	Subs   []string  `json:"subs"`
	Type   EntryType `json:"type,omitempty"`
}

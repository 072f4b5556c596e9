package models

// EntryType values are the literal strings stored in the ledger sheet.
type EntryType string

const (
	EntryExpense     EntryType = "支出"
	EntryIncome      EntryType = "收入"
	EntryPointReward EntryType = "點數獎勵"
)

// Sentinel categories and payment method used by wish deposits and the chart.
const (
	CategoryWishSavings    = "許願儲蓄"
	CategoryBehaviorReward = "行為表現"
	CategoryUncategorized  = "未分類"
	PaymentDreamBank       = "夢想銀行"
)

// LedgerEntry is one income / expense / point-reward row mirrored from the
// remote sheet. Date keeps the raw remote value; use ledger.NormalizeDate to
// compare it.
type LedgerEntry struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	Type         EntryType `json:"type,omitempty"`
	Item         string    `json:"item"`
	Amount       float64   `json:"amount"`
	MainCategory string    `json:"mainCategory,omitempty"`
	SubCategory  string    `json:"subCategory,omitempty"`
	Payment      string    `json:"payment,omitempty"`
	Note         string    `json:"note,omitempty"`
	ImageID      string    `json:"imageId,omitempty"`
	WishID       string    `json:"wishId,omitempty"`
}

// Filter narrows the entry list. Empty fields do not constrain.
// Start and End are inclusive YYYY-MM-DD strings.
type Filter struct {
	Start    string    `json:"start"`
	End      string    `json:"end"`
	Category string    `json:"category,omitempty"`
	Payment  string    `json:"payment,omitempty"`
	Keyword  string    `json:"keyword,omitempty"`
	Type     EntryType `json:"type,omitempty"`
}

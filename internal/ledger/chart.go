package ledger

import "github.com/GregMSThompson/moneylog/internal/models"

// ChartBucket is one slice of the donut chart.
type ChartBucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartDataset is what the chart draws. Hidden means there is nothing to
// draw and the chart area should be cleared.
type ChartDataset struct {
	Type    models.EntryType `json:"type,omitempty"`
	Buckets []ChartBucket    `json:"buckets"`
	Total   float64          `json:"total"`
	Hidden  bool             `json:"hidden"`
}

// Chart groups entries by main category (optionally only those of type typ),
// in order of first appearance. Entries without a category land in 未分類.
func Chart(entries []models.LedgerEntry, typ models.EntryType) ChartDataset {
	ds := ChartDataset{Type: typ, Buckets: []ChartBucket{}}
	index := make(map[string]int)
	for _, e := range entries {
		if typ != "" && e.Type != typ {
			continue
		}
		label := e.MainCategory
		if label == "" {
			label = models.CategoryUncategorized
		}
		i, ok := index[label]
		if !ok {
			i = len(ds.Buckets)
			index[label] = i
			ds.Buckets = append(ds.Buckets, ChartBucket{Label: label})
		}
		ds.Buckets[i].Value += e.Amount
		ds.Total += e.Amount
	}
	ds.Hidden = len(ds.Buckets) == 0
	return ds
}

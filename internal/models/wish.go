package models

type WishStatus string

const (
	WishInProgress WishStatus = "進行中"
	WishAchieved   WishStatus = "成就館"
)

// Wish is a savings / behaviour-reward goal. Contributions are tracked in
// two separate tracks, money and points, both counted toward Target.
type Wish struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Target        float64    `json:"target"`
	CurrentMoney  float64    `json:"currentMoney"`
	CurrentPoints float64    `json:"currentPoints"`
	Status        WishStatus `json:"status"`
	Note          string     `json:"note,omitempty"`
	ImageID       string     `json:"imageId,omitempty"`
	CreatedTime   string     `json:"createdTime,omitempty"`
	AchievedDate  string     `json:"achievedDate,omitempty"`
}

func (w Wish) Achieved() bool { return w.Status == WishAchieved }

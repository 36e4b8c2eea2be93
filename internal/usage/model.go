package usage

import "time"

// Usage represents a user's subscription tier consumption snapshot.
// Limit is -1 for unlimited tiers.
type Usage struct {
	Tier     string    `json:"tier"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// CanTake reports whether n more units fit in the current window.
func (u Usage) CanTake(n int) bool {
	if u.Limit < 0 {
		return true
	}
	return u.Used+n <= u.Limit
}

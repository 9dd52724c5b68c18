package models

import "time"

const (
	ClassStatusActive    = "Active"
	ClassStatusCancelled = "Cancelled"
)

// Member is an enrollment record embedded in a Class. Created on join,
// removed on leave, never edited in place.
type Member struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Class is the aggregate for one scheduled group class: the embedded
// member list and the capacity counters are mutated together as a single
// document, only through roster operations.
type Class struct {
	ID           string     `json:"id"`
	ClassTypeID  string     `json:"classTypeId"`
	Day          string     `json:"day"`
	Time         string     `json:"time"`
	Members      []Member   `json:"members"`
	TotalSpots   int        `json:"totalSpots"`
	SpotsLeft    int        `json:"spotsLeft"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty"`
}

func (c *Class) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (c *Class) IsFull() bool {
	return len(c.Members) >= c.TotalSpots
}

// RecomputeSpots refreshes the denormalized SpotsLeft counter. Every
// write path calls this; the stored value is never trusted as input.
func (c *Class) RecomputeSpots() {
	c.SpotsLeft = c.TotalSpots - len(c.Members)
}

// FillRate is |members| / totalSpots as a percentage, for reporting only.
func (c *Class) FillRate() float64 {
	if c.TotalSpots == 0 {
		return 0
	}
	return float64(len(c.Members)) / float64(c.TotalSpots) * 100
}

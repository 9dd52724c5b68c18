package models

import "time"

const (
	AvailabilityStatusActive   = "Active"
	AvailabilityStatusArchived = "Archived"
)

// AvailabilitySlot is one user's declared weekly availability for a class
// type. Documents are append-only: after creation the only mutation is the
// status transition to Archived (superseded, stale, or consumed into a
// class).
type AvailabilitySlot struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ClassTypeID string    `json:"classTypeId"`
	Slots       []SlotKey `json:"slots"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a *AvailabilitySlot) HasSlot(slot SlotKey) bool {
	for _, s := range a.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

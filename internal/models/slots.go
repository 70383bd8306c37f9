package models

// Slot is a bookable time window of an event. AvailableSpots is the remaining
// capacity and is only ever changed through SlotRepo.ClaimSpot and
// SlotRepo.ReleaseSpot.
type Slot struct {
	ID             string  `db:"id" json:"id"`
	EventID        *string `db:"event_id" json:"event_id"`
	StartTime      string  `db:"start_time" json:"start_time"` // timestamptz as returned by the store
	EndTime        string  `db:"end_time" json:"end_time"`
	AvailableSpots int     `db:"available_spots" json:"available_spots"`
}

// Bookable reports whether the slot is linked to an event and still has capacity.
func (s *Slot) Bookable() bool {
	return s != nil && s.EventID != nil && *s.EventID != "" && s.AvailableSpots > 0
}

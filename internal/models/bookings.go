package models

import (
	"time"
)

type BookingStatus string

const BookingStatusConfirmed BookingStatus = "confirmed"

// Booking is the durable proof that one unit of a slot's capacity was consumed
// for a member.
type Booking struct {
	ID        string        `db:"id" json:"id"`
	MemberID  string        `db:"member_id" json:"member_id"`
	EventID   string        `db:"event_id" json:"event_id"`
	SlotID    string        `db:"slot_id" json:"slot_id"`
	Status    BookingStatus `db:"status" json:"status"`
	CreatedAt *time.Time    `db:"created_at" json:"created_at,omitempty"`
}

package models

type Event struct {
	ID         string  `db:"id" json:"id"`
	Title      string  `db:"title" json:"title"`
	Date       string  `db:"date" json:"date"`               // e.g., "2026-03-14"
	LocationID *string `db:"location_id" json:"location_id"` // nullable
}

type Location struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// LocationPending is shown wherever an event has no resolvable location.
const LocationPending = "Location pending"

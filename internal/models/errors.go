package models

import "errors"

var (
	// ErrNotFound is returned by point lookups that match no row.
	ErrNotFound = errors.New("not found")

	// ErrNoRowReturned is returned when an insert succeeds at the transport
	// level but the store hands back no representation of the new row.
	ErrNoRowReturned = errors.New("no row returned")

	// ErrReleaseContended is returned when the compensating increment could not
	// win its conditional update within the allowed attempts.
	ErrReleaseContended = errors.New("release contended")

	// ErrReservationConflict is returned by a conditional journal transition
	// when the entry exists but is no longer in one of the expected states.
	ErrReservationConflict = errors.New("reservation state changed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

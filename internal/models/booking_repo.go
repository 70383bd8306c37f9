package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

const bookingColumns = "id,member_id,event_id,slot_id,status,created_at"

func (b *Booking) BeforeCreate() {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = BookingStatusConfirmed
	}
}

func (su *SupabaseRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	booking.BeforeCreate()

	data := map[string]interface{}{
		"id":        booking.ID,
		"member_id": booking.MemberID,
		"event_id":  booking.EventID,
		"slot_id":   booking.SlotID,
		"status":    booking.Status,
	}

	raw, _, err := su.admin().From(BookingsTable).
		Insert(data, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, postgrestError("insert booking", err)
	}

	created, err := decodeOne[Booking](raw)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrNoRowReturned
		}
		return nil, err
	}
	return created, nil
}

func (su *SupabaseRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, _, err := su.admin().From(BookingsTable).
		Select(bookingColumns, "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, postgrestError("get booking", err)
	}
	return decodeOne[Booking](raw)
}

func (su *SupabaseRepo) ListBookingsBySlot(ctx context.Context, slotID string) ([]*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if slotID == "" {
		return nil, fmt.Errorf("slot id is required")
	}

	raw, _, err := su.admin().From(BookingsTable).
		Select(bookingColumns, "", false).
		Eq("slot_id", slotID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, postgrestError("list bookings", err)
	}

	rows, err := decodeRows[Booking](raw)
	if err != nil {
		return nil, err
	}
	bookings := make([]*Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, &rows[i])
	}
	return bookings, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/joshua-takyi/gylounge/internal/models"
)

// BookingTarget is the next open slot offered on the home page.
type BookingTarget struct {
	EventID      string `json:"event_id"`
	SlotID       string `json:"slot_id"`
	EventTitle   string `json:"event_title"`
	EventDate    string `json:"event_date"`
	DateLabel    string `json:"date_label"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	TimeLabel    string `json:"time_label"`
	LocationName string `json:"location_name"`
	SpotsLeft    int    `json:"spots_left"`
}

type CatalogService struct {
	store  models.Store
	logger *slog.Logger
}

func NewCatalogService(store models.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// NextBookingTarget returns the earliest slot that still has spots, joined
// with its event. It returns models.ErrNotFound when nothing is bookable.
func (cs *CatalogService) NextBookingTarget(ctx context.Context) (*BookingTarget, error) {
	slots, err := cs.store.ListOpenSlots(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to list open slots: %w", err)
	}
	if len(slots) == 0 || slots[0].EventID == nil || *slots[0].EventID == "" {
		return nil, models.ErrNotFound
	}
	slot := slots[0]

	event, err := cs.store.GetEvent(ctx, *slot.EventID)
	if err != nil {
		return nil, err
	}

	locationName := models.LocationPending
	if event.LocationID != nil && *event.LocationID != "" {
		loc, err := cs.store.GetLocation(ctx, *event.LocationID)
		if err != nil && !models.IsNotFound(err) {
			cs.logger.Warn("location lookup failed", "location_id", *event.LocationID, "error", err)
		}
		if err == nil && loc.Name != "" {
			locationName = loc.Name
		}
	}

	return &BookingTarget{
		EventID:      event.ID,
		SlotID:       slot.ID,
		EventTitle:   event.Title,
		EventDate:    event.Date,
		DateLabel:    helpers.FormatAccraDate(event.Date),
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		TimeLabel:    helpers.FormatTimeRange(slot.StartTime, slot.EndTime),
		LocationName: locationName,
		SpotsLeft:    slot.AvailableSpots,
	}, nil
}

// SlotBookings lists the bookings recorded against a slot.
func (cs *CatalogService) SlotBookings(ctx context.Context, slotID string) ([]*models.Booking, error) {
	bookings, err := cs.store.ListBookingsBySlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

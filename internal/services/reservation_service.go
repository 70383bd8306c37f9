package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/joshua-takyi/gylounge/internal/models"
)

type ReservationStatus string

const (
	BookingInvalid            ReservationStatus = "invalid"
	BookingMembershipRequired ReservationStatus = "membership-required"
	BookingSlotUnavailable    ReservationStatus = "slot-unavailable"
	BookingError              ReservationStatus = "error"
	BookingEmailWarning       ReservationStatus = "success-email-warning"
	BookingSuccess            ReservationStatus = "success"
)

// compensationTimeout bounds the release of a claimed spot. It runs on a
// context detached from the request so a client disconnect cannot skip it.
const compensationTimeout = 10 * time.Second

type ReservationInput struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Phone   string `form:"phone" json:"phone"`
	EventID string `form:"eventId" json:"eventId"`
	SlotID  string `form:"slotId" json:"slotId"`
}

type NotificationReport struct {
	Confirmation SendResult `json:"confirmation"`
	Notification SendResult `json:"notification"`
}

func (r *NotificationReport) AllOK() bool {
	return r.Confirmation.OK && r.Notification.OK
}

// ReservationOutcome is the terminal result of Reserve. BookingID and
// Notifications are only set once a booking row exists.
type ReservationOutcome struct {
	Status        ReservationStatus   `json:"status"`
	BookingID     string              `json:"booking_id,omitempty"`
	Notifications *NotificationReport `json:"notifications,omitempty"`
}

type BookingNotifier interface {
	SendBookingConfirmation(ctx context.Context, d BookingDetails) SendResult
	SendBookingNotification(ctx context.Context, d BookingDetails) SendResult
}

type ReservationService struct {
	store    models.Store
	journal  models.ReservationJournal
	notifier BookingNotifier
	logger   *slog.Logger

	newBookingID func() string
}

func NewReservationService(store models.Store, journal models.ReservationJournal, notifier BookingNotifier, logger *slog.Logger) *ReservationService {
	if journal == nil {
		journal = models.NewMemoryJournal()
	}
	return &ReservationService{
		store:        store,
		journal:      journal,
		notifier:     notifier,
		logger:       logger,
		newBookingID: func() string { return uuid.New().String() },
	}
}

// claim tracks the spot taken by one Reserve call until it is either backed
// by a booking row or given back.
type claim struct {
	slotID    string
	bookingID string
	settled   bool
}

// Reserve books one spot of a slot for an active member.
//
// The slot's available_spots is taken with a single conditional update
// against the value read just before. A caller that loses that race gets
// slot-unavailable and is not retried. Once the spot is taken, every exit
// that does not leave a booking row behind releases it again.
func (rs *ReservationService) Reserve(ctx context.Context, in ReservationInput) (out ReservationOutcome) {
	var held *claim
	defer func() {
		if r := recover(); r != nil {
			rs.logger.Error("reservation panicked", "panic", r, "slot_id", in.SlotID, "event_id", in.EventID)
			if held != nil && !held.settled {
				rs.compensate(ctx, held, fmt.Sprintf("panic: %v", r))
			}
			out = ReservationOutcome{Status: BookingError}
		}
	}()

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)
	eventID := strings.TrimSpace(in.EventID)
	slotID := strings.TrimSpace(in.SlotID)
	if name == "" || email == "" || eventID == "" || slotID == "" || !helpers.LooksLikeEmail(email) {
		return ReservationOutcome{Status: BookingInvalid}
	}
	email = helpers.NormalizeEmail(email)
	log := rs.logger.With("email", email, "slot_id", slotID, "event_id", eventID)

	member, err := rs.store.GetMemberByEmail(ctx, email)
	if err != nil && !models.IsNotFound(err) {
		log.Error("member lookup failed", "error", err)
		return ReservationOutcome{Status: BookingError}
	}
	if !member.IsActive() {
		return ReservationOutcome{Status: BookingMembershipRequired}
	}

	slot, err := rs.store.GetSlot(ctx, slotID, eventID)
	if err != nil {
		if models.IsNotFound(err) {
			return ReservationOutcome{Status: BookingSlotUnavailable}
		}
		log.Error("slot lookup failed", "error", err)
		return ReservationOutcome{Status: BookingError}
	}
	if !slot.Bookable() {
		return ReservationOutcome{Status: BookingSlotUnavailable}
	}

	claimed, err := rs.store.ClaimSpot(ctx, slot.ID, slot.AvailableSpots)
	if err != nil {
		// The outcome of a failed round trip is unknown, so nothing is released.
		log.Error("slot claim failed", "observed", slot.AvailableSpots, "error", err)
		return ReservationOutcome{Status: BookingError}
	}
	if !claimed {
		log.Info("slot claim lost", "observed", slot.AvailableSpots)
		return ReservationOutcome{Status: BookingSlotUnavailable}
	}

	held = &claim{slotID: slot.ID, bookingID: rs.newBookingID()}
	log = log.With("booking_id", held.bookingID)
	rs.journalClaim(ctx, held, eventID, member.ID)

	event, err := rs.store.GetEvent(ctx, eventID)
	if err != nil {
		if models.IsNotFound(err) {
			log.Warn("event missing after slot claim")
			rs.compensate(ctx, held, "event not found")
			return ReservationOutcome{Status: BookingSlotUnavailable}
		}
		log.Error("event lookup failed", "error", err)
		rs.compensate(ctx, held, "event lookup failed")
		return ReservationOutcome{Status: BookingError}
	}

	booking, err := rs.store.CreateBooking(ctx, &models.Booking{
		ID:       held.bookingID,
		MemberID: member.ID,
		EventID:  event.ID,
		SlotID:   slot.ID,
		Status:   models.BookingStatusConfirmed,
	})
	if err != nil || booking == nil {
		log.Error("booking insert failed", "error", err)
		rs.compensate(ctx, held, "booking insert failed")
		return ReservationOutcome{Status: BookingError}
	}
	held.settled = true
	rs.journalMark(ctx, held.bookingID, models.ReservationBooked, "")

	details := BookingDetails{
		MemberName:   name,
		MemberEmail:  email,
		MemberPhone:  phone,
		EventTitle:   event.Title,
		EventDate:    helpers.FormatAccraDate(event.Date),
		TimeLabel:    helpers.FormatTimeRange(slot.StartTime, slot.EndTime),
		LocationName: rs.locationName(ctx, event),
	}

	report := rs.notify(ctx, details)
	out = ReservationOutcome{
		Status:        BookingSuccess,
		BookingID:     booking.ID,
		Notifications: report,
	}
	if !report.AllOK() {
		log.Warn("booking email side effect failed",
			"confirmation_error", report.Confirmation.Error,
			"notification_error", report.Notification.Error,
		)
		out.Status = BookingEmailWarning
	}
	return out
}

// locationName resolves the display name of the event's location. Any
// failure falls back to the placeholder.
func (rs *ReservationService) locationName(ctx context.Context, event *models.Event) string {
	if event.LocationID == nil || *event.LocationID == "" {
		return models.LocationPending
	}
	loc, err := rs.store.GetLocation(ctx, *event.LocationID)
	if err != nil {
		if !models.IsNotFound(err) {
			rs.logger.Warn("location lookup failed", "location_id", *event.LocationID, "error", err)
		}
		return models.LocationPending
	}
	if strings.TrimSpace(loc.Name) == "" {
		return models.LocationPending
	}
	return loc.Name
}

// notify sends the member confirmation and the operator notification
// concurrently and waits for both.
func (rs *ReservationService) notify(ctx context.Context, d BookingDetails) *NotificationReport {
	report := &NotificationReport{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		report.Confirmation = rs.safeSend("confirmation", func() SendResult {
			return rs.notifier.SendBookingConfirmation(ctx, d)
		})
	}()
	go func() {
		defer wg.Done()
		report.Notification = rs.safeSend("notification", func() SendResult {
			return rs.notifier.SendBookingNotification(ctx, d)
		})
	}()
	wg.Wait()
	return report
}

func (rs *ReservationService) safeSend(kind string, send func() SendResult) (res SendResult) {
	defer func() {
		if r := recover(); r != nil {
			rs.logger.Error("booking email panicked", "kind", kind, "panic", r)
			res = SendResult{Error: fmt.Sprintf("%s email panicked", kind)}
		}
	}()
	return send()
}

// compensate gives the claimed spot back. Its own failure is logged and
// journaled as abandoned, never returned.
//
// The journal entry is moved to compensating before the release. If that
// write cannot be confirmed the spot is left held for the sweep, which
// releases it exactly once.
func (rs *ReservationService) compensate(ctx context.Context, held *claim, reason string) {
	held.settled = true

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	log := rs.logger.With("slot_id", held.slotID, "booking_id", held.bookingID, "reason", reason)

	tracked := true
	err := rs.journal.TransitionReservation(cctx, held.bookingID,
		[]models.ReservationState{models.ReservationClaimed}, models.ReservationCompensating, reason)
	switch {
	case err == nil:
	case models.IsNotFound(err):
		// No entry, so no sweep can see this claim.
		tracked = false
	case errors.Is(err, models.ErrReservationConflict):
		log.Error("reservation taken over before compensation, spot left to the sweep")
		return
	default:
		log.Error("failed to journal compensation intent, spot left to the sweep", "error", err)
		return
	}

	if err := rs.store.ReleaseSpot(cctx, held.slotID); err != nil {
		log.Error("slot compensation failed", "error", err)
		if tracked {
			rs.journalMark(cctx, held.bookingID, models.ReservationAbandoned, reason+"; release failed: "+err.Error())
		}
		return
	}
	if tracked {
		rs.journalMark(cctx, held.bookingID, models.ReservationCompensated, reason)
	}
}

func (rs *ReservationService) journalClaim(ctx context.Context, held *claim, eventID, memberID string) {
	err := rs.journal.RecordClaim(ctx, &models.Reservation{
		BookingID: held.bookingID,
		SlotID:    held.slotID,
		EventID:   eventID,
		MemberID:  memberID,
	})
	if err != nil {
		rs.logger.Warn("failed to journal claim", "booking_id", held.bookingID, "error", err)
	}
}

func (rs *ReservationService) journalMark(ctx context.Context, bookingID string, state models.ReservationState, note string) {
	if err := rs.journal.MarkReservation(context.WithoutCancel(ctx), bookingID, state, note); err != nil {
		rs.logger.Warn("failed to journal reservation state", "booking_id", bookingID, "state", state, "error", err)
	}
}

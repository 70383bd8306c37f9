package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/joshua-takyi/gylounge/internal/mailer"
	"github.com/joshua-takyi/gylounge/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

const (
	activeEmail  = "ama@example.com"
	pendingEmail = "kofi@example.com"
)

// newFixture returns a store with one event at a named location, one slot
// with the given capacity, one active and one pending member.
func newFixture(spots int) *models.MemoryRepo {
	repo := models.NewMemoryRepo()
	repo.PutLocation(models.Location{ID: "loc-1", Name: "East Legon Lounge"})
	repo.PutEvent(models.Event{ID: "evt-1", Title: "Sip & Paint", Date: "2026-03-14", LocationID: strPtr("loc-1")})
	repo.PutSlot(models.Slot{
		ID:             "slot-1",
		EventID:        strPtr("evt-1"),
		StartTime:      "2026-03-14T15:00:00Z",
		EndTime:        "2026-03-14T17:00:00Z",
		AvailableSpots: spots,
	})
	repo.PutMember(models.Member{ID: "mem-active", Name: "Ama Mensah", Email: activeEmail, Phone: "0240000000", Status: models.MemberStatusActive})
	repo.PutMember(models.Member{ID: "mem-pending", Name: "Kofi Boateng", Email: pendingEmail, Phone: "0200000000", Status: models.MemberStatusPending})
	return repo
}

func bookingInput() ReservationInput {
	return ReservationInput{
		Name:    "Ama Mensah",
		Email:   "  AMA@example.com ",
		Phone:   "0240000000",
		EventID: "evt-1",
		SlotID:  "slot-1",
	}
}

// senderFunc adapts a function to mailer.Sender.
type senderFunc func(ctx context.Context, msg mailer.Message) (string, error)

func (f senderFunc) Send(ctx context.Context, msg mailer.Message) (string, error) {
	return f(ctx, msg)
}

var errTransport = errors.New("smtp relay unreachable")

func failingSender() mailer.Sender {
	return senderFunc(func(context.Context, mailer.Message) (string, error) {
		return "", errTransport
	})
}

// faultyStore overrides single Store methods on top of a MemoryRepo.
type faultyStore struct {
	*models.MemoryRepo

	mu           sync.Mutex
	memberErr    error
	claimErr     error
	eventErr     error
	bookingErr   error
	bookingPanic bool
	beforeCreate func()
	releaseErr   error
	releases     int
}

func (s *faultyStore) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	if s.memberErr != nil {
		return nil, s.memberErr
	}
	return s.MemoryRepo.GetMemberByEmail(ctx, email)
}

func (s *faultyStore) ClaimSpot(ctx context.Context, slotID string, observed int) (bool, error) {
	if s.claimErr != nil {
		return false, s.claimErr
	}
	return s.MemoryRepo.ClaimSpot(ctx, slotID, observed)
}

func (s *faultyStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if s.eventErr != nil {
		return nil, s.eventErr
	}
	return s.MemoryRepo.GetEvent(ctx, id)
}

func (s *faultyStore) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if s.beforeCreate != nil {
		s.beforeCreate()
	}
	if s.bookingPanic {
		panic("driver exploded")
	}
	if s.bookingErr != nil {
		return nil, s.bookingErr
	}
	return s.MemoryRepo.CreateBooking(ctx, b)
}

func (s *faultyStore) ReleaseSpot(ctx context.Context, slotID string) error {
	s.mu.Lock()
	s.releases++
	s.mu.Unlock()
	if s.releaseErr != nil {
		return s.releaseErr
	}
	return s.MemoryRepo.ReleaseSpot(ctx, slotID)
}

// stubNotifier records booking emails and can fail or panic on demand.
type stubNotifier struct {
	mu                sync.Mutex
	confirmations     []BookingDetails
	notifications     []BookingDetails
	panicConfirmation bool
	failNotification  bool
}

func (n *stubNotifier) SendBookingConfirmation(_ context.Context, d BookingDetails) SendResult {
	if n.panicConfirmation {
		panic("template blew up")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, d)
	return SendResult{OK: true, ID: "c-1"}
}

func (n *stubNotifier) SendBookingNotification(_ context.Context, d BookingDetails) SendResult {
	if n.failNotification {
		return SendResult{Error: "rejected"}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, d)
	return SendResult{OK: true, ID: "n-1"}
}

// flakyJournal fails chosen journal writes on top of a MemoryJournal.
type flakyJournal struct {
	*models.MemoryJournal

	markErr       map[models.ReservationState]error
	transitionErr error
}

func (j *flakyJournal) MarkReservation(ctx context.Context, bookingID string, state models.ReservationState, note string) error {
	if err := j.markErr[state]; err != nil {
		return err
	}
	return j.MemoryJournal.MarkReservation(ctx, bookingID, state, note)
}

func (j *flakyJournal) TransitionReservation(ctx context.Context, bookingID string, from []models.ReservationState, to models.ReservationState, note string) error {
	if j.transitionErr != nil {
		return j.transitionErr
	}
	return j.MemoryJournal.TransitionReservation(ctx, bookingID, from, to, note)
}

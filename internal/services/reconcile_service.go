package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/gylounge/internal/models"
)

const sweepBatch = 500

type SweepAction string

const (
	// SweepConfirmed: the booking row exists, the journal was behind.
	SweepConfirmed SweepAction = "confirmed"
	// SweepReleased: no booking row, the spot was given back.
	SweepReleased SweepAction = "released"
	// SweepLeaked: no booking row, left alone because repair was off.
	SweepLeaked SweepAction = "leaked"
	// SweepUnresolved: a release may already have happened, an operator has
	// to check the slot by hand.
	SweepUnresolved SweepAction = "unresolved"
	// SweepSkipped: another sweep or request changed the entry first.
	SweepSkipped SweepAction = "skipped"
	SweepFailed  SweepAction = "failed"
)

type SweepItem struct {
	BookingID string                  `json:"booking_id"`
	SlotID    string                  `json:"slot_id"`
	State     models.ReservationState `json:"state"`
	Action    SweepAction             `json:"action"`
	Error     string                  `json:"error,omitempty"`
}

type SweepReport struct {
	Checked    int         `json:"checked"`
	Confirmed  int         `json:"confirmed"`
	Released   int         `json:"released"`
	Leaked     int         `json:"leaked"`
	Unresolved int         `json:"unresolved"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
	Items      []SweepItem `json:"items"`
}

func (r *SweepReport) add(item SweepItem) {
	r.Checked++
	switch item.Action {
	case SweepConfirmed:
		r.Confirmed++
	case SweepReleased:
		r.Released++
	case SweepLeaked:
		r.Leaked++
	case SweepUnresolved:
		r.Unresolved++
	case SweepSkipped:
		r.Skipped++
	case SweepFailed:
		r.Failed++
	}
	r.Items = append(r.Items, item)
}

// Reconciler finds spots that were claimed but never turned into a booking
// nor given back, which happens when a process dies between the two steps or
// a compensation fails.
type Reconciler struct {
	store   models.Store
	journal models.ReservationJournal
	logger  *slog.Logger
	now     func() time.Time
}

func NewReconciler(store models.Store, journal models.ReservationJournal, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:   store,
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// Sweep checks every unsettled journal entry untouched for at least
// olderThan. With repair set, leaked spots are released and the entry is
// marked reconciled. Entries whose release may already have run are only
// reported.
func (rc *Reconciler) Sweep(ctx context.Context, olderThan time.Duration, repair bool) (*SweepReport, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("older-than must be positive")
	}
	cutoff := rc.now().Add(-olderThan)

	entries, err := rc.journal.ListUnsettled(ctx, cutoff, sweepBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled reservations: %w", err)
	}

	report := &SweepReport{Items: make([]SweepItem, 0, len(entries))}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.add(rc.settle(ctx, entry, repair))
	}

	rc.logger.Info("reconciliation sweep finished",
		"checked", report.Checked,
		"confirmed", report.Confirmed,
		"released", report.Released,
		"leaked", report.Leaked,
		"unresolved", report.Unresolved,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"repair", repair,
	)
	return report, nil
}

func (rc *Reconciler) settle(ctx context.Context, entry *models.Reservation, repair bool) SweepItem {
	item := SweepItem{BookingID: entry.BookingID, SlotID: entry.SlotID, State: entry.State}
	log := rc.logger.With("booking_id", entry.BookingID, "slot_id", entry.SlotID, "state", entry.State)

	if !entry.State.Releasable() {
		log.Warn("reservation stuck mid-release")
		item.Action = SweepUnresolved
		return item
	}

	if !repair {
		return rc.inspect(ctx, entry, item)
	}

	// Lease the entry so no other sweep or request releases it too.
	err := rc.journal.TransitionReservation(ctx, entry.BookingID,
		[]models.ReservationState{entry.State}, models.ReservationReconciling, "leased by sweep")
	if err != nil {
		if errors.Is(err, models.ErrReservationConflict) || models.IsNotFound(err) {
			item.Action = SweepSkipped
			return item
		}
		log.Error("failed to lease reservation", "error", err)
		item.Action = SweepFailed
		item.Error = err.Error()
		return item
	}

	_, err = rc.store.GetBookingByID(ctx, entry.BookingID)
	switch {
	case err == nil:
		item.Action = SweepConfirmed
		rc.mark(ctx, log, entry.BookingID, models.ReservationBooked, "confirmed by sweep")
		return item
	case !models.IsNotFound(err):
		log.Error("booking lookup failed", "error", err)
		rc.mark(ctx, log, entry.BookingID, entry.State, "")
		item.Action = SweepFailed
		item.Error = err.Error()
		return item
	}

	if err := rc.store.ReleaseSpot(ctx, entry.SlotID); err != nil {
		log.Error("failed to release leaked spot", "error", err)
		rc.mark(ctx, log, entry.BookingID, models.ReservationAbandoned, "sweep release failed: "+err.Error())
		item.Action = SweepFailed
		item.Error = err.Error()
		return item
	}
	item.Action = SweepReleased
	// A failed mark leaves the entry reconciling, which later sweeps only report.
	rc.mark(ctx, log, entry.BookingID, models.ReservationReconciled, "released by sweep")
	return item
}

// inspect classifies an entry without changing anything.
func (rc *Reconciler) inspect(ctx context.Context, entry *models.Reservation, item SweepItem) SweepItem {
	_, err := rc.store.GetBookingByID(ctx, entry.BookingID)
	switch {
	case err == nil:
		item.Action = SweepConfirmed
		err := rc.journal.TransitionReservation(ctx, entry.BookingID,
			[]models.ReservationState{entry.State}, models.ReservationBooked, "confirmed by sweep")
		if err != nil {
			rc.logger.Warn("failed to mark reservation booked", "booking_id", entry.BookingID, "error", err)
		}
	case models.IsNotFound(err):
		rc.logger.Warn("leaked slot spot found", "booking_id", entry.BookingID, "slot_id", entry.SlotID)
		item.Action = SweepLeaked
	default:
		rc.logger.Error("booking lookup failed", "booking_id", entry.BookingID, "error", err)
		item.Action = SweepFailed
		item.Error = err.Error()
	}
	return item
}

func (rc *Reconciler) mark(ctx context.Context, log *slog.Logger, bookingID string, state models.ReservationState, note string) {
	if err := rc.journal.MarkReservation(context.WithoutCancel(ctx), bookingID, state, note); err != nil {
		log.Error("failed to update reservation state", "to", state, "error", err)
	}
}

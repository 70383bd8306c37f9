package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo implements Store directly against PostgreSQL with pgx. It is
// used when the service runs next to the database instead of behind
// PostgREST.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func PostgresNewRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// isUUID reports whether id can be compared against a uuid key column. Keys
// are bound as $n::uuid so the primary key index serves the lookup, and a
// malformed id would otherwise fail the cast instead of matching nothing.
func isUUID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

func (r *PostgresRepo) GetMemberByEmail(ctx context.Context, email string) (*Member, error) {
	var m Member
	var createdAt time.Time
	err := r.db.QueryRow(ctx,
		`SELECT id::text, name, email, phone, status, coalesce(bank_transfer_reference, ''), created_at
		 FROM members WHERE email = $1`,
		email,
	).Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Status, &m.BankTransferReference, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member by email: %w", err)
	}
	m.CreatedAt = &createdAt
	return &m, nil
}

func (r *PostgresRepo) CreateMember(ctx context.Context, member *Member) (*Member, error) {
	if err := Validate.Struct(member); err != nil {
		return nil, fmt.Errorf("invalid member: %w", err)
	}

	created := *member
	var createdAt time.Time
	err := r.db.QueryRow(ctx,
		`INSERT INTO members (name, email, phone, status, bank_transfer_reference)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text, created_at`,
		member.Name, member.Email, member.Phone, member.Status, member.BankTransferReference,
	).Scan(&created.ID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRowReturned
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}
	created.CreatedAt = &createdAt
	return &created, nil
}

func (r *PostgresRepo) UpdatePendingMember(ctx context.Context, id, name, phone, reference string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE members
		 SET name = $2, phone = $3, status = $4, bank_transfer_reference = $5
		 WHERE id = $1::uuid`,
		id, name, phone, MemberStatusPending, reference,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ActivateMember(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE members SET status = $2 WHERE id = $1::uuid`, id, MemberStatusActive)
	if err != nil {
		return fmt.Errorf("activate member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var eventID *string
	var start, end time.Time
	if err := row.Scan(&s.ID, &eventID, &start, &end, &s.AvailableSpots); err != nil {
		return nil, err
	}
	s.EventID = eventID
	s.StartTime = start.UTC().Format(time.RFC3339)
	s.EndTime = end.UTC().Format(time.RFC3339)
	return &s, nil
}

func (r *PostgresRepo) GetSlot(ctx context.Context, slotID, eventID string) (*Slot, error) {
	if !isUUID(slotID) || !isUUID(eventID) {
		return nil, ErrNotFound
	}
	slot, err := scanSlot(r.db.QueryRow(ctx,
		`SELECT id::text, event_id::text, start_time, end_time, available_spots
		 FROM slots WHERE id = $1::uuid AND event_id = $2::uuid`,
		slotID, eventID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

// ClaimSpot is the compare-and-swap on the observed snapshot. The WHERE clause
// is evaluated under the row lock taken by UPDATE, so a concurrent writer that
// already changed available_spots makes this statement affect zero rows.
func (r *PostgresRepo) ClaimSpot(ctx context.Context, slotID string, observed int) (bool, error) {
	if observed <= 0 || !isUUID(slotID) {
		return false, nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE slots SET available_spots = available_spots - 1
		 WHERE id = $1::uuid AND available_spots = $2`,
		slotID, observed,
	)
	if err != nil {
		return false, fmt.Errorf("claim spot: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepo) ReleaseSpot(ctx context.Context, slotID string) error {
	if !isUUID(slotID) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE slots SET available_spots = available_spots + 1 WHERE id = $1::uuid`,
		slotID,
	)
	if err != nil {
		return fmt.Errorf("release spot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListOpenSlots(ctx context.Context, limit int) ([]*Slot, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := r.db.Query(ctx,
		`SELECT id::text, event_id::text, start_time, end_time, available_spots
		 FROM slots
		 WHERE available_spots > 0
		 ORDER BY start_time ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}
	defer rows.Close()

	var slots []*Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *PostgresRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var e Event
	err := r.db.QueryRow(ctx,
		`SELECT id::text, title, date::text, location_id::text FROM events WHERE id = $1::uuid`,
		id,
	).Scan(&e.ID, &e.Title, &e.Date, &e.LocationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func (r *PostgresRepo) GetLocation(ctx context.Context, id string) (*Location, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var l Location
	err := r.db.QueryRow(ctx,
		`SELECT id::text, name FROM locations WHERE id = $1::uuid`,
		id,
	).Scan(&l.ID, &l.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

func (r *PostgresRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	booking.BeforeCreate()

	created := *booking
	var createdAt time.Time
	err := r.db.QueryRow(ctx,
		`INSERT INTO bookings (id, member_id, event_id, slot_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text, created_at`,
		booking.ID, booking.MemberID, booking.EventID, booking.SlotID, booking.Status,
	).Scan(&created.ID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRowReturned
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	created.CreatedAt = &createdAt
	return &created, nil
}

func (r *PostgresRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var b Booking
	var createdAt time.Time
	err := r.db.QueryRow(ctx,
		`SELECT id::text, member_id::text, event_id::text, slot_id::text, status, created_at
		 FROM bookings WHERE id = $1::uuid`,
		id,
	).Scan(&b.ID, &b.MemberID, &b.EventID, &b.SlotID, &b.Status, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	b.CreatedAt = &createdAt
	return &b, nil
}

func (r *PostgresRepo) ListBookingsBySlot(ctx context.Context, slotID string) ([]*Booking, error) {
	if !isUUID(slotID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id::text, member_id::text, event_id::text, slot_id::text, status, created_at
		 FROM bookings
		 WHERE slot_id = $1::uuid
		 ORDER BY created_at ASC`,
		slotID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		var createdAt time.Time
		if err := rows.Scan(&b.ID, &b.MemberID, &b.EventID, &b.SlotID, &b.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.CreatedAt = &createdAt
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

package models

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-process Store. A single mutex makes every method atomic,
// which gives ClaimSpot the same compare-and-swap guarantee the database
// gateways get from a conditional UPDATE.
type MemoryRepo struct {
	mu        sync.Mutex
	members   map[string]*Member
	events    map[string]*Event
	locations map[string]*Location
	slots     map[string]*Slot
	bookings  map[string]*Booking
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		members:   make(map[string]*Member),
		events:    make(map[string]*Event),
		locations: make(map[string]*Location),
		slots:     make(map[string]*Slot),
		bookings:  make(map[string]*Booking),
	}
}

// Seed is the JSON document accepted by LoadSeed.
type Seed struct {
	Locations []Location `json:"locations"`
	Events    []Event    `json:"events"`
	Slots     []Slot     `json:"slots"`
	Members   []Member   `json:"members"`
}

// LoadSeed reads a Seed document and adds its rows.
func (r *MemoryRepo) LoadSeed(src io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(src).Decode(&seed); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}
	for i := range seed.Locations {
		r.PutLocation(seed.Locations[i])
	}
	for i := range seed.Events {
		r.PutEvent(seed.Events[i])
	}
	for i := range seed.Slots {
		r.PutSlot(seed.Slots[i])
	}
	for i := range seed.Members {
		r.PutMember(seed.Members[i])
	}
	return nil
}

func (r *MemoryRepo) PutLocation(l Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = &l
}

func (r *MemoryRepo) PutEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = &e
}

func (r *MemoryRepo) PutSlot(s Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[s.ID] = &s
}

func (r *MemoryRepo) PutMember(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.members[m.ID] = &m
}

// SpotsLeft returns the current capacity of a slot, or -1 if it does not exist.
func (r *MemoryRepo) SpotsLeft(slotID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return -1
	}
	return s.AvailableSpots
}

func (r *MemoryRepo) GetMemberByEmail(ctx context.Context, email string) (*Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepo) CreateMember(ctx context.Context, member *Member) (*Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := Validate.Struct(member); err != nil {
		return nil, fmt.Errorf("invalid member: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.Email == member.Email {
			return nil, fmt.Errorf("insert member: duplicate email %s", member.Email)
		}
	}
	now := time.Now().UTC()
	created := *member
	created.ID = uuid.New().String()
	created.CreatedAt = &now
	r.members[created.ID] = &created

	out := created
	return &out, nil
}

func (r *MemoryRepo) UpdatePendingMember(ctx context.Context, id, name, phone, reference string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return ErrNotFound
	}
	m.Name = name
	m.Phone = phone
	m.Status = MemberStatusPending
	m.BankTransferReference = reference
	return nil
}

func (r *MemoryRepo) ActivateMember(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return ErrNotFound
	}
	m.Status = MemberStatusActive
	return nil
}

func (r *MemoryRepo) GetSlot(ctx context.Context, slotID, eventID string) (*Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok || s.EventID == nil || *s.EventID != eventID {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepo) ClaimSpot(ctx context.Context, slotID string, observed int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if observed <= 0 {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok || s.AvailableSpots != observed {
		return false, nil
	}
	s.AvailableSpots = observed - 1
	return true, nil
}

func (r *MemoryRepo) ReleaseSpot(ctx context.Context, slotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok {
		return ErrNotFound
	}
	s.AvailableSpots++
	return nil
}

func (r *MemoryRepo) ListOpenSlots(ctx context.Context, limit int) ([]*Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var open []*Slot
	for _, s := range r.slots {
		if s.AvailableSpots > 0 {
			cp := *s
			open = append(open, &cp)
		}
	}
	sort.Slice(open, func(a, b int) bool { return open[a].StartTime < open[b].StartTime })
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (r *MemoryRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryRepo) GetLocation(ctx context.Context, id string) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *MemoryRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	booking.BeforeCreate()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; ok {
		return nil, fmt.Errorf("insert booking: duplicate id %s", booking.ID)
	}
	now := time.Now().UTC()
	created := *booking
	created.CreatedAt = &now
	r.bookings[created.ID] = &created

	out := created
	return &out, nil
}

func (r *MemoryRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MemoryRepo) ListBookingsBySlot(ctx context.Context, slotID string) ([]*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if b.SlotID == slotID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(*out[b].CreatedAt) })
	return out, nil
}

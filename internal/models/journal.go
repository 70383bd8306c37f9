package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ReservationsColName = "reservations"

	// settled entries are kept for a while so operators can audit them, then
	// the TTL index removes them.
	settledRetention = 30 * 24 * time.Hour
)

type ReservationState string

const (
	// ReservationClaimed means the spot was taken but no outcome is recorded yet.
	ReservationClaimed ReservationState = "claimed"
	// ReservationBooked means the booking row exists.
	ReservationBooked ReservationState = "booked"
	// ReservationCompensated means the spot was given back after a failure.
	ReservationCompensated ReservationState = "compensated"
	// ReservationAbandoned means the compensation itself failed and a spot leaked.
	ReservationAbandoned ReservationState = "abandoned"
	// ReservationReconciled means a sweep resolved a claimed or abandoned entry.
	ReservationReconciled ReservationState = "reconciled"

	// ReservationCompensating is written before an inline release. An entry
	// left in this state may or may not have had its spot given back.
	ReservationCompensating ReservationState = "compensating"
	// ReservationReconciling marks an entry leased by a sweep for repair.
	ReservationReconciling ReservationState = "reconciling"
)

// Releasable reports whether a sweep may give the entry's spot back without
// risking a second release.
func (s ReservationState) Releasable() bool {
	return s == ReservationClaimed || s == ReservationAbandoned
}

// Settled reports whether no further action is expected on the reservation.
func (s ReservationState) Settled() bool {
	switch s {
	case ReservationBooked, ReservationCompensated, ReservationReconciled:
		return true
	}
	return false
}

// Reservation is a journal entry for one attempt at consuming a slot unit.
// BookingID is generated before the claim so the entry can be matched to the
// booking row later.
type Reservation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BookingID string             `bson:"booking_id" json:"booking_id" validate:"required"`
	SlotID    string             `bson:"slot_id" json:"slot_id" validate:"required"`
	EventID   string             `bson:"event_id" json:"event_id" validate:"required"`
	MemberID  string             `bson:"member_id" json:"member_id" validate:"required"`
	State     ReservationState   `bson:"state" json:"state"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	ClaimedAt time.Time          `bson:"claimed_at" json:"claimed_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	ExpiresAt *time.Time         `bson:"expires_at,omitempty" json:"-"`
}

// ReservationJournal records the life cycle of every spot claim so leaked
// units can be found after a crash or a failed compensation.
type ReservationJournal interface {
	RecordClaim(ctx context.Context, r *Reservation) error
	MarkReservation(ctx context.Context, bookingID string, state ReservationState, note string) error
	// TransitionReservation moves the entry to state only if it is currently
	// in one of from. It returns ErrNotFound when no entry exists and
	// ErrReservationConflict when the entry is in another state.
	TransitionReservation(ctx context.Context, bookingID string, from []ReservationState, to ReservationState, note string) error
	// ListUnsettled returns unsettled entries last touched before cutoff.
	ListUnsettled(ctx context.Context, cutoff time.Time, limit int) ([]*Reservation, error)
	EnsureIndexes(ctx context.Context) error
}

// MongoJournal stores reservations in MongoDB.
type MongoJournal struct {
	repo *MongodbRepo
}

func NewMongoJournal(repo *MongodbRepo) *MongoJournal {
	return &MongoJournal{repo: repo}
}

func (j *MongoJournal) collection(ctx context.Context) (*mongo.Collection, error) {
	return j.repo.GetCollection(ctx, j.repo.dbName, ReservationsColName)
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

func (j *MongoJournal) EnsureIndexes(ctx context.Context) error {
	col, err := j.collection(ctx)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("booking_id_unique"),
		},
		// sweep query
		{
			Keys: bson.D{
				{Key: "state", Value: 1},
				{Key: "updated_at", Value: 1},
			},
			Options: options.Index().SetName("state_updated_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "slot_id", Value: 1}},
			Options: options.Index().SetName("slot_id_idx"),
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(0).
				SetName("expires_at_ttl"),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating indexes: %v", err)
	}
	return nil
}

func (j *MongoJournal) RecordClaim(ctx context.Context, r *Reservation) error {
	if err := Validate.Struct(r); err != nil {
		return fmt.Errorf("invalid reservation: %w", err)
	}
	col, err := j.collection(ctx)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.State = ReservationClaimed
	r.ClaimedAt = now
	r.UpdatedAt = now

	if _, err := col.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("error inserting reservation: %v", err)
	}
	return nil
}

func (j *MongoJournal) MarkReservation(ctx context.Context, bookingID string, state ReservationState, note string) error {
	col, err := j.collection(ctx)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx, bson.M{"booking_id": bookingID}, stateUpdate(state, note))
	if err != nil {
		return fmt.Errorf("error updating reservation: %v", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (j *MongoJournal) TransitionReservation(ctx context.Context, bookingID string, from []ReservationState, to ReservationState, note string) error {
	col, err := j.collection(ctx)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"booking_id": bookingID,
		"state":      bson.M{"$in": from},
	}
	err = col.FindOneAndUpdate(ctx, filter, stateUpdate(to, note)).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("error transitioning reservation: %v", err)
	}

	n, err := col.CountDocuments(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return fmt.Errorf("error counting reservations: %v", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrReservationConflict
}

func stateUpdate(state ReservationState, note string) bson.M {
	now := time.Now().UTC()
	set := bson.M{
		"state":      state,
		"updated_at": now,
	}
	if note != "" {
		set["note"] = note
	}
	update := bson.M{"$set": set}
	if state.Settled() {
		set["expires_at"] = now.Add(settledRetention)
	} else {
		update["$unset"] = bson.M{"expires_at": ""}
	}
	return update
}

func (j *MongoJournal) ListUnsettled(ctx context.Context, cutoff time.Time, limit int) ([]*Reservation, error) {
	col, err := j.collection(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"state": bson.M{"$in": []ReservationState{
			ReservationClaimed,
			ReservationAbandoned,
			ReservationCompensating,
			ReservationReconciling,
		}},
		"updated_at": bson.M{"$lt": cutoff},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding reservations: %v", err)
	}
	defer cursor.Close(ctx)

	var out []*Reservation
	for cursor.Next(ctx) {
		var r Reservation
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("error decoding reservation: %v", err)
		}
		out = append(out, &r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return out, nil
}

// MemoryJournal keeps reservations in process. It backs the memory store and
// deployments without MongoDB; entries do not survive a restart.
type MemoryJournal struct {
	mu      sync.Mutex
	entries map[string]*Reservation
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string]*Reservation)}
}

func (j *MemoryJournal) EnsureIndexes(context.Context) error { return nil }

func (j *MemoryJournal) RecordClaim(_ context.Context, r *Reservation) error {
	if err := Validate.Struct(r); err != nil {
		return fmt.Errorf("invalid reservation: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.entries[r.BookingID]; ok {
		return errors.New("reservation already recorded")
	}
	now := time.Now().UTC()
	cp := *r
	cp.State = ReservationClaimed
	cp.ClaimedAt = now
	cp.UpdatedAt = now
	j.entries[r.BookingID] = &cp
	return nil
}

func (j *MemoryJournal) MarkReservation(_ context.Context, bookingID string, state ReservationState, note string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	r, ok := j.entries[bookingID]
	if !ok {
		return ErrNotFound
	}
	r.State = state
	r.UpdatedAt = time.Now().UTC()
	if note != "" {
		r.Note = note
	}
	return nil
}

func (j *MemoryJournal) TransitionReservation(_ context.Context, bookingID string, from []ReservationState, to ReservationState, note string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	r, ok := j.entries[bookingID]
	if !ok {
		return ErrNotFound
	}
	if !slices.Contains(from, r.State) {
		return ErrReservationConflict
	}
	r.State = to
	r.UpdatedAt = time.Now().UTC()
	if note != "" {
		r.Note = note
	}
	return nil
}

func (j *MemoryJournal) ListUnsettled(_ context.Context, cutoff time.Time, limit int) ([]*Reservation, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []*Reservation
	for _, r := range j.entries {
		if r.State.Settled() || !r.UpdatedAt.Before(cutoff) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UpdatedAt.Before(out[b].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns a copy of the entry for bookingID.
func (j *MemoryJournal) Get(bookingID string) (*Reservation, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	r, ok := j.entries[bookingID]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

// Backdate shifts an entry's timestamps into the past. Tests use it to make
// entries eligible for a sweep.
func (j *MemoryJournal) Backdate(bookingID string, by time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if r, ok := j.entries[bookingID]; ok {
		r.ClaimedAt = r.ClaimedAt.Add(-by)
		r.UpdatedAt = r.UpdatedAt.Add(-by)
	}
}

package models

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

const (
	MembersTable   = "members"
	EventsTable    = "events"
	SlotsTable     = "slots"
	BookingsTable  = "bookings"
	LocationsTable = "locations"
)

type MemberRepo interface {
	GetMemberByEmail(ctx context.Context, email string) (*Member, error)
	CreateMember(ctx context.Context, member *Member) (*Member, error)
	UpdatePendingMember(ctx context.Context, id, name, phone, reference string) error
	ActivateMember(ctx context.Context, id string) error
}

type SlotRepo interface {
	GetSlot(ctx context.Context, slotID, eventID string) (*Slot, error)
	// ClaimSpot decrements available_spots by one only if it still equals
	// observed. It reports false when no row matched.
	ClaimSpot(ctx context.Context, slotID string, observed int) (bool, error)
	// ReleaseSpot gives back one previously claimed unit.
	ReleaseSpot(ctx context.Context, slotID string) error
	ListOpenSlots(ctx context.Context, limit int) ([]*Slot, error)
}

type EventRepo interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
}

type LocationRepo interface {
	GetLocation(ctx context.Context, id string) (*Location, error)
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	ListBookingsBySlot(ctx context.Context, slotID string) ([]*Booking, error)
}

// Store is the full data store gateway used by the workflows.
type Store interface {
	MemberRepo
	SlotRepo
	EventRepo
	LocationRepo
	BookingRepo
}

// SupabaseRepo talks to the PostgREST API. The admin client carries the
// service-role key and is used by the workflows; the public client carries the
// anon key and only serves public reads.
type SupabaseRepo struct {
	adminClient  *supabase.Client
	publicClient *supabase.Client
}

func SupabaseNewRepo(adminClient, publicClient *supabase.Client) *SupabaseRepo {
	if publicClient == nil {
		publicClient = adminClient
	}
	return &SupabaseRepo{
		adminClient:  adminClient,
		publicClient: publicClient,
	}
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

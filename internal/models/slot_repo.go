package models

import (
	"context"
	"fmt"
	"strconv"

	"github.com/supabase-community/postgrest-go"
)

const (
	slotColumns = "id,event_id,start_time,end_time,available_spots"

	// releaseAttempts bounds the compare-and-swap loop used to give a spot back.
	releaseAttempts = 5
)

func (su *SupabaseRepo) GetSlot(ctx context.Context, slotID, eventID string) (*Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, _, err := su.admin().From(SlotsTable).
		Select(slotColumns, "", false).
		Eq("id", slotID).
		Eq("event_id", eventID).
		Execute()
	if err != nil {
		return nil, postgrestError("get slot", err)
	}
	return decodeOne[Slot](raw)
}

func (su *SupabaseRepo) getSlotByID(slotID string) (*Slot, error) {
	raw, _, err := su.admin().From(SlotsTable).
		Select(slotColumns, "", false).
		Eq("id", slotID).
		Execute()
	if err != nil {
		return nil, postgrestError("get slot by id", err)
	}
	return decodeOne[Slot](raw)
}

// ClaimSpot issues a single PATCH filtered on both the slot id and the
// observed spot count. PostgREST applies it as one UPDATE ... WHERE statement,
// so at most one concurrent caller holding the same observation can match.
func (su *SupabaseRepo) ClaimSpot(ctx context.Context, slotID string, observed int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if observed <= 0 {
		return false, nil
	}
	return su.swapSpots(slotID, observed, observed-1)
}

// ReleaseSpot adds one unit back. PostgREST has no relative update, so the
// increment is a compare-and-swap against a fresh read, retried a bounded
// number of times.
func (su *SupabaseRepo) ReleaseSpot(ctx context.Context, slotID string) error {
	for attempt := 0; attempt < releaseAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		slot, err := su.getSlotByID(slotID)
		if err != nil {
			return err
		}
		swapped, err := su.swapSpots(slotID, slot.AvailableSpots, slot.AvailableSpots+1)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return fmt.Errorf("release spot on slot %s: %w", slotID, ErrReleaseContended)
}

func (su *SupabaseRepo) swapSpots(slotID string, from, to int) (bool, error) {
	raw, _, err := su.admin().From(SlotsTable).
		Update(map[string]interface{}{"available_spots": to}, "representation", "").
		Eq("id", slotID).
		Eq("available_spots", strconv.Itoa(from)).
		Execute()
	if err != nil {
		return false, postgrestError("update slot spots", err)
	}

	rows, err := decodeRows[Slot](raw)
	if err != nil {
		return false, err
	}
	return len(rows) == 1, nil
}

func (su *SupabaseRepo) ListOpenSlots(ctx context.Context, limit int) ([]*Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}

	raw, _, err := su.public().From(SlotsTable).
		Select(slotColumns, "", false).
		Gt("available_spots", "0").
		Order("start_time", &postgrest.OrderOpts{Ascending: true}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, postgrestError("list open slots", err)
	}

	rows, err := decodeRows[Slot](raw)
	if err != nil {
		return nil, err
	}
	slots := make([]*Slot, 0, len(rows))
	for i := range rows {
		slots = append(slots, &rows[i])
	}
	return slots, nil
}

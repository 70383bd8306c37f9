package models

import (
	"context"
)

func (su *SupabaseRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, _, err := su.admin().From(EventsTable).
		Select("id,title,date,location_id", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, postgrestError("get event", err)
	}
	return decodeOne[Event](raw)
}

func (su *SupabaseRepo) GetLocation(ctx context.Context, id string) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, _, err := su.admin().From(LocationsTable).
		Select("id,name", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, postgrestError("get location", err)
	}
	return decodeOne[Location](raw)
}

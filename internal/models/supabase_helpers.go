package models

import (
	"encoding/json"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// decodeRows unmarshals a PostgREST response body. PostgREST always answers
// with an array, even for single-row lookups.
func decodeRows[T any](raw []byte) ([]T, error) {
	var rows []T
	if len(raw) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	return rows, nil
}

// decodeOne returns the first row of a PostgREST response or ErrNotFound.
func decodeOne[T any](raw []byte) (*T, error) {
	rows, err := decodeRows[T](raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func postgrestError(op string, err error) error {
	return fmt.Errorf("%s: postgrest error: %w", op, err)
}

func (su *SupabaseRepo) admin() *supabase.Client {
	return su.adminClient
}

// public returns the anon-key client, or the admin client when no anon key
// is configured.
func (su *SupabaseRepo) public() *supabase.Client {
	if su.publicClient == nil {
		return su.adminClient
	}
	return su.publicClient
}

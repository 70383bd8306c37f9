package models

import (
	"context"
	"fmt"
)

const memberColumns = "id,name,email,phone,status,bank_transfer_reference,created_at"

func (su *SupabaseRepo) GetMemberByEmail(ctx context.Context, email string) (*Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	raw, _, err := su.admin().From(MembersTable).
		Select(memberColumns, "", false).
		Eq("email", email).
		Execute()
	if err != nil {
		return nil, postgrestError("get member by email", err)
	}

	rows, err := decodeRows[Member](raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	if len(rows) > 1 {
		return nil, fmt.Errorf("multiple members found for email %s", email)
	}
	return &rows[0], nil
}

func (su *SupabaseRepo) CreateMember(ctx context.Context, member *Member) (*Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := Validate.Struct(member); err != nil {
		return nil, fmt.Errorf("invalid member: %w", err)
	}

	data := map[string]interface{}{
		"name":                    member.Name,
		"email":                   member.Email,
		"phone":                   member.Phone,
		"status":                  member.Status,
		"bank_transfer_reference": member.BankTransferReference,
	}

	raw, _, err := su.admin().From(MembersTable).
		Insert(data, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, postgrestError("insert member", err)
	}

	created, err := decodeOne[Member](raw)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrNoRowReturned
		}
		return nil, err
	}
	return created, nil
}

func (su *SupabaseRepo) UpdatePendingMember(ctx context.Context, id, name, phone, reference string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("member id is required")
	}

	raw, _, err := su.admin().From(MembersTable).
		Update(map[string]interface{}{
			"name":                    name,
			"phone":                   phone,
			"status":                  MemberStatusPending,
			"bank_transfer_reference": reference,
		}, "representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return postgrestError("update member", err)
	}

	rows, err := decodeRows[Member](raw)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (su *SupabaseRepo) ActivateMember(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, _, err := su.admin().From(MembersTable).
		Update(map[string]interface{}{"status": MemberStatusActive}, "representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return postgrestError("activate member", err)
	}

	rows, err := decodeRows[Member](raw)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

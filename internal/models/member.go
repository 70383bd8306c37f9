package models

import "time"

type MemberStatus string

const (
	MemberStatusPending MemberStatus = "pending"
	MemberStatusActive  MemberStatus = "active"
)

// Member is a row of the members table. Email is stored in its normalized
// (trimmed, lower-cased) form and is unique.
type Member struct {
	ID                    string       `db:"id" json:"id,omitempty"`
	Name                  string       `db:"name" json:"name" validate:"required"`
	Email                 string       `db:"email" json:"email" validate:"required,email"`
	Phone                 string       `db:"phone" json:"phone" validate:"required"`
	Status                MemberStatus `db:"status" json:"status" validate:"required,oneof=pending active"`
	BankTransferReference string       `db:"bank_transfer_reference" json:"bank_transfer_reference"`
	CreatedAt             *time.Time   `db:"created_at" json:"created_at,omitempty"`
}

func (m *Member) IsActive() bool {
	return m != nil && m.Status == MemberStatusActive
}

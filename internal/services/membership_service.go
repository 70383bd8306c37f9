package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/joshua-takyi/gylounge/internal/models"
)

type RegistrationStatus string

const (
	RegisterInvalid       RegistrationStatus = "invalid"
	RegisterError         RegistrationStatus = "error"
	RegisterAlreadyActive RegistrationStatus = "already-active"
	RegisterSaved         RegistrationStatus = "saved"
	RegisterSuccess       RegistrationStatus = "success"
)

type RegistrationInput struct {
	Name  string `form:"name" json:"name"`
	Email string `form:"email" json:"email"`
	Phone string `form:"phone" json:"phone"`
}

// RegistrationOutcome carries the terminal status. Reference is set for
// saved and success.
type RegistrationOutcome struct {
	Status    RegistrationStatus `json:"status"`
	Reference string             `json:"reference,omitempty"`
}

type ActivationStatus string

const (
	ActivateInvalid       ActivationStatus = "invalid"
	ActivateNotFound      ActivationStatus = "not-found"
	ActivateAlreadyActive ActivationStatus = "already-active"
	ActivateError         ActivationStatus = "error"
	ActivateEmailWarning  ActivationStatus = "success-email-warning"
	ActivateSuccess       ActivationStatus = "success"
)

var ErrBankDetailsMissing = errors.New("bank transfer env vars missing. Set MEMBERSHIP_FEE_GHS, BANK_TRANSFER_ACCOUNT_NAME, BANK_TRANSFER_ACCOUNT_NUMBER, BANK_TRANSFER_BANK_NAME, BANK_TRANSFER_INSTRUCTIONS")

type BankTransferDetails struct {
	MembershipFeeGHS float64
	AccountName      string
	AccountNumber    string
	BankName         string
	Instructions     string // markdown
}

func (b *BankTransferDetails) FeeLabel() string {
	return strconv.FormatFloat(b.MembershipFeeGHS, 'f', -1, 64)
}

// ParseBankTransferDetails validates the raw settings. Every value is
// required and the fee must be a positive number.
func ParseBankTransferDetails(fee, accountName, accountNumber, bankName, instructions string) (*BankTransferDetails, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(fee), 64)
	if err != nil || value <= 0 {
		return nil, ErrBankDetailsMissing
	}
	d := &BankTransferDetails{
		MembershipFeeGHS: value,
		AccountName:      strings.TrimSpace(accountName),
		AccountNumber:    strings.TrimSpace(accountNumber),
		BankName:         strings.TrimSpace(bankName),
		Instructions:     strings.TrimSpace(instructions),
	}
	if d.AccountName == "" || d.AccountNumber == "" || d.BankName == "" || d.Instructions == "" {
		return nil, ErrBankDetailsMissing
	}
	return d, nil
}

type MembershipNotifier interface {
	SendMembershipInstructions(ctx context.Context, in MembershipInstructions) SendResult
	SendWelcomeEmail(ctx context.Context, to, name string) SendResult
}

type MembershipService struct {
	members  models.MemberRepo
	notifier MembershipNotifier
	bank     *BankTransferDetails
	bankErr  error
	logger   *slog.Logger

	newReference func() (string, error)
}

// NewMembershipService takes the bank details as parsed at startup. A parse
// error does not stop registrations; it turns every instruction email into a
// failed send.
func NewMembershipService(members models.MemberRepo, notifier MembershipNotifier, bank *BankTransferDetails, bankErr error, logger *slog.Logger) *MembershipService {
	return &MembershipService{
		members:      members,
		notifier:     notifier,
		bank:         bank,
		bankErr:      bankErr,
		logger:       logger,
		newReference: helpers.GenerateBankTransferReference,
	}
}

// Register creates or refreshes a pending member and emails the bank
// transfer instructions.
func (ms *MembershipService) Register(ctx context.Context, in RegistrationInput) (out RegistrationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			ms.logger.Error("registration panicked", "panic", r)
			out = RegistrationOutcome{Status: RegisterError}
		}
	}()

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || email == "" || phone == "" || !helpers.LooksLikeEmail(email) {
		return RegistrationOutcome{Status: RegisterInvalid}
	}
	email = helpers.NormalizeEmail(email)

	reference, err := ms.newReference()
	if err != nil {
		ms.logger.Error("failed to generate reference", "error", err)
		return RegistrationOutcome{Status: RegisterError}
	}

	existing, err := ms.members.GetMemberByEmail(ctx, email)
	if err != nil && !models.IsNotFound(err) {
		ms.logger.Error("member lookup failed", "email", email, "error", err)
		return RegistrationOutcome{Status: RegisterError}
	}

	if existing.IsActive() {
		return RegistrationOutcome{Status: RegisterAlreadyActive}
	}

	if existing != nil {
		if err := ms.members.UpdatePendingMember(ctx, existing.ID, name, phone, reference); err != nil {
			ms.logger.Error("member update failed", "email", email, "member_id", existing.ID, "error", err)
			return RegistrationOutcome{Status: RegisterError}
		}
	} else {
		_, err := ms.members.CreateMember(ctx, &models.Member{
			Name:                  name,
			Email:                 email,
			Phone:                 phone,
			Status:                models.MemberStatusPending,
			BankTransferReference: reference,
		})
		if err != nil {
			ms.logger.Error("member insert failed", "email", email, "error", err)
			return RegistrationOutcome{Status: RegisterError}
		}
	}

	if ms.bankErr != nil || ms.bank == nil {
		ms.logger.Error("instruction email not sent", "email", email, "error", ms.bankErrOrMissing())
		return RegistrationOutcome{Status: RegisterSaved, Reference: reference}
	}

	res := ms.notifier.SendMembershipInstructions(ctx, MembershipInstructions{
		Name:      name,
		Email:     email,
		Reference: reference,
		Bank:      ms.bank,
	})
	if !res.OK {
		ms.logger.Error("instruction email failed", "email", email, "error", res.Error)
		return RegistrationOutcome{Status: RegisterSaved, Reference: reference}
	}

	return RegistrationOutcome{Status: RegisterSuccess, Reference: reference}
}

func (ms *MembershipService) bankErrOrMissing() error {
	if ms.bankErr != nil {
		return ms.bankErr
	}
	return ErrBankDetailsMissing
}

// Activate marks a pending member active once their transfer is confirmed and
// sends the welcome email.
func (ms *MembershipService) Activate(ctx context.Context, email string) (status ActivationStatus) {
	defer func() {
		if r := recover(); r != nil {
			ms.logger.Error("activation panicked", "panic", r)
			status = ActivateError
		}
	}()

	email = helpers.NormalizeEmail(email)
	if email == "" || !helpers.LooksLikeEmail(email) {
		return ActivateInvalid
	}

	member, err := ms.members.GetMemberByEmail(ctx, email)
	if err != nil {
		if models.IsNotFound(err) {
			return ActivateNotFound
		}
		ms.logger.Error("member lookup failed", "email", email, "error", err)
		return ActivateError
	}
	if member.IsActive() {
		return ActivateAlreadyActive
	}

	if err := ms.members.ActivateMember(ctx, member.ID); err != nil {
		ms.logger.Error("member activation failed", "email", email, "member_id", member.ID, "error", err)
		return ActivateError
	}

	if res := ms.notifier.SendWelcomeEmail(ctx, email, member.Name); !res.OK {
		ms.logger.Warn("welcome email failed", "email", email, "error", res.Error)
		return ActivateEmailWarning
	}
	return ActivateSuccess
}

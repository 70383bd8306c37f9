package services

type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	ToneInfo    Tone = "info"
)

type Feedback struct {
	Tone    Tone   `json:"tone"`
	Message string `json:"message"`
}

// ResolveRegisterFeedback maps a registration status to the message shown to
// the visitor. Unknown statuses map to nil.
func ResolveRegisterFeedback(status, reference string) *Feedback {
	switch RegistrationStatus(status) {
	case RegisterSuccess:
		if reference != "" {
			return &Feedback{ToneSuccess, "Registration saved. Your transfer reference is " + reference + "."}
		}
		return &Feedback{ToneSuccess, "Registration saved. Check your email for bank transfer details."}
	case RegisterSaved:
		if reference != "" {
			return &Feedback{ToneInfo, "Registration saved with reference " + reference + ", but we could not send the email. Contact support if needed."}
		}
		return &Feedback{ToneInfo, "Registration saved, but we could not send the email. Contact support if needed."}
	case RegisterAlreadyActive:
		return &Feedback{ToneInfo, "This email already has an active membership."}
	case RegisterInvalid:
		return &Feedback{ToneError, "Please provide valid name, email, and phone details."}
	case RegisterError:
		return &Feedback{ToneError, "We could not save your registration right now. Please try again."}
	}
	return nil
}

// ResolveBookingFeedback maps a reservation status to the message shown to
// the visitor. Unknown statuses map to nil.
func ResolveBookingFeedback(status string) *Feedback {
	switch ReservationStatus(status) {
	case BookingSuccess:
		return &Feedback{ToneSuccess, "Booking created successfully. A confirmation email has been sent."}
	case BookingEmailWarning:
		return &Feedback{ToneInfo, "Booking created, but one or more confirmation emails could not be sent."}
	case BookingMembershipRequired:
		return &Feedback{ToneInfo, "You need an active membership before booking. Complete Register first."}
	case BookingSlotUnavailable:
		return &Feedback{ToneError, "That slot is no longer available. Please try another available slot."}
	case BookingInvalid:
		return &Feedback{ToneError, "Please complete all required booking fields."}
	case BookingError:
		return &Feedback{ToneError, "We could not complete your booking right now. Please try again."}
	}
	return nil
}

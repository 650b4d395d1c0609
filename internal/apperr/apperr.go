package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidTransition
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified business error. Two errors are considered the same
// by errors.Is when their codes match, so sentinels can carry detail.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// With returns a copy of e carrying a different message.
func (e *Error) With(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

var (
	ErrInvalidCredentials        = New(KindUnauthorized, "invalid_credentials", "invalid email or password")
	ErrSessionNotFound           = New(KindUnauthorized, "session_not_found", "session not found")
	ErrUnauthorized              = New(KindUnauthorized, "unauthorized", "unauthorized")
	ErrForbidden                 = New(KindForbidden, "forbidden", "forbidden")
	ErrNotFound                  = New(KindNotFound, "not_found", "not found")
	ErrAlreadyExists             = New(KindConflict, "already_exists", "already exists")
	ErrDuplicateActiveOrder      = New(KindConflict, "duplicate_active_order", "you already have an active order for this product")
	ErrInvalidTransition         = New(KindInvalidTransition, "invalid_transition", "invalid status transition")
	ErrCancellationWindowExpired = New(KindConflict, "cancellation_window_expired", "cancellation window has expired")
	ErrNotEligible               = New(KindForbidden, "not_eligible", "order not delivered or not yours")
	ErrAlreadyReviewed           = New(KindConflict, "already_reviewed", "review already submitted")
	ErrSubscriptionActive        = New(KindConflict, "subscription_active", "shop already has an active subscription")
	ErrInvalidSignature          = New(KindUnauthorized, "invalid_signature", "invalid webhook signature")
	ErrInvalidOTP                = New(KindValidation, "invalid_otp", "invalid or expired otp")
	ErrUpstream                  = New(KindUpstream, "upstream", "upstream provider failure")
)

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: message, Fields: fields}
}

func NotFound(what string) *Error {
	return ErrNotFound.With(what + " not found")
}

func Conflict(message string) *Error {
	return New(KindConflict, "conflict", message)
}

func InvalidTransition(from, to string) *Error {
	return ErrInvalidTransition.With(fmt.Sprintf("cannot change status from %s to %s", from, to))
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindCanceled   Kind = "canceled"
)

// Reason narrows a Kind down to the concrete failure.
type Reason string

const (
	ReasonMissingCredential Reason = "missing_credential"
	ReasonSameLanguage      Reason = "same_language"
	ReasonEmptyInput        Reason = "empty_input"
	ReasonTooLong           Reason = "too_long"

	ReasonNonSuccessStatus Reason = "non_success_status"
	ReasonNoStreamBody     Reason = "no_stream_body"
	ReasonNetworkFailure   Reason = "network_failure"

	ReasonCanceledByUser Reason = "canceled_by_user"
)

type Error struct {
	Kind   Kind
	Reason Reason
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// GenericTransportMessage is shown for every transport failure; details stay in Cause.
const GenericTransportMessage = "Something went wrong."

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindValidation:
		return "Request rejected."
	case KindTransport:
		return GenericTransportMessage
	case KindCanceled:
		return "Translation canceled."
	default:
		return "Request failed."
	}
}

func New(kind Kind, reason Reason, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		Reason:      reason,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Validation(reason Reason, safeMessage string) error {
	return New(KindValidation, reason, safeMessage, nil)
}

// Transport always carries the generic message so response bodies and
// credentials never reach the user.
func Transport(reason Reason, cause error) error {
	return New(KindTransport, reason, GenericTransportMessage, cause)
}

func Canceled(cause error) error {
	return New(KindCanceled, ReasonCanceledByUser, "", cause)
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func KindOf(err error) (Kind, bool) {
	if e, ok := asError(err); ok {
		return e.Kind, true
	}
	return "", false
}

func ReasonOf(err error) (Reason, bool) {
	if e, ok := asError(err); ok {
		return e.Reason, true
	}
	return "", false
}

// PublicMessage returns text safe to show the user for err.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok {
		return e.Error()
	}
	return err.Error()
}

func is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsValidation(err error) bool { return is(err, KindValidation) }
func IsTransport(err error) bool  { return is(err, KindTransport) }
func IsCanceled(err error) bool   { return is(err, KindCanceled) }

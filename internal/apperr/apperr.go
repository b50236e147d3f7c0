package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindBadRequest        Kind = "BAD_REQUEST"
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidState      Kind = "INVALID_STATE"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindInvalidAmount     Kind = "INVALID_AMOUNT"
	KindPaymentIncomplete Kind = "PAYMENT_INCOMPLETE"
	KindGateway           Kind = "GATEWAY_ERROR"
)

// Error is the structured error returned by services. Handlers map its
// Kind to an HTTP status; the message is safe to show to callers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind carried anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

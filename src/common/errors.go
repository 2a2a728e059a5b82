package common

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeNotFound            ErrorCode = "not_found"
	CodeInvalidInput        ErrorCode = "invalid_input"
	CodeInvalidState        ErrorCode = "invalid_state"
	CodeConflict            ErrorCode = "conflict"
	CodeCapacityExceeded    ErrorCode = "capacity_exceeded"
	CodeInsufficientPayment ErrorCode = "insufficient_payment"
	CodeInternal            ErrorCode = "internal"
)

// BookingError is a business-rule rejection. Anything that is not a
// BookingError is treated as an unexpected storage fault and kept opaque
// to the caller.
type BookingError struct {
	Code    ErrorCode
	Message string
}

func (e *BookingError) Error() string {
	return e.Message
}

func NotFoundf(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidInputf(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func CapacityExceededf(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeCapacityExceeded, Message: fmt.Sprintf(format, args...)}
}

func InsufficientPaymentf(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeInsufficientPayment, Message: fmt.Sprintf(format, args...)}
}

func Internalf(format string, args ...any) *BookingError {
	return &BookingError{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

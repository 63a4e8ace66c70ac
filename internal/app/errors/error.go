package errors

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Sentinels for the gift card error taxonomy. AppError values built by the
// constructors below unwrap to one of these, so callers can use errors.Is.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConfiguration     = errors.New("configuration error")
	ErrRange             = errors.New("amount out of range")
	ErrState             = errors.New("invalid state")
)

type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, "Unauthorized")
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func NewTooManyRequestsError(message string, limit int, reset int64) *AppError {
	return NewAppError(http.StatusTooManyRequests, fmt.Sprintf("%s: %d requests allowed, resets at %d", message, limit, reset))
}

func NewInternalServerError(originalError error, message string) *AppError {
	logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        originalError,
	}
}

// InsufficientFundsError is returned when a card cannot cover a requested
// authorization, capture or settlement.
type InsufficientFundsError struct {
	*AppError
	CardNumber string
}

func (e *InsufficientFundsError) Unwrap() error {
	return e.AppError
}

func NewInsufficientFundsError(cardNumber string) *InsufficientFundsError {
	return &InsufficientFundsError{
		AppError: &AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    fmt.Sprintf("Card %s is found to have insufficient amount", cardNumber),
			Err:        ErrInsufficientFunds,
		},
		CardNumber: cardNumber,
	}
}

func NewConfigurationError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusPreconditionFailed,
		Message:    message,
		Err:        ErrConfiguration,
	}
}

func NewRangeError(currency string, min, max fmt.Stringer) *AppError {
	return &AppError{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    fmt.Sprintf("Gift card amount must be between %s %s and %s %s", currency, min, currency, max),
		Err:        ErrRange,
	}
}

func NewStateError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusConflict,
		Message:    message,
		Err:        ErrState,
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies an API failure once, at the transport boundary, so
// consumers never re-parse prose. The raw server message is preserved
// verbatim alongside the code.
type Code string

const (
	// CodeDuplicateWeek means a plan already exists for the target week.
	CodeDuplicateWeek Code = "DUPLICATE_WEEK"
	// CodeValidation means the server rejected the payload.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound means the referenced plan does not exist server-side.
	CodeNotFound Code = "NOT_FOUND"
	// CodeTransport means the HTTP exchange itself failed.
	CodeTransport Code = "TRANSPORT"
	// CodeAPI is any other application-level failure.
	CodeAPI Code = "API"
)

// Error is an API failure with a structured code and the verbatim
// server message.
type Error struct {
	Code       Code
	Message    string
	HTTPStatus int
}

func (e *Error) Error() string {
	return e.Message
}

// IsDuplicateWeek reports whether err is the one-plan-per-week
// conflict, anywhere in its chain.
func IsDuplicateWeek(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == CodeDuplicateWeek
}

func transportError(status int) *Error {
	return &Error{
		Code:       CodeTransport,
		Message:    fmt.Sprintf("HTTP error! status: %d", status),
		HTTPStatus: status,
	}
}

func classify(httpStatus int, message string) Code {
	if strings.Contains(message, "duplicate key value") && strings.Contains(message, "unique_user_week") {
		return CodeDuplicateWeek
	}
	switch httpStatus {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	}
	return CodeAPI
}

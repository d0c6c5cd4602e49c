package domain

import (
	"errors"
	"net/http"
)

// Error codes for business logic errors.
const (
	CodeNotFound    = 1
	CodeDuplicate   = 2
	CodeValidation  = 3
	CodeAmbiguous   = 4
	CodePersistence = 5
	CodeInternal    = 6
)

// AppError represents a business logic error with a code, message, and optional wrapped error.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined business errors.
//
// To check whether an error matches one of these categories, use the
// corresponding helper function (IsNotFound, IsDuplicate, etc.) instead of
// errors.Is. The helpers compare error codes via errors.As, so they match
// any *AppError carrying the same code, including freshly constructed and
// wrapped ones, whereas errors.Is only matches the sentinel by identity.
var (
	ErrNotFound       = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrDuplicate      = &AppError{Code: CodeDuplicate, Message: "customer is not unique"}
	ErrValidation     = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrAmbiguousMatch = &AppError{Code: CodeAmbiguous, Message: "more than one match"}
	ErrPersistence    = &AppError{Code: CodePersistence, Message: "persistence error"}
	ErrInternal       = &AppError{Code: CodeInternal, Message: "internal error"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsDuplicate reports whether err is or wraps an AppError with CodeDuplicate.
func IsDuplicate(err error) bool {
	return hasCode(err, CodeDuplicate)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsAmbiguousMatch reports whether err is or wraps an AppError with CodeAmbiguous.
func IsAmbiguousMatch(err error) bool {
	return hasCode(err, CodeAmbiguous)
}

// IsPersistence reports whether err is or wraps an AppError with CodePersistence.
func IsPersistence(err error) bool {
	return hasCode(err, CodePersistence)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// hasCode checks whether err is or wraps an *AppError with the given code.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeDuplicate, CodeAmbiguous:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodePersistence, CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// File errors. Each one wraps a class sentinel so callers can branch on
// either the specific failure or its class.
var (
	ErrOwnerIDRequired        = NewBadRequestError("owner id is required")
	ErrFileTypeRequired       = NewBadRequestError("file type alias is required")
	ErrUnknownFileType        = NewBadRequestError("unknown file type alias")
	ErrFileNameRequired       = NewBadRequestError("file name is required")
	ErrInvalidFileName        = NewBadRequestError("file name must be a single path segment")
	ErrFileContentRequired    = NewBadRequestError("file content is required")
	ErrExtensionNotAllowed    = NewBadRequestError("file extension is not allowed")
	ErrUnsupportedContentType = NewBadRequestError("no content type registered for file extension")
	ErrActingUserRequired     = NewBadRequestError("acting user id is required")
	ErrFileIDRequired         = NewBadRequestError("file id is required")

	ErrOwnerNotFound   = NewResourceNotFoundError("owner not found")
	ErrFileNotFound    = NewResourceNotFoundError("file not found")
	ErrNoFilesForOwner = NewResourceNotFoundError("no files found for owner")

	ErrDuplicateFile = NewConflictError("file with the same name already exists for this owner")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// IsClientError reports whether err was raised deliberately because of caller
// input or missing resources. Anything else is treated as a server failure.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, ErrBadRequest,
		ErrValidationFailed,
		ErrResourceNotFound,
		ErrResourceAlreadyExists,
		ErrConflict,
		ErrPermissionDenied,
		ErrInvalidCredentials,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrAccountDisabled,
		ErrUserNotFound,
	)
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

package errors

import (
	"net/http"

	"pointshop/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

func (e *BaseError) Message() string {
	return e.message
}

func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy carrying details. The copy does not match the
// original with errors.Is; callers that need matching should wrap instead.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Redemption declines. Each one is a distinct, stable outcome of a redeem call.
var (
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Please log in first",
		"",
	)

	ErrItemUnavailable = NewBaseError(
		http.StatusBadRequest,
		"ITEM_UNAVAILABLE",
		"This item is unavailable",
		"",
	)

	ErrInvalidShop = NewBaseError(
		http.StatusBadRequest,
		"INVALID_SHOP",
		"Unknown shop",
		"",
	)

	ErrAccessDenied = NewBaseError(
		http.StatusForbidden,
		"ACCESS_DENIED",
		"You do not have access to this shop",
		"",
	)

	ErrShopClosed = NewBaseError(
		http.StatusBadRequest,
		"SHOP_CLOSED",
		"The shop is closed right now",
		"",
	)

	ErrOutOfStock = NewBaseError(
		http.StatusBadRequest,
		"OUT_OF_STOCK",
		"This option is out of stock",
		"",
	)

	ErrInsufficientPoints = NewBaseError(
		http.StatusBadRequest,
		"INSUFFICIENT_POINTS",
		"Not enough points",
		"",
	)

	ErrServerError = NewBaseError(
		http.StatusInternalServerError,
		"SERVER_ERROR",
		"Something went wrong, please try again later",
		"",
	)
)

// Account errors
var (
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"This username is already registered",
		"",
	)

	ErrInvalidHandle = NewBaseError(
		http.StatusBadRequest,
		"INVALID_HANDLE",
		"Enter your Telegram username",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Wrong username or password",
		"",
	)

	ErrPasswordMismatch = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_MISMATCH",
		"Passwords do not match",
		"",
	)

	ErrPasswordStrength = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_STRENGTH",
		"Password length is out of range",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing failed",
		"",
	)

	ErrInvalidAdminPassword = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_ADMIN_PASSWORD",
		"Wrong admin password",
		"",
	)
)

// Back office errors
var (
	ErrProductNotFound = NewBaseError(
		http.StatusNotFound,
		"PRODUCT_NOT_FOUND",
		"Product not found",
		"",
	)

	ErrVariantNotFound = NewBaseError(
		http.StatusNotFound,
		"VARIANT_NOT_FOUND",
		"Variant not found",
		"",
	)

	ErrOrderNotFound = NewBaseError(
		http.StatusNotFound,
		"ORDER_NOT_FOUND",
		"Order not found",
		"",
	)

	ErrInvalidStatus = NewBaseError(
		http.StatusBadRequest,
		"INVALID_STATUS",
		"Unknown order status",
		"",
	)

	ErrInvalidSchedule = NewBaseError(
		http.StatusBadRequest,
		"INVALID_SCHEDULE",
		"Invalid date or time",
		"",
	)

	ErrInvalidImage = NewBaseError(
		http.StatusBadRequest,
		"INVALID_IMAGE",
		"Only image files are allowed",
		"",
	)

	ErrImageTooLarge = NewBaseError(
		http.StatusRequestEntityTooLarge,
		"IMAGE_TOO_LARGE",
		"Image is too large",
		"",
	)

	ErrAllowlistEntryNotFound = NewBaseError(
		http.StatusNotFound,
		"ALLOWLIST_ENTRY_NOT_FOUND",
		"Allow-list entry not found",
		"",
	)
)

// General errors
var (
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Invalid input",
		"",
	)

	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"Database transaction failed",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

func (e *DatabaseExecuteError) Message() string {
	return "Database operation failed"
}

func (e *DatabaseExecuteError) Details() string {
	return e.details
}

package appErrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

// AppError carries the domain error code, the human-readable detail that
// ends up in the response envelope, and the HTTP status it maps to.
type AppError struct {
	Code     ErrorCode
	Message  string
	Err      error
	HTTPCode int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on the error code so that sentinel comparisons like
// appErrors.Is(err, appErrors.ErrNotEnrolled) survive wrapping and
// WithMessage copies.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if stderrors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPCode: httpCode}
}

// WithMessage returns a copy with a more specific detail message.
func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	clone.Message = message
	return &clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Predefined errors.
var (
	// Authentication
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrUnauthorized       = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrInvalidToken       = New(CodeInvalidToken, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired       = New(CodeTokenExpired, "Token has expired", http.StatusUnauthorized)
	ErrCrossTenant        = New(CodeCrossTenant, "User does not belong to this site", http.StatusForbidden)

	// Tenancy
	ErrSiteNotFound    = New(CodeSiteNotFound, "Site not found for host", http.StatusNotFound)
	ErrMaintenanceMode = New(CodeMaintenanceMode, "Site is under maintenance", http.StatusForbidden)
	ErrSubdomainTaken  = New(CodeSubdomainTaken, "Subdomain is not available", http.StatusConflict)

	// Users
	ErrUserNotFound       = New(CodeUserNotFound, "User not found", http.StatusNotFound)
	ErrEmailAlreadyExists = New(CodeEmailAlreadyExists, "Email already registered", http.StatusBadRequest)
	ErrUsernameTaken      = New(CodeUsernameAlreadyExists, "Username already taken", http.StatusBadRequest)
	ErrUserNotVerified    = New(CodeUserNotVerified, "Email not verified", http.StatusForbidden)
	ErrUserSuspended      = New(CodeUserSuspended, "User account suspended", http.StatusForbidden)
	ErrWeakPassword       = New(CodeWeakPassword, "Password must be at least 8 characters", http.StatusBadRequest)
	ErrInvalidUserRole    = New(CodeInvalidUserRole, "Invalid user role", http.StatusBadRequest)

	// Learning
	ErrCourseNotFound      = New(CodeCourseNotFound, "Course not found", http.StatusNotFound)
	ErrLessonNotFound      = New(CodeLessonNotFound, "Lesson not found", http.StatusNotFound)
	ErrNotEnrolled         = New(CodeNotEnrolled, "Not enrolled in this course", http.StatusForbidden)
	ErrAlreadyEnrolled     = New(CodeAlreadyEnrolled, "Already enrolled in this course", http.StatusBadRequest)
	ErrCohortFull          = New(CodeCohortFull, "Cohort is full", http.StatusBadRequest)
	ErrCohortClosed        = New(CodeCohortFull, "Cohort registration is closed", http.StatusBadRequest)
	ErrInsufficientTokens  = New(CodeInsufficientTokens, "Insufficient token balance", http.StatusBadRequest)
	ErrAttemptLimitReached = New(CodeAttemptLimitReached, "Maximum quiz attempts reached", http.StatusBadRequest)
	ErrAlreadySubmitted    = New(CodeAlreadySubmitted, "Assignment already submitted", http.StatusConflict)
	ErrCategoryInUse       = New(CodeCategoryInUse, "Category is referenced by published courses", http.StatusBadRequest)

	// Validation
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
)

func ValidationError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

// NotFound builds an in-tenant 404. Entities belonging to another tenant
// produce the same response so existence is not leaked across sites.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

func Unavailable(err error) *AppError {
	return Wrap(err, CodeUnavailable, "Service temporarily unavailable", http.StatusServiceUnavailable)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func NewConflictError(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

package appErrors

// Error codes grouped by domain.
const (
	// Authentication and authorization
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	CodeCrossTenant        ErrorCode = "CROSS_TENANT"

	// Validation
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	CodeInvalidUserRole  ErrorCode = "INVALID_USER_ROLE"

	// Resources
	CodeSiteNotFound     ErrorCode = "SITE_NOT_FOUND"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	CodeCourseNotFound   ErrorCode = "COURSE_NOT_FOUND"
	CodeLessonNotFound   ErrorCode = "LESSON_NOT_FOUND"

	// Business rules
	CodeEmailAlreadyExists    ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeUsernameAlreadyExists ErrorCode = "USERNAME_ALREADY_EXISTS"
	CodeSubdomainTaken        ErrorCode = "SUBDOMAIN_TAKEN"
	CodeUserNotVerified       ErrorCode = "USER_NOT_VERIFIED"
	CodeUserSuspended         ErrorCode = "USER_SUSPENDED"
	CodeNotEnrolled           ErrorCode = "NOT_ENROLLED"
	CodeAlreadyEnrolled       ErrorCode = "ALREADY_ENROLLED"
	CodeCohortFull            ErrorCode = "COHORT_FULL"
	CodeInsufficientTokens    ErrorCode = "INSUFFICIENT_TOKENS"
	CodeAttemptLimitReached   ErrorCode = "ATTEMPT_LIMIT_REACHED"
	CodeAlreadySubmitted      ErrorCode = "ALREADY_SUBMITTED"
	CodeCategoryInUse         ErrorCode = "CATEGORY_IN_USE"
	CodeConflict              ErrorCode = "CONFLICT"
	CodeMaintenanceMode       ErrorCode = "MAINTENANCE_MODE"

	// System
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
)

package models

type UserRole string

const (
	UserRoleStudent    UserRole = "student"
	UserRoleInstructor UserRole = "instructor"
	UserRoleAdmin      UserRole = "admin"
)

type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

type LessonType string

const (
	LessonTypeVideo       LessonType = "video"
	LessonTypeText        LessonType = "text"
	LessonTypeAudio       LessonType = "audio"
	LessonTypeImage       LessonType = "image"
	LessonTypeQuiz        LessonType = "quiz"
	LessonTypeAssignment  LessonType = "assignment"
	LessonTypeLiveSession LessonType = "live_session"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusSuspended EnrollmentStatus = "suspended"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

type SubmissionStatus string

const (
	SubmissionStatusPending          SubmissionStatus = "pending"
	SubmissionStatusGraded           SubmissionStatus = "graded"
	SubmissionStatusRevisionRequired SubmissionStatus = "revision_required"
)

type TransactionType string

const (
	TransactionTypeEarned   TransactionType = "earned"
	TransactionTypeSpent    TransactionType = "spent"
	TransactionTypeRefunded TransactionType = "refunded"
)

type CertificateStatus string

const (
	CertificateStatusPending CertificateStatus = "pending"
	CertificateStatusIssued  CertificateStatus = "issued"
	CertificateStatusMinted  CertificateStatus = "minted"
	CertificateStatusRevoked CertificateStatus = "revoked"
)

// Token transaction reference types used as idempotency keys.
const (
	ReferenceLessonCompleted = "lesson_completed"
	ReferenceCourseCompleted = "course_completed"
	ReferenceQuizPassed      = "quiz_passed"
	ReferenceSignupBonus     = "signup_bonus"
	ReferenceAdminGrant      = "admin_grant"
	ReferenceAdminDeduct     = "admin_deduct"
	ReferenceTransfer        = "transfer"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleStudent, UserRoleInstructor, UserRoleAdmin:
		return true
	}
	return false
}

func (t LessonType) Valid() bool {
	switch t {
	case LessonTypeVideo, LessonTypeText, LessonTypeAudio, LessonTypeImage,
		LessonTypeQuiz, LessonTypeAssignment, LessonTypeLiveSession:
		return true
	}
	return false
}

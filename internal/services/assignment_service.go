package services

import (
	"context"
	"fmt"
	"time"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

// AssignmentService handles the submission lifecycle: one submission per
// (user, assignment), instructor grading, and the progress re-trigger a
// grade causes.
type AssignmentService struct {
	repos         *repositories.Registry
	progress      *ProgressService
	notifications *NotificationService
}

func NewAssignmentService(repos *repositories.Registry, progress *ProgressService, notifications *NotificationService) *AssignmentService {
	return &AssignmentService{repos: repos, progress: progress, notifications: notifications}
}

func (s *AssignmentService) Submit(ctx context.Context, site *models.Site, userID, assignmentID, content, fileURL string) (*models.AssignmentSubmission, error) {
	assignment, err := s.repos.Assignments.FindAssignment(ctx, site.ID, assignmentID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.NotFound("Assignment")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if !assignment.IsPublished {
		return nil, appErrors.NotFound("Assignment")
	}

	enrollment, err := s.repos.Enrollments.FindByUserAndCourse(ctx, site.ID, userID, assignment.CourseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrNotEnrolled
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if enrollment.Status != models.EnrollmentStatusActive && enrollment.Status != models.EnrollmentStatusCompleted {
		return nil, appErrors.ErrNotEnrolled
	}

	existing, err := s.repos.Assignments.FindSubmissionByUser(ctx, site.ID, userID, assignmentID)
	if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.InternalError(err)
	}
	if existing != nil && existing.Status != models.SubmissionStatusRevisionRequired {
		return nil, appErrors.ErrAlreadySubmitted
	}

	now := time.Now().UTC()
	if existing != nil {
		// Resubmission after a revision request replaces the content.
		existing.Content = content
		existing.FileURL = fileURL
		existing.Status = models.SubmissionStatusPending
		existing.SubmittedAt = now
		if err := s.repos.Assignments.UpdateSubmission(ctx, existing); err != nil {
			return nil, appErrors.InternalError(err)
		}
		return existing, nil
	}

	submission := &models.AssignmentSubmission{
		AssignmentID: assignmentID,
		UserID:       userID,
		Content:      content,
		FileURL:      fileURL,
		Status:       models.SubmissionStatusPending,
		SubmittedAt:  now,
	}
	submission.SiteID = site.ID
	if err := s.repos.Assignments.CreateSubmission(ctx, submission); err != nil {
		if appErrors.Is(err, repositories.ErrAlreadyExists) {
			return nil, appErrors.ErrAlreadySubmitted
		}
		return nil, appErrors.InternalError(err)
	}
	return submission, nil
}

// GradeInput is the instructor's verdict. RequireRevision puts the
// submission back into the student's hands instead of grading it.
type GradeInput struct {
	Grade           int
	Feedback        string
	RequireRevision bool
}

func (s *AssignmentService) Grade(ctx context.Context, site *models.Site, graderID, submissionID string, input GradeInput) (*models.AssignmentSubmission, error) {
	submission, err := s.repos.Assignments.FindSubmission(ctx, site.ID, submissionID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.NotFound("Submission")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	assignment, err := s.repos.Assignments.FindAssignment(ctx, site.ID, submission.AssignmentID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	now := time.Now().UTC()
	if input.RequireRevision {
		submission.Status = models.SubmissionStatusRevisionRequired
		submission.Feedback = input.Feedback
		submission.GradedBy = &graderID
		submission.GradedAt = &now
		if err := s.repos.Assignments.UpdateSubmission(ctx, submission); err != nil {
			return nil, appErrors.InternalError(err)
		}
		return submission, nil
	}

	if input.Grade < 0 || input.Grade > assignment.MaxGrade {
		return nil, appErrors.ValidationError(fmt.Sprintf("Grade must be between 0 and %d", assignment.MaxGrade))
	}

	grade := input.Grade
	submission.Status = models.SubmissionStatusGraded
	submission.Grade = &grade
	submission.Feedback = input.Feedback
	submission.GradedBy = &graderID
	submission.GradedAt = &now
	if err := s.repos.Assignments.UpdateSubmission(ctx, submission); err != nil {
		return nil, appErrors.InternalError(err)
	}

	s.notifications.NotifyInApp(ctx, site, submission.UserID, NotificationAssignmentGraded,
		"Assignment graded",
		fmt.Sprintf("Your submission for %q was graded: %d/%d", assignment.Title, grade, assignment.MaxGrade),
		map[string]interface{}{"assignment_id": assignment.ID, "grade": grade},
	)

	// Grading may complete the lesson the assignment gates.
	if assignment.LessonID != nil {
		if err := s.progress.RefreshLesson(ctx, site, submission.UserID, *assignment.LessonID); err != nil {
			logger.Warn("Progress refresh after grading failed",
				"lesson_id", *assignment.LessonID,
				"error", err,
			)
		}
	}

	return submission, nil
}

func (s *AssignmentService) GetSubmission(ctx context.Context, site *models.Site, userID, assignmentID string) (*models.AssignmentSubmission, error) {
	submission, err := s.repos.Assignments.FindSubmissionByUser(ctx, site.ID, userID, assignmentID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.NotFound("Submission")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return submission, nil
}

func (s *AssignmentService) ListSubmissions(ctx context.Context, site *models.Site, assignmentID string, page, size int) ([]models.AssignmentSubmission, int64, error) {
	if _, err := s.repos.Assignments.FindAssignment(ctx, site.ID, assignmentID); err != nil {
		return nil, 0, appErrors.NotFound("Assignment")
	}
	items, total, err := s.repos.Assignments.FindSubmissionsByAssignment(ctx, site.ID, assignmentID, page, size)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	return items, total, nil
}

// CreateAssignmentInput is the instructor-facing definition.
type CreateAssignmentInput struct {
	CourseID    string
	LessonID    *string
	Title       string
	Description string
	DueAt       *time.Time
	MaxGrade    int
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, site *models.Site, input CreateAssignmentInput) (*models.Assignment, error) {
	if _, err := s.repos.Courses.FindCourse(ctx, site.ID, input.CourseID); err != nil {
		return nil, appErrors.ErrCourseNotFound
	}
	if input.LessonID != nil {
		lesson, err := s.repos.Courses.FindLesson(ctx, site.ID, *input.LessonID)
		if err != nil {
			return nil, appErrors.ErrLessonNotFound
		}
		if lesson.CourseID != input.CourseID {
			return nil, appErrors.ValidationError("Lesson belongs to a different course")
		}
	}

	maxGrade := input.MaxGrade
	if maxGrade <= 0 {
		maxGrade = 100
	}
	assignment := &models.Assignment{
		CourseID:    input.CourseID,
		LessonID:    input.LessonID,
		Title:       input.Title,
		Description: input.Description,
		DueAt:       input.DueAt,
		MaxGrade:    maxGrade,
	}
	assignment.SiteID = site.ID
	if err := s.repos.Assignments.CreateAssignment(ctx, assignment); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return assignment, nil
}

func (s *AssignmentService) PublishAssignment(ctx context.Context, site *models.Site, assignmentID string, published bool) (*models.Assignment, error) {
	assignment, err := s.repos.Assignments.FindAssignment(ctx, site.ID, assignmentID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.NotFound("Assignment")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	assignment.IsPublished = published
	if err := s.repos.Assignments.UpdateAssignment(ctx, assignment); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return assignment, nil
}

package services

import (
	"context"
	"time"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

// EnrollmentService joins users to courses. Cohort capacity checks run
// under the cohort row lock so two concurrent enrollments cannot both
// take the last seat.
type EnrollmentService struct {
	repos *repositories.Registry
}

func NewEnrollmentService(repos *repositories.Registry) *EnrollmentService {
	return &EnrollmentService{repos: repos}
}

func (s *EnrollmentService) Enroll(ctx context.Context, site *models.Site, userID, courseID string, cohortID *string) (*models.Enrollment, error) {
	course, err := s.repos.Courses.FindCourse(ctx, site.ID, courseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrCourseNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if !course.IsPublished {
		return nil, appErrors.ErrCourseNotFound
	}

	var enrollment *models.Enrollment
	err = s.repos.Atomic(func(r *repositories.Registry) error {
		existing, err := r.Enrollments.FindByUserAndCourse(ctx, site.ID, userID, courseID)
		if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
			return appErrors.InternalError(err)
		}
		if existing != nil {
			return appErrors.ErrAlreadyEnrolled
		}

		if cohortID != nil {
			cohort, err := r.Courses.FindCohortForUpdate(ctx, site.ID, *cohortID)
			if appErrors.Is(err, repositories.ErrNotFound) {
				return appErrors.NotFound("Cohort")
			}
			if err != nil {
				return appErrors.InternalError(err)
			}
			if cohort.CourseID != courseID {
				return appErrors.ValidationError("Cohort belongs to a different course")
			}
			if !cohort.RegistrationOpen {
				return appErrors.ErrCohortClosed
			}
			if cohort.MaxStudents > 0 {
				active, err := r.Enrollments.CountActiveByCohort(ctx, site.ID, *cohortID)
				if err != nil {
					return appErrors.InternalError(err)
				}
				if active >= int64(cohort.MaxStudents) {
					return appErrors.ErrCohortFull
				}
			}
		}

		enrollment = &models.Enrollment{
			UserID:     userID,
			CourseID:   courseID,
			CohortID:   cohortID,
			Status:     models.EnrollmentStatusActive,
			EnrolledAt: time.Now().UTC(),
		}
		enrollment.SiteID = site.ID
		if err := r.Enrollments.Create(ctx, enrollment); err != nil {
			if appErrors.Is(err, repositories.ErrAlreadyExists) {
				return appErrors.ErrAlreadyEnrolled
			}
			return appErrors.InternalError(err)
		}

		s.refreshCounters(ctx, r, site.ID, courseID, cohortID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) Drop(ctx context.Context, site *models.Site, userID, courseID string) error {
	return s.repos.Atomic(func(r *repositories.Registry) error {
		enrollment, err := r.Enrollments.FindForUpdate(ctx, site.ID, userID, courseID)
		if appErrors.Is(err, repositories.ErrNotFound) {
			return appErrors.ErrNotEnrolled
		}
		if err != nil {
			return appErrors.InternalError(err)
		}

		enrollment.Status = models.EnrollmentStatusDropped
		if err := r.Enrollments.Update(ctx, enrollment); err != nil {
			return appErrors.InternalError(err)
		}

		s.refreshCounters(ctx, r, site.ID, courseID, enrollment.CohortID)
		return nil
	})
}

func (s *EnrollmentService) ListByUser(ctx context.Context, site *models.Site, userID string, page, size int) ([]models.Enrollment, int64, error) {
	items, total, err := s.repos.Enrollments.FindByUser(ctx, site.ID, userID, page, size)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	return items, total, nil
}

func (s *EnrollmentService) Get(ctx context.Context, site *models.Site, userID, courseID string) (*models.Enrollment, error) {
	enrollment, err := s.repos.Enrollments.FindByUserAndCourse(ctx, site.ID, userID, courseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrNotEnrolled
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return enrollment, nil
}

// refreshCounters recomputes the denormalized student counts from the
// enrollment table. The counts are hints; failures only log.
func (s *EnrollmentService) refreshCounters(ctx context.Context, r *repositories.Registry, siteID, courseID string, cohortID *string) {
	if count, err := r.Enrollments.CountActiveByCourse(ctx, siteID, courseID); err == nil {
		if err := r.Courses.SetCourseStudents(ctx, siteID, courseID, int(count)); err != nil {
			logger.Warn("Failed to update course student count", "course_id", courseID, "error", err)
		}
	}
	if cohortID != nil {
		if count, err := r.Enrollments.CountActiveByCohort(ctx, siteID, *cohortID); err == nil {
			if err := r.Courses.SetCohortStudents(ctx, siteID, *cohortID, int(count)); err != nil {
				logger.Warn("Failed to update cohort student count", "cohort_id", *cohortID, "error", err)
			}
		}
	}
}

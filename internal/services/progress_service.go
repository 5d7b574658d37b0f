package services

import (
	"context"
	"fmt"
	"time"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// Completion requires at least this much of the video watched.
const videoCompletionThreshold = 85

// Stored percentage is capped here while a required assessment is still
// open, signalling "waiting on assessment".
const pendingAssessmentCap = 95

// ProgressService is the per-lesson state machine and its course roll-up.
// Lesson updates are last-write-wins: state is derived from the incoming
// video percentage plus the current assessment snapshot, never from a
// delta, so out-of-order arrival is harmless. The roll-up is a
// read-modify-write on the enrollment and serializes on its row lock.
type ProgressService struct {
	repos         *repositories.Registry
	tokens        *TokenService
	certificates  *CertificateService
	notifications *NotificationService
	cipher        *vault.Cipher
}

func NewProgressService(
	repos *repositories.Registry,
	tokens *TokenService,
	certificates *CertificateService,
	notifications *NotificationService,
	cipher *vault.Cipher,
) *ProgressService {
	return &ProgressService{
		repos:         repos,
		tokens:        tokens,
		certificates:  certificates,
		notifications: notifications,
		cipher:        cipher,
	}
}

// LessonProgressUpdate is one incoming lesson update. ProgressPercentage
// is the raw video watch percentage; TimeSpent is a delta in seconds.
type LessonProgressUpdate struct {
	ProgressPercentage int
	TimeSpent          *int
	LastPosition       *int
	Notes              *string
}

// ProgressResult pairs the stored lesson row with the recomputed course
// percentage.
type ProgressResult struct {
	Progress       *models.LessonProgress `json:"progress"`
	CourseProgress int                    `json:"course_progress_percentage"`
}

// AssessmentStatus is the snapshot of a lesson's required assessments.
type AssessmentStatus struct {
	HasQuiz            bool
	QuizComplete       bool
	HasAssignment      bool
	AssignmentComplete bool
	HasStarted         bool
}

func (a AssessmentStatus) OverallComplete() bool {
	return (!a.HasQuiz || a.QuizComplete) && (!a.HasAssignment || a.AssignmentComplete)
}

// UpdateLessonProgress runs the full engine for one lesson update:
// enrollment check, assessment snapshot, state derivation, persistence,
// completion side effects, then the course roll-up.
func (s *ProgressService) UpdateLessonProgress(ctx context.Context, site *models.Site, userID, lessonID string, upd LessonProgressUpdate) (*ProgressResult, error) {
	lesson, err := s.repos.Courses.FindLesson(ctx, site.ID, lessonID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrLessonNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	enrollment, err := s.repos.Enrollments.FindByUserAndCourse(ctx, site.ID, userID, lesson.CourseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrNotEnrolled
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	// Completed enrollments may still progress on lessons added later.
	if enrollment.Status != models.EnrollmentStatusActive && enrollment.Status != models.EnrollmentStatusCompleted {
		return nil, appErrors.ErrNotEnrolled
	}

	assess, err := s.assessmentStatus(ctx, site.ID, userID, lessonID)
	if err != nil {
		return nil, err
	}

	video := clampPercent(upd.ProgressPercentage)
	newStatus, newPercent := DeriveLessonState(video, assess.OverallComplete(), assess.HasStarted)

	var row *models.LessonProgress
	freshCompletion := false
	err = s.repos.Atomic(func(r *repositories.Registry) error {
		existing, err := r.Progress.Find(ctx, site.ID, userID, lessonID)
		if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
			return appErrors.InternalError(err)
		}

		now := time.Now().UTC()
		if existing == nil {
			existing = &models.LessonProgress{
				UserID:   userID,
				LessonID: lessonID,
				CourseID: lesson.CourseID,
				Status:   models.ProgressNotStarted,
			}
			existing.SiteID = site.ID
		}

		prevStatus := existing.Status
		existing.Status = newStatus
		existing.ProgressPercentage = newPercent
		if upd.TimeSpent != nil && *upd.TimeSpent > 0 {
			existing.TimeSpent += *upd.TimeSpent
		}
		if upd.LastPosition != nil {
			existing.LastPosition = *upd.LastPosition
		}
		if upd.Notes != nil {
			existing.Notes = *upd.Notes
		}
		if existing.StartedAt == nil && newStatus != models.ProgressNotStarted {
			existing.StartedAt = &now
		}
		if existing.CompletedAt == nil && newStatus == models.ProgressCompleted {
			existing.CompletedAt = &now
		}
		freshCompletion = prevStatus != models.ProgressCompleted && newStatus == models.ProgressCompleted

		if err := r.Progress.Upsert(ctx, existing); err != nil {
			return appErrors.InternalError(err)
		}
		row = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if freshCompletion {
		s.onLessonCompleted(ctx, site, userID, lesson)
	}

	rollup, err := s.rollUpCourse(ctx, site, userID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if rollup.CompletedNow {
		s.onCourseCompleted(ctx, site, userID, lesson.CourseID)
	}

	return &ProgressResult{Progress: row, CourseProgress: rollup.Percent}, nil
}

// RefreshLesson re-runs the engine for a lesson after its assessment
// state changed (quiz passed, assignment graded), reusing the stored
// video percentage.
func (s *ProgressService) RefreshLesson(ctx context.Context, site *models.Site, userID, lessonID string) error {
	existing, err := s.repos.Progress.Find(ctx, site.ID, userID, lessonID)
	video := 0
	if err == nil && existing != nil {
		video = existing.ProgressPercentage
	} else if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
		return appErrors.InternalError(err)
	}
	_, err = s.UpdateLessonProgress(ctx, site, userID, lessonID, LessonProgressUpdate{ProgressPercentage: video})
	return err
}

// GetLessonProgress returns the stored row, or a synthetic not_started one.
func (s *ProgressService) GetLessonProgress(ctx context.Context, site *models.Site, userID, lessonID string) (*models.LessonProgress, error) {
	row, err := s.repos.Progress.Find(ctx, site.ID, userID, lessonID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		lesson, lerr := s.repos.Courses.FindLesson(ctx, site.ID, lessonID)
		if lerr != nil {
			return nil, appErrors.ErrLessonNotFound
		}
		synthetic := &models.LessonProgress{
			UserID:   userID,
			LessonID: lessonID,
			CourseID: lesson.CourseID,
			Status:   models.ProgressNotStarted,
		}
		synthetic.SiteID = site.ID
		return synthetic, nil
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return row, nil
}

func (s *ProgressService) CourseProgress(ctx context.Context, site *models.Site, userID, courseID string) ([]models.LessonProgress, error) {
	rows, err := s.repos.Progress.FindByUserAndCourse(ctx, site.ID, userID, courseID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return rows, nil
}

// RecalculateCourse re-runs the roll-up for every enrollment of the
// course. Called when the published lesson set changes: an added lesson
// may revert completed enrollments to active, a removed one may complete
// them.
func (s *ProgressService) RecalculateCourse(ctx context.Context, site *models.Site, courseID string) error {
	enrollments, err := s.repos.Enrollments.FindByCourse(ctx, site.ID, courseID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	for i := range enrollments {
		e := &enrollments[i]
		if e.Status == models.EnrollmentStatusDropped {
			continue
		}
		rollup, err := s.rollUpCourse(ctx, site, e.UserID, courseID)
		if err != nil {
			logger.Warn("Course recalculation failed for enrollment",
				"enrollment_id", e.ID,
				"error", err,
			)
			continue
		}
		if rollup.CompletedNow {
			s.onCourseCompleted(ctx, site, e.UserID, courseID)
		}
	}
	return nil
}

// assessmentStatus computes the snapshot the derivation table consumes.
func (s *ProgressService) assessmentStatus(ctx context.Context, siteID, userID, lessonID string) (AssessmentStatus, error) {
	var status AssessmentStatus

	quiz, err := s.repos.Quizzes.FindPublishedByLesson(ctx, siteID, lessonID)
	if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
		return status, appErrors.InternalError(err)
	}
	if quiz != nil {
		status.HasQuiz = true
		passed, err := s.repos.Quizzes.HasPassingAttempt(ctx, siteID, userID, quiz.ID, quiz.PassingScore)
		if err != nil {
			return status, appErrors.InternalError(err)
		}
		status.QuizComplete = passed
		attempted, err := s.repos.Quizzes.HasAnyAttempt(ctx, siteID, userID, quiz.ID)
		if err != nil {
			return status, appErrors.InternalError(err)
		}
		status.HasStarted = status.HasStarted || attempted
	}

	assignment, err := s.repos.Assignments.FindPublishedByLesson(ctx, siteID, lessonID)
	if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
		return status, appErrors.InternalError(err)
	}
	if assignment != nil {
		status.HasAssignment = true
		sub, err := s.repos.Assignments.FindSubmissionByUser(ctx, siteID, userID, assignment.ID)
		if err != nil && !appErrors.Is(err, repositories.ErrNotFound) {
			return status, appErrors.InternalError(err)
		}
		if sub != nil {
			status.HasStarted = true
			status.AssignmentComplete = sub.Graded()
		}
	}

	return status, nil
}

// DeriveLessonState maps a video percentage and assessment snapshot onto
// lesson status and the stored percentage. Completion needs both the
// video threshold and every required assessment.
func DeriveLessonState(video int, overallComplete, hasStarted bool) (models.ProgressStatus, int) {
	switch {
	case video >= videoCompletionThreshold && overallComplete:
		return models.ProgressCompleted, 100
	case video >= videoCompletionThreshold:
		if video > pendingAssessmentCap {
			return models.ProgressInProgress, pendingAssessmentCap
		}
		return models.ProgressInProgress, video
	case overallComplete && video < videoCompletionThreshold:
		return models.ProgressInProgress, video
	case video > 0 || hasStarted:
		return models.ProgressInProgress, video
	default:
		return models.ProgressNotStarted, 0
	}
}

type rollupResult struct {
	Percent      int
	CompletedNow bool
}

// rollUpCourse recomputes the enrollment percentage from published
// lessons under the enrollment row lock. Crossing to 100 completes the
// enrollment; falling below 100 reverts a completed one to active.
func (s *ProgressService) rollUpCourse(ctx context.Context, site *models.Site, userID, courseID string) (rollupResult, error) {
	var result rollupResult
	err := s.repos.Atomic(func(r *repositories.Registry) error {
		enrollment, err := r.Enrollments.FindForUpdate(ctx, site.ID, userID, courseID)
		if appErrors.Is(err, repositories.ErrNotFound) {
			return appErrors.ErrNotEnrolled
		}
		if err != nil {
			return appErrors.InternalError(err)
		}

		lessons, err := r.Courses.PublishedLessons(ctx, site.ID, courseID)
		if err != nil {
			return appErrors.InternalError(err)
		}
		rows, err := r.Progress.FindByUserAndCourse(ctx, site.ID, userID, courseID)
		if err != nil {
			return appErrors.InternalError(err)
		}
		byLesson := make(map[string]*models.LessonProgress, len(rows))
		for i := range rows {
			byLesson[rows[i].LessonID] = &rows[i]
		}

		percent := CourseRollup(lessons, byLesson)
		prev := enrollment.ProgressPercentage
		now := time.Now().UTC()

		enrollment.ProgressPercentage = percent
		enrollment.LastAccessedAt = &now
		switch {
		case percent == 100 && enrollment.Status == models.EnrollmentStatusActive:
			enrollment.Status = models.EnrollmentStatusCompleted
			enrollment.CompletedAt = &now
		case percent < 100 && enrollment.Status == models.EnrollmentStatusCompleted:
			enrollment.Status = models.EnrollmentStatusActive
			enrollment.CompletedAt = nil
		}

		if err := r.Enrollments.Update(ctx, enrollment); err != nil {
			return appErrors.InternalError(err)
		}

		result.Percent = percent
		result.CompletedNow = percent == 100 && prev < 100
		return nil
	})
	return result, err
}

// CourseRollup is floor(mean(effective lesson percents)) over published
// lessons: 100 for completed rows, the stored percentage otherwise, 0 for
// lessons without a row. Zero published lessons roll up to 0.
func CourseRollup(lessons []models.Lesson, byLesson map[string]*models.LessonProgress) int {
	if len(lessons) == 0 {
		return 0
	}
	sum := 0
	for i := range lessons {
		row, ok := byLesson[lessons[i].ID]
		if !ok {
			continue
		}
		if row.Status == models.ProgressCompleted {
			sum += 100
		} else {
			sum += clampPercent(row.ProgressPercentage)
		}
	}
	return sum / len(lessons)
}

func (s *ProgressService) onLessonCompleted(ctx context.Context, site *models.Site, userID string, lesson *models.Lesson) {
	settings := tenant.NewSettings(site, s.cipher)
	if reward := settings.LessonTokenReward(); reward > 0 {
		_, err := s.tokens.Award(ctx, site, AwardParams{
			UserID:        userID,
			Amount:        reward,
			Description:   fmt.Sprintf("Completed lesson %q", lesson.Title),
			ReferenceType: models.ReferenceLessonCompleted,
			ReferenceID:   lesson.ID,
		})
		if err != nil {
			logger.Warn("Lesson completion award failed",
				"user_id", userID,
				"lesson_id", lesson.ID,
				"error", err,
			)
		}
	}

	s.notifications.NotifyInApp(ctx, site, userID, NotificationLessonCompleted,
		"Lesson completed",
		fmt.Sprintf("You completed %q", lesson.Title),
		map[string]interface{}{"lesson_id": lesson.ID, "course_id": lesson.CourseID},
	)
}

func (s *ProgressService) onCourseCompleted(ctx context.Context, site *models.Site, userID, courseID string) {
	course, err := s.repos.Courses.FindCourse(ctx, site.ID, courseID)
	if err != nil {
		logger.Warn("Course lookup failed after completion", "course_id", courseID, "error", err)
		return
	}

	settings := tenant.NewSettings(site, s.cipher)
	reward := course.TokenReward
	if reward <= 0 {
		reward = settings.DefaultTokenReward()
	}
	if reward > 0 {
		_, err := s.tokens.Award(ctx, site, AwardParams{
			UserID:        userID,
			Amount:        reward,
			Description:   fmt.Sprintf("Completed course %q", course.Title),
			ReferenceType: models.ReferenceCourseCompleted,
			ReferenceID:   course.ID,
		})
		if err != nil {
			logger.Warn("Course completion award failed",
				"user_id", userID,
				"course_id", courseID,
				"error", err,
			)
		}
	}

	s.notifications.NotifyInApp(ctx, site, userID, NotificationCourseCompleted,
		"Course completed",
		fmt.Sprintf("Congratulations, you completed %q", course.Title),
		map[string]interface{}{"course_id": courseID},
	)

	if course.CertificateEnabled {
		if _, err := s.certificates.Issue(ctx, site, userID, courseID); err != nil {
			logger.Warn("Certificate issuance failed",
				"user_id", userID,
				"course_id", courseID,
				"error", err,
			)
		}
	}

	if user, err := s.repos.Users.FindByID(ctx, userID); err == nil {
		s.notifications.SendEmail(ctx, site, user,
			"Course completed", "course_completed",
			map[string]interface{}{
				"Name":        user.FullName(),
				"CourseTitle": course.Title,
				"SiteName":    site.Name,
			},
		)
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

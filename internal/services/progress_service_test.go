package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

func TestDeriveLessonState(t *testing.T) {
	tests := []struct {
		name            string
		video           int
		overallComplete bool
		hasStarted      bool
		wantStatus      models.ProgressStatus
		wantPercent     int
	}{
		{"untouched", 0, false, false, models.ProgressNotStarted, 0},
		{"opened without watching", 0, false, true, models.ProgressInProgress, 0},
		{"partial video", 40, false, false, models.ProgressInProgress, 40},
		{"just below threshold", 84, true, false, models.ProgressInProgress, 84},
		{"threshold with assessments done", 85, true, false, models.ProgressCompleted, 100},
		{"threshold pending assessment", 85, false, false, models.ProgressInProgress, 85},
		{"full video pending assessment capped", 100, false, false, models.ProgressInProgress, 95},
		{"cap boundary pending assessment", 95, false, false, models.ProgressInProgress, 95},
		{"full video assessments done", 100, true, false, models.ProgressCompleted, 100},
		{"assessments done video behind", 30, true, false, models.ProgressInProgress, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, percent := DeriveLessonState(tt.video, tt.overallComplete, tt.hasStarted)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantPercent, percent)
		})
	}
}

func lessonFixture(id string) models.Lesson {
	l := models.Lesson{Title: id, IsPublished: true}
	l.ID = id
	return l
}

func progressRow(lessonID string, status models.ProgressStatus, percent int) *models.LessonProgress {
	return &models.LessonProgress{
		LessonID:           lessonID,
		Status:             status,
		ProgressPercentage: percent,
	}
}

func TestCourseRollup(t *testing.T) {
	lessons := []models.Lesson{lessonFixture("l1"), lessonFixture("l2"), lessonFixture("l3")}

	t.Run("no progress rows", func(t *testing.T) {
		assert.Equal(t, 0, CourseRollup(lessons, nil))
	})

	t.Run("no published lessons", func(t *testing.T) {
		assert.Equal(t, 0, CourseRollup(nil, nil))
	})

	t.Run("floor of the mean", func(t *testing.T) {
		byLesson := map[string]*models.LessonProgress{
			"l1": progressRow("l1", models.ProgressCompleted, 100),
			"l2": progressRow("l2", models.ProgressInProgress, 50),
		}
		// (100 + 50 + 0) / 3 = 50
		assert.Equal(t, 50, CourseRollup(lessons, byLesson))
	})

	t.Run("completed rows count as 100 regardless of stored percent", func(t *testing.T) {
		byLesson := map[string]*models.LessonProgress{
			"l1": progressRow("l1", models.ProgressCompleted, 85),
			"l2": progressRow("l2", models.ProgressCompleted, 85),
			"l3": progressRow("l3", models.ProgressCompleted, 85),
		}
		assert.Equal(t, 100, CourseRollup(lessons, byLesson))
	})

	t.Run("out of range percents clamped", func(t *testing.T) {
		byLesson := map[string]*models.LessonProgress{
			"l1": progressRow("l1", models.ProgressInProgress, 150),
			"l2": progressRow("l2", models.ProgressInProgress, -20),
			"l3": progressRow("l3", models.ProgressInProgress, 50),
		}
		// (100 + 0 + 50) / 3 = 50
		assert.Equal(t, 50, CourseRollup(lessons, byLesson))
	})

	t.Run("stray rows for unpublished lessons ignored", func(t *testing.T) {
		byLesson := map[string]*models.LessonProgress{
			"l1":    progressRow("l1", models.ProgressCompleted, 100),
			"ghost": progressRow("ghost", models.ProgressCompleted, 100),
		}
		// (100 + 0 + 0) / 3 = 33
		assert.Equal(t, 33, CourseRollup(lessons, byLesson))
	})
}

// Fakes for the full engine flow. Each embeds its interface and
// overrides only what UpdateLessonProgress and the roll-up touch.

type fakeCourseRepo struct {
	repositories.CourseRepository
	course  *models.Course
	lessons []models.Lesson
}

func (f *fakeCourseRepo) FindCourse(_ context.Context, _, id string) (*models.Course, error) {
	if f.course != nil && f.course.ID == id {
		return f.course, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCourseRepo) FindLesson(_ context.Context, _, id string) (*models.Lesson, error) {
	for i := range f.lessons {
		if f.lessons[i].ID == id {
			return &f.lessons[i], nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCourseRepo) PublishedLessons(_ context.Context, _, _ string) ([]models.Lesson, error) {
	published := make([]models.Lesson, 0, len(f.lessons))
	for _, l := range f.lessons {
		if l.IsPublished {
			published = append(published, l)
		}
	}
	return published, nil
}

type fakeEnrollmentRepo struct {
	repositories.EnrollmentRepository
	enrollment *models.Enrollment
}

func (f *fakeEnrollmentRepo) FindByUserAndCourse(_ context.Context, _, _, _ string) (*models.Enrollment, error) {
	return f.enrollment, nil
}

func (f *fakeEnrollmentRepo) FindForUpdate(_ context.Context, _, _, _ string) (*models.Enrollment, error) {
	return f.enrollment, nil
}

func (f *fakeEnrollmentRepo) Update(_ context.Context, enrollment *models.Enrollment) error {
	f.enrollment = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) FindByCourse(_ context.Context, _, _ string) ([]models.Enrollment, error) {
	return []models.Enrollment{*f.enrollment}, nil
}

type fakeProgressRepo struct {
	repositories.ProgressRepository
	rows map[string]*models.LessonProgress
}

func (f *fakeProgressRepo) Find(_ context.Context, _, _, lessonID string) (*models.LessonProgress, error) {
	row, ok := f.rows[lessonID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeProgressRepo) Upsert(_ context.Context, progress *models.LessonProgress) error {
	copied := *progress
	f.rows[progress.LessonID] = &copied
	return nil
}

func (f *fakeProgressRepo) FindByUserAndCourse(_ context.Context, _, _, _ string) ([]models.LessonProgress, error) {
	out := make([]models.LessonProgress, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, nil
}

type fakeQuizRepo struct {
	repositories.QuizRepository
}

func (f *fakeQuizRepo) FindPublishedByLesson(_ context.Context, _, _ string) (*models.Quiz, error) {
	return nil, repositories.ErrNotFound
}

type fakeAssignmentRepo struct {
	repositories.AssignmentRepository
}

func (f *fakeAssignmentRepo) FindPublishedByLesson(_ context.Context, _, _ string) (*models.Assignment, error) {
	return nil, repositories.ErrNotFound
}

type fakeNotificationRepo struct {
	repositories.NotificationRepository
	created []*models.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) FindSettings(_ context.Context, _, _ string) (*models.NotificationSettings, error) {
	return nil, repositories.ErrNotFound
}

type fakeUserLookupRepo struct {
	repositories.UserRepository
}

func (f *fakeUserLookupRepo) FindByID(_ context.Context, _ string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

type progressFixture struct {
	svc         *ProgressService
	site        *models.Site
	courses     *fakeCourseRepo
	enrollments *fakeEnrollmentRepo
	tokens      *fakeTokenRepo
}

func newProgressFixture() *progressFixture {
	course := &models.Course{Title: "Go Basics", IsPublished: true}
	course.ID = "course-1"
	course.SiteID = "site-1"

	enrollment := &models.Enrollment{
		UserID:   "user-1",
		CourseID: course.ID,
		Status:   models.EnrollmentStatusActive,
	}
	enrollment.SiteID = "site-1"

	courses := &fakeCourseRepo{course: course}
	enrollments := &fakeEnrollmentRepo{enrollment: enrollment}
	tokens := newFakeTokenRepo()

	repos := &repositories.Registry{
		Users:         &fakeUserLookupRepo{},
		Courses:       courses,
		Enrollments:   enrollments,
		Progress:      &fakeProgressRepo{rows: make(map[string]*models.LessonProgress)},
		Quizzes:       &fakeQuizRepo{},
		Assignments:   &fakeAssignmentRepo{},
		Tokens:        tokens,
		Notifications: &fakeNotificationRepo{},
	}

	site := &models.Site{Subdomain: "maria", Name: "Maria Academy", IsActive: true}
	site.ID = "site-1"

	tokenSvc := NewTokenService(repos, nil)
	notifSvc := NewNotificationService(repos, nil)
	fx := &progressFixture{
		svc:         NewProgressService(repos, tokenSvc, nil, notifSvc, nil),
		site:        site,
		courses:     courses,
		enrollments: enrollments,
		tokens:      tokens,
	}
	fx.addLesson("l1")
	fx.addLesson("l2")
	return fx
}

func (fx *progressFixture) addLesson(id string) {
	lesson := lessonFixture(id)
	lesson.CourseID = fx.courses.course.ID
	lesson.SiteID = fx.site.ID
	fx.courses.lessons = append(fx.courses.lessons, lesson)
}

func (fx *progressFixture) courseAwards() int {
	count := 0
	for _, tx := range fx.tokens.txs {
		if tx.ReferenceType == models.ReferenceCourseCompleted {
			count++
		}
	}
	return count
}

func TestUpdateLessonProgressUnknownLesson(t *testing.T) {
	fx := newProgressFixture()
	_, err := fx.svc.UpdateLessonProgress(context.Background(), fx.site, "user-1", "ghost", LessonProgressUpdate{ProgressPercentage: 10})
	assert.ErrorIs(t, err, appErrors.ErrLessonNotFound)
}

func TestCompletionRevertsWhenLessonAddedAndAwardsOnce(t *testing.T) {
	ctx := context.Background()
	fx := newProgressFixture()

	// Complete both published lessons.
	result, err := fx.svc.UpdateLessonProgress(ctx, fx.site, "user-1", "l1", LessonProgressUpdate{ProgressPercentage: 100})
	require.NoError(t, err)
	assert.Equal(t, 50, result.CourseProgress)
	assert.Equal(t, models.EnrollmentStatusActive, fx.enrollments.enrollment.Status)

	result, err = fx.svc.UpdateLessonProgress(ctx, fx.site, "user-1", "l2", LessonProgressUpdate{ProgressPercentage: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, result.CourseProgress)
	assert.Equal(t, models.EnrollmentStatusCompleted, fx.enrollments.enrollment.Status)
	require.NotNil(t, fx.enrollments.enrollment.CompletedAt)
	assert.Equal(t, 1, fx.courseAwards())

	// Publishing a third lesson drops the roll-up below 100 and reverts
	// the enrollment to active with the completion timestamp cleared.
	fx.addLesson("l3")
	require.NoError(t, fx.svc.RecalculateCourse(ctx, fx.site, "course-1"))
	assert.Equal(t, models.EnrollmentStatusActive, fx.enrollments.enrollment.Status)
	assert.Nil(t, fx.enrollments.enrollment.CompletedAt)
	assert.Equal(t, 66, fx.enrollments.enrollment.ProgressPercentage)

	// Re-completing the course flips it back but must not re-award: the
	// ledger reference (user, course_completed, course) already exists.
	result, err = fx.svc.UpdateLessonProgress(ctx, fx.site, "user-1", "l3", LessonProgressUpdate{ProgressPercentage: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, result.CourseProgress)
	assert.Equal(t, models.EnrollmentStatusCompleted, fx.enrollments.enrollment.Status)
	require.NotNil(t, fx.enrollments.enrollment.CompletedAt)
	assert.Equal(t, 1, fx.courseAwards())
}

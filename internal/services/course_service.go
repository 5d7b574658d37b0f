package services

import (
	"context"
	"time"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

// CourseService is the catalog's admin surface: categories, courses,
// sections, lessons and cohorts. Publishing a course or lesson changes
// the published lesson set, so those paths re-run the progress roll-up
// for every enrollment.
type CourseService struct {
	repos    *repositories.Registry
	progress *ProgressService
}

func NewCourseService(repos *repositories.Registry, progress *ProgressService) *CourseService {
	return &CourseService{repos: repos, progress: progress}
}

// Categories

func (s *CourseService) CreateCategory(ctx context.Context, site *models.Site, name, slug, description string) (*models.Category, error) {
	category := &models.Category{Name: name, Slug: slug, Description: description}
	category.SiteID = site.ID
	if err := s.repos.Courses.CreateCategory(ctx, category); err != nil {
		if appErrors.Is(err, repositories.ErrAlreadyExists) {
			return nil, appErrors.NewConflictError("Category slug already exists")
		}
		return nil, appErrors.InternalError(err)
	}
	return category, nil
}

func (s *CourseService) ListCategories(ctx context.Context, site *models.Site) ([]models.Category, error) {
	categories, err := s.repos.Courses.FindCategories(ctx, site.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return categories, nil
}

// DeleteCategory refuses while any published course references the
// category.
func (s *CourseService) DeleteCategory(ctx context.Context, site *models.Site, categoryID string) error {
	if _, err := s.repos.Courses.FindCategory(ctx, site.ID, categoryID); err != nil {
		return appErrors.NotFound("Category")
	}
	inUse, err := s.repos.Courses.PublishedCoursesInCategory(ctx, site.ID, categoryID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if inUse > 0 {
		return appErrors.ErrCategoryInUse
	}
	if err := s.repos.Courses.DeleteCategory(ctx, site.ID, categoryID); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

// Courses

type CourseInput struct {
	Title              string
	Description        string
	CategoryID         *string
	InstructorID       string
	CoverURL           string
	TokenReward        int
	CertificateEnabled bool
}

func (s *CourseService) CreateCourse(ctx context.Context, site *models.Site, input CourseInput) (*models.Course, error) {
	if input.CategoryID != nil {
		if _, err := s.repos.Courses.FindCategory(ctx, site.ID, *input.CategoryID); err != nil {
			return nil, appErrors.NotFound("Category")
		}
	}
	course := &models.Course{
		Title:              input.Title,
		Description:        input.Description,
		CategoryID:         input.CategoryID,
		InstructorID:       input.InstructorID,
		CoverURL:           input.CoverURL,
		TokenReward:        input.TokenReward,
		CertificateEnabled: input.CertificateEnabled,
	}
	course.SiteID = site.ID
	if err := s.repos.Courses.CreateCourse(ctx, course); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, site *models.Site, courseID string, input CourseInput) (*models.Course, error) {
	course, err := s.repos.Courses.FindCourse(ctx, site.ID, courseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrCourseNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	if input.CategoryID != nil {
		if _, err := s.repos.Courses.FindCategory(ctx, site.ID, *input.CategoryID); err != nil {
			return nil, appErrors.NotFound("Category")
		}
	}
	course.Title = input.Title
	course.Description = input.Description
	course.CategoryID = input.CategoryID
	course.CoverURL = input.CoverURL
	course.TokenReward = input.TokenReward
	course.CertificateEnabled = input.CertificateEnabled
	if input.InstructorID != "" {
		course.InstructorID = input.InstructorID
	}
	if err := s.repos.Courses.UpdateCourse(ctx, course); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, site *models.Site, courseID string) (*models.Course, error) {
	course, err := s.repos.Courses.FindCourse(ctx, site.ID, courseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrCourseNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context, site *models.Site, publishedOnly bool, page, size int) ([]models.Course, int64, error) {
	items, total, err := s.repos.Courses.FindCourses(ctx, site.ID, publishedOnly, page, size)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	return items, total, nil
}

// PublishCourse toggles visibility and recalculates progress for every
// enrollment, because the effective published-lesson set just changed.
func (s *CourseService) PublishCourse(ctx context.Context, site *models.Site, courseID string, published bool) (*models.Course, error) {
	course, err := s.repos.Courses.FindCourse(ctx, site.ID, courseID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrCourseNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	course.IsPublished = published
	if published && course.PublishedAt == nil {
		now := time.Now().UTC()
		course.PublishedAt = &now
	}
	if err := s.repos.Courses.UpdateCourse(ctx, course); err != nil {
		return nil, appErrors.InternalError(err)
	}

	s.recalculate(ctx, site, courseID)
	return course, nil
}

// Sections

func (s *CourseService) CreateSection(ctx context.Context, site *models.Site, courseID, title string, position int) (*models.Section, error) {
	if _, err := s.repos.Courses.FindCourse(ctx, site.ID, courseID); err != nil {
		return nil, appErrors.ErrCourseNotFound
	}
	section := &models.Section{CourseID: courseID, Title: title, Position: position}
	section.SiteID = site.ID
	if err := s.repos.Courses.CreateSection(ctx, section); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return section, nil
}

func (s *CourseService) ListSections(ctx context.Context, site *models.Site, courseID string) ([]models.Section, error) {
	sections, err := s.repos.Courses.FindSections(ctx, site.ID, courseID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return sections, nil
}

// Lessons

type LessonInput struct {
	CourseID  string
	SectionID *string
	Title     string
	Type      models.LessonType
	Content   string
	MediaURL  string
	Duration  int
	Position  int
}

func (s *CourseService) CreateLesson(ctx context.Context, site *models.Site, input LessonInput) (*models.Lesson, error) {
	if _, err := s.repos.Courses.FindCourse(ctx, site.ID, input.CourseID); err != nil {
		return nil, appErrors.ErrCourseNotFound
	}
	if !input.Type.Valid() {
		return nil, appErrors.ValidationError("Invalid lesson type")
	}
	if input.SectionID != nil {
		section, err := s.repos.Courses.FindSection(ctx, site.ID, *input.SectionID)
		if err != nil {
			return nil, appErrors.NotFound("Section")
		}
		if section.CourseID != input.CourseID {
			return nil, appErrors.ValidationError("Section belongs to a different course")
		}
	}

	lesson := &models.Lesson{
		CourseID:  input.CourseID,
		SectionID: input.SectionID,
		Title:     input.Title,
		Type:      input.Type,
		Content:   input.Content,
		MediaURL:  input.MediaURL,
		Duration:  input.Duration,
		Position:  input.Position,
	}
	lesson.SiteID = site.ID
	if err := s.repos.Courses.CreateLesson(ctx, lesson); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(ctx context.Context, site *models.Site, lessonID string, input LessonInput) (*models.Lesson, error) {
	lesson, err := s.repos.Courses.FindLesson(ctx, site.ID, lessonID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrLessonNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	if input.SectionID != nil {
		section, err := s.repos.Courses.FindSection(ctx, site.ID, *input.SectionID)
		if err != nil {
			return nil, appErrors.NotFound("Section")
		}
		if section.CourseID != lesson.CourseID {
			return nil, appErrors.ValidationError("Section belongs to a different course")
		}
	}
	if input.Type != "" {
		if !input.Type.Valid() {
			return nil, appErrors.ValidationError("Invalid lesson type")
		}
		lesson.Type = input.Type
	}
	lesson.SectionID = input.SectionID
	lesson.Title = input.Title
	lesson.Content = input.Content
	lesson.MediaURL = input.MediaURL
	lesson.Duration = input.Duration
	lesson.Position = input.Position
	if err := s.repos.Courses.UpdateLesson(ctx, lesson); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return lesson, nil
}

func (s *CourseService) ListLessons(ctx context.Context, site *models.Site, courseID string, publishedOnly bool) ([]models.Lesson, error) {
	var (
		lessons []models.Lesson
		err     error
	)
	if publishedOnly {
		lessons, err = s.repos.Courses.PublishedLessons(ctx, site.ID, courseID)
	} else {
		lessons, err = s.repos.Courses.FindLessons(ctx, site.ID, courseID)
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return lessons, nil
}

// PublishLesson toggles one lesson and re-runs the roll-up: a new
// published lesson can revert completed enrollments to active, an
// unpublished one can complete them.
func (s *CourseService) PublishLesson(ctx context.Context, site *models.Site, lessonID string, published bool) (*models.Lesson, error) {
	lesson, err := s.repos.Courses.FindLesson(ctx, site.ID, lessonID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.ErrLessonNotFound
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	lesson.IsPublished = published
	if err := s.repos.Courses.UpdateLesson(ctx, lesson); err != nil {
		return nil, appErrors.InternalError(err)
	}

	s.recalculate(ctx, site, lesson.CourseID)
	return lesson, nil
}

// Cohorts

type CohortInput struct {
	CourseID         string
	Name             string
	StartsAt         *time.Time
	EndsAt           *time.Time
	MaxStudents      int
	RegistrationOpen bool
}

func (s *CourseService) CreateCohort(ctx context.Context, site *models.Site, input CohortInput) (*models.Cohort, error) {
	if _, err := s.repos.Courses.FindCourse(ctx, site.ID, input.CourseID); err != nil {
		return nil, appErrors.ErrCourseNotFound
	}
	cohort := &models.Cohort{
		CourseID:         input.CourseID,
		Name:             input.Name,
		StartsAt:         input.StartsAt,
		EndsAt:           input.EndsAt,
		MaxStudents:      input.MaxStudents,
		RegistrationOpen: input.RegistrationOpen,
	}
	cohort.SiteID = site.ID
	if err := s.repos.Courses.CreateCohort(ctx, cohort); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return cohort, nil
}

func (s *CourseService) UpdateCohort(ctx context.Context, site *models.Site, cohortID string, input CohortInput) (*models.Cohort, error) {
	cohort, err := s.repos.Courses.FindCohort(ctx, site.ID, cohortID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.NotFound("Cohort")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	cohort.Name = input.Name
	cohort.StartsAt = input.StartsAt
	cohort.EndsAt = input.EndsAt
	cohort.MaxStudents = input.MaxStudents
	cohort.RegistrationOpen = input.RegistrationOpen
	if err := s.repos.Courses.UpdateCohort(ctx, cohort); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return cohort, nil
}

func (s *CourseService) ListCohorts(ctx context.Context, site *models.Site, courseID string) ([]models.Cohort, error) {
	cohorts, err := s.repos.Courses.FindCohorts(ctx, site.ID, courseID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return cohorts, nil
}

func (s *CourseService) recalculate(ctx context.Context, site *models.Site, courseID string) {
	if err := s.progress.RecalculateCourse(ctx, site, courseID); err != nil {
		logger.Warn("Course progress recalculation failed", "course_id", courseID, "error", err)
	}
}

package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academy_backend/internal/models"
)

type CourseRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, siteID, id string) (*models.Category, error)
	FindCategories(ctx context.Context, siteID string) ([]models.Category, error)
	// DeleteCategory refuses while any published course references it.
	DeleteCategory(ctx context.Context, siteID, id string) error
	PublishedCoursesInCategory(ctx context.Context, siteID, categoryID string) (int64, error)

	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
	FindCourse(ctx context.Context, siteID, id string) (*models.Course, error)
	FindCourses(ctx context.Context, siteID string, publishedOnly bool, page, size int) ([]models.Course, int64, error)
	SetCourseStudents(ctx context.Context, siteID, courseID string, total int) error

	CreateSection(ctx context.Context, section *models.Section) error
	FindSection(ctx context.Context, siteID, id string) (*models.Section, error)
	FindSections(ctx context.Context, siteID, courseID string) ([]models.Section, error)

	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	UpdateLesson(ctx context.Context, lesson *models.Lesson) error
	FindLesson(ctx context.Context, siteID, id string) (*models.Lesson, error)
	FindLessons(ctx context.Context, siteID, courseID string) ([]models.Lesson, error)
	PublishedLessons(ctx context.Context, siteID, courseID string) ([]models.Lesson, error)

	CreateCohort(ctx context.Context, cohort *models.Cohort) error
	UpdateCohort(ctx context.Context, cohort *models.Cohort) error
	// FindCohortForUpdate locks the cohort row so capacity checks
	// serialize against concurrent enrollments.
	FindCohortForUpdate(ctx context.Context, siteID, id string) (*models.Cohort, error)
	FindCohort(ctx context.Context, siteID, id string) (*models.Cohort, error)
	FindCohorts(ctx context.Context, siteID, courseID string) ([]models.Cohort, error)
	SetCohortStudents(ctx context.Context, siteID, cohortID string, total int) error
	AllCohorts(ctx context.Context) ([]models.Cohort, error)
	AllCourses(ctx context.Context) ([]models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *courseRepository) FindCategory(ctx context.Context, siteID, id string) (*models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).First(&c, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *courseRepository) FindCategories(ctx context.Context, siteID string) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *courseRepository) PublishedCoursesInCategory(ctx context.Context, siteID, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).
		Where("site_id = ? AND category_id = ? AND is_published = true", siteID, categoryID).
		Count(&count).Error
	return count, err
}

func (r *courseRepository) DeleteCategory(ctx context.Context, siteID, id string) error {
	res := r.db.WithContext(ctx).
		Where("site_id = ? AND id = ?", siteID, id).
		Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *courseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return translate(r.db.WithContext(ctx).Create(course).Error)
}

func (r *courseRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	return translate(r.db.WithContext(ctx).Save(course).Error)
}

func (r *courseRepository) FindCourse(ctx context.Context, siteID, id string) (*models.Course, error) {
	var c models.Course
	err := r.db.WithContext(ctx).First(&c, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *courseRepository) FindCourses(ctx context.Context, siteID string, publishedOnly bool, page, size int) ([]models.Course, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Course{}).Where("site_id = ?", siteID)
	if publishedOnly {
		db = db.Where("is_published = true")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []models.Course
	err := db.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&courses).Error
	return courses, total, err
}

func (r *courseRepository) SetCourseStudents(ctx context.Context, siteID, courseID string, total int) error {
	return r.db.WithContext(ctx).Model(&models.Course{}).
		Where("site_id = ? AND id = ?", siteID, courseID).
		Update("total_students", total).Error
}

func (r *courseRepository) CreateSection(ctx context.Context, section *models.Section) error {
	return translate(r.db.WithContext(ctx).Create(section).Error)
}

func (r *courseRepository) FindSection(ctx context.Context, siteID, id string) (*models.Section, error) {
	var s models.Section
	err := r.db.WithContext(ctx).First(&s, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *courseRepository) FindSections(ctx context.Context, siteID, courseID string) ([]models.Section, error) {
	var sections []models.Section
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND course_id = ?", siteID, courseID).
		Order("position ASC").Find(&sections).Error
	return sections, err
}

func (r *courseRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return translate(r.db.WithContext(ctx).Create(lesson).Error)
}

func (r *courseRepository) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	return translate(r.db.WithContext(ctx).Save(lesson).Error)
}

func (r *courseRepository) FindLesson(ctx context.Context, siteID, id string) (*models.Lesson, error) {
	var l models.Lesson
	err := r.db.WithContext(ctx).First(&l, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *courseRepository) FindLessons(ctx context.Context, siteID, courseID string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND course_id = ?", siteID, courseID).
		Order("position ASC").Find(&lessons).Error
	return lessons, err
}

func (r *courseRepository) PublishedLessons(ctx context.Context, siteID, courseID string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND course_id = ? AND is_published = true", siteID, courseID).
		Order("position ASC").Find(&lessons).Error
	return lessons, err
}

func (r *courseRepository) CreateCohort(ctx context.Context, cohort *models.Cohort) error {
	return translate(r.db.WithContext(ctx).Create(cohort).Error)
}

func (r *courseRepository) UpdateCohort(ctx context.Context, cohort *models.Cohort) error {
	return translate(r.db.WithContext(ctx).Save(cohort).Error)
}

func (r *courseRepository) FindCohortForUpdate(ctx context.Context, siteID, id string) (*models.Cohort, error) {
	var c models.Cohort
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *courseRepository) FindCohort(ctx context.Context, siteID, id string) (*models.Cohort, error) {
	var c models.Cohort
	err := r.db.WithContext(ctx).First(&c, "site_id = ? AND id = ?", siteID, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *courseRepository) FindCohorts(ctx context.Context, siteID, courseID string) ([]models.Cohort, error) {
	var cohorts []models.Cohort
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND course_id = ?", siteID, courseID).
		Order("starts_at ASC").Find(&cohorts).Error
	return cohorts, err
}

func (r *courseRepository) SetCohortStudents(ctx context.Context, siteID, cohortID string, total int) error {
	return r.db.WithContext(ctx).Model(&models.Cohort{}).
		Where("site_id = ? AND id = ?", siteID, cohortID).
		Update("total_students", total).Error
}

// AllCohorts and AllCourses cross tenants deliberately; only the counter
// reconciliation worker uses them.
func (r *courseRepository) AllCohorts(ctx context.Context) ([]models.Cohort, error) {
	var cohorts []models.Cohort
	err := r.db.WithContext(ctx).Find(&cohorts).Error
	return cohorts, err
}

func (r *courseRepository) AllCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).Find(&courses).Error
	return courses, err
}

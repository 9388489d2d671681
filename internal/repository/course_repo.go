package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// CourseFilter narrows course listings.
type CourseFilter struct {
	Page
	Status    string
	StudentID *uint
}

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filter.Status != "" {
		query = query.Where("courses.status = ?", filter.Status)
	}

	if filter.StudentID != nil {
		query = query.Joins("JOIN enrollments ON enrollments.course_id = courses.id").
			Where("enrollments.student_id = ?", *filter.StudentID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []models.Course
	if err := filter.Page.apply(query).
		Preload("Instructor").
		Order("courses.created_at DESC").
		Order("courses.id DESC").
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC")
		}).
		First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor", "Assignments", "Enrollments").Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// EnrollmentRepository persists course enrollments.
type EnrollmentRepository interface {
	// CreateAndCount inserts the enrollment and bumps the course counter atomically.
	CreateAndCount(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	CountByStudent(ctx context.Context, studentID uint, status string) (int64, error)
	UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs a GORM-backed enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) CreateAndCount(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Course", "Student").Create(enrollment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Course{}).
			Where("id = ?", enrollment.CourseID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
	})
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).Preload("Course").First(&enrollment, id).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	result := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Limit(1).
		Find(&enrollment)
	if result.Error != nil {
		return models.Enrollment{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}

	return enrollment, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Instructor").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) CountByStudent(ctx context.Context, studentID uint, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("student_id = ?", studentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepository) UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{
			"status":              enrollment.Status,
			"progress_percentage": enrollment.ProgressPercentage,
			"completed_at":        enrollment.CompletedAt,
			"updated_at":          enrollment.UpdatedAt,
		}).Error
}

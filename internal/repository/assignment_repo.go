package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error)
	ListByCourseForStudent(ctx context.Context, courseID, studentID uint) ([]models.Assignment, error)
	ListUpcomingForStudent(ctx context.Context, studentID uint, after time.Time, limit int) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC").
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByCourseForStudent(ctx context.Context, courseID, studentID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("Submissions", "student_id = ?", studentID).
		Preload("Submissions.Grade").
		Order("due_date ASC").
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListUpcomingForStudent(ctx context.Context, studentID uint, after time.Time, limit int) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Joins("JOIN enrollments ON enrollments.course_id = assignments.course_id").
		Where("enrollments.student_id = ?", studentID).
		Where("assignments.due_date > ?", after).
		Preload("Submissions", "student_id = ?", studentID).
		Order("assignments.due_date ASC").
		Order("assignments.id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var assignments []models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("Course", "Submissions").Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// GradeFilter narrows grade listings to one student and optionally one course.
type GradeFilter struct {
	Page
	StudentID uint
	CourseID  *uint
}

// GradeRepository persists grades and the graded state of their submissions.
type GradeRepository interface {
	// CreateForSubmission inserts the grade and marks the submission graded atomically.
	CreateForSubmission(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	GetByID(ctx context.Context, id uint) (models.Grade, error)
	GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error)
	List(ctx context.Context, filter GradeFilter) ([]models.Grade, int64, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs a GORM-backed grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) CreateForSubmission(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Submission").Create(grade).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Submission{}).
			Where("id = ?", grade.SubmissionID).
			Updates(map[string]interface{}{
				"status":     models.SubmissionStatusGraded,
				"updated_at": grade.GradedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Model(&models.Grade{}).
		Where("id = ?", grade.ID).
		Updates(map[string]interface{}{
			"score":        grade.Score,
			"feedback":     grade.Feedback,
			"grade_letter": grade.Letter,
			"graded_by":    grade.GradedBy,
			"updated_at":   grade.UpdatedAt,
		}).Error
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).
		Preload("Submission").
		Preload("Submission.Assignment").
		First(&grade, id).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).
		Preload("Submission").
		Preload("Submission.Assignment").
		Where("submission_id = ?", submissionID).
		First(&grade).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) List(ctx context.Context, filter GradeFilter) ([]models.Grade, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Grade{}).
		Joins("JOIN submissions ON submissions.id = grades.submission_id").
		Where("submissions.student_id = ?", filter.StudentID)

	if filter.CourseID != nil {
		query = query.Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
			Where("assignments.course_id = ?", *filter.CourseID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var grades []models.Grade
	if err := filter.Page.apply(query).
		Preload("Submission").
		Preload("Submission.Assignment").
		Order("grades.created_at DESC").
		Order("grades.id DESC").
		Find(&grades).Error; err != nil {
		return nil, 0, err
	}

	return grades, total, nil
}

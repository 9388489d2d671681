package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// ErrSubmissionLocked is returned by UpdateContent when the row is graded or not owned by the student.
var ErrSubmissionLocked = errors.New("submission is graded or owned by another student")

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	Page
	AssignmentID *uint
	StudentID    *uint
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
	ListRecords(ctx context.Context, studentID uint) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	// Create inserts the submission; with bumpCounter the assignment counter moves in the same transaction.
	Create(ctx context.Context, submission *models.Submission, bumpCounter bool) error
	// UpdateContent rewrites content only while the submission is ungraded and owned by submission.StudentID.
	UpdateContent(ctx context.Context, submission *models.Submission) error
	CountPendingForStudent(ctx context.Context, studentID uint, dueAfter time.Time) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student").
		Preload("Grade")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []models.Submission
	if err := filter.Page.apply(query).
		Preload("Assignment").
		Preload("Student").
		Preload("Grade").
		Order("created_at DESC").
		Order("id DESC").
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) ListRecords(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Select("id", "status", "student_id", "assignment_id").
		Where("student_id = ?", studentID).
		Preload("Grade").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	result := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Limit(1).
		Find(&submission)
	if result.Error != nil {
		return models.Submission{}, result.Error
	}
	// a miss is the normal first-submission path; Find keeps it out of the gorm error log
	if result.RowsAffected == 0 {
		return models.Submission{}, gorm.ErrRecordNotFound
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission, bumpCounter bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Assignment", "Student", "Grade").Create(submission).Error; err != nil {
			return err
		}
		if !bumpCounter {
			return nil
		}

		return tx.Model(&models.Assignment{}).
			Where("id = ?", submission.AssignmentID).
			UpdateColumn("submission_count", gorm.Expr("submission_count + ?", 1)).Error
	})
}

func (r *submissionRepository) UpdateContent(ctx context.Context, submission *models.Submission) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		Where("student_id = ?", submission.StudentID).
		Where("status <> ?", models.SubmissionStatusGraded).
		Updates(map[string]interface{}{
			"content":    submission.Content,
			"file_url":   submission.FileURL,
			"updated_at": submission.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionLocked
	}
	return nil
}

func (r *submissionRepository) CountPendingForStudent(ctx context.Context, studentID uint, dueAfter time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("submissions.student_id = ?", studentID).
		Where("assignments.due_date > ?", dueAfter).
		Where("NOT EXISTS (SELECT 1 FROM grades WHERE grades.submission_id = submissions.id)").
		Count(&count).Error
	return count, err
}

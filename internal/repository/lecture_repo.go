package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// LectureRepository persists lectures, their parent invites and registered children.
type LectureRepository interface {
	Create(ctx context.Context, lecture *models.Lecture) error
	GetByID(ctx context.Context, id uint) (models.Lecture, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Lecture, error)
	ListInvitedForParent(ctx context.Context, parentID uint, email string) ([]models.Lecture, error)

	// UpsertInvite issues a fresh unused token for (lecture, email), creating the invite if needed.
	UpsertInvite(ctx context.Context, invite *models.LectureInvite) error
	ListInvites(ctx context.Context, lectureID uint) ([]models.LectureInvite, error)
	GetInviteByToken(ctx context.Context, token string) (models.LectureInvite, error)
	HasUsedInvite(ctx context.Context, lectureID uint, email string) (bool, error)
	// ClaimInvite creates the user and marks the unused invite as used atomically.
	ClaimInvite(ctx context.Context, token string, user *models.User) (models.LectureInvite, error)

	CreateChild(ctx context.Context, child *models.Child) error
	ListChildren(ctx context.Context, lectureID, parentID uint) ([]models.Child, error)
}

type lectureRepository struct {
	db *gorm.DB
}

// NewLectureRepository constructs a GORM-backed lecture repository.
func NewLectureRepository(db *gorm.DB) LectureRepository {
	return &lectureRepository{db: db}
}

func (r *lectureRepository) Create(ctx context.Context, lecture *models.Lecture) error {
	return r.db.WithContext(ctx).Omit("Invites", "Children").Create(lecture).Error
}

func (r *lectureRepository) GetByID(ctx context.Context, id uint) (models.Lecture, error) {
	var lecture models.Lecture
	if err := r.db.WithContext(ctx).First(&lecture, id).Error; err != nil {
		return models.Lecture{}, err
	}
	return lecture, nil
}

func (r *lectureRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Lecture, error) {
	var lectures []models.Lecture
	if err := r.db.WithContext(ctx).
		Preload("Invites", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("created_by = ?", creatorID).
		Order("scheduled_at ASC").
		Find(&lectures).Error; err != nil {
		return nil, err
	}
	return lectures, nil
}

func (r *lectureRepository) ListInvitedForParent(ctx context.Context, parentID uint, email string) ([]models.Lecture, error) {
	invited := r.db.Model(&models.LectureInvite{}).
		Select("lecture_id").
		Where("parent_email = ? AND is_used = ?", normalizeEmail(email), true)

	var lectures []models.Lecture
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", invited).
		Preload("Children", "parent_id = ?", parentID).
		Order("scheduled_at ASC").
		Find(&lectures).Error; err != nil {
		return nil, err
	}
	return lectures, nil
}

func (r *lectureRepository) UpsertInvite(ctx context.Context, invite *models.LectureInvite) error {
	invite.ParentEmail = normalizeEmail(invite.ParentEmail)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.LectureInvite
		err := tx.Where("lecture_id = ? AND parent_email = ?", invite.LectureID, invite.ParentEmail).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			invite.IsUsed = false
			return tx.Omit("Lecture").Create(invite).Error
		case err != nil:
			return err
		}

		existing.Token = invite.Token
		existing.IsUsed = false
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"invite_token": existing.Token,
			"is_used":      false,
		}).Error; err != nil {
			return err
		}
		*invite = existing
		return nil
	})
}

func (r *lectureRepository) ListInvites(ctx context.Context, lectureID uint) ([]models.LectureInvite, error) {
	var invites []models.LectureInvite
	if err := r.db.WithContext(ctx).
		Where("lecture_id = ?", lectureID).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *lectureRepository) GetInviteByToken(ctx context.Context, token string) (models.LectureInvite, error) {
	var invite models.LectureInvite
	if err := r.db.WithContext(ctx).
		Preload("Lecture").
		Where("invite_token = ?", token).
		First(&invite).Error; err != nil {
		return models.LectureInvite{}, err
	}
	return invite, nil
}

func (r *lectureRepository) HasUsedInvite(ctx context.Context, lectureID uint, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LectureInvite{}).
		Where("lecture_id = ? AND parent_email = ? AND is_used = ?", lectureID, normalizeEmail(email), true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *lectureRepository) ClaimInvite(ctx context.Context, token string, user *models.User) (models.LectureInvite, error) {
	var invite models.LectureInvite
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invite_token = ? AND is_used = ?", token, false).First(&invite).Error; err != nil {
			return err
		}

		user.Email = invite.ParentEmail
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		result := tx.Model(&models.LectureInvite{}).
			Where("id = ? AND is_used = ?", invite.ID, false).
			Update("is_used", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		invite.IsUsed = true
		return nil
	})
	if err != nil {
		return models.LectureInvite{}, err
	}
	return invite, nil
}

func (r *lectureRepository) CreateChild(ctx context.Context, child *models.Child) error {
	return r.db.WithContext(ctx).Create(child).Error
}

func (r *lectureRepository) ListChildren(ctx context.Context, lectureID, parentID uint) ([]models.Child, error) {
	var children []models.Child
	if err := r.db.WithContext(ctx).
		Where("lecture_id = ? AND parent_id = ?", lectureID, parentID).
		Order("created_at ASC").
		Find(&children).Error; err != nil {
		return nil, err
	}
	return children, nil
}

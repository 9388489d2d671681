package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
)

const maxLectureImageBytes = 5 * 1024 * 1024

var (
	// ErrLectureNotFound indicates the lecture does not exist.
	ErrLectureNotFound = errors.New("lecture not found")
	// ErrLectureForbidden indicates the caller did not create the lecture.
	ErrLectureForbidden = errors.New("lecture belongs to another admin")
	// ErrInviteNotFound indicates the invite token is unknown.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteRequired indicates the parent has no used invite for the lecture.
	ErrInviteRequired = errors.New("no accepted invite for this lecture")
	// ErrChildExists indicates the parent already registered a child with that name.
	ErrChildExists = errors.New("child already registered for this lecture")
	// ErrImageInvalid indicates the uploaded lecture image is too large or not an image.
	ErrImageInvalid = errors.New("lecture image must be a jpeg, png, gif or webp up to 5MB")
	// ErrUploadUnavailable indicates no storage backend is configured.
	ErrUploadUnavailable = errors.New("image uploads are not configured")
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// LectureService manages lectures, parent invites and child registration.
type LectureService interface {
	Create(ctx context.Context, actor Actor, req dto.LectureCreateRequest, image *multipart.FileHeader) (dto.LectureResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.LectureResponse, error)
	CreateInvite(ctx context.Context, actor Actor, lectureID uint, req dto.InviteCreateRequest) (dto.InviteResponse, error)
	ListInvites(ctx context.Context, actor Actor, lectureID uint) ([]dto.InviteResponse, error)
	GetInvite(ctx context.Context, token string) (dto.InviteResponse, error)
	ListInvited(ctx context.Context, parentID uint) ([]dto.LectureResponse, error)
	AddChild(ctx context.Context, parentID, lectureID uint, req dto.ChildCreateRequest) (dto.ChildResponse, error)
	ListChildren(ctx context.Context, parentID, lectureID uint) ([]dto.ChildResponse, error)
}

type lectureService struct {
	repo      repository.LectureRepository
	users     repository.UserRepository
	storage   FileStorage
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	newToken  func() string
}

// NewLectureService constructs the lecture service. storage may be nil when uploads are disabled.
func NewLectureService(repo repository.LectureRepository, users repository.UserRepository, storage FileStorage, validate *validator.Validate, logger zerolog.Logger) LectureService {
	return &lectureService{
		repo:      repo,
		users:     users,
		storage:   storage,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "lecture_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/learnhub-api/internal/service/lecture"),
		newToken:  uuid.NewString,
	}
}

func (s *lectureService) Create(ctx context.Context, actor Actor, req dto.LectureCreateRequest, image *multipart.FileHeader) (dto.LectureResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LectureResponse{}, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return dto.LectureResponse{}, err
	}

	lecture := models.Lecture{
		CreatedBy:   actor.ID,
		Title:       strings.TrimSpace(s.sanitizer.Sanitize(req.Title)),
		Description: s.sanitizer.Sanitize(req.Description),
		ScheduledAt: scheduledAt.UTC(),
	}

	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return dto.LectureResponse{}, err
		}
		lecture.ImageURL = url
	}

	if err := s.repo.Create(ctx, &lecture); err != nil {
		return dto.LectureResponse{}, err
	}

	s.logger.Info().Uint("lecture_id", lecture.ID).Uint("created_by", actor.ID).Msg("lecture created")

	return dto.NewLectureResponse(lecture), nil
}

func (s *lectureService) uploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ctx, span := s.tracer.Start(ctx, "lectures.upload_image", trace.WithAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	))
	defer span.End()

	if s.storage == nil {
		span.SetStatus(codes.Error, "storage_unavailable")
		return "", ErrUploadUnavailable
	}

	if file.Size > maxLectureImageBytes {
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrImageInvalid
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxLectureImageBytes+1)); err != nil {
		span.RecordError(err)
		return "", err
	}
	if buf.Len() > maxLectureImageBytes {
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrImageInvalid
	}

	detected := mimetype.Detect(buf.Bytes()).String()
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = detected[:idx]
	}
	span.SetAttributes(attribute.String("upload.detected_mime", detected))
	if _, ok := allowedImageTypes[detected]; !ok {
		span.SetStatus(codes.Error, "type not allowed")
		return "", ErrImageInvalid
	}

	url, err := s.storage.Upload(ctx, filepath.Base(file.Filename), bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return "", err
	}

	span.SetStatus(codes.Ok, "stored")
	return url, nil
}

func (s *lectureService) ListMine(ctx context.Context, actor Actor) ([]dto.LectureResponse, error) {
	lectures, err := s.repo.ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewLectureResponseSlice(lectures), nil
}

func (s *lectureService) CreateInvite(ctx context.Context, actor Actor, lectureID uint, req dto.InviteCreateRequest) (dto.InviteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.InviteResponse{}, err
	}

	if _, err := s.owned(ctx, actor, lectureID); err != nil {
		return dto.InviteResponse{}, err
	}

	invite := models.LectureInvite{
		LectureID:   lectureID,
		ParentEmail: req.ParentEmail,
		Token:       s.newToken(),
	}
	if err := s.repo.UpsertInvite(ctx, &invite); err != nil {
		return dto.InviteResponse{}, err
	}

	s.logger.Info().Uint("lecture_id", lectureID).Uint("invite_id", invite.ID).Msg("lecture invite issued")

	return dto.NewInviteResponse(invite), nil
}

func (s *lectureService) ListInvites(ctx context.Context, actor Actor, lectureID uint) ([]dto.InviteResponse, error) {
	if _, err := s.owned(ctx, actor, lectureID); err != nil {
		return nil, err
	}

	invites, err := s.repo.ListInvites(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	return dto.NewInviteResponseSlice(invites), nil
}

func (s *lectureService) GetInvite(ctx context.Context, token string) (dto.InviteResponse, error) {
	invite, err := s.repo.GetInviteByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InviteResponse{}, ErrInviteNotFound
		}
		return dto.InviteResponse{}, err
	}
	return dto.NewInviteResponse(invite), nil
}

func (s *lectureService) ListInvited(ctx context.Context, parentID uint) ([]dto.LectureResponse, error) {
	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}

	lectures, err := s.repo.ListInvitedForParent(ctx, parent.ID, parent.Email)
	if err != nil {
		return nil, err
	}
	return dto.NewLectureResponseSlice(lectures), nil
}

func (s *lectureService) AddChild(ctx context.Context, parentID, lectureID uint, req dto.ChildCreateRequest) (dto.ChildResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChildResponse{}, err
	}

	if err := s.requireInvite(ctx, parentID, lectureID); err != nil {
		return dto.ChildResponse{}, err
	}

	child := models.Child{
		ParentID:  parentID,
		LectureID: lectureID,
		Name:      strings.TrimSpace(s.sanitizer.Sanitize(req.Name)),
		Age:       req.Age,
	}
	if err := s.repo.CreateChild(ctx, &child); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ChildResponse{}, ErrChildExists
		}
		return dto.ChildResponse{}, err
	}

	return dto.NewChildResponse(child), nil
}

func (s *lectureService) ListChildren(ctx context.Context, parentID, lectureID uint) ([]dto.ChildResponse, error) {
	if err := s.requireInvite(ctx, parentID, lectureID); err != nil {
		return nil, err
	}

	children, err := s.repo.ListChildren(ctx, lectureID, parentID)
	if err != nil {
		return nil, err
	}
	return dto.NewChildResponseSlice(children), nil
}

func (s *lectureService) owned(ctx context.Context, actor Actor, lectureID uint) (models.Lecture, error) {
	lecture, err := s.repo.GetByID(ctx, lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Lecture{}, ErrLectureNotFound
		}
		return models.Lecture{}, err
	}
	if lecture.CreatedBy != actor.ID {
		return models.Lecture{}, ErrLectureForbidden
	}
	return lecture, nil
}

func (s *lectureService) requireInvite(ctx context.Context, parentID, lectureID uint) error {
	if _, err := s.repo.GetByID(ctx, lectureID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLectureNotFound
		}
		return err
	}

	parent, err := s.users.GetByID(ctx, parentID)
	if err != nil {
		return err
	}

	ok, err := s.repo.HasUsedInvite(ctx, lectureID, parent.Email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInviteRequired
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates the email, password or role did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInviteInvalid indicates the invite token is unknown or already used.
	ErrInviteInvalid = errors.New("invalid invite")
	// ErrUnsupportedRole indicates registration for a role that cannot self-register.
	ErrUnsupportedRole = errors.New("unsupported role")
)

// TokenRevoker stores revoked token ids until the token would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisTokenRevoker struct {
	client *redis.Client
}

// NewRedisTokenRevoker keeps the revocation list in redis.
func NewRedisTokenRevoker(client *redis.Client) TokenRevoker {
	return &redisTokenRevoker{client: client}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("auth:revoked:%s", tokenID)
}

func (r *redisTokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (r *redisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AuthService registers accounts and issues bearer tokens.
type AuthService interface {
	Register(ctx context.Context, role string, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, role string, req dto.LoginRequest) (dto.AuthResponse, error)
	SignupWithInvite(ctx context.Context, req dto.InviteSignupRequest) (dto.AuthResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AuthConfig carries token signing parameters.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

type authService struct {
	users      repository.UserRepository
	lectures   repository.LectureRepository
	revoker    TokenRevoker
	validator  *validator.Validate
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, lectures repository.LectureRepository, revoker TokenRevoker, cfg AuthConfig, validate *validator.Validate, logger zerolog.Logger) AuthService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &authService{
		users:      users,
		lectures:   lectures,
		revoker:    revoker,
		validator:  validate,
		secret:     []byte(cfg.Secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

func (s *authService) Register(ctx context.Context, role string, req dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	if !models.IsValidRole(role) {
		return dto.AuthResponse{}, ErrUnsupportedRole
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", role).Msg("account registered")

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, role string, req dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if user.Role != role {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) SignupWithInvite(ctx context.Context, req dto.InviteSignupRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         models.RoleParent,
	}

	invite, err := s.lectures.ClaimInvite(ctx, strings.TrimSpace(req.InviteToken), &user)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.AuthResponse{}, ErrInviteInvalid
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.AuthResponse{}, ErrEmailTaken
		default:
			return dto.AuthResponse{}, err
		}
	}

	response, err := s.issue(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	lectureID := invite.LectureID
	response.LectureID = &lectureID

	s.logger.Info().Uint("user_id", user.ID).Uint("lecture_id", lectureID).Msg("parent registered from invite")

	return response, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" || s.revoker == nil {
		return nil
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	return s.revoker.Revoke(ctx, tokenID, ttl)
}

func (s *authService) issue(user models.User) (dto.AuthResponse, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"role":  user.Role,
		"email": user.Email,
		"jti":   uuid.NewString(),
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

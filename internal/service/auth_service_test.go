package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
)

const testSecret = "unit-test-secret"

func newAuthServiceForTest(t *testing.T, db *gorm.DB, revoker TokenRevoker) AuthService {
	t.Helper()
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewLectureRepository(db),
		revoker,
		AuthConfig{Secret: testSecret, TTL: time.Hour},
		testValidator(),
		testLogger(),
	)
	svc.(*authService).bcryptCost = bcrypt.MinCost
	return svc
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthServiceForTest(t, db, nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, models.RoleStudent, dto.RegisterRequest{Name: " Lee ", Email: "Lee@Example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "lee@example.com", registered.User.Email)
	require.Equal(t, "Lee", registered.User.Name)

	claims := parseClaims(t, registered.Token)
	require.Equal(t, models.RoleStudent, claims["role"])
	require.NotEmpty(t, claims["jti"])
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	require.NotEmpty(t, sub)

	_, err = svc.Register(ctx, models.RoleParent, dto.RegisterRequest{Name: "Lee", Email: "lee@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrEmailTaken)

	loggedIn, err := svc.Login(ctx, models.RoleStudent, dto.LoginRequest{Email: "lee@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, models.RoleAdmin, dto.LoginRequest{Email: "lee@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.RoleStudent, dto.LoginRequest{Email: "lee@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, "superuser", dto.RegisterRequest{Name: "X", Email: "x@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrUnsupportedRole)
}

func TestAuthServiceSignupWithInviteIsSingleUse(t *testing.T) {
	db := setupServiceDB(t)
	svc := newAuthServiceForTest(t, db, nil)
	ctx := context.Background()

	admin := seedUser(t, db, models.RoleAdmin, "host@example.com")
	lecture := models.Lecture{CreatedBy: admin.ID, Title: "Open day", ScheduledAt: time.Now().Add(72 * time.Hour)}
	require.NoError(t, db.Create(&lecture).Error)
	lectures := repository.NewLectureRepository(db)
	invite := models.LectureInvite{LectureID: lecture.ID, ParentEmail: "mum@example.com", Token: "invite-token-1"}
	require.NoError(t, lectures.UpsertInvite(ctx, &invite))

	response, err := svc.SignupWithInvite(ctx, dto.InviteSignupRequest{InviteToken: "invite-token-1", Name: "Mum", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "mum@example.com", response.User.Email)
	require.Equal(t, models.RoleParent, response.User.Role)
	require.NotNil(t, response.LectureID)
	require.Equal(t, lecture.ID, *response.LectureID)

	_, err = svc.SignupWithInvite(ctx, dto.InviteSignupRequest{InviteToken: "invite-token-1", Name: "Mum again", Password: "secret1"})
	require.ErrorIs(t, err, ErrInviteInvalid)

	_, err = svc.SignupWithInvite(ctx, dto.InviteSignupRequest{InviteToken: "missing", Name: "Nobody", Password: "secret1"})
	require.ErrorIs(t, err, ErrInviteInvalid)

	used, err := lectures.HasUsedInvite(ctx, lecture.ID, "mum@example.com")
	require.NoError(t, err)
	require.True(t, used)
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	revoker := NewRedisTokenRevoker(redis.NewClient(&redis.Options{Addr: mini.Addr()}))
	svc := newAuthServiceForTest(t, setupServiceDB(t), revoker)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "token-123", time.Now().Add(30*time.Minute)))

	revoked, err := revoker.IsRevoked(ctx, "token-123")
	require.NoError(t, err)
	require.True(t, revoked)
	require.Greater(t, mini.TTL(revokedKey("token-123")), time.Duration(0))

	require.NoError(t, svc.Logout(ctx, "token-expired", time.Now().Add(-time.Minute)))
	revoked, err = revoker.IsRevoked(ctx, "token-expired")
	require.NoError(t, err)
	require.False(t, revoked)
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/config"
	"github.com/noah-isme/learnhub-api/internal/database"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/handler"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
	"github.com/noah-isme/learnhub-api/internal/router"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

const (
	headerTestUser = "X-Test-User"
	headerTestRole = "X-Test-Role"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

type testWorld struct {
	app *fiber.App
	db  *gorm.DB
}

type worldOptions struct {
	storage service.FileStorage
	probes  map[string]handler.Probe
}

// testAuth stands in for JWT verification and trusts the identity headers.
func testAuth(c *fiber.Ctx) error {
	raw := c.Get(headerTestUser)
	if raw == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
	}
	c.Locals(middleware.LocalUserID, uint(id))
	c.Locals(middleware.LocalUserRole, c.Get(headerTestRole))
	return c.Next()
}

func setupWorld(t *testing.T, opts worldOptions) *testWorld {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	bus := events.NewBus(nil, "", nil, logger)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, lectureRepo, nil, service.AuthConfig{Secret: "secret", TTL: time.Hour}, validate, logger)
	studentService := service.NewStudentService(service.StudentRepositories{
		Users:       userRepo,
		Enrollments: enrollmentRepo,
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Grades:      gradeRepo,
	}, nil, time.Minute, logger)
	bus.Subscribe(studentService.HandleEvent)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test", JWTSecret: "secret"}, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authService, validate, nil, logger),
		CourseHandler:        handler.NewCourseHandler(service.NewCourseService(courseRepo, validate, logger), validate, logger),
		AssignmentHandler:    handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, courseRepo, validate, logger), validate, logger),
		SubmissionHandler:    handler.NewSubmissionHandler(service.NewSubmissionService(submissionRepo, assignmentRepo, bus, validate, logger), validate, logger),
		GradeHandler:         handler.NewGradeHandler(service.NewGradingService(gradeRepo, submissionRepo, activityService, bus, validate, logger), logger),
		EnrollmentHandler:    handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollmentRepo, courseRepo, activityService, bus, validate, logger), logger),
		StudentHandler:       handler.NewStudentHandler(studentService, validate, logger),
		LectureHandler:       handler.NewLectureHandler(service.NewLectureService(lectureRepo, userRepo, opts.storage, validate, logger), logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, validate, logger),
		HealthProbes:         opts.probes,
		JWTMiddleware:        testAuth,
	})

	return &testWorld{app: app, db: db}
}

func (w *testWorld) seedUser(t *testing.T, role, email string) models.User {
	t.Helper()
	user := models.User{Name: strings.Split(email, "@")[0], Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, w.db.Create(&user).Error)
	return user
}

// do sends a JSON request as the given user; a nil user sends no identity.
func (w *testWorld) do(t *testing.T, method, path string, as *models.User, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		req.Header.Set(headerTestUser, strconv.FormatUint(uint64(as.ID), 10))
		req.Header.Set(headerTestRole, as.Role)
	}

	resp, err := w.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// expect asserts the status code and decodes the envelope data into target when given.
func expect(t *testing.T, resp *http.Response, status int, target interface{}) envelope {
	t.Helper()

	var body envelope
	decodeResponse(t, resp, &body)
	require.Equal(t, status, resp.StatusCode, body.Message)
	if target != nil {
		require.NoError(t, json.Unmarshal(body.Data, target))
	}
	return body
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func (w *testWorld) createCourse(t *testing.T, admin *models.User, title string) uint {
	t.Helper()
	var course struct {
		ID uint `json:"id"`
	}
	expect(t, w.do(t, http.MethodPost, "/api/v1/courses", admin, map[string]interface{}{
		"title":    title,
		"category": "Programming",
	}), fiber.StatusCreated, &course)
	return course.ID
}

func (w *testWorld) createAssignment(t *testing.T, admin *models.User, courseID uint, maxPoints int, due time.Time) uint {
	t.Helper()
	var assignment struct {
		ID uint `json:"id"`
	}
	expect(t, w.do(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/assignments", courseID), admin, map[string]interface{}{
		"title":       "Linked lists",
		"description": "Implement a doubly linked list",
		"max_points":  maxPoints,
		"due_date":    due.UTC().Format(time.RFC3339),
		"type":        "assignment",
	}), fiber.StatusCreated, &assignment)
	return assignment.ID
}

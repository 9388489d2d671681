package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/database"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role, email string) models.User {
	t.Helper()
	user := models.User{Name: strings.Split(email, "@")[0], Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, instructorID uint, title string) models.Course {
	t.Helper()
	course := models.Course{InstructorID: instructorID, Title: title, Category: "General", Status: models.CourseStatusPublished}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func seedAssignment(t *testing.T, db *gorm.DB, courseID uint, maxPoints int, due time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		CourseID:  courseID,
		Title:     fmt.Sprintf("Assignment due %s", due.Format(time.RFC3339)),
		MaxPoints: maxPoints,
		DueDate:   due,
		Type:      models.AssignmentTypeAssignment,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

func ptrUint(v uint) *uint {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

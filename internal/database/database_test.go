package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/models"
)

func TestConnectRedis(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr()+"/0", "learnhub-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	_, err = ConnectRedis(context.Background(), "", "learnhub-test")
	require.Error(t, err)

	_, err = ConnectRedis(context.Background(), "not a url", "learnhub-test")
	require.Error(t, err)
}

func TestMigrateEnforcesUniqueEnrollment(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:database_migrate?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	student := models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x", Role: models.RoleStudent}
	admin := models.User{Name: "Budi", Email: "budi@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&admin).Error)

	course := models.Course{InstructorID: admin.ID, Title: "Go", Category: "General", Status: models.CourseStatusPublished}
	require.NoError(t, db.Create(&course).Error)

	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: course.ID, Status: models.EnrollmentStatusActive}).Error)
	err = db.Create(&models.Enrollment{StudentID: student.ID, CourseID: course.ID, Status: models.EnrollmentStatusActive}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestConnectPostgresRejectsEmptyDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
}

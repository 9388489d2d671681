package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/models"
)

func TestAssignmentCreateAndListForStudent(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	courseID := world.createCourse(t, &admin, "Algorithms")
	assignmentID := world.createAssignment(t, &admin, courseID, 50, time.Now().Add(48*time.Hour))

	var assignments []dto.AssignmentResponse
	expect(t, world.do(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/assignments", courseID), &student, nil), fiber.StatusOK, &assignments)
	require.Len(t, assignments, 1)
	require.Equal(t, assignmentID, assignments[0].ID)
	require.Equal(t, 50, assignments[0].MaxPoints)
	require.Nil(t, assignments[0].MySubmission)
}

func TestAssignmentCreateRejectsInvalidPayload(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	courseID := world.createCourse(t, &admin, "Algorithms")

	body := expect(t, world.do(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/assignments", courseID), &admin, map[string]interface{}{
		"title":       "Sorting",
		"description": "Quick sort",
		"due_date":    "next friday",
		"type":        "assignment",
	}), fiber.StatusUnprocessableEntity, nil)
	require.Equal(t, "datetime", body.Details["due_date"])

	expect(t, world.do(t, http.MethodPost, "/api/v1/courses/999/assignments", &admin, map[string]interface{}{
		"title":       "Sorting",
		"description": "Quick sort",
		"due_date":    time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		"type":        "assignment",
	}), fiber.StatusNotFound, nil)
}

func TestAssignmentUpdateAndDelete(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	owner := world.seedUser(t, models.RoleAdmin, "owner@learnhub.test")
	other := world.seedUser(t, models.RoleAdmin, "other@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	courseID := world.createCourse(t, &owner, "Networks")
	assignmentID := world.createAssignment(t, &owner, courseID, 100, time.Now().Add(time.Hour))
	path := fmt.Sprintf("/api/v1/assignments/%d", assignmentID)

	expect(t, world.do(t, http.MethodPut, path, &student, map[string]int{"max_points": 10}), fiber.StatusForbidden, nil)
	expect(t, world.do(t, http.MethodPut, path, &other, map[string]int{"max_points": 10}), fiber.StatusForbidden, nil)

	var updated dto.AssignmentResponse
	expect(t, world.do(t, http.MethodPut, path, &owner, map[string]int{"max_points": 80}), fiber.StatusOK, &updated)
	require.Equal(t, 80, updated.MaxPoints)

	expect(t, world.do(t, http.MethodDelete, path, &owner, nil), fiber.StatusOK, nil)
	expect(t, world.do(t, http.MethodDelete, path, &owner, nil), fiber.StatusNotFound, nil)
}

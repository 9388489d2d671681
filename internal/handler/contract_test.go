package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learnhub-api/internal/models"
)

func compileContract(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func requireContract(t *testing.T, schema *jsonschema.Schema, resp *http.Response, status int) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload), string(body))
}

func TestStudentDashboardContract(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	courseID := world.createCourse(t, &admin, "Graphics")
	expect(t, world.do(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/enroll", courseID), &student, nil), fiber.StatusCreated, nil)
	assignmentID := world.createAssignment(t, &admin, courseID, 20, time.Now().Add(time.Hour))
	submissionID := submitAs(t, world, &student, assignmentID)
	expect(t, world.do(t, http.MethodPost, fmt.Sprintf("/api/v1/submissions/%d/grade", submissionID), &admin, map[string]int{"score": 17}), fiber.StatusCreated, nil)

	schema := compileContract(t, "student_dashboard.schema.json")
	requireContract(t, schema, world.do(t, http.MethodGet, "/api/v1/student/dashboard", &student, nil), fiber.StatusOK)
}

func TestGradeContract(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	courseID := world.createCourse(t, &admin, "Graphics")
	assignmentID := world.createAssignment(t, &admin, courseID, 20, time.Now().Add(time.Hour))
	submissionID := submitAs(t, world, &student, assignmentID)

	schema := compileContract(t, "grade.schema.json")
	requireContract(t, schema, world.do(t, http.MethodPost, fmt.Sprintf("/api/v1/submissions/%d/grade", submissionID), &admin, map[string]interface{}{"score": 13, "feedback": "ok"}), fiber.StatusCreated)
	requireContract(t, schema, world.do(t, http.MethodGet, fmt.Sprintf("/api/v1/submissions/%d/grade", submissionID), &student, nil), fiber.StatusOK)
}

func TestErrorEnvelopeContract(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	schema := compileContract(t, "error_envelope.schema.json")
	requireContract(t, schema, world.do(t, http.MethodPost, "/api/v1/courses", &admin, map[string]string{}), fiber.StatusUnprocessableEntity)
	requireContract(t, schema, world.do(t, http.MethodPost, "/api/v1/courses", &student, map[string]string{"title": "x"}), fiber.StatusForbidden)
	requireContract(t, schema, world.do(t, http.MethodGet, "/api/v1/courses/77", &student, nil), fiber.StatusNotFound)
	requireContract(t, schema, world.do(t, http.MethodGet, "/api/v1/student/dashboard", nil, nil), fiber.StatusUnauthorized)
}

func TestDashboardLatencyP95(t *testing.T) {
	if testing.Short() {
		t.Skip("latency measurement skipped in short mode")
	}

	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	courseID := world.createCourse(t, &admin, "Throughput")
	expect(t, world.do(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/enroll", courseID), &student, nil), fiber.StatusCreated, nil)
	for i := 0; i < 8; i++ {
		assignmentID := world.createAssignment(t, &admin, courseID, 100, time.Now().Add(time.Duration(i+1)*time.Hour))
		submitAs(t, world, &student, assignmentID)
	}

	const runs = 40
	durations := make([]time.Duration, 0, runs)
	for i := 0; i < runs; i++ {
		start := time.Now()
		resp := world.do(t, http.MethodGet, "/api/v1/student/dashboard", &student, nil)
		durations = append(durations, time.Since(start))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	}

	require.Less(t, percentile(durations, 0.95), 250*time.Millisecond)
}

func percentile(durations []time.Duration, p float64) time.Duration {
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}

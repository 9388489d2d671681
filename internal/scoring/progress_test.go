package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestStudentStatsEmpty(t *testing.T) {
	stats := StudentStats(nil)
	require.Equal(t, Stats{}, stats)
	require.Nil(t, stats.AverageGrade)
}

func TestStudentStatsCounts(t *testing.T) {
	records := []SubmissionRecord{
		{Status: StatusSubmitted},
		{Status: StatusSubmitted},
		{Status: StatusLate},
		{Status: StatusGraded, Score: intPtr(80)},
		{Status: StatusGraded, Score: intPtr(95)},
	}

	stats := StudentStats(records)
	require.Equal(t, 5, stats.TotalSubmitted)
	require.Equal(t, 2, stats.Graded)
	require.Equal(t, 2, stats.PendingGrade)
	require.Equal(t, 1, stats.LateSubmissions)
	require.NotNil(t, stats.AverageGrade)
	require.Equal(t, 87.5, *stats.AverageGrade)
}

func TestStudentStatsAverageIsUnrounded(t *testing.T) {
	stats := StudentStats([]SubmissionRecord{
		{Status: StatusGraded, Score: intPtr(1)},
		{Status: StatusGraded, Score: intPtr(1)},
		{Status: StatusGraded, Score: intPtr(2)},
	})
	require.InDelta(t, 4.0/3.0, *stats.AverageGrade, 1e-12)
}

func TestCourseAverageRoundsHalfUp(t *testing.T) {
	require.Nil(t, CourseAverage(nil))

	average := CourseAverage([]int{1, 1, 2})
	require.Equal(t, 1.33, *average)

	average = CourseAverage([]int{0, 0, 0, 0, 0, 0, 0, 1})
	require.Equal(t, 0.13, *average)

	average = CourseAverage([]int{90, 85})
	require.Equal(t, 87.5, *average)
}

func TestUpdateProgress(t *testing.T) {
	state := EnrollmentState{Status: EnrollmentActive}

	updated, err := UpdateProgress(state, 40)
	require.NoError(t, err)
	require.Equal(t, 40, updated.ProgressPercentage)

	_, err = UpdateProgress(state, 101)
	require.ErrorIs(t, err, ErrProgressOutOfRange)

	_, err = UpdateProgress(state, -1)
	require.ErrorIs(t, err, ErrProgressOutOfRange)
}

func TestCompleteForcesFullProgress(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	state, err := Complete(EnrollmentState{Status: EnrollmentActive, ProgressPercentage: 35}, now)
	require.NoError(t, err)

	require.Equal(t, EnrollmentCompleted, state.Status)
	require.Equal(t, 100, state.ProgressPercentage)
	require.NotNil(t, state.CompletedAt)
	require.True(t, state.CompletedAt.Equal(now))

	_, err = UpdateProgress(state, 50)
	require.ErrorIs(t, err, ErrEnrollmentCompleted)

	again, err := Complete(state, now.Add(48*time.Hour))
	require.ErrorIs(t, err, ErrEnrollmentCompleted)
	require.True(t, again.CompletedAt.Equal(now))

	kept, err := UpdateProgress(state, 100)
	require.NoError(t, err)
	require.Equal(t, state, CourseProgress(kept))
}

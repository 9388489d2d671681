package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecideLateBoundary(t *testing.T) {
	due := time.Date(2025, 5, 10, 23, 59, 0, 0, time.UTC)
	window := AssignmentWindow{MaxPoints: 100, DueAt: due}

	onTime, err := Decide(window, nil, due)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, onTime.Status)
	require.True(t, onTime.IncrementCounter)

	late, err := Decide(window, nil, due.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, StatusLate, late.Status)
	require.True(t, late.IncrementCounter)
}

func TestDecideRejectsDuplicateRegardlessOfTime(t *testing.T) {
	due := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	window := AssignmentWindow{MaxPoints: 100, DueAt: due}
	existing := &SubmissionState{StudentID: 7, Status: StatusSubmitted}

	for _, now := range []time.Time{due.Add(-time.Hour), due, due.Add(time.Hour)} {
		decision, err := Decide(window, existing, now)
		require.ErrorIs(t, err, ErrDuplicateSubmission)
		require.False(t, decision.IncrementCounter)
	}
}

func TestAuthorizeUpdate(t *testing.T) {
	require.NoError(t, AuthorizeUpdate(SubmissionState{StudentID: 3, Status: StatusSubmitted}, 3))
	require.NoError(t, AuthorizeUpdate(SubmissionState{StudentID: 3, Status: StatusLate}, 3))
	require.ErrorIs(t, AuthorizeUpdate(SubmissionState{StudentID: 3, Status: StatusSubmitted}, 4), ErrUnauthorized)
	require.ErrorIs(t, AuthorizeUpdate(SubmissionState{StudentID: 3, Status: StatusGraded}, 3), ErrUnauthorized)
}

func TestDecideEnrollment(t *testing.T) {
	require.NoError(t, DecideEnrollment(false))
	require.ErrorIs(t, DecideEnrollment(true), ErrAlreadyEnrolled)
}

func TestLookupGrade(t *testing.T) {
	_, err := LookupGrade(SubmissionRecord{Status: StatusSubmitted})
	require.ErrorIs(t, err, ErrNotGraded)

	score, err := LookupGrade(SubmissionRecord{Status: StatusGraded, Score: intPtr(77)})
	require.NoError(t, err)
	require.Equal(t, 77, score)
}

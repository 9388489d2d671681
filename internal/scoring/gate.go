package scoring

import "time"

// AssignmentWindow is the part of an assignment the gate and calculator need.
type AssignmentWindow struct {
	MaxPoints int
	DueAt     time.Time
}

// SubmissionState identifies an existing submission's owner and status.
type SubmissionState struct {
	StudentID uint
	Status    Status
}

// Decision is the outcome of accepting a new submission.
type Decision struct {
	Status Status
	// IncrementCounter is set only for accepted submissions.
	IncrementCounter bool
}

// IsLate reports whether now is strictly after the due time.
func (w AssignmentWindow) IsLate(now time.Time) bool {
	return now.After(w.DueAt)
}

// Decide accepts or rejects a new submission for an (assignment, student) pair.
func Decide(window AssignmentWindow, existing *SubmissionState, now time.Time) (Decision, error) {
	if existing != nil {
		return Decision{}, ErrDuplicateSubmission
	}

	status := StatusSubmitted
	if window.IsLate(now) {
		status = StatusLate
	}

	return Decision{Status: status, IncrementCounter: true}, nil
}

// AuthorizeUpdate allows content edits only by the owner and only before grading.
func AuthorizeUpdate(state SubmissionState, identity uint) error {
	if state.StudentID != identity || state.Status == StatusGraded {
		return ErrUnauthorized
	}
	return nil
}

// DecideEnrollment rejects a second enrollment in the same course.
func DecideEnrollment(alreadyEnrolled bool) error {
	if alreadyEnrolled {
		return ErrAlreadyEnrolled
	}
	return nil
}

// LookupGrade returns the grade score of a submission.
func LookupGrade(record SubmissionRecord) (int, error) {
	if record.Score == nil {
		return 0, ErrNotGraded
	}
	return *record.Score, nil
}

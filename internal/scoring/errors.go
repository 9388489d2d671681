package scoring

import "errors"

var (
	// ErrDivisionByZero indicates an assignment without a positive point maximum.
	ErrDivisionByZero = errors.New("assignment max points must be greater than zero")
	// ErrDuplicateSubmission indicates the student already submitted the assignment.
	ErrDuplicateSubmission = errors.New("assignment already submitted")
	// ErrAlreadyEnrolled indicates the student is already enrolled in the course.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrUnauthorized indicates a submission change by a non-owner or after grading.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotGraded indicates the submission has no grade yet.
	ErrNotGraded = errors.New("not graded yet")
	// ErrProgressOutOfRange indicates a progress value outside 0..100.
	ErrProgressOutOfRange = errors.New("progress percentage must be between 0 and 100")
	// ErrEnrollmentCompleted indicates a progress change on a completed enrollment.
	ErrEnrollmentCompleted = errors.New("enrollment already completed")
)

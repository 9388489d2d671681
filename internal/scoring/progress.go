package scoring

import (
	"math"
	"time"
)

// Status is the lifecycle state of a submission.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusLate      Status = "late"
	StatusGraded    Status = "graded"
)

// SubmissionRecord is a submission together with the score of its grade, if any.
type SubmissionRecord struct {
	Status Status
	Score  *int
}

// Stats summarises a student's submissions.
type Stats struct {
	TotalSubmitted  int      `json:"total_submitted"`
	Graded          int      `json:"graded"`
	PendingGrade    int      `json:"pending_grade"`
	LateSubmissions int      `json:"late_submissions"`
	AverageGrade    *float64 `json:"average_grade"`
}

// StudentStats aggregates submission counts and the unrounded mean score.
func StudentStats(records []SubmissionRecord) Stats {
	stats := Stats{TotalSubmitted: len(records)}

	var total int64
	var scored int
	for _, record := range records {
		switch record.Status {
		case StatusGraded:
			stats.Graded++
		case StatusLate:
			stats.LateSubmissions++
		case StatusSubmitted:
			if record.Score == nil {
				stats.PendingGrade++
			}
		}

		if record.Score != nil {
			total += int64(*record.Score)
			scored++
		}
	}

	if scored > 0 {
		average := float64(total) / float64(scored)
		stats.AverageGrade = &average
	}

	return stats
}

// CourseAverage returns the mean score rounded half-up to two decimals, or nil when empty.
func CourseAverage(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}

	var total int64
	for _, score := range scores {
		total += int64(score)
	}

	count := int64(len(scores))
	var rounded float64
	if total >= 0 {
		// floor(100*total/count + 0.5) in integers.
		hundredths := (200*total + count) / (2 * count)
		rounded = float64(hundredths) / 100
	} else {
		rounded = math.Floor(float64(total)*100/float64(count)+0.5) / 100
	}

	return &rounded
}

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// EnrollmentState carries the progress fields of an enrollment.
type EnrollmentState struct {
	Status             EnrollmentStatus
	ProgressPercentage int
	CompletedAt        *time.Time
}

// CourseProgress reports the stored progress; it is never derived from submissions.
func CourseProgress(state EnrollmentState) EnrollmentState {
	return state
}

// UpdateProgress sets progress directly.
func UpdateProgress(state EnrollmentState, percentage int) (EnrollmentState, error) {
	if percentage < 0 || percentage > 100 {
		return state, ErrProgressOutOfRange
	}
	if state.Status == EnrollmentCompleted && percentage != 100 {
		return state, ErrEnrollmentCompleted
	}

	state.ProgressPercentage = percentage
	return state, nil
}

// Complete marks the enrollment completed and forces progress to 100.
// An enrollment completes once; CompletedAt is never moved.
func Complete(state EnrollmentState, now time.Time) (EnrollmentState, error) {
	if state.Status == EnrollmentCompleted {
		return state, ErrEnrollmentCompleted
	}
	state.Status = EnrollmentCompleted
	state.ProgressPercentage = 100
	completedAt := now
	state.CompletedAt = &completedAt
	return state, nil
}

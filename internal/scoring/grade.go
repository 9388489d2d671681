// Package scoring holds the pure grading, progress and submission lifecycle rules.
// Nothing here performs I/O; callers load entities, call in, and persist the result.
package scoring

// Letter is a letter grade derived from a percentage score.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	LetterF Letter = "F"
)

// letterThresholds is ordered high to low; the first floor the percentage reaches wins.
var letterThresholds = []struct {
	floor  int64
	letter Letter
}{
	{90, LetterA},
	{80, LetterB},
	{70, LetterC},
	{60, LetterD},
}

// Result is the outcome of grading a score against an assignment maximum.
type Result struct {
	Score      int     `json:"score"`
	MaxPoints  int     `json:"max_points"`
	Percentage float64 `json:"percentage"`
	Letter     Letter  `json:"letter"`
}

// ComputePercentage returns 100*score/maxPoints. Scores above the maximum are not clamped.
func ComputePercentage(score, maxPoints int) (float64, error) {
	if maxPoints <= 0 {
		return 0, ErrDivisionByZero
	}

	return float64(int64(score)*100) / float64(maxPoints), nil
}

// ComputeLetter maps a score to a letter grade using the exact percentage.
func ComputeLetter(score, maxPoints int) (Letter, error) {
	if maxPoints <= 0 {
		return "", ErrDivisionByZero
	}

	// percentage >= floor  <=>  score*100 >= floor*maxPoints, kept in integers so
	// 90.0% is never read as 89.999...%.
	scaled := int64(score) * 100
	for _, threshold := range letterThresholds {
		if scaled >= threshold.floor*int64(maxPoints) {
			return threshold.letter, nil
		}
	}

	return LetterF, nil
}

// Evaluate grades a score. It is called on grade creation and on every score change.
func Evaluate(score, maxPoints int) (Result, error) {
	percentage, err := ComputePercentage(score, maxPoints)
	if err != nil {
		return Result{}, err
	}

	letter, err := ComputeLetter(score, maxPoints)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Score:      score,
		MaxPoints:  maxPoints,
		Percentage: percentage,
		Letter:     letter,
	}, nil
}

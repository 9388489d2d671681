package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeLetterBoundaries(t *testing.T) {
	cases := []struct {
		score  int
		max    int
		letter Letter
	}{
		{90, 100, LetterA},
		{89, 100, LetterB},
		{80, 100, LetterB},
		{79, 100, LetterC},
		{70, 100, LetterC},
		{69, 100, LetterD},
		{60, 100, LetterD},
		{59, 100, LetterF},
		{0, 100, LetterF},
		{45, 50, LetterA},
		{9, 10, LetterA},
		{7, 10, LetterC},
	}

	for _, tc := range cases {
		letter, err := ComputeLetter(tc.score, tc.max)
		require.NoError(t, err)
		require.Equal(t, tc.letter, letter, "score %d of %d", tc.score, tc.max)
	}
}

func TestComputePercentageExact(t *testing.T) {
	percentage, err := ComputePercentage(45, 50)
	require.NoError(t, err)
	require.Equal(t, 90.0, percentage)

	percentage, err = ComputePercentage(1, 3)
	require.NoError(t, err)
	require.InDelta(t, 33.333, percentage, 0.001)
}

func TestComputeLetterZeroMax(t *testing.T) {
	_, err := ComputeLetter(10, 0)
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = ComputePercentage(10, 0)
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = Evaluate(10, 0)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestComputeLetterDoesNotClampOverScore(t *testing.T) {
	result, err := Evaluate(120, 100)
	require.NoError(t, err)
	require.Equal(t, 120.0, result.Percentage)
	require.Equal(t, LetterA, result.Letter)
}

func TestComputeLetterMonotonic(t *testing.T) {
	rank := map[Letter]int{LetterF: 0, LetterD: 1, LetterC: 2, LetterB: 3, LetterA: 4}

	for _, max := range []int{1, 7, 10, 50, 100, 137} {
		previous := -1
		for score := 0; score <= max+5; score++ {
			letter, err := ComputeLetter(score, max)
			require.NoError(t, err)
			require.GreaterOrEqual(t, rank[letter], previous, "score %d of %d", score, max)
			previous = rank[letter]
		}
	}
}

func TestEvaluateRegradeIsStable(t *testing.T) {
	first, err := Evaluate(83, 100)
	require.NoError(t, err)

	second, err := Evaluate(first.Score, first.MaxPoints)
	require.NoError(t, err)
	require.Equal(t, first, second)

	fresh, err := ComputeLetter(83, 100)
	require.NoError(t, err)
	require.Equal(t, fresh, second.Letter)
}

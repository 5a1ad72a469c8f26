// Package domain holds the study-item model and the small value types
// shared across the FSRS engine, schedulers, and generator: Rating, JLPT
// level, item kind, review mode, and MCQ question shape.
package domain

import "strings"

// Rating is the user's (or, for MCQ, the derived) assessment of recall
// quality for a single review.
type Rating int

const (
	Again Rating = iota + 1 // 1 - complete failure, needs to be seen again soon
	Hard                    // 2 - recalled with difficulty
	Good                    // 3 - recalled correctly, standard interval
	Easy                    // 4 - recalled with no effort, longer interval
)

// String returns the human-readable name of the rating.
func (r Rating) String() string {
	switch r {
	case Again:
		return "Again"
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	default:
		return "Unknown"
	}
}

// Valid reports whether r is one of the four defined ratings.
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// ParseRating parses a numeric or symbolic rating string.
func ParseRating(input string) (Rating, error) {
	input = strings.TrimSpace(input)

	switch input {
	case "1", "again", "Again", "AGAIN", "a", "A":
		return Again, nil
	case "2", "hard", "Hard", "HARD", "h", "H":
		return Hard, nil
	case "3", "good", "Good", "GOOD", "g", "G":
		return Good, nil
	case "4", "easy", "Easy", "EASY", "e", "E":
		return Easy, nil
	default:
		return 0, &InvalidRatingError{Input: input}
	}
}

// InvalidRatingError indicates a rating input outside {1,2,3,4} (and its
// symbolic aliases).
type InvalidRatingError struct {
	Input string
}

func (e *InvalidRatingError) Error() string {
	return "invalid rating: " + e.Input + " (valid: 1-4, Again/Hard/Good/Easy, a/h/g/e)"
}

// RatingForCorrectness converts an MCQ correctness outcome to the rating
// the FSRS engine sees, per spec.md §4.4: correct -> Good, incorrect -> Again.
func RatingForCorrectness(isCorrect bool) Rating {
	if isCorrect {
		return Good
	}
	return Again
}

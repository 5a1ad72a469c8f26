// Package session batches due() results into an interactive review pass for
// the CLI, the way the teacher's internal/review package turned a deck's
// cards into a queue-driven Session. The sandbox-execution concerns of that
// package (command running, stdout/stderr capture) have no analogue here;
// what remains is the session bookkeeping: queue, progress, per-rating
// tallies.
package session

import (
	"time"

	"github.com/kaedesrs/kotoba/internal/domain"
)

// Options configures a review pass over due items.
type Options struct {
	JLPTLevel *string
	ItemKind  *string
	MaxItems  int
	Shuffle   bool
}

// Session is an active interactive review pass, scoped to one scheduler
// mode (flash or mcq).
type Session struct {
	ID             string
	Mode           domain.Mode
	StartedAt      time.Time
	ItemsReviewed  int
	ItemsRemaining int
	CurrentReview  *int
}

// Stats summarizes a completed session. RatingCounts is populated for
// flashcard sessions; CorrectCount/IncorrectCount for MCQ sessions.
type Stats struct {
	SessionID      string
	Mode           domain.Mode
	Duration       time.Duration
	ItemsReviewed  int
	RatingCounts   map[domain.Rating]int
	CorrectCount   int
	IncorrectCount int
}

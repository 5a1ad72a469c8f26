package scheduler

import (
	"time"

	"github.com/kaedesrs/kotoba/internal/storage"
)

// bumpStreak implements spec.md §4.6's streak maintenance, invoked after
// every successful apply regardless of scheduler mode: same calendar day is
// a no-op, the following day increments, any other gap resets to 1.
func bumpStreak(store storage.Store, now time.Time) error {
	progress, err := store.GetProgress()
	if err != nil {
		return err
	}

	today := truncateToDay(now)
	switch {
	case progress.LastReviewDate == nil:
		progress.StreakDays = 1
	default:
		last := truncateToDay(*progress.LastReviewDate)
		switch today.Sub(last) {
		case 0:
			// same day, no change
		case 24 * time.Hour:
			progress.StreakDays++
		default:
			progress.StreakDays = 1
		}
	}
	progress.LastReviewDate = &today
	return store.UpdateProgress(progress)
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

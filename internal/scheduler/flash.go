// Package scheduler implements the two parallel review schedulers of
// spec.md §4.3/§4.4: FlashScheduler (free-recall, four-level rating) and
// MCQScheduler (multiple-choice, correctness converted to a rating before
// delegating to the shared FSRS engine). Both share the catalog but never
// read or write each other's Review tables (spec.md §4.4's invariant).
// Grounded on the teacher's internal/scheduler.Scheduler wrapping shape and
// internal/review.Service's convert-then-schedule-then-persist pipeline.
package scheduler

import (
	"time"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// FlashScheduler is the free-recall scheduler of spec.md §4.3.
type FlashScheduler struct {
	store  storage.Store
	engine *fsrsengine.Engine
}

func NewFlashScheduler(store storage.Store, engine *fsrsengine.Engine) *FlashScheduler {
	return &FlashScheduler{store: store, engine: engine}
}

// CreateReview mints a fresh Review for (itemID, kind). Preconditions: item
// exists. Fails with Conflict if a review already exists for the pair.
func (s *FlashScheduler) CreateReview(itemID int, kind domain.ItemKind, now time.Time) (int, error) {
	if _, err := s.store.GetItem(itemID, kind); err != nil {
		return 0, err
	}
	if _, err := s.store.GetFlashReviewByItem(itemID, kind); err == nil {
		return 0, apperr.New(apperr.Conflict, "flashcard review already exists for this item")
	} else if !apperr.IsNotFound(err) {
		return 0, err
	}

	review, err := s.store.CreateFlashReview(itemID, kind, now)
	if err != nil {
		return 0, err
	}
	return review.ID, nil
}

// Due returns reviews due at or before asOf, ascending by due then id,
// filters composed conjunctively, limit truncating after filtering.
func (s *FlashScheduler) Due(limit int, jlptLevel *string, itemKind *string, asOf time.Time) ([]storage.FlashReview, error) {
	return s.store.DueFlashReviews(storage.DueFilter{
		JLPTLevel: jlptLevel,
		ItemKind:  itemKind,
		AsOf:      asOf,
		Limit:     limit,
	})
}

// ReviewByItem returns the Review for (itemID, kind), or NotFound.
func (s *FlashScheduler) ReviewByItem(itemID int, kind domain.ItemKind) (*storage.FlashReview, error) {
	return s.store.GetFlashReviewByItem(itemID, kind)
}

// Count returns the number of flashcard reviews matching the filter.
func (s *FlashScheduler) Count(jlptLevel *string, itemKind *string) (int, error) {
	return s.store.CountFlashReviews(storage.CountFilter{JLPTLevel: jlptLevel, ItemKind: itemKind})
}

// Apply validates rating, computes the new Card state via the FSRS engine,
// and commits the Review update plus a history row atomically. Any database
// error aborts the transaction: the caller sees Backend and no state change.
func (s *FlashScheduler) Apply(reviewID int, rating domain.Rating, durationMs *int, now time.Time) (*storage.FlashReview, error) {
	if !rating.Valid() {
		return nil, apperr.New(apperr.Invalid, "rating must be one of 1..4")
	}

	review, err := s.store.GetFlashReview(reviewID)
	if err != nil {
		return nil, err
	}

	_, card, err := fsrsengine.Deserialize(review.FSRSBlob)
	if err != nil {
		return nil, err
	}

	updated, _, err := s.engine.Apply(card, rating, now)
	if err != nil {
		return nil, err
	}

	result, err := s.store.ApplyFlashReview(reviewID, updated, rating, durationMs, now)
	if err != nil {
		return nil, err
	}
	if err := bumpStreak(s.store, now); err != nil {
		return nil, err
	}
	return result, nil
}

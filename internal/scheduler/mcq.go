package scheduler

import (
	"time"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// MCQScheduler is the multiple-choice scheduler of spec.md §4.4. It shares
// the catalog and the FSRS engine with FlashScheduler but persists to its
// own independent review/history tables.
type MCQScheduler struct {
	store  storage.Store
	engine *fsrsengine.Engine
}

func NewMCQScheduler(store storage.Store, engine *fsrsengine.Engine) *MCQScheduler {
	return &MCQScheduler{store: store, engine: engine}
}

func (s *MCQScheduler) CreateReview(itemID int, kind domain.ItemKind, now time.Time) (int, error) {
	if _, err := s.store.GetItem(itemID, kind); err != nil {
		return 0, err
	}
	if _, err := s.store.GetMCQReviewByItem(itemID, kind); err == nil {
		return 0, apperr.New(apperr.Conflict, "mcq review already exists for this item")
	} else if !apperr.IsNotFound(err) {
		return 0, err
	}

	review, err := s.store.CreateMCQReview(itemID, kind, now)
	if err != nil {
		return 0, err
	}
	return review.ID, nil
}

func (s *MCQScheduler) Due(limit int, jlptLevel *string, itemKind *string, asOf time.Time) ([]storage.MCQReview, error) {
	return s.store.DueMCQReviews(storage.DueFilter{
		JLPTLevel: jlptLevel,
		ItemKind:  itemKind,
		AsOf:      asOf,
		Limit:     limit,
	})
}

func (s *MCQScheduler) ReviewByItem(itemID int, kind domain.ItemKind) (*storage.MCQReview, error) {
	return s.store.GetMCQReviewByItem(itemID, kind)
}

func (s *MCQScheduler) Count(jlptLevel *string, itemKind *string) (int, error) {
	return s.store.CountMCQReviews(storage.CountFilter{JLPTLevel: jlptLevel, ItemKind: itemKind})
}

// Apply converts the user's option selection to correctness, converts
// correctness to a Rating (domain.RatingForCorrectness, spec.md §4.4), and
// commits the Card update plus an MCQ history row atomically.
func (s *MCQScheduler) Apply(reviewID int, selectedOption int, correctIndex int, durationMs *int, now time.Time) (*storage.MCQReview, error) {
	review, err := s.store.GetMCQReview(reviewID)
	if err != nil {
		return nil, err
	}

	_, card, err := fsrsengine.Deserialize(review.FSRSBlob)
	if err != nil {
		return nil, err
	}

	isCorrect := selectedOption == correctIndex
	rating := domain.RatingForCorrectness(isCorrect)

	updated, _, err := s.engine.Apply(card, rating, now)
	if err != nil {
		return nil, err
	}

	result, err := s.store.ApplyMCQReview(reviewID, updated, selectedOption, isCorrect, durationMs, now)
	if err != nil {
		return nil, err
	}
	if err := bumpStreak(s.store, now); err != nil {
		return nil, err
	}
	return result, nil
}

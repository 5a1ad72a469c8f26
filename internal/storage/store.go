package storage

import (
	"time"

	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
)

// Store is the persistence port consumed by the scheduler, catalog, and
// statistics packages, the way the teacher's Storage interface decoupled
// internal/review from *DB. *DB is the only implementation; tests may
// substitute a fake satisfying the same surface.
type Store interface {
	CreateVocabItem(item *domain.VocabItem) error
	CreateKanjiItem(item *domain.KanjiItem) error
	GetItem(id int, kind domain.ItemKind) (domain.Item, error)
	UpdateItem(item domain.Item) error
	ListItems(filter ListItemsFilter) ([]domain.Item, error)

	CreateFlashReview(itemID int, kind domain.ItemKind, now time.Time) (*FlashReview, error)
	GetFlashReview(id int) (*FlashReview, error)
	GetFlashReviewByItem(itemID int, kind domain.ItemKind) (*FlashReview, error)
	DueFlashReviews(filter DueFilter) ([]FlashReview, error)
	CountFlashReviews(filter CountFilter) (int, error)
	AllFlashReviews(filter CountFilter) ([]FlashReview, error)
	ApplyFlashReview(reviewID int, card fsrsengine.Card, rating domain.Rating, durationMs *int, reviewedAt time.Time) (*FlashReview, error)
	FlashHistoryInRange(filter DateRangeFilter) ([]FlashHistory, error)

	CreateMCQReview(itemID int, kind domain.ItemKind, now time.Time) (*MCQReview, error)
	GetMCQReview(id int) (*MCQReview, error)
	GetMCQReviewByItem(itemID int, kind domain.ItemKind) (*MCQReview, error)
	DueMCQReviews(filter DueFilter) ([]MCQReview, error)
	CountMCQReviews(filter CountFilter) (int, error)
	AllMCQReviews(filter CountFilter) ([]MCQReview, error)
	ApplyMCQReview(reviewID int, card fsrsengine.Card, selectedOption int, isCorrect bool, durationMs *int, reviewedAt time.Time) (*MCQReview, error)
	MCQHistoryInRange(filter DateRangeFilter) ([]MCQHistory, error)
	MCQHistoryFiltered(filter MCQHistoryFilter) ([]MCQHistoryEntry, error)

	GetProgress() (*Progress, error)
	UpdateProgress(p *Progress) error

	Close() error
}

var _ Store = (*DB)(nil)

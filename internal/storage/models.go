package storage

import "time"

// VocabRow and KanjiRow are the row-mapped persistence shapes for the two
// polymorphic item variants (spec.md §3). List/tag/meaning fields are stored
// as canonical JSON-encoded TEXT columns (spec.md §6) and decoded by the
// mapping helpers in items.go into domain.VocabItem/domain.KanjiItem.
type VocabRow struct {
	ID           int
	JLPT         string
	Surface      string
	Reading      string
	SinoViet     *string
	PartOfSp     string
	TagsJSON     string
	MeaningsJSON string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type KanjiRow struct {
	ID              int
	JLPT            string
	Surface         string
	OnReadingsJSON  string
	KunReadingsJSON string
	SinoViet        *string
	StrokeCount     *int
	Radical         *string
	MeaningsJSON    string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FlashReview / MCQReview are the two parallel Review kinds of spec.md §3.
// FSRSBlob is the opaque card-state blob produced by fsrsengine.Serialize;
// only fsrsengine may interpret it.
type FlashReview struct {
	ID           int
	ItemID       int
	ItemKind     string
	FSRSBlob     []byte
	Due          time.Time
	LastReviewed *time.Time
	ReviewCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MCQReview struct {
	ID           int
	ItemID       int
	ItemKind     string
	FSRSBlob     []byte
	Due          time.Time
	LastReviewed *time.Time
	ReviewCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FlashHistory / MCQHistory are the append-only per-applied-review log rows.
type FlashHistory struct {
	ID         int
	ReviewID   int
	Rating     int
	DurationMs *int
	ReviewedAt time.Time
}

type MCQHistory struct {
	ID             int
	ReviewID       int
	SelectedOption int
	IsCorrect      bool
	DurationMs     *int
	ReviewedAt     time.Time
}

// Milestone is one entry in Progress.Milestones (SPEC_FULL.md §6): a
// concrete encoding spec.md leaves as an opaque blob.
type Milestone struct {
	Label      string    `json:"label"`
	AchievedAt time.Time `json:"achieved_at"`
}

// Progress is the singleton per-user record of spec.md §3.
type Progress struct {
	UserID         string
	CurrentLevel   string
	TargetLevel    string
	Milestones     []Milestone
	StreakDays     int
	LastReviewDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListItemsFilter composes conjunctively per spec.md §6's catalog read API.
type ListItemsFilter struct {
	Kind             string
	JLPTLevel        *string
	ReadingPrefix    *string
	MeaningSubstring *string
	Language         string
	Radical          *string
	StrokeCountMin   *int
	StrokeCountMax   *int
	ExcludeIDs       []int
	Limit            int
}

// DueFilter composes the flash/mcq scheduler's due() filters (spec.md §4.3).
type DueFilter struct {
	JLPTLevel *string
	ItemKind  *string
	AsOf      time.Time
	Limit     int
}

// CountFilter is the narrower filter set of count() (spec.md §4.3).
type CountFilter struct {
	JLPTLevel *string
	ItemKind  *string
}

// DateRangeFilter bounds a statistics query to [Start, End] inclusive on
// reviewed_at, per spec.md §4.6. A zero value means unbounded.
type DateRangeFilter struct {
	Start *time.Time
	End   *time.Time
}

// MCQHistoryFilter narrows MCQHistoryFiltered by the subject item's kind
// and jlpt_level (spec.md §4.6's mcq_accuracy_rate(item_kind?, jlpt_level?)),
// in addition to the usual reviewed_at date range.
type MCQHistoryFilter struct {
	ItemKind  *string
	JLPTLevel *string
	Start     *time.Time
	End       *time.Time
}

// MCQHistoryEntry is an MCQHistory row joined with its review's item
// identity, so statistics can group by kind without a second round trip.
type MCQHistoryEntry struct {
	MCQHistory
	ItemID   int
	ItemKind string
}

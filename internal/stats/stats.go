// Package stats implements spec.md §4.6's pure, read-only derivations over
// the store: counts by level, mastery, retention, durations, daily counts,
// most-reviewed items, and MCQ accuracy/bias. Grounded on the teacher's
// convention of a thin struct-returning method per query rather than a
// generic reporting DSL.
package stats

import (
	"sort"
	"time"

	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// masteryThresholdDays is the glossary's mastery threshold: a Review whose
// Card.stability is at least this many days.
const masteryThresholdDays = 21.0

// Stats wraps a storage.Store with read-only derivations. All methods are
// pure functions of the store's current contents; none mutate state.
type Stats struct {
	store storage.Store
}

func New(store storage.Store) *Stats {
	return &Stats{store: store}
}

// DailyCount is one entry of daily_review_counts()'s ordered sequence.
type DailyCount struct {
	Date  time.Time
	Count int
}

// ItemReviewCount is one entry of most_reviewed()'s ranking.
type ItemReviewCount struct {
	ItemID      int
	ItemKind    domain.ItemKind
	ReviewCount int
}

// KindStats is one entry of mcq_stats_by_type()'s {vocab,kanji,overall} map.
type KindStats struct {
	Total    int
	Correct  int
	Accuracy float64
}

// MCQStatsByType is the full shape of spec.md §4.6's mcq_stats_by_type().
type MCQStatsByType struct {
	Vocab   KindStats
	Kanji   KindStats
	Overall KindStats
}

// VocabCountByLevel implements vocab_count_by_level(): a mapping from JLPT
// tag to the number of vocabulary items at that level.
func (s *Stats) VocabCountByLevel() (map[domain.JLPTLevel]int, error) {
	return s.countItemsByLevel(domain.KindVocab)
}

// KanjiCountByLevel implements kanji_count_by_level().
func (s *Stats) KanjiCountByLevel() (map[domain.JLPTLevel]int, error) {
	return s.countItemsByLevel(domain.KindKanji)
}

func (s *Stats) countItemsByLevel(kind domain.ItemKind) (map[domain.JLPTLevel]int, error) {
	items, err := s.store.ListItems(storage.ListItemsFilter{Kind: string(kind)})
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.JLPTLevel]int)
	for _, item := range items {
		counts[item.Level()]++
	}
	return counts, nil
}

// Mastered implements mastered(kind): the count of Reviews of the given mode
// and item kind whose Card.stability is at least 21 days. Since Review
// state is mode-scoped (spec.md §4.4's non-interference invariant), mode
// must be supplied explicitly rather than inferred.
func (s *Stats) Mastered(mode domain.Mode, kind *domain.ItemKind) (int, error) {
	var kindStr *string
	if kind != nil {
		s := string(*kind)
		kindStr = &s
	}
	filter := storage.CountFilter{ItemKind: kindStr}

	switch mode {
	case domain.ModeFlash:
		reviews, err := s.store.AllFlashReviews(filter)
		if err != nil {
			return 0, err
		}
		count := 0
		for _, r := range reviews {
			_, card, err := fsrsengine.Deserialize(r.FSRSBlob)
			if err != nil {
				return 0, err
			}
			if card.Stability != nil && *card.Stability >= masteryThresholdDays {
				count++
			}
		}
		return count, nil
	case domain.ModeMCQ:
		reviews, err := s.store.AllMCQReviews(filter)
		if err != nil {
			return 0, err
		}
		count := 0
		for _, r := range reviews {
			_, card, err := fsrsengine.Deserialize(r.FSRSBlob)
			if err != nil {
				return 0, err
			}
			if card.Stability != nil && *card.Stability >= masteryThresholdDays {
				count++
			}
		}
		return count, nil
	default:
		return 0, nil
	}
}

// RetentionRate implements retention_rate(): 100 * (#flashcard history rows
// rated Good or Easy) / (#flashcard history rows), over the optional date
// range. Returns 0 when the denominator is 0.
func (s *Stats) RetentionRate(dateRange storage.DateRangeFilter) (float64, error) {
	history, err := s.store.FlashHistoryInRange(dateRange)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 {
		return 0, nil
	}
	retained := 0
	for _, h := range history {
		rating := domain.Rating(h.Rating)
		if rating == domain.Good || rating == domain.Easy {
			retained++
		}
	}
	return 100 * float64(retained) / float64(len(history)), nil
}

// AvgReviewDurationMs implements avg_review_duration_ms(): the mean of
// non-null duration_ms across filtered flashcard and MCQ history combined,
// since spec.md does not scope this metric to a single mode.
func (s *Stats) AvgReviewDurationMs(dateRange storage.DateRangeFilter) (float64, error) {
	flash, err := s.store.FlashHistoryInRange(dateRange)
	if err != nil {
		return 0, err
	}
	mcq, err := s.store.MCQHistoryInRange(dateRange)
	if err != nil {
		return 0, err
	}

	sum, count := 0, 0
	for _, h := range flash {
		if h.DurationMs != nil {
			sum += *h.DurationMs
			count++
		}
	}
	for _, h := range mcq {
		if h.DurationMs != nil {
			sum += *h.DurationMs
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}

// DailyReviewCounts implements daily_review_counts(): an ordered sequence
// of (date, count) over the date range, counting both flashcard and MCQ
// review activity.
func (s *Stats) DailyReviewCounts(dateRange storage.DateRangeFilter) ([]DailyCount, error) {
	flash, err := s.store.FlashHistoryInRange(dateRange)
	if err != nil {
		return nil, err
	}
	mcq, err := s.store.MCQHistoryInRange(dateRange)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]int)
	for _, h := range flash {
		byDay[truncateToDay(h.ReviewedAt)]++
	}
	for _, h := range mcq {
		byDay[truncateToDay(h.ReviewedAt)]++
	}

	out := make([]DailyCount, 0, len(byDay))
	for day, count := range byDay {
		out = append(out, DailyCount{Date: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// MostReviewed implements most_reviewed(limit): the top items by lifetime
// review_count, summed across both flashcard and MCQ reviews for that item.
func (s *Stats) MostReviewed(limit int) ([]ItemReviewCount, error) {
	flash, err := s.store.AllFlashReviews(storage.CountFilter{})
	if err != nil {
		return nil, err
	}
	mcq, err := s.store.AllMCQReviews(storage.CountFilter{})
	if err != nil {
		return nil, err
	}

	type key struct {
		id   int
		kind string
	}
	totals := make(map[key]int)
	for _, r := range flash {
		totals[key{r.ItemID, r.ItemKind}] += r.ReviewCount
	}
	for _, r := range mcq {
		totals[key{r.ItemID, r.ItemKind}] += r.ReviewCount
	}

	out := make([]ItemReviewCount, 0, len(totals))
	for k, total := range totals {
		out = append(out, ItemReviewCount{ItemID: k.id, ItemKind: domain.ItemKind(k.kind), ReviewCount: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReviewCount != out[j].ReviewCount {
			return out[i].ReviewCount > out[j].ReviewCount
		}
		return out[i].ItemID < out[j].ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MCQAccuracyRate implements mcq_accuracy_rate(item_kind?, jlpt_level?):
// percentage of MCQ history rows marked correct, denominator-guarded.
func (s *Stats) MCQAccuracyRate(itemKind *domain.ItemKind, jlptLevel *domain.JLPTLevel) (float64, error) {
	filter := mcqFilter(itemKind, jlptLevel, storage.DateRangeFilter{})
	entries, err := s.store.MCQHistoryFiltered(filter)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	correct := 0
	for _, e := range entries {
		if e.IsCorrect {
			correct++
		}
	}
	return 100 * float64(correct) / float64(len(entries)), nil
}

// MCQStatsByType implements mcq_stats_by_type(): per-kind and overall
// totals/correct/accuracy.
func (s *Stats) MCQStatsByType() (MCQStatsByType, error) {
	entries, err := s.store.MCQHistoryFiltered(storage.MCQHistoryFilter{})
	if err != nil {
		return MCQStatsByType{}, err
	}

	var vocab, kanji, overall KindStats
	for _, e := range entries {
		overall.Total++
		if e.IsCorrect {
			overall.Correct++
		}
		switch domain.ItemKind(e.ItemKind) {
		case domain.KindVocab:
			vocab.Total++
			if e.IsCorrect {
				vocab.Correct++
			}
		case domain.KindKanji:
			kanji.Total++
			if e.IsCorrect {
				kanji.Correct++
			}
		}
	}
	vocab.Accuracy = accuracy(vocab.Correct, vocab.Total)
	kanji.Accuracy = accuracy(kanji.Correct, kanji.Total)
	overall.Accuracy = accuracy(overall.Correct, overall.Total)

	return MCQStatsByType{Vocab: vocab, Kanji: kanji, Overall: overall}, nil
}

// MCQOptionDistribution implements mcq_option_distribution(): counts of
// selected_option across filtered MCQ history, keyed A-D per spec.md §4.6,
// used to detect positional selection bias.
func (s *Stats) MCQOptionDistribution(dateRange storage.DateRangeFilter) (map[string]int, error) {
	entries, err := s.store.MCQHistoryFiltered(mcqFilter(nil, nil, dateRange))
	if err != nil {
		return nil, err
	}
	dist := map[string]int{"A": 0, "B": 0, "C": 0, "D": 0}
	labels := []string{"A", "B", "C", "D"}
	for _, e := range entries {
		if e.SelectedOption >= 0 && e.SelectedOption < len(labels) {
			dist[labels[e.SelectedOption]]++
		}
	}
	return dist, nil
}

func mcqFilter(itemKind *domain.ItemKind, jlptLevel *domain.JLPTLevel, dateRange storage.DateRangeFilter) storage.MCQHistoryFilter {
	filter := storage.MCQHistoryFilter{Start: dateRange.Start, End: dateRange.End}
	if itemKind != nil {
		k := string(*itemKind)
		filter.ItemKind = &k
	}
	if jlptLevel != nil {
		l := string(*jlptLevel)
		filter.JLPTLevel = &l
	}
	return filter
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

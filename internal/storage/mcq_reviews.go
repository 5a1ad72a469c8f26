package storage

import (
	"fmt"
	"time"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
)

// CreateMCQReview mints a fresh MCQ-mode Review, independent of the
// flashcard tables (spec.md §4.4's non-interference invariant).
func (db *DB) CreateMCQReview(itemID int, kind domain.ItemKind, now time.Time) (*MCQReview, error) {
	card := fsrsengine.NewCard(now)
	blob, err := fsrsengine.Serialize(0, card)
	if err != nil {
		return nil, err
	}

	res, err := db.conn.Exec(
		`INSERT INTO mcq_reviews (item_id, item_kind, fsrs_card_state, due_date, review_count) VALUES (?, ?, ?, ?, 0)`,
		itemID, string(kind), string(blob), card.Due,
	)
	if err != nil {
		return nil, translateErr(err, "mcq review not found")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "read inserted mcq review id", err)
	}

	blob, err = fsrsengine.Serialize(int(id), card)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`UPDATE mcq_reviews SET fsrs_card_state = ? WHERE id = ?`, string(blob), id); err != nil {
		return nil, translateErr(err, "mcq review not found")
	}

	return db.GetMCQReview(int(id))
}

func scanMCQReview(scanner interface {
	Scan(dest ...any) error
}) (*MCQReview, error) {
	var r MCQReview
	var blob string
	if err := scanner.Scan(&r.ID, &r.ItemID, &r.ItemKind, &blob, &r.Due, &r.LastReviewed, &r.ReviewCount, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.FSRSBlob = []byte(blob)
	return &r, nil
}

// GetMCQReview retrieves an MCQ review by its id.
func (db *DB) GetMCQReview(id int) (*MCQReview, error) {
	row := db.conn.QueryRow(
		`SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
		 FROM mcq_reviews WHERE id = ?`, id)
	r, err := scanMCQReview(row)
	if err != nil {
		return nil, translateErr(err, "mcq review not found")
	}
	return r, nil
}

// GetMCQReviewByItem retrieves the MCQ review for (itemID, kind).
func (db *DB) GetMCQReviewByItem(itemID int, kind domain.ItemKind) (*MCQReview, error) {
	row := db.conn.QueryRow(
		`SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
		 FROM mcq_reviews WHERE item_id = ? AND item_kind = ?`, itemID, string(kind))
	r, err := scanMCQReview(row)
	if err != nil {
		return nil, translateErr(err, "mcq review not found")
	}
	return r, nil
}

// DueMCQReviews mirrors DueFlashReviews against the independent mcq_reviews
// table.
func (db *DB) DueMCQReviews(filter DueFilter) ([]MCQReview, error) {
	query := `SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
	          FROM mcq_reviews WHERE due_date <= ?`
	args := []any{filter.AsOf}

	if filter.ItemKind != nil {
		query += ` AND item_kind = ?`
		args = append(args, *filter.ItemKind)
	}
	if filter.JLPTLevel != nil {
		query += ` AND (
			(item_kind = 'vocab' AND item_id IN (SELECT id FROM vocabulary WHERE jlpt_level = ?))
			OR (item_kind = 'kanji' AND item_id IN (SELECT id FROM kanji WHERE jlpt_level = ?))
		)`
		args = append(args, *filter.JLPTLevel, *filter.JLPTLevel)
	}
	query += ` ORDER BY due_date ASC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "query due mcq reviews", err)
	}
	defer rows.Close()

	var out []MCQReview
	for rows.Next() {
		r, err := scanMCQReview(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan mcq review row", err)
		}
		out = append(out, *r)
	}
	return out, nil
}

// CountMCQReviews mirrors CountFlashReviews against mcq_reviews.
func (db *DB) CountMCQReviews(filter CountFilter) (int, error) {
	query := `SELECT COUNT(*) FROM mcq_reviews WHERE 1=1`
	var args []any
	if filter.ItemKind != nil {
		query += ` AND item_kind = ?`
		args = append(args, *filter.ItemKind)
	}
	if filter.JLPTLevel != nil {
		query += ` AND (
			(item_kind = 'vocab' AND item_id IN (SELECT id FROM vocabulary WHERE jlpt_level = ?))
			OR (item_kind = 'kanji' AND item_id IN (SELECT id FROM kanji WHERE jlpt_level = ?))
		)`
		args = append(args, *filter.JLPTLevel, *filter.JLPTLevel)
	}
	var count int
	if err := db.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, apperr.Wrap(apperr.Backend, "count mcq reviews", err)
	}
	return count, nil
}

// AllMCQReviews mirrors AllFlashReviews against the mcq_reviews table.
func (db *DB) AllMCQReviews(filter CountFilter) ([]MCQReview, error) {
	query := `SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
	          FROM mcq_reviews WHERE 1=1`
	var args []any
	if filter.ItemKind != nil {
		query += ` AND item_kind = ?`
		args = append(args, *filter.ItemKind)
	}
	if filter.JLPTLevel != nil {
		query += ` AND (
			(item_kind = 'vocab' AND item_id IN (SELECT id FROM vocabulary WHERE jlpt_level = ?))
			OR (item_kind = 'kanji' AND item_id IN (SELECT id FROM kanji WHERE jlpt_level = ?))
		)`
		args = append(args, *filter.JLPTLevel, *filter.JLPTLevel)
	}
	query += ` ORDER BY id ASC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "list mcq reviews", err)
	}
	defer rows.Close()

	var out []MCQReview
	for rows.Next() {
		r, err := scanMCQReview(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan mcq review row", err)
		}
		out = append(out, *r)
	}
	return out, nil
}

// ApplyMCQReview commits the updated Card state and appends an MCQ history
// row (selected option, correctness) in one transaction.
func (db *DB) ApplyMCQReview(reviewID int, card fsrsengine.Card, selectedOption int, isCorrect bool, durationMs *int, reviewedAt time.Time) (*MCQReview, error) {
	blob, err := fsrsengine.Serialize(reviewID, card)
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		db.logger.Errorw("begin mcq review transaction", "review_id", reviewID, "error", err)
		return nil, apperr.Wrap(apperr.Backend, "begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE mcq_reviews SET fsrs_card_state = ?, due_date = ?, last_reviewed = ?, review_count = review_count + 1, updated_at = datetime('now')
		 WHERE id = ?`,
		string(blob), card.Due, reviewedAt, reviewID,
	)
	if err != nil {
		return nil, translateErr(err, "mcq review not found")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "check update result", err)
	}
	if affected == 0 {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("mcq review %d not found", reviewID))
	}

	if _, err := tx.Exec(
		`INSERT INTO mcq_review_history (review_id, selected_option, is_correct, duration_ms, reviewed_at) VALUES (?, ?, ?, ?, ?)`,
		reviewID, selectedOption, isCorrect, durationMs, reviewedAt,
	); err != nil {
		return nil, translateErr(err, "mcq review not found")
	}

	if err := tx.Commit(); err != nil {
		db.logger.Errorw("commit mcq review transaction", "review_id", reviewID, "error", err)
		return nil, apperr.Wrap(apperr.Backend, "commit transaction", err)
	}

	return db.GetMCQReview(reviewID)
}

// MCQHistoryInRange reads MCQ history rows for statistics (spec.md §4.6).
func (db *DB) MCQHistoryInRange(filter DateRangeFilter) ([]MCQHistory, error) {
	query := `SELECT id, review_id, selected_option, is_correct, duration_ms, reviewed_at FROM mcq_review_history WHERE 1=1`
	var args []any
	if filter.Start != nil {
		query += ` AND reviewed_at >= ?`
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		query += ` AND reviewed_at <= ?`
		args = append(args, *filter.End)
	}
	query += ` ORDER BY reviewed_at ASC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "query mcq history", err)
	}
	defer rows.Close()

	var out []MCQHistory
	for rows.Next() {
		var h MCQHistory
		if err := rows.Scan(&h.ID, &h.ReviewID, &h.SelectedOption, &h.IsCorrect, &h.DurationMs, &h.ReviewedAt); err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan mcq history row", err)
		}
		out = append(out, h)
	}
	return out, nil
}

// MCQHistoryFiltered joins mcq_review_history against mcq_reviews so
// statistics can scope by item_kind and jlpt_level (spec.md §4.6's
// mcq_accuracy_rate and mcq_stats_by_type) as well as date range.
func (db *DB) MCQHistoryFiltered(filter MCQHistoryFilter) ([]MCQHistoryEntry, error) {
	query := `SELECT h.id, h.review_id, h.selected_option, h.is_correct, h.duration_ms, h.reviewed_at, r.item_id, r.item_kind
	          FROM mcq_review_history h JOIN mcq_reviews r ON h.review_id = r.id WHERE 1=1`
	var args []any
	if filter.ItemKind != nil {
		query += ` AND r.item_kind = ?`
		args = append(args, *filter.ItemKind)
	}
	if filter.JLPTLevel != nil {
		query += ` AND (
			(r.item_kind = 'vocab' AND r.item_id IN (SELECT id FROM vocabulary WHERE jlpt_level = ?))
			OR (r.item_kind = 'kanji' AND r.item_id IN (SELECT id FROM kanji WHERE jlpt_level = ?))
		)`
		args = append(args, *filter.JLPTLevel, *filter.JLPTLevel)
	}
	if filter.Start != nil {
		query += ` AND h.reviewed_at >= ?`
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		query += ` AND h.reviewed_at <= ?`
		args = append(args, *filter.End)
	}
	query += ` ORDER BY h.reviewed_at ASC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "query mcq history joined", err)
	}
	defer rows.Close()

	var out []MCQHistoryEntry
	for rows.Next() {
		var e MCQHistoryEntry
		if err := rows.Scan(&e.ID, &e.ReviewID, &e.SelectedOption, &e.IsCorrect, &e.DurationMs, &e.ReviewedAt, &e.ItemID, &e.ItemKind); err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan mcq history joined row", err)
		}
		out = append(out, e)
	}
	return out, nil
}

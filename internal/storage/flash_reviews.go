package storage

import (
	"fmt"
	"time"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
)

// CreateFlashReview mints a fresh flashcard-mode Review for (itemID, kind)
// with a new Card in Learning state due now (spec.md §4.3's create_review).
// Fails with Conflict if a review already exists for the pair.
func (db *DB) CreateFlashReview(itemID int, kind domain.ItemKind, now time.Time) (*FlashReview, error) {
	card := fsrsengine.NewCard(now)
	blob, err := fsrsengine.Serialize(0, card)
	if err != nil {
		return nil, err
	}

	res, err := db.conn.Exec(
		`INSERT INTO reviews (item_id, item_kind, fsrs_card_state, due_date, review_count) VALUES (?, ?, ?, ?, 0)`,
		itemID, string(kind), string(blob), card.Due,
	)
	if err != nil {
		return nil, translateErr(err, "flashcard review not found")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "read inserted review id", err)
	}

	blob, err = fsrsengine.Serialize(int(id), card)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`UPDATE reviews SET fsrs_card_state = ? WHERE id = ?`, string(blob), id); err != nil {
		return nil, translateErr(err, "flashcard review not found")
	}

	return db.GetFlashReview(int(id))
}

func scanFlashReview(scanner interface {
	Scan(dest ...any) error
}) (*FlashReview, error) {
	var r FlashReview
	var blob string
	if err := scanner.Scan(&r.ID, &r.ItemID, &r.ItemKind, &blob, &r.Due, &r.LastReviewed, &r.ReviewCount, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.FSRSBlob = []byte(blob)
	return &r, nil
}

// GetFlashReview retrieves a flashcard review by its id.
func (db *DB) GetFlashReview(id int) (*FlashReview, error) {
	row := db.conn.QueryRow(
		`SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
		 FROM reviews WHERE id = ?`, id)
	r, err := scanFlashReview(row)
	if err != nil {
		return nil, translateErr(err, "flashcard review not found")
	}
	return r, nil
}

// GetFlashReviewByItem retrieves the review for (itemID, kind), or NotFound.
func (db *DB) GetFlashReviewByItem(itemID int, kind domain.ItemKind) (*FlashReview, error) {
	row := db.conn.QueryRow(
		`SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
		 FROM reviews WHERE item_id = ? AND item_kind = ?`, itemID, string(kind))
	r, err := scanFlashReview(row)
	if err != nil {
		return nil, translateErr(err, "flashcard review not found")
	}
	return r, nil
}

// DueFlashReviews implements spec.md §4.3's due(): ascending due, ties
// broken by ascending review id, filters composed conjunctively, limit
// truncates after filtering.
func (db *DB) DueFlashReviews(filter DueFilter) ([]FlashReview, error) {
	query := `SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
	          FROM reviews WHERE due_date <= ?`
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
		return nil, apperr.Wrap(apperr.Backend, "query due flashcard reviews", err)
	}
	defer rows.Close()

	var out []FlashReview
	for rows.Next() {
		r, err := scanFlashReview(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan flashcard review row", err)
		}
		out = append(out, *r)
	}
	return out, nil
}

// CountFlashReviews implements spec.md §4.3's count().
func (db *DB) CountFlashReviews(filter CountFilter) (int, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE 1=1`
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
		return 0, apperr.Wrap(apperr.Backend, "count flashcard reviews", err)
	}
	return count, nil
}

// AllFlashReviews returns every flashcard review matching filter, unbounded
// by due date — used by statistics for mastery counts and most-reviewed
// rankings, which scan the whole table rather than just the due queue.
func (db *DB) AllFlashReviews(filter CountFilter) ([]FlashReview, error) {
	query := `SELECT id, item_id, item_kind, fsrs_card_state, due_date, last_reviewed, review_count, created_at, updated_at
	          FROM reviews WHERE 1=1`
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
		return nil, apperr.Wrap(apperr.Backend, "list flashcard reviews", err)
	}
	defer rows.Close()

	var out []FlashReview
	for rows.Next() {
		r, err := scanFlashReview(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan flashcard review row", err)
		}
		out = append(out, *r)
	}
	return out, nil
}

// ApplyFlashReview commits the updated Card state and appends a history row
// in one transaction, the generalization of spec.md §9's "apply is atomic".
func (db *DB) ApplyFlashReview(reviewID int, card fsrsengine.Card, rating domain.Rating, durationMs *int, reviewedAt time.Time) (*FlashReview, error) {
	blob, err := fsrsengine.Serialize(reviewID, card)
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		db.logger.Errorw("begin flashcard review transaction", "review_id", reviewID, "error", err)
		return nil, apperr.Wrap(apperr.Backend, "begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE reviews SET fsrs_card_state = ?, due_date = ?, last_reviewed = ?, review_count = review_count + 1, updated_at = datetime('now')
		 WHERE id = ?`,
		string(blob), card.Due, reviewedAt, reviewID,
	)
	if err != nil {
		return nil, translateErr(err, "flashcard review not found")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "check update result", err)
	}
	if affected == 0 {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("flashcard review %d not found", reviewID))
	}

	if _, err := tx.Exec(
		`INSERT INTO review_history (review_id, rating, duration_ms, reviewed_at) VALUES (?, ?, ?, ?)`,
		reviewID, int(rating), durationMs, reviewedAt,
	); err != nil {
		return nil, translateErr(err, "flashcard review not found")
	}

	if err := tx.Commit(); err != nil {
		db.logger.Errorw("commit flashcard review transaction", "review_id", reviewID, "error", err)
		return nil, apperr.Wrap(apperr.Backend, "commit transaction", err)
	}

	return db.GetFlashReview(reviewID)
}

// FlashHistoryInRange reads flashcard history rows for statistics (spec.md
// §4.6), append-only and never edited after the fact.
func (db *DB) FlashHistoryInRange(filter DateRangeFilter) ([]FlashHistory, error) {
	query := `SELECT id, review_id, rating, duration_ms, reviewed_at FROM review_history WHERE 1=1`
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
		return nil, apperr.Wrap(apperr.Backend, "query flashcard history", err)
	}
	defer rows.Close()

	var out []FlashHistory
	for rows.Next() {
		var h FlashHistory
		if err := rows.Scan(&h.ID, &h.ReviewID, &h.Rating, &h.DurationMs, &h.ReviewedAt); err != nil {
			return nil, apperr.Wrap(apperr.Backend, "scan flashcard history row", err)
		}
		out = append(out, h)
	}
	return out, nil
}

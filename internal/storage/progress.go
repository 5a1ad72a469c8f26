package storage

import (
	"encoding/json"

	"github.com/kaedesrs/kotoba/internal/apperr"
)

const defaultUserID = "default"

// GetProgress reads the singleton progress record, seeding a fresh one on
// first access rather than requiring explicit initialization.
func (db *DB) GetProgress() (*Progress, error) {
	row := db.conn.QueryRow(
		`SELECT user_id, current_level, target_level, milestones, streak_days, last_review_date, created_at, updated_at
		 FROM progress WHERE user_id = ?`, defaultUserID)

	var p Progress
	var milestonesJSON string
	err := row.Scan(&p.UserID, &p.CurrentLevel, &p.TargetLevel, &milestonesJSON, &p.StreakDays, &p.LastReviewDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if apperr.IsNotFound(translateErr(err, "")) {
			return db.seedProgress()
		}
		return nil, translateErr(err, "progress not found")
	}
	if milestonesJSON != "" {
		if err := json.Unmarshal([]byte(milestonesJSON), &p.Milestones); err != nil {
			return nil, apperr.Wrap(apperr.Integrity, "decode milestones", err)
		}
	}
	return &p, nil
}

func (db *DB) seedProgress() (*Progress, error) {
	_, err := db.conn.Exec(
		`INSERT INTO progress (user_id, current_level, target_level, milestones, streak_days) VALUES (?, ?, ?, '[]', 0)`,
		defaultUserID, "n5", "n1",
	)
	if err != nil {
		return nil, translateErr(err, "progress not found")
	}
	return db.GetProgress()
}

// UpdateProgress persists the full progress record.
func (db *DB) UpdateProgress(p *Progress) error {
	milestonesJSON, err := json.Marshal(p.Milestones)
	if err != nil {
		return apperr.Wrap(apperr.Backend, "encode milestones", err)
	}
	_, err = db.conn.Exec(
		`UPDATE progress SET current_level = ?, target_level = ?, milestones = ?, streak_days = ?, last_review_date = ?, updated_at = datetime('now')
		 WHERE user_id = ?`,
		p.CurrentLevel, p.TargetLevel, string(milestonesJSON), p.StreakDays, p.LastReviewDate, p.UserID,
	)
	if err != nil {
		return translateErr(err, "progress not found")
	}
	return nil
}

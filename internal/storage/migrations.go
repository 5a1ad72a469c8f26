package storage

const createTablesSQL = `
-- Vocabulary items: one of the two polymorphic Item variants (spec.md §3).
CREATE TABLE IF NOT EXISTS vocabulary (
    id INTEGER PRIMARY KEY,
    jlpt_level TEXT NOT NULL,
    surface TEXT NOT NULL,
    reading TEXT NOT NULL,
    sino_viet TEXT,
    part_of_speech TEXT,
    tags TEXT, -- JSON array, canonical encoding
    meanings TEXT NOT NULL, -- JSON object: language code -> ordered meaning strings
    notes TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(surface, reading)
);

-- Kanji items: the other polymorphic Item variant.
CREATE TABLE IF NOT EXISTS kanji (
    id INTEGER PRIMARY KEY,
    jlpt_level TEXT NOT NULL,
    surface TEXT NOT NULL UNIQUE,
    on_readings TEXT, -- JSON array
    kun_readings TEXT, -- JSON array
    sino_viet TEXT,
    stroke_count INTEGER,
    radical TEXT,
    meanings TEXT NOT NULL, -- JSON object: language code -> ordered meaning strings
    notes TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Grammar points: part of the persisted schema for compatibility (spec.md
-- §6) but the CRUD surface over this table is an explicit Non-goal; no Go
-- code in this module reads or writes it.
CREATE TABLE IF NOT EXISTS grammar_points (
    id INTEGER PRIMARY KEY,
    jlpt_level TEXT NOT NULL,
    pattern TEXT NOT NULL,
    explanation TEXT,
    examples TEXT, -- JSON array
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Flashcard-mode reviews: one Card state per (item_id, item_kind).
CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY,
    item_id INTEGER NOT NULL,
    item_kind TEXT NOT NULL CHECK (item_kind IN ('vocab', 'kanji')),
    fsrs_card_state TEXT NOT NULL, -- JSON blob, see internal/fsrsengine
    due_date DATETIME NOT NULL,
    last_reviewed DATETIME,
    review_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(item_id, item_kind)
);
CREATE INDEX IF NOT EXISTS idx_reviews_due ON reviews(due_date);

-- Flashcard-mode history: append-only log of applied reviews.
CREATE TABLE IF NOT EXISTS review_history (
    id INTEGER PRIMARY KEY,
    review_id INTEGER NOT NULL,
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 4),
    duration_ms INTEGER,
    reviewed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (review_id) REFERENCES reviews(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_review_history_review ON review_history(review_id);
CREATE INDEX IF NOT EXISTS idx_review_history_date ON review_history(reviewed_at);

-- MCQ-mode reviews: independent of the flashcard tables (spec.md §4.4's
-- non-interference invariant), same shape as reviews.
CREATE TABLE IF NOT EXISTS mcq_reviews (
    id INTEGER PRIMARY KEY,
    item_id INTEGER NOT NULL,
    item_kind TEXT NOT NULL CHECK (item_kind IN ('vocab', 'kanji')),
    fsrs_card_state TEXT NOT NULL,
    due_date DATETIME NOT NULL,
    last_reviewed DATETIME,
    review_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(item_id, item_kind)
);
CREATE INDEX IF NOT EXISTS idx_mcq_reviews_due ON mcq_reviews(due_date);

-- MCQ-mode history.
CREATE TABLE IF NOT EXISTS mcq_review_history (
    id INTEGER PRIMARY KEY,
    review_id INTEGER NOT NULL,
    selected_option INTEGER NOT NULL CHECK (selected_option BETWEEN 0 AND 3),
    is_correct BOOLEAN NOT NULL,
    duration_ms INTEGER,
    reviewed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (review_id) REFERENCES mcq_reviews(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_mcq_review_history_review ON mcq_review_history(review_id);
CREATE INDEX IF NOT EXISTS idx_mcq_review_history_date ON mcq_review_history(reviewed_at);

-- Singleton per-user progress record.
CREATE TABLE IF NOT EXISTS progress (
    user_id TEXT PRIMARY KEY,
    current_level TEXT NOT NULL,
    target_level TEXT NOT NULL,
    milestones TEXT, -- JSON array of {label, achieved_at}
    streak_days INTEGER NOT NULL DEFAULT 0,
    last_review_date DATETIME,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Schema-version marker (spec.md §6): monotonic integer, starts at 1, v2
-- introduces the mcq_reviews/mcq_review_history tables.
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

const currentSchemaVersion = 2

// MigrateDatabase creates all tables and indexes. Safe to run multiple times
// due to IF NOT EXISTS clauses; the schema_version row is seeded once.
func MigrateDatabase(db *DB) error {
	if _, err := db.conn.Exec(createTablesSQL); err != nil {
		return err
	}

	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.conn.Exec(`INSERT INTO schema_version (version) VALUES (?)`, currentSchemaVersion); err != nil {
			return err
		}
	}
	return nil
}

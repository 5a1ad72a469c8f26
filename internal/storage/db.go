// Package storage is the single-writer SQLite persistence layer of spec.md
// §6: typed CRUD for items, reviews, history, and progress, plus the
// transactional apply that commits a Card update and a history append
// together. Grounded on the teacher's internal/storage/sqlite.go: same
// modernc.org/sqlite pure-Go driver, same single-connection WAL setup.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection used by every storage operation in this
// package. SQLite allows only one writer at a time, so the connection pool
// is pinned to a single connection (spec.md §5's shared-resource policy).
//
// DB is the sole point where storage logs: scheduler and mcqgen persist
// exclusively through Store, so a Backend error surfaced here is logged
// once at its source rather than re-logged by every caller up the stack.
type DB struct {
	conn   *sql.DB
	path   string
	logger *zap.SugaredLogger
}

// NewDB opens dbPath, applies pragmas, and runs migrations. An optional
// *zap.SugaredLogger may be passed for structured diagnostics (NewApp passes
// one; the tests omit it); omitting it falls back to a no-op logger, so this
// stays source-compatible with the teacher's single-argument NewDB.
func NewDB(dbPath string, logger ...*zap.SugaredLogger) (*DB, error) {
	log := zap.NewNop().Sugar()
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Errorw("open database", "path", dbPath, "error", err)
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db := &DB{conn: conn, path: dbPath, logger: log}
	if err := MigrateDatabase(db); err != nil {
		conn.Close()
		log.Errorw("migrate database", "path", dbPath, "error", err)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Infow("database ready", "path", dbPath)
	return db, nil
}

func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

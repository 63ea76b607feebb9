package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const historySchema = `CREATE TABLE IF NOT EXISTS seen (
	id      TEXT PRIMARY KEY,
	seen_at INTEGER NOT NULL
)`

// sqliteHistory stores the set in a SQLite table
type sqliteHistory struct {
	db *sql.DB
}

func openSQLiteHistory(path string) (*sqliteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}
	return &sqliteHistory{db: db}, nil
}

func (h *sqliteHistory) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (h *sqliteHistory) Seen(id string) bool {
	ctx, cancel := h.ctx()
	defer cancel()
	var one int
	err := h.db.QueryRowContext(ctx, `SELECT 1 FROM seen WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		lPrintErr("Failed to query the history:", err)
		return false
	}
	return true
}

func (h *sqliteHistory) Add(id string) error {
	ctx, cancel := h.ctx()
	defer cancel()
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO seen(id, seen_at) VALUES(?, ?) ON CONFLICT(id) DO NOTHING`,
		id, timeNow().Unix())
	return err
}

func (h *sqliteHistory) Len() int {
	ctx, cancel := h.ctx()
	defer cancel()
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen`).Scan(&n); err != nil {
		lPrintErr("Failed to count the history:", err)
		return 0
	}
	return n
}

func (h *sqliteHistory) Close() error {
	return h.db.Close()
}

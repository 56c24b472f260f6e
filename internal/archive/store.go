// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps completed research results in a SQLite database
// with a full-text index over topics and reports.
//
// The archive is output only. The pipeline never reads it back, so a run
// is never resumed from archived state.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deep-research/pkg/types"
)

const (
	dbFile            = "archive.db"
	defaultMaxResults = 20
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("report not found")

// Store manages the archive database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates the archive at cfg.Dir/archive.db and creates the
// schema if it does not exist.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("archive directory is not set")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(cfg.Dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the archive directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			topic TEXT NOT NULL,
			report TEXT NOT NULL,
			language TEXT,
			provider TEXT,
			models TEXT,
			search_provider TEXT,
			report_style TEXT,
			fallback INTEGER NOT NULL DEFAULT 0,
			fallback_reason TEXT,
			started_at TEXT,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS learnings (
			report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (report_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS queries (
			report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			query TEXT NOT NULL,
			research_goal TEXT,
			PRIMARY KEY (report_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT,
			url TEXT NOT NULL,
			content TEXT,
			source_type TEXT,
			PRIMARY KEY (report_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_finished ON reports(finished_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='reports_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE reports_fts USING fts5(topic, report, content=reports, content_rowid=rowid)`,
		`CREATE TRIGGER reports_ai AFTER INSERT ON reports BEGIN
			INSERT INTO reports_fts(rowid, topic, report) VALUES (new.rowid, new.topic, new.report);
		END`,
		`CREATE TRIGGER reports_ad AFTER DELETE ON reports BEGIN
			INSERT INTO reports_fts(reports_fts, rowid, topic, report) VALUES('delete', old.rowid, old.topic, old.report);
		END`,
		`CREATE TRIGGER reports_au AFTER UPDATE ON reports BEGIN
			INSERT INTO reports_fts(reports_fts, rowid, topic, report) VALUES('delete', old.rowid, old.topic, old.report);
			INSERT INTO reports_fts(rowid, topic, report) VALUES (new.rowid, new.topic, new.report);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Save records res under its run id, replacing any earlier entry with the
// same id. A result without a run id gets a fresh one. The id is returned.
func (s *Store) Save(ctx context.Context, res *types.Result) (string, error) {
	md := res.Metadata
	id := md.RunID
	if id == "" {
		id = uuid.NewString()
	}
	models, err := json.Marshal(md.Models)
	if err != nil {
		return "", fmt.Errorf("marshaling models: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("deleting old report: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, topic, report, language, provider, models, search_provider,
			report_style, fallback, fallback_reason, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, md.Topic, res.Report, md.Language, md.Provider, string(models), md.SearchProvider,
		string(md.ReportStyle), md.Fallback, md.FallbackReason,
		formatTime(md.StartedAt), formatTime(md.FinishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("inserting report: %w", err)
	}

	for i, l := range res.Learnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO learnings (report_id, position, content) VALUES (?, ?, ?)`, id, i, l,
		); err != nil {
			return "", fmt.Errorf("inserting learning %d: %w", i, err)
		}
	}
	for i, q := range md.Queries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO queries (report_id, position, query, research_goal) VALUES (?, ?, ?, ?)`,
			id, i, q.Query, q.ResearchGoal,
		); err != nil {
			return "", fmt.Errorf("inserting query %d: %w", i, err)
		}
	}
	for i, src := range md.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sources (report_id, position, title, url, content, source_type) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, src.Title, src.URL, src.Content, src.SourceType,
		); err != nil {
			return "", fmt.Errorf("inserting source %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	return id, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s.String)
	return t
}

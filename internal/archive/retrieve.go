// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Entry summarizes one archived report.
type Entry struct {
	ID          string            `json:"id" yaml:"id"`
	Topic       string            `json:"topic" yaml:"topic"`
	ReportStyle types.ReportStyle `json:"reportStyle" yaml:"report_style"`
	Fallback    bool              `json:"fallback" yaml:"fallback"`
	Sources     int               `json:"sources" yaml:"sources"`
	FinishedAt  time.Time         `json:"finishedAt" yaml:"finished_at"`
}

// QueryOptions selects archived reports.
type QueryOptions struct {
	// Query is an FTS5 match over topic and report text. Empty lists
	// everything, newest first.
	Query string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns the newest reports first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.entries(ctx, QueryOptions{MaxResults: limit})
}

// Search returns reports matching query, best match first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}
	return s.entries(ctx, QueryOptions{Query: query, MaxResults: limit})
}

func (s *Store) entries(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		q    string
		args []any
	)
	const cols = `r.id, r.topic, r.report_style, r.fallback, r.finished_at,
		(SELECT count(*) FROM sources s WHERE s.report_id = r.id)`
	if opts.Query != "" {
		q = `SELECT ` + cols + `
			FROM reports_fts
			JOIN reports r ON r.rowid = reports_fts.rowid
			WHERE reports_fts MATCH ?
			ORDER BY reports_fts.rank
			LIMIT ?`
		args = []any{opts.Query, limit}
	} else {
		q = `SELECT ` + cols + `
			FROM reports r
			ORDER BY r.finished_at DESC, r.rowid DESC
			LIMIT ?`
		args = []any{limit}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			style    sql.NullString
			finished sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Topic, &style, &e.Fallback, &finished, &e.Sources); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.ReportStyle = types.ReportStyle(style.String)
		e.FinishedAt = parseTime(finished)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get loads the full result stored under id. Unknown ids return
// ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.Result, error) {
	var (
		res                           types.Result
		md                            = &res.Metadata
		language, provider, models    sql.NullString
		searchProvider, style, reason sql.NullString
		started, finished             sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, topic, report, language, provider, models, search_provider, report_style,
			fallback, fallback_reason, started_at, finished_at
		 FROM reports WHERE id = ?`, id,
	).Scan(&md.RunID, &md.Topic, &res.Report, &language, &provider, &models, &searchProvider, &style,
		&md.Fallback, &reason, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("looking up report: %w", err)
	}
	md.Language = language.String
	md.Provider = provider.String
	md.SearchProvider = searchProvider.String
	md.ReportStyle = types.ReportStyle(style.String)
	md.FallbackReason = reason.String
	md.StartedAt = parseTime(started)
	md.FinishedAt = parseTime(finished)
	if models.Valid && models.String != "" {
		if err := json.Unmarshal([]byte(models.String), &md.Models); err != nil {
			return nil, fmt.Errorf("decoding models: %w", err)
		}
	}

	if res.Learnings, err = s.learnings(ctx, id); err != nil {
		return nil, err
	}
	if md.Queries, err = s.queries(ctx, id); err != nil {
		return nil, err
	}
	if md.Sources, err = s.sources(ctx, id); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Store) learnings(ctx context.Context, id string) (types.Learnings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM learnings WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying learnings: %w", err)
	}
	defer rows.Close()

	out := types.Learnings{}
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scanning learning: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) queries(ctx context.Context, id string) ([]types.SearchTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, research_goal FROM queries WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var out []types.SearchTask
	for rows.Next() {
		var (
			t    types.SearchTask
			goal sql.NullString
		)
		if err := rows.Scan(&t.Query, &goal); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.ResearchGoal = goal.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) sources(ctx context.Context, id string) ([]types.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, url, content, source_type FROM sources WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var out []types.Source
	for rows.Next() {
		var (
			src                   types.Source
			title, content, stype sql.NullString
		)
		if err := rows.Scan(&title, &src.URL, &content, &stype); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		src.Title, src.Content, src.SourceType = title.String, content.String, stype.String
		out = append(out, src)
	}
	return out, rows.Err()
}

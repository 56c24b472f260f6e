// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research runs the deep-research pipeline: search task
// generation, web search with per-task learnings, an optional review pass
// that adds tasks, and report composition.
//
// Each stage is a Session method so multi-stage callers can run them one
// at a time. Engine.Research runs the whole pipeline and replaces the run
// with the fallback report when anything other than caller input fails.
package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/fallback"
	"github.com/pdiddy/deep-research/internal/provider"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Stage names used in logs and GenerationError.
const (
	StageQuestions = "questions"
	StageQueries   = "queries"
	StageSearch    = "search"
	StageReview    = "review"
	StageReport    = "report"
)

var (
	// ErrNoSources is the fallback reason when web search was active and
	// no task produced a source.
	ErrNoSources = errors.New("web search returned no usable sources")

	// ErrEmptyReport is the fallback reason when the report is blank.
	ErrEmptyReport = errors.New("report is empty")
)

// Resolver builds a text generator for a role. *provider.Registry
// implements it.
type Resolver interface {
	Resolve(cfg types.ProviderConfig, role types.Role) (provider.TextGenerator, error)
}

// Searcher runs web searches. *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, query, providerName string, maxResults int, language string) ([]types.Source, error)
	Supports(name string) bool
}

// Engine creates sessions and runs full research requests.
type Engine struct {
	resolver Resolver
	searcher Searcher
	logger   *zap.Logger
	progress io.Writer
	now      func() time.Time
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProgress writes one human-readable line per stage to w.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) { e.progress = w }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs replaces the run id generator.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine returns an engine that resolves generators with resolver and
// searches with searcher.
func NewEngine(resolver Resolver, searcher Searcher, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		searcher: searcher,
		logger:   zap.NewNop(),
		progress: io.Discard,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Session holds the generators and settings of one run. Its provider
// configuration never changes after NewSession.
type Session struct {
	id       string
	opts     Options
	gens     map[types.Role]provider.TextGenerator
	searcher Searcher
	logger   *zap.Logger
	now      func() time.Time

	// mu serializes progress writes from parallel search tasks.
	mu       sync.Mutex
	progress io.Writer
}

// NewSession resolves one generator per role. opts must already be
// validated. Unknown LLM or search provider names return
// *types.UnsupportedProviderError; no network call is made.
func (e *Engine) NewSession(opts Options) (*Session, error) {
	if !e.searcher.Supports(opts.Search.Provider) {
		return nil, &types.UnsupportedProviderError{Kind: types.KindSearch, Name: opts.Search.Provider}
	}
	id := e.newID()
	s := &Session{
		id:       id,
		opts:     opts,
		gens:     make(map[types.Role]provider.TextGenerator, len(types.Roles)),
		searcher: e.searcher,
		logger:   e.logger.With(zap.String("run_id", id)),
		progress: e.progress,
		now:      e.now,
	}
	for _, role := range types.Roles {
		gen, err := e.resolver.Resolve(opts.LLM, role)
		if err != nil {
			return nil, err
		}
		s.gens[role] = gen
	}
	return s, nil
}

// ID returns the run id.
func (s *Session) ID() string { return s.id }

// Models returns the model resolved for each role.
func (s *Session) Models() types.RoleModels {
	var m types.RoleModels
	for role, gen := range s.gens {
		m.Set(role, gen.Model())
	}
	return m
}

func (s *Session) progressf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.progress, format+"\n", args...)
}

// Research validates req, runs the pipeline, and always returns a report
// unless req is invalid or names an unsupported provider. Every other
// failure, including expiry of req.Timeout, yields the fallback report
// with Metadata.Fallback set.
func (e *Engine) Research(ctx context.Context, req QueryRequest) (*types.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s, err := e.NewSession(req.Options)
	if err != nil {
		return nil, err
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	md := types.Metadata{
		RunID:          s.id,
		Topic:          req.Topic,
		Language:       req.Language,
		Provider:       req.LLM.Provider,
		Models:         s.Models(),
		SearchProvider: req.Search.Provider,
		ReportStyle:    SelectStyle(types.ReportStyle(req.ReportStyle), req.Topic).Name,
		StartedAt:      e.now(),
	}
	s.logger.Info("research started",
		zap.String("topic", req.Topic),
		zap.String("provider", md.Provider),
		zap.String("search_provider", md.SearchProvider),
		zap.Int("max_iterations", req.MaxIterations),
	)

	report, results, tasks, err := s.run(ctx, req)
	if err != nil {
		var upe *types.UnsupportedProviderError
		if errors.As(err, &upe) {
			return nil, err
		}
		return s.fallback(req.Topic, md, err), nil
	}

	md.Queries = tasks
	md.Sources = dedupeSources(types.SourcesOf(results))
	md.FinishedAt = s.now()
	s.logger.Info("research finished",
		zap.Int("tasks", len(tasks)),
		zap.Int("sources", len(md.Sources)),
		zap.Duration("elapsed", md.FinishedAt.Sub(md.StartedAt)),
	)
	return &types.Result{Report: report, Learnings: types.LearningsOf(results), Metadata: md}, nil
}

// run is the pipeline body. The tasks it returns include review tasks.
func (s *Session) run(ctx context.Context, req QueryRequest) (string, []types.SearchResult, []types.SearchTask, error) {
	tasks, err := s.Queries(ctx, req.Topic)
	if err != nil {
		return "", nil, nil, err
	}
	results, err := s.Search(ctx, tasks)
	if err != nil {
		return "", nil, nil, err
	}

	if req.MaxIterations >= 2 {
		extra, err := s.Review(ctx, req.Topic, types.LearningsOf(results), req.Suggestion)
		if err != nil {
			return "", nil, nil, err
		}
		if len(extra) > 0 {
			more, err := s.Search(ctx, extra)
			if err != nil {
				return "", nil, nil, err
			}
			tasks = append(tasks, extra...)
			results = append(results, more...)
		}
	}

	sources := types.SourcesOf(results)
	if s.searchActive() && len(sources) == 0 {
		return "", nil, nil, ErrNoSources
	}

	report, err := s.Report(ctx, ReportInput{
		Topic:       req.Topic,
		Learnings:   types.LearningsOf(results),
		Sources:     sources,
		Requirement: req.Requirement,
	})
	if err != nil {
		return "", nil, nil, err
	}
	return report, results, tasks, nil
}

// fallback discards partial results and returns the canned report.
func (s *Session) fallback(topic string, md types.Metadata, cause error) *types.Result {
	s.logger.Warn("research failed, using fallback report", zap.Error(cause))
	s.progressf("Research failed (%v); returning fallback report.", cause)

	fb := fallback.Generate(topic)
	md.Fallback = true
	md.FallbackReason = cause.Error()
	md.FinishedAt = s.now()
	return &types.Result{Report: fb.Report, Learnings: fb.Learnings, Metadata: md}
}

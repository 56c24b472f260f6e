// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/deep-research/internal/provider"
	"github.com/pdiddy/deep-research/internal/search"
	"github.com/pdiddy/deep-research/internal/stream"
	"github.com/pdiddy/deep-research/pkg/types"
)

// ReportInput is what the report stage writes from.
type ReportInput struct {
	Topic     string
	Learnings types.Learnings
	// Sources are numbered in this order in the prompt and References.
	Sources     []types.Source
	Requirement string
}

func (s *Session) fail(stage string, gen provider.TextGenerator, err error) error {
	return &types.GenerationError{Stage: stage, Provider: string(gen.Provider()), Model: gen.Model(), Err: err}
}

func (s *Session) start(stage string, role types.Role) provider.TextGenerator {
	gen := s.gens[role]
	s.logger.Info("stage started",
		zap.String("stage", stage),
		zap.String("provider", string(gen.Provider())),
		zap.String("model", gen.Model()),
	)
	return gen
}

func (s *Session) system() string { return systemPrompt(s.now()) }

// collect streams an unstructured response. Empty text is an error.
func (s *Session) collect(ctx context.Context, stage string, role types.Role, p provider.Prompt) (string, error) {
	gen := s.start(stage, role)
	text, err := stream.Collect(ctx, gen.StreamText(ctx, p))
	if err != nil {
		return "", s.fail(stage, gen, err)
	}
	return text, nil
}

// searchActive reports whether tasks query a web search vendor.
func (s *Session) searchActive() bool {
	return s.opts.Search.Enabled && s.opts.Search.Provider != search.ModelProvider
}

var reNumbered = regexp.MustCompile(`^\d+\.\s*`)

// parseQuestions keeps bullet and numbered lines, without their markers.
func parseQuestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			line = line[2:]
		case reNumbered.MatchString(line):
			line = reNumbered.ReplaceAllString(line, "")
		default:
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// DefaultQuestions are returned when the model lists no questions.
func DefaultQuestions(topic string) []string {
	return []string{
		"What is the history of " + topic + "?",
		"What are the current trends in " + topic + "?",
		"Who are the key players in " + topic + "?",
		"What are the main challenges related to " + topic + "?",
		"How has " + topic + " evolved over time?",
	}
}

// DefaultQueries are returned when no valid task list streams back.
func DefaultQueries(topic string) []types.SearchTask {
	return []types.SearchTask{
		{Query: "Latest research on " + topic, ResearchGoal: "Find the most recent studies and papers on " + topic},
		{Query: "History of " + topic, ResearchGoal: "Understand the historical context and evolution of " + topic},
		{Query: "Future trends in " + topic, ResearchGoal: "Identify emerging trends and future directions for " + topic},
	}
}

// Questions asks the thinking model for clarifying questions. An empty or
// unparseable answer yields DefaultQuestions.
func (s *Session) Questions(ctx context.Context, topic string) ([]string, error) {
	s.progressf("Generating clarifying questions...")
	text, err := s.collect(ctx, StageQuestions, types.RoleThinking, provider.Prompt{
		System: s.system(),
		User:   questionsPrompt(topic, s.opts.Language),
	})
	if err != nil && !errors.Is(err, stream.ErrEmpty) {
		return nil, err
	}
	if qs := parseQuestions(text); len(qs) > 0 {
		return qs, nil
	}
	s.logger.Debug("no questions parsed, using defaults", zap.String("stage", StageQuestions))
	return DefaultQuestions(topic), nil
}

// Queries asks the thinking model for search tasks. When no valid list is
// seen before the stream ends the result is DefaultQueries.
func (s *Session) Queries(ctx context.Context, topic string) ([]types.SearchTask, error) {
	s.progressf("Generating search queries...")
	gen := s.start(StageQueries, types.RoleThinking)
	tasks, ok, err := stream.ConsumeTasks(ctx, gen.StreamText(ctx, provider.Prompt{
		System: s.system(),
		User:   queriesPrompt(topic, s.opts.Language),
	}))
	if err != nil {
		return nil, s.fail(StageQueries, gen, err)
	}
	if !ok {
		s.logger.Info("no valid search tasks parsed, using defaults", zap.String("stage", StageQueries))
		return DefaultQueries(topic), nil
	}
	s.progressf("Generated %d search queries.", len(tasks))
	return tasks, nil
}

// Review asks the thinking model whether more searching is needed. A
// response without a valid task list yields an empty slice.
func (s *Session) Review(ctx context.Context, topic string, learnings types.Learnings, suggestion string) ([]types.SearchTask, error) {
	s.progressf("Reviewing %d learnings...", len(learnings))
	gen := s.start(StageReview, types.RoleThinking)
	tasks, ok, err := stream.ConsumeTasks(ctx, gen.StreamText(ctx, provider.Prompt{
		System: s.system(),
		User:   reviewPrompt(topic, learnings, suggestion, s.opts.Language),
	}))
	if err != nil {
		return nil, s.fail(StageReview, gen, err)
	}
	if !ok {
		return []types.SearchTask{}, nil
	}
	s.progressf("Review added %d search queries.", len(tasks))
	return tasks, nil
}

// Search runs every task and returns one result per task in task order.
// Up to Search.Parallel tasks run at once. A search vendor failure leaves
// that task without sources; a generation failure aborts the batch.
func (s *Session) Search(ctx context.Context, tasks []types.SearchTask) ([]types.SearchResult, error) {
	results := make([]types.SearchResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.opts.Search.Parallel))
	for i, task := range tasks {
		g.Go(func() error {
			r, err := s.searchTask(gctx, i, len(tasks), task)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Session) searchTask(ctx context.Context, i, n int, task types.SearchTask) (types.SearchResult, error) {
	s.progressf("[%d/%d] %s", i+1, n, task.Query)

	var sources []types.Source
	if s.searchActive() {
		found, err := s.searcher.Search(ctx, task.Query, s.opts.Search.Provider, s.opts.Search.MaxResults, s.opts.Language)
		var upe *types.UnsupportedProviderError
		switch {
		case errors.As(err, &upe):
			return types.SearchResult{}, err
		case err != nil:
			s.logger.Warn("web search failed, continuing without sources",
				zap.String("stage", StageSearch),
				zap.String("query", task.Query),
				zap.Error(err),
			)
		default:
			sources = found
		}
	}

	learning, err := s.collect(ctx, StageSearch, types.RoleNetworking, provider.Prompt{
		System:    s.system(),
		User:      learningPrompt(task, sources, s.opts.Language),
		WebSearch: s.opts.Search.Enabled && s.opts.Search.Provider == search.ModelProvider,
	})
	if err != nil {
		return types.SearchResult{}, err
	}
	if sources == nil {
		sources = []types.Source{}
	}
	return types.SearchResult{
		Query:        task.Query,
		ResearchGoal: task.ResearchGoal,
		Learning:     learning,
		Sources:      sources,
	}, nil
}

// Report writes the final report with the report model. Unless sources
// are omitted, a References section listing in.Sources is appended.
func (s *Session) Report(ctx context.Context, in ReportInput) (string, error) {
	style := SelectStyle(types.ReportStyle(s.opts.ReportStyle), in.Topic)
	in.Sources = dedupeSources(in.Sources)
	s.progressf("Writing %s report from %d learnings and %d sources...", style.Name, len(in.Learnings), len(in.Sources))

	temperature := s.opts.Temperature
	if temperature == nil {
		temperature = style.Temperature
	}
	report, err := s.collect(ctx, StageReport, types.RoleReport, provider.Prompt{
		System:      style.System + "\n\n" + s.system() + "\n\n" + outputGuidelines,
		User:        reportPrompt(in, style, s.opts.Language),
		Temperature: temperature,
		MaxTokens:   types.DetailLevel(s.opts.DetailLevel).MaxTokens(),
	})
	if err != nil {
		var ge *types.GenerationError
		if errors.Is(err, stream.ErrEmpty) && errors.As(err, &ge) {
			ge.Err = ErrEmptyReport
		}
		return "", err
	}
	if !s.opts.OmitSources && len(in.Sources) > 0 {
		report = strings.TrimRight(report, "\n") + "\n\n" + References(in.Sources)
	}
	return report, nil
}

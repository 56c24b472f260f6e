// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/deep-research/internal/provider"
	"github.com/pdiddy/deep-research/pkg/types"
)

// fakeGen streams scripted fragments. respond sees every prompt.
type fakeGen struct {
	name    provider.Name
	model   string
	respond func(ctx context.Context, p provider.Prompt) ([]string, error)

	mu      sync.Mutex
	prompts []provider.Prompt
}

func (f *fakeGen) Provider() provider.Name { return f.name }
func (f *fakeGen) Model() string           { return f.model }

func (f *fakeGen) StreamText(ctx context.Context, p provider.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f.mu.Lock()
		f.prompts = append(f.prompts, p)
		f.mu.Unlock()

		frags, err := f.respond(ctx, p)
		for _, frag := range frags {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

func (f *fakeGen) calls() []provider.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.Prompt(nil), f.prompts...)
}

func fixed(frags ...string) func(context.Context, provider.Prompt) ([]string, error) {
	return func(context.Context, provider.Prompt) ([]string, error) { return frags, nil }
}

// isReview and isQueries tell thinking-role prompts apart.
func isReview(p provider.Prompt) bool {
	return strings.Contains(p.User, "determine whether further research is needed")
}

func isQueries(p provider.Prompt) bool {
	return strings.Contains(p.User, "generate a list of SERP queries")
}

// fakeResolver hands out one fakeGen per role.
type fakeResolver struct {
	thinking, networking, report *fakeGen
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		thinking:   &fakeGen{name: provider.Google, model: "think-1", respond: fixed("")},
		networking: &fakeGen{name: provider.Google, model: "net-1", respond: fixed("a learning")},
		report:     &fakeGen{name: provider.Google, model: "report-1", respond: fixed("# Report\n\nBody.")},
	}
}

func (r *fakeResolver) Resolve(cfg types.ProviderConfig, role types.Role) (provider.TextGenerator, error) {
	if cfg.Provider != "google" && cfg.Provider != "openai" {
		return nil, &types.UnsupportedProviderError{Kind: types.KindLLM, Name: cfg.Provider}
	}
	switch role {
	case types.RoleThinking:
		return r.thinking, nil
	case types.RoleNetworking:
		return r.networking, nil
	default:
		return r.report, nil
	}
}

// fakeSearcher returns sources keyed by query, or the same answer for all.
type fakeSearcher struct {
	all     []types.Source
	byQuery map[string][]types.Source
	err     error

	mu      sync.Mutex
	queries []string
}

func (f *fakeSearcher) Supports(name string) bool {
	switch name {
	case "tavily", "exa", "model":
		return true
	}
	return false
}

func (f *fakeSearcher) Search(_ context.Context, query, _ string, _ int, _ string) ([]types.Source, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.byQuery[query]; ok {
		return s, nil
	}
	return f.all, nil
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func newTestEngine(r Resolver, s Searcher) *Engine {
	return NewEngine(r, s,
		WithClock(func() time.Time { return testNow }),
		WithIDs(func() string { return "run-1" }),
	)
}

// newTestSession builds a validated session with opts.
func newTestSession(r Resolver, s Searcher, opts Options) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return newTestEngine(r, s).NewSession(opts)
}

var threeSources = []types.Source{
	{Title: "Karl Benz and the Motorwagen", URL: "https://cars.example.com/benz", Content: "In 1886 Karl Benz patented the Motorwagen."},
	{Title: "The Model T", URL: "https://cars.example.com/model-t", Content: "Ford's Model T made cars affordable from 1908."},
	{Title: "Electric vehicles return", URL: "https://cars.example.com/ev", Content: "Battery vehicles reached mass markets in the 2010s."},
}

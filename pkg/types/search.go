// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deep-research pipeline:
// search tasks, sources, per-task results, reports, and configuration.
//
// Every value here is scoped to a single research run. Nothing is persisted
// by the pipeline itself.
package types

// SearchTask is one generated search query paired with the reason it is
// worth running. Models emit these as JSON, so the JSON keys follow the
// camelCase names used in prompts.
type SearchTask struct {
	// Query is the text sent to the search provider.
	Query string `json:"query" yaml:"query"`

	// ResearchGoal describes what the query is meant to find out.
	ResearchGoal string `json:"researchGoal" yaml:"research_goal"`
}

// Valid reports whether both fields are non-empty.
func (t SearchTask) Valid() bool {
	return t.Query != "" && t.ResearchGoal != ""
}

// Source is a normalized web search hit. The search client guarantees that
// URL and Content are non-empty for every Source it returns.
type Source struct {
	// Title is the page title as reported by the provider (may be empty).
	Title string `json:"title" yaml:"title"`

	// URL is the address of the page.
	URL string `json:"url" yaml:"url"`

	// Content is the snippet, summary, or extracted page text.
	Content string `json:"content" yaml:"content"`

	// SourceType classifies the hit (e.g. "web", "news"). Optional.
	SourceType string `json:"sourceType,omitempty" yaml:"source_type,omitempty"`
}

// SearchResult is the outcome of running one SearchTask: the sources that
// were found and the learning the model wrote from them. Sources is empty
// when the search was skipped or the provider failed.
type SearchResult struct {
	Query        string   `json:"query" yaml:"query"`
	ResearchGoal string   `json:"researchGoal" yaml:"research_goal"`
	Learning     string   `json:"learning" yaml:"learning"`
	Sources      []Source `json:"sources" yaml:"sources"`
}

// Learnings is the ordered, append-only list of learning texts gathered
// during a run. Entries are never deduplicated.
type Learnings []string

// LearningsOf extracts the learning text of each result, preserving order.
func LearningsOf(results []SearchResult) Learnings {
	out := make(Learnings, 0, len(results))
	for _, r := range results {
		out = append(out, r.Learning)
	}
	return out
}

// SourcesOf flattens the sources of each result, preserving order.
func SourcesOf(results []SearchResult) []Source {
	var out []Source
	for _, r := range results {
		out = append(out, r.Sources...)
	}
	return out
}

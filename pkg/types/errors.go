// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ValidationError reports malformed caller input. A run that fails
// validation never starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderKind distinguishes LLM vendors from search vendors in errors.
type ProviderKind string

const (
	KindLLM    ProviderKind = "llm"
	KindSearch ProviderKind = "search"
)

// UnsupportedProviderError reports a provider name outside the known set.
type UnsupportedProviderError struct {
	Kind ProviderKind
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported %s provider %q", e.Kind, e.Name)
}

// SearchProviderError reports a failed web search call. The pipeline
// recovers from it by treating the query as having no sources.
type SearchProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *SearchProviderError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("search provider %s: %v", e.Provider, e.Err)
	case e.Body != "":
		return fmt.Sprintf("search provider %s returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("search provider %s returned HTTP %d", e.Provider, e.StatusCode)
	}
}

func (e *SearchProviderError) Unwrap() error { return e.Err }

// GenerationError reports a failed, empty, or blocked LLM call. It is fatal
// to the run and sends the pipeline to the fallback report.
type GenerationError struct {
	Stage    string
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation with %s/%s failed: %v", e.Stage, e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

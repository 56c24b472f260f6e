// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"strings"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Request defaults.
const (
	DefaultLanguage       = "en-US"
	DefaultProvider       = "google"
	DefaultSearchProvider = "tavily"
	DefaultMaxIterations  = 2
	DefaultMaxResults     = 5
	DefaultParallel       = 1
)

// Options are the knobs shared by every request shape. Zero values take
// the package defaults during Validate.
type Options struct {
	// Language is a BCP 47 tag for the response language.
	Language string

	// LLM selects the text generation vendor, models, and credentials.
	LLM types.ProviderConfig

	// Search selects the web search vendor. Search.Enabled is ignored in
	// favour of DisableSearch so the zero value searches.
	Search types.SearchConfig

	// DisableSearch runs every task without retrieving sources.
	DisableSearch bool

	// ReportStyle forces a report template. Empty sniffs the topic.
	ReportStyle string

	// Temperature overrides the per-style sampling temperature.
	Temperature *float64

	// OmitSources leaves the References section off the report.
	OmitSources bool

	// DetailLevel caps the report length. Empty uses the adapter default.
	DetailLevel string
}

func invalid(field, reason string) error {
	return &types.ValidationError{Field: field, Reason: reason}
}

func (o *Options) validate() error {
	o.Language = strings.TrimSpace(o.Language)
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	o.LLM.Provider = strings.TrimSpace(o.LLM.Provider)
	if o.LLM.Provider == "" {
		o.LLM.Provider = DefaultProvider
	}
	switch o.LLM.Mode {
	case "", types.ModeLocal:
	case types.ModeProxy:
		if o.LLM.ProxyURL == "" {
			return invalid("proxy_url", "required in proxy mode")
		}
	default:
		return invalid("mode", "must be local or proxy")
	}

	o.Search.Provider = strings.TrimSpace(o.Search.Provider)
	if o.Search.Provider == "" {
		o.Search.Provider = DefaultSearchProvider
	}
	o.Search.Enabled = !o.DisableSearch
	if o.Search.MaxResults < 0 {
		return invalid("maxResults", "must be at least 1")
	}
	if o.Search.MaxResults == 0 {
		o.Search.MaxResults = DefaultMaxResults
	}
	if o.Search.Parallel < 0 {
		return invalid("parallel", "must be at least 1")
	}
	if o.Search.Parallel == 0 {
		o.Search.Parallel = DefaultParallel
	}

	if _, err := types.ParseReportStyle(o.ReportStyle); err != nil {
		return invalid("reportStyle", err.Error())
	}
	if _, err := types.ParseDetailLevel(o.DetailLevel); err != nil {
		return invalid("detailLevel", err.Error())
	}
	if t := o.Temperature; t != nil && (*t < 0 || *t > 2) {
		return invalid("temperature", "must be between 0 and 2")
	}
	return nil
}

func validTopic(topic *string) error {
	*topic = strings.TrimSpace(*topic)
	if *topic == "" {
		return invalid("topic", "must not be empty")
	}
	return nil
}

// TopicRequest drives the questions and queries stages.
type TopicRequest struct {
	Topic string
	Options
}

// Validate trims input and fills defaults in place.
func (r *TopicRequest) Validate() error {
	if err := validTopic(&r.Topic); err != nil {
		return err
	}
	return r.Options.validate()
}

// SearchRequest drives the search stage over a prepared task list.
type SearchRequest struct {
	Tasks []types.SearchTask
	Options
}

// Validate requires at least one task with a query.
func (r *SearchRequest) Validate() error {
	if len(r.Tasks) == 0 {
		return invalid("queries", "at least one task is required")
	}
	for i := range r.Tasks {
		r.Tasks[i].Query = strings.TrimSpace(r.Tasks[i].Query)
		if r.Tasks[i].Query == "" {
			return invalid("queries", "every task needs a query")
		}
	}
	return r.Options.validate()
}

// ReviewRequest drives the review stage.
type ReviewRequest struct {
	Topic      string
	Learnings  types.Learnings
	Suggestion string
	Options
}

// Validate trims input and fills defaults in place.
func (r *ReviewRequest) Validate() error {
	if err := validTopic(&r.Topic); err != nil {
		return err
	}
	return r.Options.validate()
}

// ReportRequest drives the report stage from saved learnings.
type ReportRequest struct {
	Topic       string
	Learnings   types.Learnings
	Sources     []types.Source
	Requirement string
	Options
}

// Validate trims input and fills defaults in place.
func (r *ReportRequest) Validate() error {
	if err := validTopic(&r.Topic); err != nil {
		return err
	}
	return r.Options.validate()
}

// QueryRequest drives a full research run.
type QueryRequest struct {
	Topic string
	Options

	// MaxIterations bounds the search passes. One disables review.
	MaxIterations int

	// Suggestion steers the review stage.
	Suggestion string

	// Requirement is passed to the report stage as a writing requirement.
	Requirement string

	// Timeout bounds the whole run. Zero means no deadline.
	Timeout time.Duration
}

// Validate trims input and fills defaults in place.
func (r *QueryRequest) Validate() error {
	if err := validTopic(&r.Topic); err != nil {
		return err
	}
	if r.MaxIterations < 0 {
		return invalid("maxIterations", "must be at least 1")
	}
	if r.MaxIterations == 0 {
		r.MaxIterations = DefaultMaxIterations
	}
	if r.Timeout < 0 {
		return invalid("timeout", "must not be negative")
	}
	return r.Options.validate()
}

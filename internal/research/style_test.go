// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/deep-research/pkg/types"
)

func TestSelectStyle(t *testing.T) {
	tests := []struct {
		explicit types.ReportStyle
		topic    string
		want     types.ReportStyle
	}{
		{"", "History of cars", types.StyleStandard},
		{"", "A Study of sleep", types.StyleAcademic},
		{"", "studying bees", types.StyleAcademic},
		{"", "String theory", types.StyleAcademic},
		{"", "Writing SOFTWARE tests", types.StyleTechnical},
		{"", "REST API design", types.StyleTechnical},
		{"", "Breaking: markets fall", types.StyleNews},
		{"", "latest chip releases", types.StyleNews},
		{"", "research code quality", types.StyleAcademic},
		{types.StyleNews, "A study of compilers", types.StyleNews},
		{types.StyleStandard, "latest research", types.StyleStandard},
		{"bogus", "compilers and code", types.StyleTechnical},
	}
	for _, tt := range tests {
		t.Run(string(tt.explicit)+"/"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStyle(tt.explicit, tt.topic).Name)
		})
	}
}

func TestStylesComplete(t *testing.T) {
	for _, name := range types.ReportStyles {
		s, ok := styles[name]
		if !ok {
			t.Fatalf("style %s missing", name)
		}
		assert.Equal(t, name, s.Name)
		assert.NotEmpty(t, s.System)
		assert.NotEmpty(t, s.Introduction)
		assert.Contains(t, s.Instructions, "INSTRUCTIONS:")
	}
}

func TestReferences(t *testing.T) {
	sources := []types.Source{
		{Title: "One", URL: "https://a.example/1", Content: "c"},
		{URL: "https://a.example/2", Content: "c"},
		{Title: "One again", URL: "https://a.example/1", Content: "c"},
		{Title: "Three", URL: "https://a.example/3", Content: "c"},
	}
	want := "## References\n\n" +
		"1. [One](https://a.example/1)\n" +
		"2. [https://a.example/2](https://a.example/2)\n" +
		"3. [Three](https://a.example/3)\n"
	assert.Equal(t, want, References(sources))
	assert.Equal(t, "## References\n\n", References(nil))
}

func TestDedupeSourcesKeepsOrder(t *testing.T) {
	in := []types.Source{{URL: "b"}, {URL: "a"}, {URL: "b"}, {URL: "c"}, {URL: "a"}}
	got := dedupeSources(in)
	assert.Equal(t, []types.Source{{URL: "b"}, {URL: "a"}, {URL: "c"}}, got)
	assert.NotNil(t, dedupeSources(nil))
}

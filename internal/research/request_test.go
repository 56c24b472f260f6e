// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deep-research/pkg/types"
)

func TestQueryRequestDefaults(t *testing.T) {
	req := QueryRequest{Topic: "  solar sails  "}
	require.NoError(t, req.Validate())

	assert.Equal(t, "solar sails", req.Topic)
	assert.Equal(t, DefaultLanguage, req.Language)
	assert.Equal(t, DefaultProvider, req.LLM.Provider)
	assert.Equal(t, DefaultSearchProvider, req.Search.Provider)
	assert.Equal(t, DefaultMaxIterations, req.MaxIterations)
	assert.Equal(t, DefaultMaxResults, req.Search.MaxResults)
	assert.Equal(t, DefaultParallel, req.Search.Parallel)
	assert.True(t, req.Search.Enabled)
	assert.Zero(t, req.Timeout)
}

func TestDisableSearchOverridesEnabled(t *testing.T) {
	req := QueryRequest{Topic: "t", Options: Options{DisableSearch: true, Search: types.SearchConfig{Enabled: true}}}
	require.NoError(t, req.Validate())
	assert.False(t, req.Search.Enabled)
}

func TestQueryRequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   QueryRequest
		field string
	}{
		{"empty topic", QueryRequest{Topic: " \t"}, "topic"},
		{"negative iterations", QueryRequest{Topic: "t", MaxIterations: -1}, "maxIterations"},
		{"negative timeout", QueryRequest{Topic: "t", Timeout: -time.Second}, "timeout"},
		{"negative results", QueryRequest{Topic: "t", Options: Options{Search: types.SearchConfig{MaxResults: -2}}}, "maxResults"},
		{"negative parallel", QueryRequest{Topic: "t", Options: Options{Search: types.SearchConfig{Parallel: -1}}}, "parallel"},
		{"unknown style", QueryRequest{Topic: "t", Options: Options{ReportStyle: "poem"}}, "reportStyle"},
		{"unknown detail level", QueryRequest{Topic: "t", Options: Options{DetailLevel: "epic"}}, "detailLevel"},
		{"hot temperature", QueryRequest{Topic: "t", Options: Options{Temperature: ptr(2.5)}}, "temperature"},
		{"negative temperature", QueryRequest{Topic: "t", Options: Options{Temperature: ptr(-0.1)}}, "temperature"},
		{"bad mode", QueryRequest{Topic: "t", Options: Options{LLM: types.ProviderConfig{Routing: types.Routing{Mode: "remote"}}}}, "mode"},
		{"proxy without url", QueryRequest{Topic: "t", Options: Options{LLM: types.ProviderConfig{Routing: types.Routing{Mode: types.ModeProxy}}}}, "proxy_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSearchRequestValidation(t *testing.T) {
	empty := SearchRequest{}
	var ve *types.ValidationError
	require.ErrorAs(t, empty.Validate(), &ve)
	assert.Equal(t, "queries", ve.Field)

	blank := SearchRequest{Tasks: []types.SearchTask{{Query: "ok"}, {Query: "  "}}}
	require.ErrorAs(t, blank.Validate(), &ve)

	ok := SearchRequest{Tasks: []types.SearchTask{{Query: " q "}}}
	require.NoError(t, ok.Validate())
	assert.Equal(t, "q", ok.Tasks[0].Query)
	assert.Equal(t, DefaultMaxResults, ok.Search.MaxResults)
}

func TestStageRequestsRequireTopic(t *testing.T) {
	for name, v := range map[string]interface{ Validate() error }{
		"topic":  &TopicRequest{},
		"review": &ReviewRequest{Learnings: types.Learnings{"x"}},
		"report": &ReportRequest{Learnings: types.Learnings{"x"}},
	} {
		var ve *types.ValidationError
		if assert.ErrorAs(t, v.Validate(), &ve, name) {
			assert.Equal(t, "topic", ve.Field, name)
		}
	}

	rr := ReportRequest{Topic: "t", Options: Options{ReportStyle: "academic", Temperature: ptr(0.0)}}
	require.NoError(t, rr.Validate())
}

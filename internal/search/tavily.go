// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"

	"github.com/pdiddy/deep-research/pkg/types"
)

// tavilyAPIBase is the Tavily API origin. Declared as a var so tests can
// substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com"

// Tavily queries the Tavily search API.
type Tavily struct {
	ep Endpoint
}

func newTavily(ep Endpoint) WebSearcher { return &Tavily{ep: ep} }

// Name returns the vendor identifier.
func (t *Tavily) Name() string { return "tavily" }

type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	Topic             string `json:"topic"`
	Days              int    `json:"days"`
	MaxResults        int    `json:"max_results"`
	IncludeImages     bool   `json:"include_images"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	ChunksPerSource   int    `json:"chunks_per_source"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search posts the query to /search.
func (t *Tavily) Search(ctx context.Context, req Request) ([]types.Source, error) {
	body := tavilyRequest{
		Query:           req.Query,
		SearchDepth:     "basic",
		Topic:           "general",
		Days:            3,
		MaxResults:      req.MaxResults,
		ChunksPerSource: 3,
	}
	var tr tavilyResponse
	if err := sendJSON(ctx, t.Name(), t.ep, http.MethodPost, t.ep.BaseURL+"/search", body, bearer(t.ep.APIKey), &tr); err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(tr.Results))
	for _, r := range tr.Results {
		out = append(out, types.Source{Title: r.Title, URL: r.URL, Content: r.Content, SourceType: "web"})
	}
	return out, nil
}

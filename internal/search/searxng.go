// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pdiddy/deep-research/pkg/types"
)

// searxngAPIBase is the default self-hosted SearXNG origin. Declared as a
// var so tests can substitute an httptest server.
var searxngAPIBase = "http://localhost:8080"

// searxngMinScore drops low-relevance aggregate hits.
const searxngMinScore = 0.5

// SearXNG queries a SearXNG metasearch instance.
type SearXNG struct {
	ep Endpoint
}

func newSearxng(ep Endpoint) WebSearcher { return &SearXNG{ep: ep} }

// Name returns the vendor identifier.
func (s *SearXNG) Name() string { return "searxng" }

type searxngResponse struct {
	Results []struct {
		Title    string  `json:"title"`
		URL      string  `json:"url"`
		Content  string  `json:"content"`
		Score    float64 `json:"score"`
		Category string  `json:"category"`
	} `json:"results"`
}

// Search issues GET /search?format=json.
func (s *SearXNG) Search(ctx context.Context, req Request) ([]types.Source, error) {
	params := url.Values{
		"q":            {req.Query},
		"categories":   {"general,web"},
		"engines":      {"google,bing,duckduckgo,brave,arxiv"},
		"lang":         {"auto"},
		"format":       {"json"},
		"autocomplete": {"google"},
	}
	var sr searxngResponse
	if err := sendJSON(ctx, s.Name(), s.ep, http.MethodGet, s.ep.BaseURL+"/search?"+params.Encode(), nil, bearer(s.ep.APIKey), &sr); err != nil {
		return nil, err
	}

	// Only the first MaxResults*5 aggregate hits are considered.
	window := req.MaxResults * 5
	var out []types.Source
	for i, r := range sr.Results {
		if i >= window {
			break
		}
		if r.Score < searxngMinScore {
			continue
		}
		kind := "web"
		if r.Category != "" {
			kind = r.Category
		}
		out = append(out, types.Source{Title: r.Title, URL: r.URL, Content: r.Content, SourceType: kind})
	}
	return out, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"

	"github.com/pdiddy/deep-research/pkg/types"
)

// bochaAPIBase is the Bocha API origin. Declared as a var so tests can
// substitute an httptest server.
var bochaAPIBase = "https://api.bochaai.com"

// Bocha queries the Bocha web search API.
type Bocha struct {
	ep Endpoint
}

func newBocha(ep Endpoint) WebSearcher { return &Bocha{ep: ep} }

// Name returns the vendor identifier.
func (b *Bocha) Name() string { return "bocha" }

type bochaRequest struct {
	Query     string `json:"query"`
	Freshness string `json:"freshness"`
	Summary   bool   `json:"summary"`
	Count     int    `json:"count"`
}

type bochaResponse struct {
	Data struct {
		WebPages struct {
			Value []struct {
				Name    string `json:"name"`
				URL     string `json:"url"`
				Snippet string `json:"snippet"`
				Summary string `json:"summary"`
			} `json:"value"`
		} `json:"webPages"`
	} `json:"data"`
}

// Search posts the query to /v1/web-search.
func (b *Bocha) Search(ctx context.Context, req Request) ([]types.Source, error) {
	body := bochaRequest{
		Query:     req.Query,
		Freshness: "noLimit",
		Summary:   true,
		Count:     req.MaxResults,
	}
	var br bochaResponse
	if err := sendJSON(ctx, b.Name(), b.ep, http.MethodPost, b.ep.BaseURL+"/v1/web-search", body, bearer(b.ep.APIKey), &br); err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(br.Data.WebPages.Value))
	for _, v := range br.Data.WebPages.Value {
		content := v.Summary
		if content == "" {
			content = v.Snippet
		}
		out = append(out, types.Source{Title: v.Name, URL: v.URL, Content: content, SourceType: "web"})
	}
	return out, nil
}

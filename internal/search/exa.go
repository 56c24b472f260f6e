// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"

	"github.com/pdiddy/deep-research/pkg/types"
)

// exaAPIBase is the Exa API origin. Declared as a var so tests can
// substitute an httptest server.
var exaAPIBase = "https://api.exa.ai"

// Exa queries Exa's neural search restricted to research papers.
type Exa struct {
	ep Endpoint
}

func newExa(ep Endpoint) WebSearcher { return &Exa{ep: ep} }

// Name returns the vendor identifier.
func (e *Exa) Name() string { return "exa" }

type exaRequest struct {
	Query      string `json:"query"`
	Category   string `json:"category"`
	NumResults int    `json:"numResults"`
	Contents   struct {
		Text      bool   `json:"text"`
		Livecrawl string `json:"livecrawl"`
	} `json:"contents"`
}

type exaResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	} `json:"results"`
}

// Search posts the query to /search.
func (e *Exa) Search(ctx context.Context, req Request) ([]types.Source, error) {
	body := exaRequest{
		Query:      req.Query,
		Category:   "research paper",
		NumResults: req.MaxResults * 5,
	}
	body.Contents.Text = true
	body.Contents.Livecrawl = "auto"

	var er exaResponse
	if err := sendJSON(ctx, e.Name(), e.ep, http.MethodPost, e.ep.BaseURL+"/search", body, bearer(e.ep.APIKey), &er); err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(er.Results))
	for _, r := range er.Results {
		out = append(out, types.Source{Title: r.Title, URL: r.URL, Content: r.Text, SourceType: "paper"})
	}
	return out, nil
}

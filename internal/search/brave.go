// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/deep-research/pkg/types"
)

// braveAPIBase is the Brave Search API origin. Declared as a var so tests
// can substitute an httptest server.
var braveAPIBase = "https://api.search.brave.com"

// braveMaxCount is the largest page size the API accepts.
const braveMaxCount = 20

// Brave queries the Brave Search API. The key goes in X-Subscription-Token.
type Brave struct {
	ep Endpoint
}

func newBrave(ep Endpoint) WebSearcher { return &Brave{ep: ep} }

// Name returns the vendor identifier.
func (b *Brave) Name() string { return "brave" }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search issues GET /res/v1/web/search.
func (b *Brave) Search(ctx context.Context, req Request) ([]types.Source, error) {
	count := req.MaxResults
	if count > braveMaxCount {
		count = braveMaxCount
	}
	params := url.Values{
		"q":     {req.Query},
		"count": {strconv.Itoa(count)},
	}
	if lang, _ := splitLanguage(req.Language); lang != "" {
		params.Set("search_lang", lang)
	}

	headers := map[string]string{"Accept": "application/json"}
	if b.ep.Proxy {
		headers["Authorization"] = "Bearer " + b.ep.APIKey
	} else if b.ep.APIKey != "" {
		headers["X-Subscription-Token"] = b.ep.APIKey
	}

	var br braveResponse
	if err := sendJSON(ctx, b.Name(), b.ep, http.MethodGet, b.ep.BaseURL+"/res/v1/web/search?"+params.Encode(), nil, headers, &br); err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		out = append(out, types.Source{Title: r.Title, URL: r.URL, Content: stripTags(r.Description), SourceType: "web"})
	}
	return out, nil
}

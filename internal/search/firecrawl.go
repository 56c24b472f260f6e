// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"strings"

	"github.com/pdiddy/deep-research/pkg/types"
)

// firecrawlAPIBase is the Firecrawl API origin. Declared as a var so tests
// can substitute an httptest server.
var firecrawlAPIBase = "https://api.firecrawl.dev"

// Firecrawl searches and scrapes pages to Markdown through Firecrawl.
type Firecrawl struct {
	ep Endpoint
}

func newFirecrawl(ep Endpoint) WebSearcher { return &Firecrawl{ep: ep} }

// Name returns the vendor identifier.
func (f *Firecrawl) Name() string { return "firecrawl" }

type firecrawlRequest struct {
	Query         string `json:"query"`
	Lang          string `json:"lang,omitempty"`
	Country       string `json:"country,omitempty"`
	Limit         int    `json:"limit"`
	Origin        string `json:"origin"`
	ScrapeOptions struct {
		Formats []string `json:"formats"`
	} `json:"scrapeOptions"`
	Timeout int `json:"timeout"`
}

type firecrawlResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Markdown    string `json:"markdown"`
		Description string `json:"description"`
	} `json:"data"`
}

// Search posts the query to /v1/search.
func (f *Firecrawl) Search(ctx context.Context, req Request) ([]types.Source, error) {
	lang, country := splitLanguage(req.Language)
	body := firecrawlRequest{
		Query:   req.Query,
		Lang:    lang,
		Country: country,
		Limit:   req.MaxResults,
		Origin:  "api",
		Timeout: 60000,
	}
	body.ScrapeOptions.Formats = []string{"markdown"}

	var fr firecrawlResponse
	if err := sendJSON(ctx, f.Name(), f.ep, http.MethodPost, f.ep.BaseURL+"/v1/search", body, bearer(f.ep.APIKey), &fr); err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(fr.Data))
	for _, d := range fr.Data {
		content := d.Markdown
		if strings.TrimSpace(content) == "" {
			content = d.Description
		}
		out = append(out, types.Source{Title: d.Title, URL: d.URL, Content: content, SourceType: "web"})
	}
	return out, nil
}

// splitLanguage turns "en-US" into ("en", "us"). Either part may be empty.
func splitLanguage(tag string) (lang, region string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", ""
	}
	lang, region, _ = strings.Cut(tag, "-")
	return strings.ToLower(lang), strings.ToLower(region)
}

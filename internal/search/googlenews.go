// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/deep-research/pkg/types"
)

// googleNewsBase is the Google News origin. Declared as a var so tests
// can substitute an httptest server.
var googleNewsBase = "https://news.google.com"

// GoogleNews searches the Google News RSS endpoint. It needs no key.
type GoogleNews struct {
	ep Endpoint
}

func newGoogleNews(ep Endpoint) WebSearcher { return &GoogleNews{ep: ep} }

// Name returns the vendor identifier.
func (g *GoogleNews) Name() string { return "googlenews" }

// Search issues GET /rss/search and parses the feed with gofeed.
func (g *GoogleNews) Search(ctx context.Context, req Request) ([]types.Source, error) {
	hl, gl, ceid := newsLocale(req.Language)
	params := url.Values{
		"q":    {req.Query},
		"hl":   {hl},
		"gl":   {gl},
		"ceid": {ceid},
	}
	headers := map[string]string{"Accept": "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8"}
	if g.ep.Proxy && g.ep.APIKey != "" {
		headers["Authorization"] = "Bearer " + g.ep.APIKey
	}

	resp, err := send(ctx, g.Name(), g.ep, http.MethodGet, g.ep.BaseURL+"/rss/search?"+params.Encode(), nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &types.SearchProviderError{Provider: g.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing feed: %w", err)}
	}

	out := make([]types.Source, 0, len(feed.Items))
	for _, item := range feed.Items {
		content := stripTags(item.Description)
		if content == "" {
			content = stripTags(item.Content)
		}
		if content == "" {
			content = item.Title
		}
		if item.Published != "" {
			content = item.Published + ": " + content
		}
		out = append(out, types.Source{Title: item.Title, URL: item.Link, Content: content, SourceType: "news"})
	}
	return out, nil
}

// newsLocale derives Google News hl/gl/ceid parameters from a BCP 47 tag.
// "en-US" gives ("en-US", "US", "US:en"); an empty tag means en-US.
func newsLocale(tag string) (hl, gl, ceid string) {
	lang, region := splitLanguage(tag)
	if lang == "" {
		lang = "en"
	}
	if region == "" {
		region = "us"
	}
	gl = strings.ToUpper(region)
	return lang + "-" + gl, gl, gl + ":" + lang
}

var reTag = regexp.MustCompile(`<[^>]*>`)

// stripTags removes HTML markup and collapses whitespace.
func stripTags(s string) string {
	s = reTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

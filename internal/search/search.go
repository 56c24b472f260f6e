// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries web search APIs and normalizes their results into
// types.Source. Each vendor is a WebSearcher adapter registered by name;
// the Client picks the adapter, credentials, and endpoint per call.
//
// Every Source returned by Client.Search has a non-empty URL and Content.
package search

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// ModelProvider is the provider name meaning "do not search; let the model
// use its own knowledge and retrieval".
const ModelProvider = "model"

// DefaultMaxResults is used when a caller passes maxResults <= 0.
const DefaultMaxResults = 5

// Request holds the parameters of one search call.
type Request struct {
	Query      string
	MaxResults int
	// Language is a BCP 47 tag such as "en-US".
	Language string
}

// WebSearcher searches a single web search API. Each vendor (Tavily,
// Firecrawl, Exa, ...) implements this interface.
type WebSearcher interface {
	Name() string
	Search(ctx context.Context, req Request) ([]types.Source, error)
}

// Endpoint is everything an adapter needs to reach its vendor.
type Endpoint struct {
	APIKey    string
	BaseURL   string
	Proxy     bool
	Client    *http.Client
	UserAgent string
}

// Factory builds an adapter for an endpoint.
type Factory func(Endpoint) WebSearcher

// Vendor describes one registry entry.
type Vendor struct {
	Name string
	// EnvKey is the process environment variable holding vendor keys.
	EnvKey string
	// BaseURL returns the default vendor origin. It is a func so tests can
	// swap the package-level API base vars.
	BaseURL func() string
	Build   Factory
}

// Client dispatches searches to registered vendors.
type Client struct {
	cfg     types.SearchConfig
	vendors map[string]Vendor
	getenv  func(string) string
	intn    func(int) int
	client  *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEnv replaces the environment lookup.
func WithEnv(getenv func(string) string) Option {
	return func(c *Client) { c.getenv = getenv }
}

// WithRand replaces the key picker's source of randomness.
func WithRand(intn func(int) int) Option {
	return func(c *Client) { c.intn = intn }
}

// WithHTTPClient sets the HTTP client handed to adapters.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.client = h }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithVendor adds or replaces a registry entry.
func WithVendor(v Vendor) Option {
	return func(c *Client) { c.vendors[v.Name] = v }
}

// NewClient returns a client holding every built-in vendor. Credentials
// and routing come from cfg.
func NewClient(cfg types.SearchConfig, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		vendors: make(map[string]Vendor),
		getenv:  os.Getenv,
		intn:    rand.IntN,
		client:  http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, v := range builtins() {
		c.vendors[v.Name] = v
	}
	for _, o := range opts {
		o(c)
	}
	if cfg.HTTP.Timeout > 0 {
		h := *c.client
		h.Timeout = cfg.HTTP.Timeout
		c.client = &h
	}
	return c
}

// Names returns the registered vendor names plus ModelProvider, sorted.
func (c *Client) Names() []string {
	out := []string{ModelProvider}
	for n := range c.vendors {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether name is a registered vendor or ModelProvider.
func (c *Client) Supports(name string) bool {
	if name == ModelProvider {
		return true
	}
	_, ok := c.vendors[name]
	return ok
}

// EnvKey returns the environment variable a vendor reads its key from, or
// "" for vendors that need none.
func (c *Client) EnvKey(name string) string {
	return c.vendors[name].EnvKey
}

// Search runs query against the named provider and returns at most
// maxResults normalized sources. ModelProvider returns no sources and
// makes no request. Vendor failures are returned as
// *types.SearchProviderError.
func (c *Client) Search(ctx context.Context, query, providerName string, maxResults int, language string) ([]types.Source, error) {
	if providerName == ModelProvider {
		return nil, nil
	}
	v, ok := c.vendors[providerName]
	if !ok {
		return nil, &types.UnsupportedProviderError{Kind: types.KindSearch, Name: providerName}
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	ws := v.Build(c.endpoint(v))
	c.logger.Debug("web search",
		zap.String("provider", providerName),
		zap.String("query", query),
		zap.Int("max_results", maxResults),
	)
	raw, err := ws.Search(ctx, Request{Query: query, MaxResults: maxResults, Language: language})
	if err != nil {
		var spe *types.SearchProviderError
		if errors.As(err, &spe) {
			return nil, err
		}
		return nil, &types.SearchProviderError{Provider: providerName, Err: err}
	}
	return Normalize(raw, maxResults), nil
}

func (c *Client) endpoint(v Vendor) Endpoint {
	ep := Endpoint{Client: c.client, UserAgent: c.cfg.HTTP.UserAgent}
	if c.cfg.IsProxy() {
		ep.Proxy = true
		ep.APIKey = c.cfg.AccessPassword
		ep.BaseURL = strings.TrimRight(c.cfg.ProxyURL, "/") + "/api/search/" + v.Name
		return ep
	}
	keys := c.cfg.APIKey
	if keys == "" && v.EnvKey != "" {
		keys = c.getenv(v.EnvKey)
	}
	ep.APIKey = httputil.PickKey(keys, c.intn)
	ep.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	if ep.BaseURL == "" && v.BaseURL != nil {
		ep.BaseURL = strings.TrimRight(v.BaseURL(), "/")
	}
	return ep
}

// Normalize trims every field, drops sources missing a URL or content, and
// keeps at most max entries in their original order.
func Normalize(in []types.Source, max int) []types.Source {
	out := make([]types.Source, 0, len(in))
	for _, s := range in {
		s.Title = strings.TrimSpace(s.Title)
		s.URL = strings.TrimSpace(s.URL)
		s.Content = strings.TrimSpace(s.Content)
		if s.URL == "" || s.Content == "" {
			continue
		}
		out = append(out, s)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

func builtins() []Vendor {
	return []Vendor{
		{Name: "tavily", EnvKey: "TAVILY_API_KEY", BaseURL: func() string { return tavilyAPIBase }, Build: newTavily},
		{Name: "firecrawl", EnvKey: "FIRECRAWL_API_KEY", BaseURL: func() string { return firecrawlAPIBase }, Build: newFirecrawl},
		{Name: "exa", EnvKey: "EXA_API_KEY", BaseURL: func() string { return exaAPIBase }, Build: newExa},
		{Name: "bocha", EnvKey: "BOCHA_API_KEY", BaseURL: func() string { return bochaAPIBase }, Build: newBocha},
		{Name: "searxng", BaseURL: func() string { return searxngAPIBase }, Build: newSearxng},
		{Name: "brave", EnvKey: "BRAVE_API_KEY", BaseURL: func() string { return braveAPIBase }, Build: newBrave},
		{Name: "googlenews", BaseURL: func() string { return googleNewsBase }, Build: newGoogleNews},
	}
}

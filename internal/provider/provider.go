// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider resolves an LLM vendor name and role into a streaming
// text generator. Each vendor is an adapter registered in a lookup table
// with its role defaults, credential variable, and endpoint layout.
//
// Resolution never touches the network; the first request is made when
// the caller ranges over StreamText.
package provider

import (
	"context"
	"iter"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Name identifies an LLM vendor.
type Name string

const (
	Google           Name = "google"
	OpenAI           Name = "openai"
	Anthropic        Name = "anthropic"
	DeepSeek         Name = "deepseek"
	XAI              Name = "xai"
	OpenRouter       Name = "openrouter"
	OpenAICompatible Name = "openai-compatible"
	Ollama           Name = "ollama"
)

// aliases maps alternate spellings onto canonical names.
var aliases = map[string]Name{
	"openaicompatible": OpenAICompatible,
}

// Prompt is one generation request.
type Prompt struct {
	System string
	User   string

	// Temperature overrides the adapter default when non-nil.
	Temperature *float64

	// MaxTokens caps the response length. Zero uses the adapter default.
	MaxTokens int

	// WebSearch asks the model to ground its answer with its own retrieval
	// tool, where the vendor offers one.
	WebSearch bool
}

// TextGenerator streams text for a prompt.
type TextGenerator interface {
	// Provider returns the vendor name.
	Provider() Name
	// Model returns the model identifier requests are sent to.
	Model() string
	// StreamText yields response fragments in arrival order. A non-nil
	// error ends the sequence.
	StreamText(ctx context.Context, p Prompt) iter.Seq2[string, error]
}

// Endpoint is everything an adapter needs to build a generator.
type Endpoint struct {
	Provider Name
	Model    string

	// APIKey is one vendor key or a comma-separated list of them. In proxy
	// mode it is the relay access password.
	APIKey string

	// BaseURL is fully resolved, including the vendor version path.
	BaseURL string

	// Proxy is set when requests go through a relay authenticated with
	// an access password instead of a vendor key.
	Proxy bool

	// Rand picks among listed keys. Nil uses math/rand/v2.
	Rand func(int) int

	Client    *http.Client
	UserAgent string
	Logger    *zap.Logger
}

// Key returns the credential for one call. A key list yields a fresh
// pseudo-random pick each time; the access password is used verbatim.
func (ep Endpoint) Key() string {
	if ep.Proxy {
		return ep.APIKey
	}
	return httputil.PickKey(ep.APIKey, ep.Rand)
}

// Factory builds a generator for an endpoint.
type Factory func(Endpoint) (TextGenerator, error)

// Vendor describes one registry entry.
type Vendor struct {
	Name     Name
	Defaults types.RoleModels

	// EnvKey is the process environment variable holding vendor keys.
	EnvKey string

	// BaseURL is the vendor origin used in local mode.
	BaseURL string

	// Suffix is the version path appended to any base URL lacking it.
	Suffix string

	Build Factory
}

// Registry maps vendor names to adapters.
type Registry struct {
	vendors map[Name]Vendor
	getenv  func(string) string
	intn    func(int) int
	client  *http.Client
	logger  *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithEnv replaces the environment lookup.
func WithEnv(getenv func(string) string) Option {
	return func(r *Registry) { r.getenv = getenv }
}

// WithRand replaces the key picker's source of randomness.
func WithRand(intn func(int) int) Option {
	return func(r *Registry) { r.intn = intn }
}

// WithHTTPClient sets the client handed to HTTP adapters.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.client = c }
}

// WithLogger sets the logger handed to adapters.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithVendor adds or replaces a registry entry.
func WithVendor(v Vendor) Option {
	return func(r *Registry) { r.vendors[v.Name] = v }
}

// NewRegistry returns a registry holding every built-in vendor.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		vendors: make(map[Name]Vendor, len(builtins)),
		getenv:  os.Getenv,
		intn:    rand.IntN,
		client:  http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, v := range builtins {
		r.vendors[v.Name] = v
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Names returns the registered vendor names, sorted.
func (r *Registry) Names() []Name {
	out := make([]Name, 0, len(r.vendors))
	for n := range r.vendors {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Vendor returns the registry entry for a name or alias.
func (r *Registry) Vendor(name string) (Vendor, error) {
	n := canonical(name)
	v, ok := r.vendors[n]
	if !ok {
		return Vendor{}, &types.UnsupportedProviderError{Kind: types.KindLLM, Name: name}
	}
	return v, nil
}

// ModelFor returns the model a role resolves to under cfg: an explicit
// model wins for every role, then the per-role override, then the vendor
// default.
func (r *Registry) ModelFor(cfg types.ProviderConfig, role types.Role) (string, error) {
	v, err := r.Vendor(cfg.Provider)
	if err != nil {
		return "", err
	}
	return modelFor(v, cfg, role), nil
}

func modelFor(v Vendor, cfg types.ProviderConfig, role types.Role) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if m := cfg.Models.For(role); m != "" {
		return m
	}
	return v.Defaults.For(role)
}

// Resolve builds the generator for role under cfg.
func (r *Registry) Resolve(cfg types.ProviderConfig, role types.Role) (TextGenerator, error) {
	v, err := r.Vendor(cfg.Provider)
	if err != nil {
		return nil, err
	}

	ep := Endpoint{
		Provider:  v.Name,
		Model:     modelFor(v, cfg, role),
		Rand:      r.intn,
		Client:    r.client,
		UserAgent: cfg.HTTP.UserAgent,
		Logger:    r.logger.With(zap.String("provider", string(v.Name)), zap.String("role", string(role))),
	}
	if cfg.HTTP.Timeout > 0 {
		c := *r.client
		c.Timeout = cfg.HTTP.Timeout
		ep.Client = &c
	}

	if cfg.IsProxy() {
		ep.Proxy = true
		ep.APIKey = cfg.AccessPassword
		ep.BaseURL = httputil.CompletePath(strings.TrimRight(cfg.ProxyURL, "/")+"/api/ai/"+string(v.Name), v.Suffix)
	} else {
		keys := cfg.APIKey
		if keys == "" && v.EnvKey != "" {
			keys = r.getenv(v.EnvKey)
		}
		ep.APIKey = keys
		base := cfg.BaseURL
		if base == "" {
			base = v.BaseURL
		}
		ep.BaseURL = httputil.CompletePath(base, v.Suffix)
	}

	return v.Build(ep)
}

func canonical(name string) Name {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		return a
	}
	return Name(n)
}

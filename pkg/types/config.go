// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Streaming responses are bounded by
	// the run context instead, so zero means no client-side timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deep-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Mode selects how adapters reach a vendor.
type Mode string

const (
	// ModeLocal calls the vendor (or an overridden base URL) with the vendor key.
	ModeLocal Mode = "local"
	// ModeProxy calls a relay at ProxyURL and authenticates with an access password.
	ModeProxy Mode = "proxy"
)

// Routing is the part of adapter configuration that decides where requests go.
type Routing struct {
	// Mode is local (default) or proxy.
	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// BaseURL overrides the vendor default endpoint in local mode.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// ProxyURL is the relay origin used in proxy mode.
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url,omitempty"`

	// AccessPassword authenticates against the relay in proxy mode.
	AccessPassword string `json:"access_password,omitempty" yaml:"access_password,omitempty"`
}

// IsProxy reports whether requests are relayed.
func (r Routing) IsProxy() bool { return r.Mode == ModeProxy }

// RoleModels holds one model identifier per role.
type RoleModels struct {
	Thinking   string `json:"thinking,omitempty" yaml:"thinking,omitempty"`
	Networking string `json:"networking,omitempty" yaml:"networking,omitempty"`
	Report     string `json:"report,omitempty" yaml:"report,omitempty"`
}

// For returns the model for role, or "" when unset.
func (m RoleModels) For(role Role) string {
	switch role {
	case RoleThinking:
		return m.Thinking
	case RoleNetworking:
		return m.Networking
	case RoleReport:
		return m.Report
	}
	return ""
}

// Set stores model for role.
func (m *RoleModels) Set(role Role, model string) {
	switch role {
	case RoleThinking:
		m.Thinking = model
	case RoleNetworking:
		m.Networking = model
	case RoleReport:
		m.Report = model
	}
}

// ProviderConfig describes which LLM vendor a run uses and how to reach it.
// It is fixed for the lifetime of a run.
type ProviderConfig struct {
	Routing `yaml:",inline"`

	// Provider is the vendor name (google, openai, anthropic, ...).
	Provider string `json:"provider" yaml:"provider"`

	// Model, when set, is used for every role.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Models overrides the default model per role.
	Models RoleModels `json:"models,omitempty" yaml:"models,omitempty"`

	// APIKey is the vendor key. A comma-separated list means "pick one".
	// When empty the vendor's environment variable is consulted.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// HTTP holds transport settings.
	HTTP HTTPConfig `json:"http" yaml:"http"`
}

// SearchConfig describes which web search vendor a run uses.
type SearchConfig struct {
	Routing `yaml:",inline"`

	// Enabled turns web search on. When false every task runs without sources.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Provider is the search vendor name, or "model" to rely on the model's
	// own retrieval.
	Provider string `json:"provider" yaml:"provider"`

	// MaxResults caps the sources returned per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Parallel is the number of tasks searched concurrently (default 1).
	Parallel int `json:"parallel" yaml:"parallel"`

	// APIKey is the vendor key. A comma-separated list means "pick one".
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// HTTP holds transport settings.
	HTTP HTTPConfig `json:"http" yaml:"http"`
}

// ArchiveConfig holds settings for the optional report archive.
type ArchiveConfig struct {
	// Dir is the directory holding the archive database. Empty disables archiving.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default number of rows returned by list and search (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deep-research/pkg/types"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveRoleDefaults(t *testing.T) {
	tests := []struct {
		provider string
		role     types.Role
		want     string
	}{
		{"google", types.RoleThinking, "gemini-2.0-flash-thinking-exp"},
		{"google", types.RoleNetworking, "gemini-2.0-flash-exp"},
		{"google", types.RoleReport, "gemini-2.0-flash-thinking-exp"},
		{"openai", types.RoleThinking, "gpt-4o"},
		{"openai", types.RoleNetworking, "gpt-4o-mini"},
		{"anthropic", types.RoleNetworking, "claude-3-sonnet-20240229"},
		{"anthropic", types.RoleReport, "claude-3-opus-20240229"},
		{"deepseek", types.RoleThinking, "deepseek-reasoner"},
		{"deepseek", types.RoleNetworking, "deepseek-chat"},
		{"xai", types.RoleReport, "grok-1"},
		{"openrouter", types.RoleNetworking, "anthropic/claude-3-sonnet"},
		{"openai-compatible", types.RoleNetworking, "gpt-3.5-turbo"},
		{"openaicompatible", types.RoleThinking, "gpt-4"},
		{"ollama", types.RoleThinking, "llama3"},
	}
	r := NewRegistry(WithEnv(envMap(nil)))
	for _, tt := range tests {
		t.Run(tt.provider+"/"+string(tt.role), func(t *testing.T) {
			g, err := r.Resolve(types.ProviderConfig{Provider: tt.provider}, tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Model())
		})
	}
}

func TestResolveModelPrecedence(t *testing.T) {
	r := NewRegistry(WithEnv(envMap(nil)))

	cfg := types.ProviderConfig{
		Provider: "openai",
		Models:   types.RoleModels{Networking: "gpt-4.1-mini"},
	}
	g, err := r.Resolve(cfg, types.RoleNetworking)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", g.Model(), "per-role override beats default")

	g, err = r.Resolve(cfg, types.RoleThinking)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", g.Model(), "roles without override keep default")

	cfg.Model = "o3"
	for _, role := range types.Roles {
		g, err := r.Resolve(cfg, role)
		require.NoError(t, err)
		assert.Equal(t, "o3", g.Model(), "explicit model applies to %s", role)
	}
}

func TestResolveUnsupportedProvider(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"", "mistral", "gpt"} {
		_, err := r.Resolve(types.ProviderConfig{Provider: name}, types.RoleThinking)
		var upe *types.UnsupportedProviderError
		require.True(t, errors.As(err, &upe), "name %q", name)
		assert.Equal(t, types.KindLLM, upe.Kind)
		assert.Equal(t, name, upe.Name)
	}
}

func TestResolveCredentials(t *testing.T) {
	env := envMap(map[string]string{
		"OPENAI_API_KEY":    "env-1,env-2",
		"ANTHROPIC_API_KEY": "ak-env",
	})
	pickLast := func(n int) int { return n - 1 }

	tests := []struct {
		name    string
		cfg     types.ProviderConfig
		wantKey string
		wantURL string
	}{
		{
			name:    "environment fallback with pick",
			cfg:     types.ProviderConfig{Provider: "openai"},
			wantKey: "env-2",
			wantURL: "https://api.openai.com/v1",
		},
		{
			name:    "request key beats environment",
			cfg:     types.ProviderConfig{Provider: "anthropic", APIKey: "ak-req"},
			wantKey: "ak-req",
			wantURL: "https://api.anthropic.com/v1",
		},
		{
			name: "base url override gets version path",
			cfg: types.ProviderConfig{
				Provider: "openrouter",
				Routing:  types.Routing{BaseURL: "https://relay.example.com/"},
			},
			wantURL: "https://relay.example.com/api/v1",
		},
		{
			name: "base url already versioned",
			cfg: types.ProviderConfig{
				Provider: "deepseek",
				Routing:  types.Routing{BaseURL: "https://ds.example.com/v1"},
			},
			wantURL: "https://ds.example.com/v1",
		},
		{
			name: "proxy mode uses access password",
			cfg: types.ProviderConfig{
				Provider: "openai",
				APIKey:   "ignored",
				Routing: types.Routing{
					Mode:           types.ModeProxy,
					ProxyURL:       "https://app.example.com/",
					AccessPassword: "pw",
				},
			},
			wantKey: "pw",
			wantURL: "https://app.example.com/api/ai/openai/v1",
		},
		{
			name:    "ollama needs no key",
			cfg:     types.ProviderConfig{Provider: "ollama"},
			wantURL: "http://localhost:11434/api",
		},
		{
			name:    "google keeps v1beta",
			cfg:     types.ProviderConfig{Provider: "google"},
			wantURL: "https://generativelanguage.googleapis.com/v1beta",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Endpoint
			r := NewRegistry(WithEnv(env), WithRand(pickLast))
			v, err := r.Vendor(tt.cfg.Provider)
			require.NoError(t, err)
			capture := v
			capture.Build = func(ep Endpoint) (TextGenerator, error) {
				got = ep
				return v.Build(ep)
			}
			r = NewRegistry(WithEnv(env), WithRand(pickLast), WithVendor(capture))

			_, err = r.Resolve(tt.cfg, types.RoleThinking)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, got.Key())
			assert.Equal(t, tt.wantURL, got.BaseURL)
			assert.Equal(t, tt.cfg.IsProxy(), got.Proxy)
		})
	}
}

func TestRegistryNames(t *testing.T) {
	names := NewRegistry().Names()
	assert.Equal(t, []Name{Anthropic, DeepSeek, Google, Ollama, OpenAI, OpenAICompatible, OpenRouter, XAI}, names)
}

func TestModelFor(t *testing.T) {
	r := NewRegistry()
	m, err := r.ModelFor(types.ProviderConfig{Provider: "xai"}, types.RoleNetworking)
	require.NoError(t, err)
	assert.Equal(t, "grok-1", m)

	_, err = r.ModelFor(types.ProviderConfig{Provider: "nope"}, types.RoleNetworking)
	assert.Error(t, err)
}

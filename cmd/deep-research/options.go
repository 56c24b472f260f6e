// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/provider"
	"github.com/pdiddy/deep-research/internal/research"
	"github.com/pdiddy/deep-research/internal/search"
	"github.com/pdiddy/deep-research/internal/secrets"
	"github.com/pdiddy/deep-research/pkg/types"
)

// envReplacer maps config keys such as search.max_results onto
// DEEP_RESEARCH_SEARCH_MAX_RESULTS.
var envReplacer = strings.NewReplacer(".", "_", "-", "_")

func bindPersistent(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func bindLocal(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// addOptionFlags registers the flags shared by every pipeline command.
func addOptionFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("language", research.DefaultLanguage, "response language (BCP 47)")
	pf.String("provider", research.DefaultProvider, "LLM provider")
	pf.String("model", "", "model for every role (overrides the vendor defaults)")
	pf.String("thinking-model", "", "model for the planning stages")
	pf.String("networking-model", "", "model that writes learnings")
	pf.String("report-model", "", "model that writes the report")
	pf.String("mode", string(types.ModeLocal), "local or proxy")
	pf.String("proxy-url", "", "relay origin in proxy mode")
	pf.String("access-password", "", "relay password in proxy mode")
	pf.String("base-url", "", "LLM API base URL override")
	pf.String("api-key", "", "LLM API key; a comma-separated list picks one")
	pf.Duration("http-timeout", 0, "per-request HTTP timeout (0 = none)")

	pf.String("search-provider", research.DefaultSearchProvider, "web search provider, or model for model-side retrieval")
	pf.String("search-base-url", "", "search API base URL override")
	pf.String("search-api-key", "", "search API key; a comma-separated list picks one")
	pf.Int("max-results", research.DefaultMaxResults, "sources kept per query")
	pf.Int("parallel", research.DefaultParallel, "queries searched concurrently")
	pf.Bool("no-search", false, "skip web search; learnings come from model knowledge")

	pf.String("report-style", "", "standard, academic, technical, or news (default: from topic)")
	pf.Float64("temperature", 0, "report sampling temperature (default: per style)")
	pf.Bool("include-sources", true, "append a References section to the report")
	pf.String("detail-level", "", "report length cap: basic, standard, comprehensive, or expert (default: model limit)")

	for key, flag := range map[string]string{
		"language":           "language",
		"provider":           "provider",
		"model":              "model",
		"models.thinking":    "thinking-model",
		"models.networking":  "networking-model",
		"models.report":      "report-model",
		"mode":               "mode",
		"proxy_url":          "proxy-url",
		"access_password":    "access-password",
		"base_url":           "base-url",
		"api_key":            "api-key",
		"http_timeout":       "http-timeout",
		"search.provider":    "search-provider",
		"search.base_url":    "search-base-url",
		"search.api_key":     "search-api-key",
		"search.max_results": "max-results",
		"search.parallel":    "parallel",
		"no_search":          "no-search",
		"report_style":       "report-style",
		"temperature":        "temperature",
		"include_sources":    "include-sources",
		"detail_level":       "detail-level",
	} {
		bindPersistent(cmd, key, flag)
	}
}

// optionsFrom assembles pipeline options from v. Key files fill any
// credential that flags, config, and environment leave empty.
func optionsFrom(v *viper.Viper, keys secrets.Store) research.Options {
	routing := types.Routing{
		Mode:           types.Mode(v.GetString("mode")),
		ProxyURL:       v.GetString("proxy_url"),
		AccessPassword: keys.Fill(v.GetString("access_password"), secrets.AccessPassword),
	}
	httpCfg := types.HTTPConfig{
		Timeout:   v.GetDuration("http_timeout"),
		UserAgent: "deep-research/" + version,
	}

	llm := types.ProviderConfig{
		Routing:  routing,
		Provider: v.GetString("provider"),
		Model:    v.GetString("model"),
		Models: types.RoleModels{
			Thinking:   v.GetString("models.thinking"),
			Networking: v.GetString("models.networking"),
			Report:     v.GetString("models.report"),
		},
		HTTP: httpCfg,
	}
	llm.BaseURL = v.GetString("base_url")
	llm.APIKey = keys.Fill(v.GetString("api_key"), secrets.KeyFile(llm.Provider))

	sc := types.SearchConfig{
		Routing:    routing,
		Provider:   v.GetString("search.provider"),
		MaxResults: v.GetInt("search.max_results"),
		Parallel:   v.GetInt("search.parallel"),
		HTTP:       httpCfg,
	}
	sc.BaseURL = v.GetString("search.base_url")
	sc.APIKey = keys.Fill(v.GetString("search.api_key"), secrets.KeyFile(sc.Provider))

	disable := v.GetBool("no_search")
	if v.IsSet("search.enabled") && !v.GetBool("search.enabled") {
		disable = true
	}

	opts := research.Options{
		Language:      v.GetString("language"),
		LLM:           llm,
		Search:        sc,
		DisableSearch: disable,
		ReportStyle:   v.GetString("report_style"),
		OmitSources:   !v.GetBool("include_sources"),
		DetailLevel:   v.GetString("detail_level"),
	}
	// Unchanged flag defaults do not count as set.
	if v.IsSet("temperature") {
		t := v.GetFloat64("temperature")
		opts.Temperature = &t
	}
	return opts
}

// newEngine wires the provider registry and search client for opts.
func newEngine(opts research.Options, progress io.Writer) *research.Engine {
	registry := provider.NewRegistry(provider.WithLogger(logger))
	client := search.NewClient(opts.Search, search.WithLogger(logger))
	return research.NewEngine(registry, client,
		research.WithLogger(logger),
		research.WithProgress(progress),
	)
}

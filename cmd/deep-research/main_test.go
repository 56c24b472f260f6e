// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/internal/provider"
	"github.com/pdiddy/deep-research/internal/search"
	"github.com/pdiddy/deep-research/internal/secrets"
	"github.com/pdiddy/deep-research/pkg/types"
)

func TestOptionsFrom(t *testing.T) {
	v := viper.New()
	v.Set("language", "de-DE")
	v.Set("provider", "anthropic")
	v.Set("models.report", "big-model")
	v.Set("mode", "proxy")
	v.Set("proxy_url", "https://relay.example")
	v.Set("search.provider", "exa")
	v.Set("search.max_results", 7)
	v.Set("search.parallel", 3)
	v.Set("report_style", "news")
	v.Set("include_sources", false)
	v.Set("http_timeout", "30s")
	v.Set("detail_level", "expert")

	keys := secrets.Store{
		"anthropic-api-key":    "ak",
		"exa-api-key":          "ek",
		secrets.AccessPassword: "pw",
	}
	opts := optionsFrom(v, keys)

	assert.Equal(t, "de-DE", opts.Language)
	assert.Equal(t, "anthropic", opts.LLM.Provider)
	assert.Equal(t, "big-model", opts.LLM.Models.Report)
	assert.Equal(t, types.ModeProxy, opts.LLM.Mode)
	assert.Equal(t, "https://relay.example", opts.Search.ProxyURL)
	assert.Equal(t, "pw", opts.LLM.AccessPassword)
	assert.Equal(t, "ak", opts.LLM.APIKey)
	assert.Equal(t, "ek", opts.Search.APIKey)
	assert.Equal(t, 7, opts.Search.MaxResults)
	assert.Equal(t, 3, opts.Search.Parallel)
	assert.Equal(t, "news", opts.ReportStyle)
	assert.True(t, opts.OmitSources)
	assert.Equal(t, 30*time.Second, opts.LLM.HTTP.Timeout)
	assert.Equal(t, "expert", opts.DetailLevel)
	assert.Nil(t, opts.Temperature)
	assert.False(t, opts.DisableSearch)
}

func TestOptionsFromExplicitWins(t *testing.T) {
	v := viper.New()
	v.Set("provider", "google")
	v.Set("api_key", "flag-key")
	v.Set("search.enabled", false)
	v.Set("temperature", 0.4)
	v.Set("include_sources", true)

	opts := optionsFrom(v, secrets.Store{"google-api-key": "file-key"})
	assert.Equal(t, "flag-key", opts.LLM.APIKey)
	assert.True(t, opts.DisableSearch)
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.4, *opts.Temperature, 1e-9)
	assert.False(t, opts.OmitSources)
}

func TestRenderResult(t *testing.T) {
	res := &types.Result{
		Report:    "# Report\n\nBody.\n\n",
		Learnings: types.Learnings{" one ", "two"},
		Metadata:  types.Metadata{RunID: "r1", Topic: "bees", ReportStyle: types.StyleNews},
	}

	var md bytes.Buffer
	require.NoError(t, renderResult(&md, res, formatMarkdown, false, false))
	assert.Equal(t, "# Report\n\nBody.\n", md.String())

	md.Reset()
	require.NoError(t, renderResult(&md, res, "", true, true))
	out := md.String()
	assert.Contains(t, out, "## Learnings\n\n### Learning 1\n\none\n\n### Learning 2\n\ntwo\n")
	assert.Contains(t, out, "## Metadata\n\n```yaml\nrun_id: r1\n")
	assert.True(t, strings.HasSuffix(out, "```\n"))

	var js bytes.Buffer
	require.NoError(t, renderResult(&js, res, formatJSON, false, false))
	var decoded types.Result
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, res.Learnings, decoded.Learnings)

	assert.Error(t, renderResult(&js, res, "pdf", false, false))
}

func TestPrintProviders(t *testing.T) {
	var b bytes.Buffer
	keys := secrets.Store{"tavily-api-key": "x"}
	require.NoError(t, printProviders(&b, provider.NewRegistry(), search.NewClient(types.SearchConfig{}), keys))

	out := b.String()
	assert.Contains(t, out, "gemini-2.0-flash-thinking-exp")
	assert.Contains(t, out, "$OPENAI_API_KEY")
	assert.Contains(t, out, "tavily-api-key")
	assert.Contains(t, out, "$BRAVE_API_KEY")
	assert.Regexp(t, `(?m)^model\s+-$`, out)
}

// chatServer answers chat-completions requests by stage.
func chatServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user := req.Messages[len(req.Messages)-1].Content

		var reply []string
		switch {
		case strings.Contains(user, "generate a list of SERP queries"):
			reply = []string{`[{"query":"bee dances",`, `"researchGoal":"how bees navigate"}]`}
		case strings.Contains(user, "<RESEARCH_GOAL>"):
			reply = []string{"Bees ", "dance."}
		default:
			reply = []string{"# Bees\n\n", "Bees navigate by the sun."}
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range reply {
			chunk, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{{"delta": map[string]string{"content": frag}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResearchCommand(t *testing.T) {
	srv := chatServer(t)
	dir := t.TempDir()

	out, err := execute(t, "research", "How", "bees", "navigate",
		"--provider", "openai", "--base-url", srv.URL, "--api-key", "k",
		"--no-search", "--max-iterations", "1", "--format", "json",
		"--archive-dir", dir,
	)
	require.NoError(t, err)

	var res types.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Metadata.Fallback, res.Metadata.FallbackReason)
	assert.Equal(t, "How bees navigate", res.Metadata.Topic)
	assert.Equal(t, "# Bees\n\nBees navigate by the sun.", res.Report)
	assert.Equal(t, types.Learnings{"Bees dance."}, res.Learnings)
	assert.Equal(t, []types.SearchTask{{Query: "bee dances", ResearchGoal: "how bees navigate"}}, res.Metadata.Queries)

	store, err := archive.Open(types.ArchiveConfig{Dir: dir})
	require.NoError(t, err)
	defer store.Close()
	saved, err := store.Get(t.Context(), res.Metadata.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Report, saved.Report)
}

func TestResearchCommandFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, err := execute(t, "research", "Volcanoes",
		"--provider", "openai", "--base-url", srv.URL, "--api-key", "k",
		"--no-search", "--max-iterations", "1", "--format", "markdown",
		"--archive-dir", "",
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Volcanoes\n"))
	assert.Contains(t, out, "## Introduction")
}

func TestResearchCommandRejectsBadInput(t *testing.T) {
	_, err := execute(t, "research", "topic", "--provider", "nope", "--archive-dir", "")
	var upe *types.UnsupportedProviderError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "nope", upe.Name)

	_, err = execute(t, "research", "topic", "--provider", "openai", "--report-style", "poem", "--archive-dir", "")
	var ve *types.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reportStyle", ve.Field)

	// Reset for later tests sharing the root command.
	_, err = execute(t, "research", " ", "--report-style", "", "--archive-dir", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "topic", ve.Field)
}

func TestQueriesCommandWritesTaskFile(t *testing.T) {
	srv := chatServer(t)
	path := filepath.Join(t.TempDir(), "tasks.json")

	_, err := execute(t, "queries", "bees",
		"--provider", "openai", "--base-url", srv.URL, "--api-key", "k",
		"--out", path,
	)
	require.NoError(t, err)

	tf, err := search.ReadTaskFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bees", tf.Topic)
	assert.Equal(t, []types.SearchTask{{Query: "bee dances", ResearchGoal: "how bees navigate"}}, tf.Tasks)
	assert.Equal(t, 1, tf.Summary.Tasks)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "deep-research dev\n", out)
}

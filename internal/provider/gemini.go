// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const geminiAPIVersion = "v1beta"

// Generation defaults for Gemini models.
var (
	geminiTemperature     float32 = 0.2
	geminiTopP            float32 = 0.95
	geminiTopK            float32 = 40
	geminiMaxOutputTokens int32   = 16384
)

var geminiSafety = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
}

// geminiGenerator streams through the Gen AI SDK. SDK clients are built
// on first use of each key so that a missing key surfaces as a stream
// error.
type geminiGenerator struct {
	base

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func newGemini(ep Endpoint) (TextGenerator, error) {
	return &geminiGenerator{base: base{ep: ep}, clients: make(map[string]*genai.Client)}, nil
}

// sdk returns the client for the key picked for this call.
func (g *geminiGenerator) sdk(ctx context.Context) (*genai.Client, error) {
	key := g.ep.Key()
	if key == "" {
		return nil, fmt.Errorf("google: no API key configured")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[key]; ok {
		return c, nil
	}
	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.ep.Client,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimSuffix(g.ep.BaseURL, "/"+geminiAPIVersion) + "/",
			APIVersion: geminiAPIVersion,
		},
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	g.clients[key] = c
	return c, nil
}

func (g *geminiGenerator) config(p Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(geminiTemperature),
		TopP:            genai.Ptr(geminiTopP),
		TopK:            genai.Ptr(geminiTopK),
		MaxOutputTokens: geminiMaxOutputTokens,
		SafetySettings:  geminiSafety,
	}
	if p.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*p.Temperature))
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxTokens)
	}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}

func (g *geminiGenerator) StreamText(ctx context.Context, p Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		client, err := g.sdk(ctx)
		if err != nil {
			yield("", err)
			return
		}

		g.ep.Logger.Debug("gemini generate", zap.String("model", g.ep.Model), zap.Bool("web_search", p.WebSearch))
		contents := []*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}
		for resp, err := range client.Models.GenerateContentStream(ctx, g.ep.Model, contents, g.config(p)) {
			if err != nil {
				yield("", fmt.Errorf("google stream: %w", err))
				return
			}
			if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
				yield("", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason))
				return
			}
			if len(resp.Candidates) == 0 {
				continue
			}
			cand := resp.Candidates[0]
			if cand.FinishReason == genai.FinishReasonSafety {
				yield("", ErrBlocked)
				return
			}
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil || part.Text == "" || part.Thought {
					continue
				}
				if !yield(part.Text, nil) {
					return
				}
			}
		}
	}
}

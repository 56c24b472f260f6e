// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

// anthropicGenerator streams from the Messages API.
type anthropicGenerator struct {
	base
}

func newAnthropic(ep Endpoint) (TextGenerator, error) {
	return &anthropicGenerator{base{ep: ep}}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
	Stream      bool               `json:"stream"`
}

type anthropicEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text,omitempty"`
		StopReason string `json:"stop_reason,omitempty"`
	} `json:"delta,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *anthropicGenerator) StreamText(ctx context.Context, p Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		maxTokens := p.MaxTokens
		if maxTokens <= 0 {
			maxTokens = anthropicMaxTokens
		}
		req := anthropicRequest{
			Model:       g.ep.Model,
			MaxTokens:   maxTokens,
			System:      p.System,
			Messages:    []anthropicMessage{{Role: "user", Content: p.User}},
			Temperature: p.Temperature,
			Stream:      true,
		}
		headers := map[string]string{
			"anthropic-version": anthropicVersion,
			"Accept":            "text/event-stream",
		}
		if key := g.ep.Key(); key != "" {
			headers["x-api-key"] = key
		}

		g.ep.Logger.Debug("anthropic messages", zap.String("model", g.ep.Model))
		resp, err := postStream(ctx, g.ep, g.ep.BaseURL+"/messages", req, headers)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		var streamErr error
		stopped := false
		err = readEvents(resp.Body, func(data []byte) bool {
			var evt anthropicEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				return true
			}
			switch {
			case evt.Error != nil:
				streamErr = fmt.Errorf("anthropic stream error: %s", evt.Error.Message)
				return false
			case evt.Type == "message_delta" && evt.Delta != nil && evt.Delta.StopReason == "refusal":
				streamErr = ErrBlocked
				return false
			case evt.Type == "message_stop":
				return false
			case evt.Type == "content_block_delta" && evt.Delta != nil && evt.Delta.Text != "":
				if !yield(evt.Delta.Text, nil) {
					stopped = true
					return false
				}
			}
			return true
		})
		if stopped {
			return
		}
		if streamErr == nil && err != nil {
			streamErr = fmt.Errorf("reading anthropic stream: %w", err)
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}
}

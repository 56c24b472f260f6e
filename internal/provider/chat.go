// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// chatGenerator speaks the OpenAI chat-completions streaming protocol.
type chatGenerator struct {
	base
}

func newChat(ep Endpoint) (TextGenerator, error) {
	return &chatGenerator{base{ep: ep}}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *chatGenerator) StreamText(ctx context.Context, p Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req := chatRequest{
			Model:       g.ep.Model,
			Stream:      true,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		}
		if p.System != "" {
			req.Messages = append(req.Messages, chatMessage{Role: "system", Content: p.System})
		}
		req.Messages = append(req.Messages, chatMessage{Role: "user", Content: p.User})

		headers := map[string]string{"Accept": "text/event-stream"}
		if key := g.ep.Key(); key != "" {
			headers["Authorization"] = "Bearer " + key
		}

		g.ep.Logger.Debug("chat completion", zap.String("model", g.ep.Model))
		resp, err := postStream(ctx, g.ep, g.ep.BaseURL+"/chat/completions", req, headers)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		var streamErr error
		stopped := false
		err = readEvents(resp.Body, func(data []byte) bool {
			var chunk chatChunk
			if err := json.Unmarshal(data, &chunk); err != nil {
				return true
			}
			if chunk.Error != nil {
				streamErr = fmt.Errorf("%s stream error: %s", g.ep.Provider, chunk.Error.Message)
				return false
			}
			for _, c := range chunk.Choices {
				if c.FinishReason == "content_filter" {
					streamErr = ErrBlocked
					return false
				}
				if c.Delta.Content == "" {
					continue
				}
				if !yield(c.Delta.Content, nil) {
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
			streamErr = fmt.Errorf("reading %s stream: %w", g.ep.Provider, err)
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}
}

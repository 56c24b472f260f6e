// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// ollamaGenerator streams newline-delimited JSON from /api/chat.
type ollamaGenerator struct {
	base
}

func newOllama(ep Endpoint) (TextGenerator, error) {
	return &ollamaGenerator{base{ep: ep}}, nil
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func (g *ollamaGenerator) StreamText(ctx context.Context, p Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req := ollamaRequest{Model: g.ep.Model, Stream: true}
		if p.System != "" {
			req.Messages = append(req.Messages, chatMessage{Role: "system", Content: p.System})
		}
		req.Messages = append(req.Messages, chatMessage{Role: "user", Content: p.User})
		if p.Temperature != nil || p.MaxTokens > 0 {
			req.Options = map[string]any{}
			if p.Temperature != nil {
				req.Options["temperature"] = *p.Temperature
			}
			if p.MaxTokens > 0 {
				req.Options["num_predict"] = p.MaxTokens
			}
		}

		// Ollama has no key; a relay still wants the access password.
		headers := map[string]string{}
		if g.ep.Proxy && g.ep.APIKey != "" {
			headers["Authorization"] = "Bearer " + g.ep.Key()
		}

		g.ep.Logger.Debug("ollama chat", zap.String("model", g.ep.Model))
		resp, err := postStream(ctx, g.ep, g.ep.BaseURL+"/chat", req, headers)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		var streamErr error
		stopped := false
		err = readLines(resp.Body, func(line []byte) bool {
			var chunk ollamaChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				streamErr = fmt.Errorf("decoding ollama chunk: %w", err)
				return false
			}
			if chunk.Error != "" {
				streamErr = errors.New("ollama: " + chunk.Error)
				return false
			}
			if chunk.Message.Content != "" && !yield(chunk.Message.Content, nil) {
				stopped = true
				return false
			}
			return !chunk.Done
		})
		if stopped {
			return
		}
		if streamErr == nil && err != nil {
			streamErr = fmt.Errorf("reading ollama stream: %w", err)
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}
}
